package dynamo

// LowPassFilter is a first-order lag: out += (in - out) * dt / (dt + tau).
type LowPassFilter struct {
	timeConstant float64
	output       float64
}

func NewLowPassFilter(timeConstant float64) *LowPassFilter {
	return &LowPassFilter{timeConstant: timeConstant}
}

// NewLowPassFilterWithInit starts the filter at init instead of zero.
func NewLowPassFilterWithInit(timeConstant, init float64) *LowPassFilter {
	return &LowPassFilter{timeConstant: timeConstant, output: init}
}

// Update feeds one sample and returns the new output.
func (f *LowPassFilter) Update(dt, input float64) float64 {
	if dt <= 0 {
		return f.output
	}
	f.output += (input - f.output) * dt / (dt + f.timeConstant)
	return f.output
}

func (f *LowPassFilter) Output() float64 { return f.output }

func (f *LowPassFilter) Reset(value float64) { f.output = value }

func (f *LowPassFilter) SetTimeConstant(tau float64) { f.timeConstant = tau }

// DelayedTrueGate outputs true once its input has been true for at least
// delay seconds. Any false input clears it.
type DelayedTrueGate struct {
	delay    float64
	duration float64
	output   bool
}

func NewDelayedTrueGate(delay float64) *DelayedTrueGate {
	return &DelayedTrueGate{delay: delay}
}

func (g *DelayedTrueGate) Update(dt float64, input bool) bool {
	if input {
		g.duration += dt
	} else {
		g.duration = 0
	}
	g.output = input && g.duration >= g.delay
	return g.output
}

func (g *DelayedTrueGate) Output() bool { return g.output }

func (g *DelayedTrueGate) Delay() float64 { return g.delay }
