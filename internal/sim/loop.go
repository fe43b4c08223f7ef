package sim

import "math"

// FixedStepLoop splits variable frame deltas into fixed physics steps. Time
// that does not fill a whole step is carried into the next frame.
type FixedStepLoop struct {
	step float64
	lag  float64
}

func NewFixedStepLoop(step float64) *FixedStepLoop {
	return &FixedStepLoop{step: step}
}

// Run calls fn once per whole step that fits in delta plus the carried lag
// and returns the number of calls.
func (l *FixedStepLoop) Run(delta float64, fn func(dt float64)) int {
	if l.step <= 0 || delta < 0 {
		return 0
	}

	steps := (delta + l.lag) / l.step
	// Absorb rounding so 0.3/0.1 counts as three steps.
	n := int(math.Floor(steps + 1e-9))
	l.lag = math.Max(steps-float64(n), 0) * l.step

	for i := 0; i < n; i++ {
		fn(l.step)
	}
	return n
}

func (l *FixedStepLoop) Step() float64 { return l.step }
func (l *FixedStepLoop) Lag() float64  { return l.lag }

// MaxStepLoop splits a frame into the fewest equal sub-steps no longer than
// max.
type MaxStepLoop struct {
	max float64
}

func NewMaxStepLoop(max float64) MaxStepLoop {
	return MaxStepLoop{max: max}
}

func (l MaxStepLoop) Run(delta float64, fn func(dt float64)) int {
	if delta <= 0 || l.max <= 0 {
		return 0
	}

	n := int(math.Ceil(delta / l.max))
	dt := delta / float64(n)
	for i := 0; i < n; i++ {
		fn(dt)
	}
	return n
}
