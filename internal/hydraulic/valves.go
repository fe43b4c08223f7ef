package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

// FireValve is a pump section's shutoff valve. It starts open and only
// moves while its bus is powered.
type FireValve struct {
	open    bool
	bus     BusID
	powered bool
}

func NewFireValve(bus BusID) *FireValve {
	return &FireValve{open: true, bus: bus}
}

func (v *FireValve) Update(commandOpen bool) {
	if v.powered {
		v.open = commandOpen
	}
}

func (v *FireValve) ReceivePower(buses ElectricalBuses) { v.powered = buses.IsPowered(v.bus) }

func (v *FireValve) IsOpen() bool { return v.open }

const (
	checkValveAggressiveness            = 5.
	checkValveDeltaPressureTimeConstant = 0.06
)

// CheckValve carries flow from a pump section into a downstream section.
// The forecast is the larger of what the upstream pump can spare and the
// physical flow driven by a positive pressure difference. Flow never
// reverses.
type CheckValve struct {
	volume        float64
	maxVirtual    float64
	deltaPressure *dynamo.LowPassFilter
}

func NewCheckValve() *CheckValve {
	return &CheckValve{deltaPressure: dynamo.NewLowPassFilter(checkValveDeltaPressureTimeConstant)}
}

func (v *CheckValve) volumeToEqualizePressures(step StepContext, up, down *Section, fluid *Fluid) float64 {
	dp := v.deltaPressure.Update(step.Dt, up.Pressure()-down.Pressure())
	if dp <= 0 {
		return 0
	}
	b := fluid.BulkModulus()
	return checkValveAggressiveness * down.maxHighPressVolume * up.maxHighPressVolume * dp /
		(b*down.maxHighPressVolume + b*up.maxHighPressVolume)
}

func (v *CheckValve) updateFlowForecast(step StepContext, up, down *Section, fluid *Fluid) {
	physical := v.volumeToEqualizePressures(step, up, down, fluid)

	available := math.Max(up.maxPumpableVolume-up.volumeTarget, physical)
	if !down.IsPrimed() {
		available = math.Max(up.maxPumpableVolume, physical)
	}
	v.maxVirtual = math.Max(available, 0)
}

// MaxVirtualVolume is the forecast volume the valve could pass this step.
func (v *CheckValve) MaxVirtualVolume() float64 { return v.maxVirtual }

// Volume is what actually passed this step.
func (v *CheckValve) Volume() float64 { return v.volume }

const priorityValveTimeConstant = 0.005

// PriorityValve throttles downstream pressure below an opening band so
// essential consumers keep pressure when the circuit is weak.
type PriorityValve struct {
	openRatio *dynamo.LowPassFilter
	closed    float64
	opened    float64

	upstream   float64
	downstream float64
}

func NewPriorityValve(fullyClosed, fullyOpened float64) *PriorityValve {
	return &PriorityValve{
		openRatio: dynamo.NewLowPassFilter(priorityValveTimeConstant),
		closed:    fullyClosed,
		opened:    fullyOpened,
	}
}

func (v *PriorityValve) Update(step StepContext, upstream float64) {
	v.upstream = upstream
	ratio := dynamo.Clamp((upstream-v.closed)/(v.opened-v.closed), 0, 1)
	r := v.openRatio.Update(step.Dt, ratio)
	v.downstream = upstream * r * r
}

func (v *PriorityValve) DownstreamPressure() float64 { return v.downstream }
func (v *PriorityValve) IsOpen() bool                { return v.openRatio.Output() > 0.5 }

const leakMeasurementValveTimeConstant = 0.5

// LeakMeasurementValve isolates the system section consumers. Unpowered it
// fails open.
type LeakMeasurementValve struct {
	openRatio *dynamo.LowPassFilter
	bus       BusID
	powered   bool

	upstream   float64
	downstream float64
}

func NewLeakMeasurementValve(bus BusID) *LeakMeasurementValve {
	return &LeakMeasurementValve{
		openRatio: dynamo.NewLowPassFilter(leakMeasurementValveTimeConstant),
		bus:       bus,
	}
}

func (v *LeakMeasurementValve) Update(step StepContext, upstream float64, controller CircuitController) {
	v.upstream = upstream
	target := 1.0
	if v.powered && !controller.ShouldOpenLeakMeasurementValve() {
		target = 0
	}
	r := v.openRatio.Update(step.Dt, target)
	v.downstream = upstream * r * r
}

func (v *LeakMeasurementValve) ReceivePower(buses ElectricalBuses) { v.powered = buses.IsPowered(v.bus) }

func (v *LeakMeasurementValve) DownstreamPressure() float64 { return v.downstream }
func (v *LeakMeasurementValve) OpenRatio() float64          { return v.openRatio.Output() }
