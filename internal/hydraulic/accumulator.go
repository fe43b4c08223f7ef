package hydraulic

import "math"

const (
	accumulatorFlowBlend           = 0.7
	accumulatorDeltaPressureToFlow = 0.009
	accumulatorMaxInitFillRatio    = 0.9
)

// Accumulator is a gas-precharged fluid store. A system accumulator flows
// freely in both directions. A brake accumulator sits behind a control
// valve: it charges from the circuit but only discharges through
// GetDeltaVol.
type Accumulator struct {
	totalVolume      float64
	precharge        float64
	nominalPrecharge float64
	gasPressure      float64
	fluidVolume      float64
	flow             float64
	lastDelta        float64
	controlValve     bool
	targetPressure   float64
}

func newAccumulator(precharge, totalVolume, initialFluid float64, controlValve bool, targetPressure float64) *Accumulator {
	fluid := math.Min(initialFluid, totalVolume*accumulatorMaxInitFillRatio)
	return &Accumulator{
		totalVolume:      totalVolume,
		precharge:        precharge,
		nominalPrecharge: precharge,
		gasPressure:      precharge * totalVolume / (totalVolume - fluid),
		fluidVolume:      fluid,
		controlValve:     controlValve,
		targetPressure:   targetPressure,
	}
}

func NewSystemAccumulator(precharge, totalVolume, initialFluid, targetPressure float64) *Accumulator {
	return newAccumulator(precharge, totalVolume, initialFluid, false, targetPressure)
}

func NewBrakeAccumulator(precharge, totalVolume, initialFluid, targetPressure float64) *Accumulator {
	return newAccumulator(precharge, totalVolume, initialFluid, true, targetPressure)
}

// Update exchanges fluid with a circuit at circuitPressure. delta is the
// circuit's pending volume change for this step and the adjusted value is
// returned: discharge adds to it, charging consumes it.
func (a *Accumulator) Update(step StepContext, delta, circuitPressure, maxVolumeToTarget float64) float64 {
	dp := a.gasPressure - circuitPressure

	flow := math.Sqrt(math.Abs(dp)) * accumulatorDeltaPressureToFlow
	flow = flow*accumulatorFlowBlend + (1-accumulatorFlowBlend)*a.flow

	if dp > 0 && !a.controlValve {
		out := math.Max(math.Min(math.Min(a.fluidVolume, flow*step.Dt), maxVolumeToTarget), 0)
		a.fluidVolume -= out
		a.lastDelta = -out
		delta += out
	} else if dp < 0 {
		// a precharge above target leaves no room to charge
		equilibrium := math.Max(a.totalVolume-a.precharge/a.targetPressure*a.totalVolume, 0)
		in := math.Max(math.Min(math.Max(math.Max(delta, 0), flow*step.Dt), equilibrium-a.fluidVolume), 0)
		a.fluidVolume += in
		a.lastDelta = in
		delta -= in
	}

	a.fluidVolume = math.Min(math.Max(a.fluidVolume, 0), a.totalVolume)

	if step.Dt > 0 {
		a.flow = a.lastDelta / step.Dt
	}
	a.updateGasPressure()
	return delta
}

// GetDeltaVol draws up to required gallons directly from the stored fluid.
func (a *Accumulator) GetDeltaVol(required float64) float64 {
	if required <= 0 {
		return 0
	}
	out := math.Min(a.fluidVolume, required)
	if out != 0 {
		a.fluidVolume -= out
		a.updateGasPressure()
	}
	return out
}

func (a *Accumulator) updateGasPressure() {
	a.gasPressure = a.precharge * a.totalVolume / (a.totalVolume - a.fluidVolume)
}

func (a *Accumulator) SetGasPrecharge(p float64) {
	a.precharge = p
	a.updateGasPressure()
}

func (a *Accumulator) GasPrecharge() float64 { return a.precharge }

// ResetToNominal empties the accumulator and restores the nominal
// precharge.
func (a *Accumulator) ResetToNominal() {
	a.fluidVolume = 0
	a.SetGasPrecharge(a.nominalPrecharge)
}

func (a *Accumulator) FluidVolume() float64 { return a.fluidVolume }
func (a *Accumulator) GasVolume() float64   { return a.totalVolume - a.fluidVolume }
func (a *Accumulator) GasPressure() float64 { return a.gasPressure }
func (a *Accumulator) TotalVolume() float64 { return a.totalVolume }
func (a *Accumulator) Flow() float64        { return a.flow }
