package hydraulic

import (
	"fmt"
	"math"
)

type sectionKind string

const (
	pumpSection      sectionKind = "PUMP"
	systemSection    sectionKind = "SYSTEM"
	auxiliarySection sectionKind = "AUXILIARY"
)

type sectionConfig struct {
	color         Color
	kind          sectionKind
	number        int
	staticLeak    float64
	initialVolume float64
	maxVolume     float64
	accumulator   *Accumulator
	switchLow     float64
	switchHigh    float64
	fireValve     *FireValve
	ptuLeft       bool
	ptuRight      bool
	leakValve     *LeakMeasurementValve
	priorityValve *PriorityValve
}

// Section is a volume of fluid at a single pressure. Pressure follows from
// how far the volume is compressed beyond maxHighPressVolume.
type Section struct {
	prefix string

	staticLeak         float64
	volume             float64
	maxHighPressVolume float64
	pressure           float64
	flow               float64

	fireValve     *FireValve
	accumulator   *Accumulator
	leakValve     *LeakMeasurementValve
	priorityValve *PriorityValve

	ptuLeft  bool
	ptuRight bool

	deltaVolumeFlowPass float64
	maxPumpableVolume   float64
	volumeTarget        float64
	deltaVolFromValves  float64
	volumePumped        float64

	pressureSwitch *PressureSwitch

	actuatorConsumed float64
	actuatorReturned float64
}

func newSection(cfg sectionConfig) *Section {
	return &Section{
		prefix:             fmt.Sprintf("HYD_%s_%s_%d", cfg.color, cfg.kind, cfg.number),
		staticLeak:         cfg.staticLeak,
		volume:             cfg.initialVolume,
		maxHighPressVolume: cfg.maxVolume,
		pressure:           ambientPressure,
		fireValve:          cfg.fireValve,
		accumulator:        cfg.accumulator,
		leakValve:          cfg.leakValve,
		priorityValve:      cfg.priorityValve,
		ptuLeft:            cfg.ptuLeft,
		ptuRight:           cfg.ptuRight,
		pressureSwitch:     NewPressureSwitch(cfg.switchHigh, cfg.switchLow, Relative),
	}
}

// volumeToReachTarget is the exact volume that brings the section to
// target pressure.
func (s *Section) volumeToReachTarget(target float64, fluid *Fluid) float64 {
	return (target - s.pressure) * s.maxHighPressVolume / fluid.BulkModulus()
}

func (s *Section) updateShutoffValve(index int, controller CircuitController) {
	if s.fireValve != nil {
		s.fireValve.Update(controller.ShouldOpenFireShutoffValve(index))
	}
}

func (s *Section) updateLeakMeasurementValve(step StepContext, controller CircuitController) {
	if s.leakValve != nil {
		s.leakValve.Update(step, s.pressure, controller)
	}
}

func (s *Section) staticLeakVolume(step StepContext, targetPressure float64) float64 {
	return s.staticLeak * step.Dt * (s.pressure - ambientPressure) / targetPressure
}

// updateFlow accounts for everything that moves fluid in or out of the
// section other than pumps and check valves.
func (s *Section) updateFlow(step StepContext, reservoir *Reservoir, ptu *PowerTransferUnit, targetPressure float64) {
	leak := s.staticLeakVolume(step, targetPressure)
	delta := -leak
	reservoir.AddReturnVolume(leak)

	if s.accumulator != nil {
		delta = s.accumulator.Update(step, delta, s.pressure, s.volumeTarget)
	}

	if ptu != nil {
		delta += s.ptuVolume(step, ptu, reservoir)
	}

	delta -= s.actuatorConsumed
	reservoir.AddReturnVolume(s.actuatorReturned)

	s.deltaVolumeFlowPass = delta
	s.actuatorConsumed = 0
	s.actuatorReturned = 0
}

// ptuVolume is the PTU contribution for this step. A receiving side draws
// its own reservoir, a driving side sends the motor outflow back to it.
func (s *Section) ptuVolume(step StepContext, ptu *PowerTransferUnit, reservoir *Reservoir) float64 {
	var flow float64
	switch {
	case s.ptuLeft:
		flow = ptu.FlowToLeft()
	case s.ptuRight:
		flow = ptu.FlowToRight()
	default:
		return 0
	}

	actual := flow
	if flow > 0 {
		actual = reservoir.TryTakeFlow(step, flow)
	} else {
		reservoir.AddReturnVolume(-flow * step.Dt)
	}
	return actual * step.Dt
}

func (s *Section) updateActuatorVolumes(a Actuator) {
	s.actuatorConsumed += a.UsedVolume()
	s.actuatorReturned += a.ReturnedVolume()
	a.ResetVolumes()
}

func (s *Section) updateTargetVolumeAfterFlowUpdate(targetPressure float64, fluid *Fluid) {
	if s.IsPrimed() {
		s.volumeTarget = s.volumeToReachTarget(targetPressure, fluid)
	} else {
		s.volumeTarget = s.maxHighPressVolume - s.volume + s.volumeToReachTarget(targetPressure, fluid)
	}
	s.volumeTarget -= s.deltaVolumeFlowPass
}

func (s *Section) updateMaximumPumpingCapacity(pump PressureSource) {
	if s.FireValveIsOpen() {
		s.maxPumpableVolume = pump.DeltaVolMax()
	} else {
		s.maxPumpableVolume = 0
	}
}

func (s *Section) updateUpstreamDeltaVol(valves ...*CheckValve) {
	for _, v := range valves {
		s.deltaVolFromValves += v.volume
	}
}

func (s *Section) updateDownstreamDeltaVol(valve *CheckValve) {
	s.deltaVolFromValves -= valve.volume
}

// updatePumpState asks the pump for exactly what is still missing once
// valve transfers are accounted for.
func (s *Section) updatePumpState(step StepContext, pump PressureSource, reservoir *Reservoir) {
	needed := s.volumeTarget - s.deltaVolFromValves
	pump.UpdateAfterPressureRegulation(step, needed, reservoir, s.FireValveIsOpen())
	s.volumePumped = pump.Flow() * step.Dt
}

func (s *Section) updateFinalDeltaVolAndPressure(step StepContext, fluid *Fluid) {
	delta := s.deltaVolumeFlowPass + s.deltaVolFromValves + s.volumePumped
	s.volume += delta

	s.updatePressure(step, fluid)

	if step.Dt > 0 {
		s.flow = delta / step.Dt
	}
	s.deltaVolFromValves = 0
	s.volumePumped = 0
}

func (s *Section) updatePressure(step StepContext, fluid *Fluid) {
	compressed := s.volume - s.maxHighPressVolume
	s.pressure = math.Max(ambientPressure+compressed/s.maxHighPressVolume*fluid.BulkModulus(), ambientPressure)

	s.pressureSwitch.Update(step, s.PressureDownstreamLeakValve())

	if s.priorityValve != nil {
		s.priorityValve.Update(step, s.pressure)
	}
}

func (s *Section) IsPrimed() bool { return s.volume >= s.maxHighPressVolume }

func (s *Section) Pressure() float64 { return s.pressure }

func (s *Section) PressureDownstreamLeakValve() float64 {
	if s.leakValve != nil {
		return s.leakValve.DownstreamPressure()
	}
	return s.pressure
}

func (s *Section) PressureDownstreamPriorityValve() float64 {
	if s.priorityValve != nil {
		return s.priorityValve.DownstreamPressure()
	}
	return s.pressure
}

func (s *Section) IsPressureSwitchPressurised() bool { return s.pressureSwitch.IsPressurised() }

func (s *Section) FireValveIsOpen() bool {
	return s.fireValve == nil || s.fireValve.IsOpen()
}

func (s *Section) AccumulatorVolume() float64 {
	if s.accumulator == nil {
		return 0
	}
	return s.accumulator.FluidVolume()
}

func (s *Section) Volume() float64             { return s.volume }
func (s *Section) MaxHighPressVolume() float64 { return s.maxHighPressVolume }
func (s *Section) Flow() float64               { return s.flow }
func (s *Section) Name() string                { return s.prefix + "_SECTION" }

func (s *Section) receivePower(buses ElectricalBuses) {
	if s.fireValve != nil {
		s.fireValve.ReceivePower(buses)
	}
	if s.leakValve != nil {
		s.leakValve.ReceivePower(buses)
	}
}

func (s *Section) Write(w Writer) {
	w.WriteFloat(s.prefix+"_SECTION_PRESSURE", s.pressure)
	w.WriteBool(s.prefix+"_SECTION_PRESSURE_SWITCH", s.IsPressureSwitchPressurised())
	if s.fireValve != nil {
		w.WriteBool(s.prefix+"_FIRE_VALVE_OPENED", s.fireValve.IsOpen())
	}
}

var _ SectionPressure = (*Section)(nil)
