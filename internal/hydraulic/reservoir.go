package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const (
	reservoirMinUsableVolume   = 0.2
	reservoirLeakFailureFlow   = 0.1
	reservoirReturnFailureLoss = 0.1
	reservoirEmptyThreshold    = 0.01

	reservoirHeatTimeConstantMean = 30.
	reservoirHeatTimeConstantStd  = 5.
	reservoirCoolTimeConstant     = 180.
	reservoirDamageTimeConstant   = 300.

	DefaultReservoirAirPressure = 50.
)

// ReservoirConfig describes one circuit's reservoir. Volumes in gallons.
type ReservoirConfig struct {
	Color             Color
	MaxCapacity       float64
	MaxGaugeable      float64
	InitialLevel      float64
	LowLevelThreshold float64
	// AirSwitches are the low air pressure switches. Empty means the
	// reservoir never reports low air pressure.
	AirSwitches []*PressureSwitch
}

// Reservoir stores unpressurised fluid. Pumps draw from it and every leak,
// actuator return and PTU backflow lands in it.
type Reservoir struct {
	color        Color
	maxCapacity  float64
	maxGaugeable float64
	level        float64
	airPressure  float64

	airSwitches []*PressureSwitch
	levelSwitch *LevelSwitch

	leakFailure   bool
	returnFailure bool

	physics *fluidPhysics
	heat    *HeatingProperties

	returnFlow   float64
	returnVolume float64
}

func NewReservoir(cfg ReservoirConfig, rnd *dynamo.Random) (*Reservoir, error) {
	if cfg.MaxCapacity <= 0 || cfg.InitialLevel < 0 || cfg.InitialLevel > cfg.MaxCapacity {
		return nil, ErrInvalidVolume
	}
	gaugeable := cfg.MaxGaugeable
	if gaugeable <= 0 {
		gaugeable = cfg.MaxCapacity
	}
	return &Reservoir{
		color:        cfg.Color,
		maxCapacity:  cfg.MaxCapacity,
		maxGaugeable: gaugeable,
		level:        cfg.InitialLevel,
		airPressure:  DefaultReservoirAirPressure,
		airSwitches:  cfg.AirSwitches,
		levelSwitch:  NewLevelSwitch(cfg.LowLevelThreshold),
		physics:      newFluidPhysics(rnd),
		heat: NewHeatingProperties(
			rnd.NormalFloor(reservoirHeatTimeConstantMean, reservoirHeatTimeConstantStd, 10),
			reservoirCoolTimeConstant,
			reservoirDamageTimeConstant,
		),
	}, nil
}

// ApplyFailures latches the reservoir failure flags for the next update.
func (r *Reservoir) ApplyFailures(f FailureChecker) {
	r.leakFailure = f.IsActive(Failure{Kind: ReservoirLeak, Target: string(r.color)})
	r.returnFailure = f.IsActive(Failure{Kind: ReservoirReturnLeak, Target: string(r.color)})
}

func (r *Reservoir) Update(step StepContext, airPressure float64, fluid HeatingElement) {
	r.airPressure = airPressure

	if step.Dt > 0 {
		r.returnFlow = r.returnVolume / step.Dt
	}
	r.returnVolume = 0

	r.heat.Update(step.Dt, r.returnFlow > heatTransferMinFlow && fluid.IsOverheating())

	r.physics.update(step)
	r.levelSwitch.Update(r.GaugeLevel(), r.physics.isFluidGoingUp())

	for _, s := range r.airSwitches {
		s.Update(step, r.airPressure)
	}

	if r.leakFailure {
		r.level = math.Max(r.level-reservoirLeakFailureFlow*step.Dt, 0)
	}
}

// TryTakeVolume removes up to volume and returns what was actually taken.
func (r *Reservoir) TryTakeVolume(volume float64) float64 {
	taken := math.Max(math.Min(r.ReachableLevel(), volume), 0)
	r.level -= taken
	return taken
}

// TryTakeFlow is TryTakeVolume expressed as a flow over one step.
func (r *Reservoir) TryTakeFlow(step StepContext, flow float64) float64 {
	if step.Dt <= 0 {
		return 0
	}
	return r.TryTakeVolume(flow*step.Dt) / step.Dt
}

// RequestFlowAvailability reports how much of flow could be taken this
// step without taking it.
func (r *Reservoir) RequestFlowAvailability(step StepContext, flow float64) float64 {
	if step.Dt <= 0 {
		return 0
	}
	return math.Min(r.ReachableLevel(), flow*step.Dt) / step.Dt
}

// AddReturnVolume returns fluid. A return line failure loses part of it.
func (r *Reservoir) AddReturnVolume(volume float64) {
	if volume <= 0 {
		return
	}
	if r.returnFailure {
		volume -= reservoirReturnFailureLoss * volume
	}
	r.level = math.Min(r.level+volume, r.maxCapacity)
	r.returnVolume += volume
}

// Level is the true fluid quantity.
func (r *Reservoir) Level() float64 { return r.level }

// ReachableLevel is the fluid the pumps can reach given where it sits.
func (r *Reservoir) ReachableLevel() float64 {
	return math.Max(r.level*r.physics.usableLevelModifier()-reservoirMinUsableVolume, 0)
}

// GaugeLevel is what the quantity indicator reads.
func (r *Reservoir) GaugeLevel() float64 {
	return math.Min(r.level, r.maxGaugeable) * r.physics.gaugeModifier()
}

// AvailableVolume is the room left before the reservoir is full.
func (r *Reservoir) AvailableVolume() float64 { return r.maxCapacity - r.level }

func (r *Reservoir) MaxCapacity() float64 { return r.maxCapacity }
func (r *Reservoir) AirPressure() float64 { return r.airPressure }
func (r *Reservoir) ReturnFlow() float64  { return r.returnFlow }
func (r *Reservoir) IsEmpty() bool        { return r.ReachableLevel() <= reservoirEmptyThreshold }
func (r *Reservoir) IsLowLevel() bool     { return r.levelSwitch.IsLowLevel() }
func (r *Reservoir) IsGTrapEmpty() bool   { return r.physics.isGTrapEmpty() }

func (r *Reservoir) IsLowAirPressure() bool {
	for _, s := range r.airSwitches {
		if !s.IsPressurised() {
			return true
		}
	}
	return false
}

func (r *Reservoir) IsOverheating() bool    { return r.heat.IsOverheating() }
func (r *Reservoir) IsDamaged() bool        { return r.heat.IsDamaged() }
func (r *Reservoir) OverheatRatio() float64 { return r.heat.OverheatRatio() }

func (r *Reservoir) Write(w Writer) {
	prefix := "HYD_" + string(r.color) + "_RESERVOIR_"
	w.WriteFloat(prefix+"LEVEL", r.GaugeLevel())
	w.WriteBool(prefix+"LEVEL_IS_LOW", r.IsLowLevel())
	w.WriteBool(prefix+"AIR_PRESSURE_IS_LOW", r.IsLowAirPressure())
	w.WriteBool(prefix+"OVHT", r.IsOverheating())
}
