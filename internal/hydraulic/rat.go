package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const (
	ratStowingSpeed = 1. // full travel per second

	ratAntiStallThreshold = 4000.
	ratAntiStallBandwidth = 500.
	ratAntiStallTau       = 0.2
	ratAntiStallMinRatio  = 0.15

	turbinePinUnlockPosition = 0.8
	turbineLowSpeedRpm       = 15.
	turbineStowedAngle       = math.Pi / 2
	turbineInertia           = 0.2
	turbineFriction          = 0.0002
	turbineLowSpeedFriction  = 0.25
	turbineFrictionOffset    = 20.
	turbineAirLift           = 0.018
	turbineMaxBladeAngle     = 45.
)

// governor map, blade pitch in degrees against propeller rpm
var ratBladePitch = dynamo.MustTable(
	[]float64{0, 1000, 3000, 4000, 4800, 5800, 6250, 9000, 15000},
	[]float64{45, 45, 45, 45, 35, 25, 1, 1, 1},
)

// ratAntiStall unloads the pump when the propeller slows down so it can
// spin back up.
type ratAntiStall struct {
	ratio *dynamo.LowPassFilter
}

func (c *ratAntiStall) update(dt, rpm float64) {
	cut := (rpm - (ratAntiStallThreshold - ratAntiStallBandwidth)) / ratAntiStallBandwidth
	c.ratio.Update(dt, dynamo.Clamp(cut, ratAntiStallMinRatio, 1))
}

func (c *ratAntiStall) ShouldPressurise() bool              { return true }
func (c *ratAntiStall) MaxDisplacementRestriction() float64 { return c.ratio.Output() }
func (c *ratAntiStall) IsInputShaftConnected() bool         { return true }

// windTurbine is the RAT propeller. Blades only turn once the strut is past
// the unlock pin.
type windTurbine struct {
	position   float64 // rad
	speed      float64 // rad/s
	bladeAngle float64 // deg
}

func (t *windTurbine) rpm() float64 { return radPerSecToRpm(t.speed) }

func (t *windTurbine) update(dt, airspeedKnots, stowPosition, resistantTorque float64) {
	if stowPosition <= turbinePinUnlockPosition {
		return
	}

	t.bladeAngle = ratBladePitch.Lookup(t.rpm())
	aero := math.Sin(t.bladeAngle*math.Pi/180) * airspeedKnots * airspeedKnots * turbineAirLift * 0.5

	var friction float64
	switch {
	case t.speed <= 0:
	case t.rpm() < turbineLowSpeedRpm:
		friction = t.speed * turbineLowSpeedFriction
	default:
		friction = turbineFrictionOffset + t.speed*t.speed*turbineFriction
	}

	sum := aero + resistantTorque - friction
	// the propeller has no reverse drive
	t.speed = math.Max(t.speed+sum/turbineInertia*dt, 0)
	t.position = math.Mod(t.position+t.speed*dt, 2*math.Pi)
}

// RamAirTurbine deploys into the airflow on command and drives a pump from
// the propeller. Deployment cannot be undone in flight.
type RamAirTurbine struct {
	pump      *Pump
	antiStall *ratAntiStall
	turbine   *windTurbine

	deploymentCommanded bool
	position            float64
}

func NewRamAirTurbine(characteristics *PumpCharacteristics) *RamAirTurbine {
	return &RamAirTurbine{
		pump:      NewPump(characteristics),
		antiStall: &ratAntiStall{ratio: dynamo.NewLowPassFilter(ratAntiStallTau)},
		turbine:   &windTurbine{position: turbineStowedAngle},
	}
}

func (r *RamAirTurbine) Update(step StepContext, section SectionPressure, reservoir *Reservoir, controller RamAirTurbineController) {
	r.deploymentCommanded = r.deploymentCommanded || controller.ShouldDeploy()

	r.antiStall.update(step.Dt, r.turbine.rpm())
	r.pump.Update(step, section, reservoir, r.turbine.rpm(), r.antiStall)
}

// UpdatePosition moves the strut towards fully deployed.
func (r *RamAirTurbine) UpdatePosition(dt float64) {
	if r.deploymentCommanded {
		r.position = dynamo.Clamp(r.position+dt*ratStowingSpeed, 0, 1)
	}
}

// UpdatePhysics integrates the propeller against the pump load. The load
// follows the flow delivered last regulation, so a still propeller is not
// braked. Callers sub-step it, it is not stable at frame-sized steps.
func (r *RamAirTurbine) UpdatePhysics(step StepContext, section SectionPressure) {
	resistant := -hydraulicTorque(section.Pressure(), r.pump.deliveredDisplacement())
	r.turbine.update(step.Dt, step.IndicatedAirspeedKnots, r.position, resistant)
}

func (r *RamAirTurbine) UpdateAfterPressureRegulation(step StepContext, volumeRequired float64, reservoir *Reservoir, connected bool) {
	r.pump.UpdateAfterPressureRegulation(step, volumeRequired, reservoir, connected)
}

func (r *RamAirTurbine) DeltaVolMax() float64  { return r.pump.DeltaVolMax() }
func (r *RamAirTurbine) Flow() float64         { return r.pump.Flow() }
func (r *RamAirTurbine) Displacement() float64 { return r.pump.Displacement() }
func (r *RamAirTurbine) Speed() float64        { return r.turbine.rpm() }
func (r *RamAirTurbine) StowPosition() float64 { return r.position }
func (r *RamAirTurbine) IsDeployed() bool      { return r.position >= 1 }
func (r *RamAirTurbine) IsOverheating() bool   { return false }
func (r *RamAirTurbine) IsDamaged() bool       { return false }

func (r *RamAirTurbine) Write(w Writer) {
	w.WriteFloat("RAT_STOW_POSITION", r.position)
	w.WriteFloat("RAT_RPM", r.turbine.rpm())
	w.WriteFloat("RAT_ANGULAR_POSITION", r.turbine.position*180/math.Pi)
	w.WriteFloat("RAT_PROPELLER_ANGLE", r.turbine.bladeAngle/turbineMaxBladeAngle)
}

var _ HeatingPressureSource = (*RamAirTurbine)(nil)
