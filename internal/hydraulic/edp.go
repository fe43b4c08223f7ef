package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const (
	edpHeatTimeConstantMean = 30.
	edpHeatTimeConstantStd  = 5.
	edpCoolTimeConstant     = 120.
	edpDamageTimeConstant   = 120.
	edpMinSpeedForHeating   = 200.

	// rpm per second, independent of the frame step
	edpSpoolDownRatePerSecond = 800.
)

// EngineDrivenPump turns with the engine accessory gearbox. Once declutched
// or damaged it spools down and stays stopped.
type EngineDrivenPump struct {
	id     string
	pump   *Pump
	active bool
	speed  float64

	overheatFailure bool
	heat            *HeatingProperties
}

func NewEngineDrivenPump(id string, characteristics *PumpCharacteristics, rnd *dynamo.Random) *EngineDrivenPump {
	return &EngineDrivenPump{
		id:   id,
		pump: NewPump(characteristics),
		heat: NewHeatingProperties(
			rnd.NormalFloor(edpHeatTimeConstantMean, edpHeatTimeConstantStd, 10),
			edpCoolTimeConstant,
			edpDamageTimeConstant,
		),
	}
}

func (p *EngineDrivenPump) ApplyFailures(f FailureChecker) {
	p.overheatFailure = f.IsActive(Failure{Kind: EnginePumpOverheat, Target: p.id})
}

// Update runs the pump at the engine-driven shaft speed in rpm.
func (p *EngineDrivenPump) Update(step StepContext, section SectionPressure, reservoir *Reservoir, shaftSpeed float64, controller PumpController) {
	p.heat.Update(step.Dt, p.overheatFailure && shaftSpeed > edpMinSpeedForHeating)

	if !p.IsDamaged() && controller.IsInputShaftConnected() {
		p.speed = shaftSpeed
	} else {
		// a rate, not a per-update decrement
		p.speed -= edpSpoolDownRatePerSecond * step.Dt
	}
	p.speed = math.Max(p.speed, 0)

	p.pump.Update(step, section, reservoir, p.speed, controller)
	p.active = controller.ShouldPressurise()
}

func (p *EngineDrivenPump) UpdateAfterPressureRegulation(step StepContext, volumeRequired float64, reservoir *Reservoir, connected bool) {
	p.pump.UpdateAfterPressureRegulation(step, volumeRequired, reservoir, connected)
}

func (p *EngineDrivenPump) DeltaVolMax() float64  { return p.pump.DeltaVolMax() }
func (p *EngineDrivenPump) Flow() float64         { return p.pump.Flow() }
func (p *EngineDrivenPump) Displacement() float64 { return p.pump.Displacement() }
func (p *EngineDrivenPump) Speed() float64        { return p.speed }
func (p *EngineDrivenPump) IsActive() bool        { return p.active }
func (p *EngineDrivenPump) IsOverheating() bool   { return p.heat.IsOverheating() }
func (p *EngineDrivenPump) IsDamaged() bool       { return p.heat.IsDamaged() }
func (p *EngineDrivenPump) ID() string            { return p.id }

func (p *EngineDrivenPump) Write(w Writer) {
	w.WriteBool("HYD_"+p.id+"_EDPUMP_ACTIVE", p.active)
	w.WriteFloat("HYD_"+p.id+"_EDPUMP_RPM", p.speed)
	w.WriteBool("HYD_"+p.id+"_EDPUMP_OVHT", p.IsOverheating())
}

var _ HeatingPressureSource = (*EngineDrivenPump)(nil)
