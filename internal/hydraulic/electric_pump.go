package hydraulic

import "github.com/san-kum/hydrosim/internal/dynamo"

const (
	epumpHeatTimeConstantMean = 30.
	epumpHeatTimeConstantStd  = 5.
	epumpCoolTimeConstant     = 120.
	epumpDamageTimeConstant   = 300.
	epumpMinSpeedForHeating   = 200.
)

// ElectricPump is a pump driven by a speed-regulated electric motor on a
// single AC bus.
type ElectricPump struct {
	id    string
	pump  *Pump
	motor *electricalPumpPhysics

	overheatFailure bool
	heat            *HeatingProperties
}

func NewElectricPump(id string, bus BusID, maxCurrent float64, characteristics *PumpCharacteristics, rnd *dynamo.Random) *ElectricPump {
	return &ElectricPump{
		id:    id,
		pump:  NewPump(characteristics),
		motor: newElectricalPumpPhysics(bus, maxCurrent, characteristics.RegulatedSpeed()),
		heat: NewHeatingProperties(
			rnd.NormalFloor(epumpHeatTimeConstantMean, epumpHeatTimeConstantStd, 10),
			epumpCoolTimeConstant,
			epumpDamageTimeConstant,
		),
	}
}

func (p *ElectricPump) ReceivePower(buses ElectricalBuses) { p.motor.receivePower(buses) }

func (p *ElectricPump) ApplyFailures(f FailureChecker) {
	p.overheatFailure = f.IsActive(Failure{Kind: ElectricPumpOverheat, Target: p.id})
}

func (p *ElectricPump) Update(step StepContext, section SectionPressure, reservoir *Reservoir, controller PumpController) {
	p.motor.active = controller.ShouldPressurise()
	p.motor.update(step.Dt, section.Pressure(), p.pump.Displacement())

	p.heat.Update(step.Dt, p.overheatFailure && p.motor.rpm() > epumpMinSpeedForHeating)

	p.pump.Update(step, section, reservoir, p.motor.rpm(), controller)
}

func (p *ElectricPump) UpdateAfterPressureRegulation(step StepContext, volumeRequired float64, reservoir *Reservoir, connected bool) {
	p.pump.UpdateAfterPressureRegulation(step, volumeRequired, reservoir, connected)
}

func (p *ElectricPump) DeltaVolMax() float64  { return p.pump.DeltaVolMax() }
func (p *ElectricPump) Flow() float64         { return p.pump.Flow() }
func (p *ElectricPump) Displacement() float64 { return p.pump.Displacement() }
func (p *ElectricPump) Speed() float64        { return p.motor.rpm() }
func (p *ElectricPump) Current() float64      { return p.motor.current }
func (p *ElectricPump) Power() float64        { return p.motor.power }
func (p *ElectricPump) IsActive() bool        { return p.motor.shouldRun() }
func (p *ElectricPump) IsOverheating() bool   { return p.heat.IsOverheating() }
func (p *ElectricPump) IsDamaged() bool       { return p.heat.IsDamaged() }
func (p *ElectricPump) ID() string            { return p.id }

// IsCavitating is true once the pump runs but lost more than half its
// efficiency to low inlet pressure.
func (p *ElectricPump) IsCavitating() bool {
	return p.pump.CavitationEfficiency() < 0.5 && p.motor.rpm() > epumpMinSpeedForHeating
}

func (p *ElectricPump) Write(w Writer) {
	w.WriteBool("HYD_"+p.id+"_EPUMP_ACTIVE", p.IsActive())
	w.WriteFloat("HYD_"+p.id+"_EPUMP_RPM", p.Speed())
	w.WriteBool("HYD_"+p.id+"_EPUMP_OVHT", p.IsOverheating())
	w.WriteFloat("HYD_"+p.id+"_EPUMP_CAVITATION", p.pump.CavitationEfficiency())
}

var _ HeatingPressureSource = (*ElectricPump)(nil)
