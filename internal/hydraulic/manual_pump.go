package hydraulic

import "github.com/san-kum/hydrosim/internal/dynamo"

const manualPumpSpoolRate = 1000. // rpm/s

// ManualPump is a hand or low-power pump that ramps to its rated speed
// while commanded.
type ManualPump struct {
	pump     *Pump
	speed    float64
	maxSpeed float64
}

func NewManualPump(characteristics *PumpCharacteristics) *ManualPump {
	return &ManualPump{
		pump:     NewPump(characteristics),
		maxSpeed: characteristics.RegulatedSpeed(),
	}
}

func (p *ManualPump) Update(step StepContext, section SectionPressure, reservoir *Reservoir, controller PumpController) {
	if controller.ShouldPressurise() {
		p.speed += manualPumpSpoolRate * step.Dt
	} else {
		p.speed -= manualPumpSpoolRate * step.Dt
	}
	p.speed = dynamo.Clamp(p.speed, 0, p.maxSpeed)

	p.pump.Update(step, section, reservoir, p.speed, controller)
}

func (p *ManualPump) UpdateAfterPressureRegulation(step StepContext, volumeRequired float64, reservoir *Reservoir, connected bool) {
	p.pump.UpdateAfterPressureRegulation(step, volumeRequired, reservoir, connected)
}

func (p *ManualPump) DeltaVolMax() float64  { return p.pump.DeltaVolMax() }
func (p *ManualPump) Flow() float64         { return p.pump.Flow() }
func (p *ManualPump) Displacement() float64 { return p.pump.Displacement() }
func (p *ManualPump) Speed() float64        { return p.speed }
func (p *ManualPump) IsOverheating() bool   { return false }
func (p *ManualPump) IsDamaged() bool       { return false }

var _ HeatingPressureSource = (*ManualPump)(nil)
