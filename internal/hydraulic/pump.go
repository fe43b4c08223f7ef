package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const pumpMaxDisplacementTimeConstant = 0.15

// Pump is the displacement and flow model shared by every pump variant.
// The wrapping type decides the shaft speed.
type Pump struct {
	characteristics *PumpCharacteristics

	deltaVolMax     float64
	displacement    float64
	flow            float64
	maxDisplacement *dynamo.LowPassFilter
	speed           float64
	cavitation      float64
}

func NewPump(characteristics *PumpCharacteristics) *Pump {
	return &Pump{
		characteristics: characteristics,
		maxDisplacement: dynamo.NewLowPassFilter(pumpMaxDisplacementTimeConstant),
		cavitation:      1,
	}
}

// Update computes how much the pump could deliver this step at the given
// shaft speed.
func (p *Pump) Update(step StepContext, section SectionPressure, reservoir *Reservoir, speed float64, controller PumpController) {
	p.speed = speed

	if reservoir.IsEmpty() {
		p.cavitation = 0
	} else {
		p.cavitation = p.characteristics.CavitationEfficiency(reservoir.AirPressure(), reservoir.OverheatRatio())
	}

	theoretical := 0.0
	if controller.ShouldPressurise() {
		theoretical = p.characteristics.Displacement(section.Pressure())
	}
	p.maxDisplacement.Update(step.Dt, p.cavitation*theoretical*controller.MaxDisplacementRestriction())

	maxFlow := math.Max(p.flowAt(p.maxDisplacement.Output()), 0)
	p.deltaVolMax = reservoir.RequestFlowAvailability(step, maxFlow) * step.Dt
}

func (p *Pump) flowAt(displacement float64) float64 {
	if p.speed <= p.characteristics.ZeroEfficiencySpeed() {
		return 0
	}
	return gallonsPerSecond(p.speed, displacement)
}

func (p *Pump) displacementForFlow(flow float64) float64 {
	if p.speed <= 0 {
		return p.maxDisplacement.Output()
	}
	d := flow * cubicInchesPerGallon * secondsPerMinute / p.speed
	return math.Max(math.Min(p.maxDisplacement.Output(), d), 0)
}

// deliveredDisplacement is the displacement matching the flow actually
// taken this step. A stopped shaft delivers nothing and carries no load.
func (p *Pump) deliveredDisplacement() float64 {
	if p.flow <= 0 || p.speed <= p.characteristics.ZeroEfficiencySpeed() {
		return 0
	}
	d := p.flow * cubicInchesPerGallon * secondsPerMinute / p.speed
	return math.Min(p.maxDisplacement.Output(), d)
}

func (p *Pump) UpdateAfterPressureRegulation(step StepContext, volumeRequired float64, reservoir *Reservoir, connected bool) {
	if step.Dt <= 0 {
		return
	}
	p.displacement = p.displacementForFlow(volumeRequired / step.Dt)

	if connected {
		p.flow = reservoir.TryTakeFlow(step, p.flowAt(p.displacement))
	} else {
		p.flow = 0
	}
}

func (p *Pump) DeltaVolMax() float64          { return p.deltaVolMax }
func (p *Pump) Flow() float64                 { return p.flow }
func (p *Pump) Displacement() float64         { return p.displacement }
func (p *Pump) Speed() float64                { return p.speed }
func (p *Pump) CavitationEfficiency() float64 { return p.cavitation }

func (p *Pump) Characteristics() *PumpCharacteristics { return p.characteristics }
