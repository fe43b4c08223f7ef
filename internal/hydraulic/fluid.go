package hydraulic

import "github.com/san-kum/hydrosim/internal/dynamo"

// DefaultBulkModulus is the bulk modulus of phosphate ester fluid, psi.
const DefaultBulkModulus = 1.45e9 / psiToPascal

// HeatingProperties tracks a normalised heat factor in [0, 1]. The element
// is overheating above 0.5 and becomes permanently damaged once it has
// been overheating for the damage time constant.
type HeatingProperties struct {
	heatFactor       *dynamo.LowPassFilter
	heatTimeConstant float64
	coolTimeConstant float64
	damageGate       *dynamo.DelayedTrueGate
	damaged          bool
}

func NewHeatingProperties(heatTimeConstant, coolTimeConstant, damageTimeConstant float64) *HeatingProperties {
	return &HeatingProperties{
		heatFactor:       dynamo.NewLowPassFilter(heatTimeConstant),
		heatTimeConstant: heatTimeConstant,
		coolTimeConstant: coolTimeConstant,
		damageGate:       dynamo.NewDelayedTrueGate(damageTimeConstant),
	}
}

func (h *HeatingProperties) Update(dt float64, heating bool) {
	if heating {
		h.heatFactor.SetTimeConstant(h.heatTimeConstant)
		h.heatFactor.Update(dt, 1)
	} else {
		h.heatFactor.SetTimeConstant(h.coolTimeConstant)
		h.heatFactor.Update(dt, 0)
	}

	if h.damageGate.Update(dt, h.IsOverheating()) {
		h.damaged = true
	}
}

func (h *HeatingProperties) IsOverheating() bool { return h.heatFactor.Output() > 0.5 }

func (h *HeatingProperties) IsDamaged() bool { return h.damaged }

// OverheatRatio is 0 up to the overheat point and reaches 1 at full heat.
func (h *HeatingProperties) OverheatRatio() float64 {
	return dynamo.Clamp((h.heatFactor.Output()-0.5)/0.5, 0, 1)
}

func (h *HeatingProperties) HeatFactor() float64 { return h.heatFactor.Output() }

const (
	fluidHeatTimeConstantMean = 40.
	fluidHeatTimeConstantStd  = 10.
	fluidCoolTimeConstant     = 180.
	fluidDamageTimeConstant   = 180.
)

// Fluid is the circuit's hydraulic fluid.
type Fluid struct {
	bulkModulus float64
	heat        *HeatingProperties
}

func NewFluid(bulkModulus float64, rnd *dynamo.Random) *Fluid {
	return &Fluid{
		bulkModulus: bulkModulus,
		heat: NewHeatingProperties(
			rnd.NormalFloor(fluidHeatTimeConstantMean, fluidHeatTimeConstantStd, 10),
			fluidCoolTimeConstant,
			fluidDamageTimeConstant,
		),
	}
}

func (f *Fluid) BulkModulus() float64 { return f.bulkModulus }

// Update heats the fluid while any element pushing fluid through it is
// overheating.
func (f *Fluid) Update(dt float64, heating bool) {
	f.heat.Update(dt, heating)
}

func (f *Fluid) IsOverheating() bool    { return f.heat.IsOverheating() }
func (f *Fluid) IsDamaged() bool        { return f.heat.IsDamaged() }
func (f *Fluid) OverheatRatio() float64 { return f.heat.OverheatRatio() }
