package hydraulic

import "github.com/san-kum/hydrosim/internal/dynamo"

const defaultZeroEfficiencySpeed = 75.

var (
	airPressureBreakpoints = []float64{0, 5, 10, 15, 20, 30, 50, 70, 100}
	cavitationRatio        = []float64{0, 0.1, 0.6, 0.8, 0.9, 1, 1, 1, 1}
)

// PumpCharacteristics maps section pressure to maximum displacement and
// reservoir air pressure to pumping efficiency.
type PumpCharacteristics struct {
	Name                string
	displacement        *dynamo.Table
	cavitation          *dynamo.Table
	zeroEfficiencySpeed float64
	regulatedSpeed      float64
}

// NewPumpCharacteristics builds a custom pump from a displacement map
// (psi to in3) and an optional regulated speed in rpm.
func NewPumpCharacteristics(name string, pressures, displacements []float64, regulatedSpeed float64) (*PumpCharacteristics, error) {
	disp, err := dynamo.NewTable(pressures, displacements)
	if err != nil {
		return nil, err
	}
	return &PumpCharacteristics{
		Name:                name,
		displacement:        disp,
		cavitation:          dynamo.MustTable(airPressureBreakpoints, cavitationRatio),
		zeroEfficiencySpeed: defaultZeroEfficiencySpeed,
		regulatedSpeed:      regulatedSpeed,
	}, nil
}

func mustCharacteristics(name string, pressures, displacements []float64, regulatedSpeed float64) *PumpCharacteristics {
	c, err := NewPumpCharacteristics(name, pressures, displacements, regulatedSpeed)
	if err != nil {
		panic(err)
	}
	return c
}

func A320EngineDrivenPump() *PumpCharacteristics {
	return mustCharacteristics("a320_edp",
		[]float64{0, 500, 1000, 1500, 2800, 2910, 3025, 3050, 3500},
		[]float64{2.4, 2.4, 2.4, 2.4, 2.4, 2.4, 0, 0, 0},
		0)
}

func A320ElectricPump() *PumpCharacteristics {
	return mustCharacteristics("a320_epump",
		[]float64{0, 500, 1000, 1500, 2175, 2850, 3080, 3100, 3500},
		[]float64{0.263, 0.263, 0.263, 0.263, 0.263, 0.2, 0, 0, 0},
		7600)
}

func A320RamAirTurbine() *PumpCharacteristics {
	return mustCharacteristics("a320_rat",
		[]float64{0, 500, 1000, 1500, 2100, 2300, 2600, 2700, 3500},
		[]float64{0.5, 0.8, 1.15, 1.15, 1.15, 0.8, 0.3, 0, 0},
		0)
}

func A380EngineDrivenPump() *PumpCharacteristics {
	return mustCharacteristics("a380_edp",
		[]float64{0, 500, 1000, 2900, 4790, 5150, 5225, 5350, 5500},
		[]float64{2.8, 2.8, 2.8, 2.8, 2.6, 0, 0, 0, 0},
		0)
}

func A380ElectricPump() *PumpCharacteristics {
	return mustCharacteristics("a380_epump",
		[]float64{0, 2000, 3000, 4000, 5000, 5100, 5200, 5300, 5350},
		[]float64{0.294525, 0.28875, 0.2858625, 0.231, 0.17325, 0, 0, 0, 0},
		8000)
}

// A380AuxiliaryPump delivers about 0.3 gpm at its nominal 1200 rpm.
func A380AuxiliaryPump() *PumpCharacteristics {
	return mustCharacteristics("a380_aux",
		[]float64{0, 50, 3000, 4000, 4980, 5100, 5200, 5300, 5350},
		[]float64{0.06, 0.06, 0.06, 0.06, 0.06, 0, 0, 0, 0},
		1200)
}

// CharacteristicsByName resolves the names used in configuration files.
func CharacteristicsByName(name string) (*PumpCharacteristics, bool) {
	switch name {
	case "a320_edp":
		return A320EngineDrivenPump(), true
	case "a320_epump":
		return A320ElectricPump(), true
	case "a320_rat":
		return A320RamAirTurbine(), true
	case "a380_edp":
		return A380EngineDrivenPump(), true
	case "a380_epump":
		return A380ElectricPump(), true
	case "a380_aux":
		return A380AuxiliaryPump(), true
	}
	return nil, false
}

func (c *PumpCharacteristics) Displacement(pressure float64) float64 {
	return c.displacement.Lookup(pressure)
}

// CavitationEfficiency derates pumping when reservoir air pressure is low
// or the fluid is hot.
func (c *PumpCharacteristics) CavitationEfficiency(airPressure, overheatRatio float64) float64 {
	return (1 - overheatRatio) * c.cavitation.Lookup(airPressure)
}

func (c *PumpCharacteristics) RegulatedSpeed() float64 { return c.regulatedSpeed }

func (c *PumpCharacteristics) ZeroEfficiencySpeed() float64 { return c.zeroEfficiencySpeed }
