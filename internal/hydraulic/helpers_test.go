package hydraulic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const testDt = 0.033

type testBuses map[BusID]bool

func (b testBuses) IsPowered(bus BusID) bool { return b[bus] }

func (b testBuses) Potential(bus BusID) float64 {
	if b[bus] {
		return 115
	}
	return 0
}

func allPowered() testBuses {
	return testBuses{
		DefaultFireValveBus: true,
		DefaultLeakValveBus: true,
		"AC_1":              true,
		"AC_2":              true,
	}
}

type fixedPressure float64

func (p fixedPressure) Pressure() float64                        { return float64(p) }
func (p fixedPressure) PressureDownstreamLeakValve() float64     { return float64(p) }
func (p fixedPressure) PressureDownstreamPriorityValve() float64 { return float64(p) }
func (p fixedPressure) IsPressureSwitchPressurised() bool        { return p > 1500 }

type hotFluid bool

func (h hotFluid) IsOverheating() bool { return bool(h) }
func (h hotFluid) IsDamaged() bool     { return false }

type enablePTU bool

func (e enablePTU) ShouldEnable() bool { return bool(e) }

type deployRAT bool

func (d deployRAT) ShouldDeploy() bool { return bool(d) }

type countingActuator struct {
	used, returned float64
	resets         int
}

func (a *countingActuator) UsedVolume() float64     { return a.used }
func (a *countingActuator) ReturnedVolume() float64 { return a.returned }
func (a *countingActuator) ResetVolumes()           { a.resets++ }

func newTestReservoir(t *testing.T, color Color, capacity, gaugeable, level float64) *Reservoir {
	t.Helper()
	r, err := NewReservoir(ReservoirConfig{
		Color:             color,
		MaxCapacity:       capacity,
		MaxGaugeable:      gaugeable,
		InitialLevel:      level,
		LowLevelThreshold: 0.1 * capacity,
		AirSwitches:       []*PressureSwitch{NewPressureSwitch(23.45, 20.55, Relative)},
	}, dynamo.NewRandom(7))
	require.NoError(t, err)
	return r
}

func testCircuitConfig(color Color, pumps int) CircuitConfig {
	return CircuitConfig{
		Color:                 color,
		PumpSections:          pumps,
		PrimingRatio:          1,
		HighPressureMaxVolume: 10,
		SystemSwitchLow:       1450,
		SystemSwitchHigh:      1900,
		PumpSwitchLow:         1300,
		PumpSwitchHigh:        1800,
		TargetPressure:        3000,
		PriorityValveClosed:   1500,
		PriorityValveOpen:     2000,
		AccumulatorPrecharge:  1885,
		AccumulatorVolume:     0.264,
	}
}

func newTestCircuit(t *testing.T, cfg CircuitConfig) *Circuit {
	t.Helper()
	c, err := NewCircuit(cfg, newTestReservoir(t, cfg.Color, 5, 4, 3), dynamo.NewRandom(11))
	require.NoError(t, err)
	c.ReceivePower(allPowered())
	return c
}

func runFor(seconds float64, fn func(step StepContext)) {
	step := NewStepContext(testDt)
	for elapsed := 0.0; elapsed < seconds-1e-9; elapsed += testDt {
		fn(step)
	}
}
