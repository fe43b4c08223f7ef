package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/hydraulic"
	"github.com/san-kum/hydrosim/internal/sim"
)

func testConfig(scenario string, duration float64) Config {
	return Config{
		Scenario: scenario,
		Aircraft: aircraft.DefaultConfig(),
		FrameDt:  0.05,
		Duration: duration,
		Seed:     7,
	}
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	names := reg.List()
	assert.Contains(t, names, "engine_start")
	assert.Contains(t, names, "rat_deploy")
	assert.IsIncreasing(t, names)

	_, err := reg.Get("barrel_roll")
	assert.ErrorIs(t, err, ErrUnknownScenario)

	reg.Register(Scenario{Name: "custom", Duration: 1})
	s, err := reg.Get("custom")
	require.NoError(t, err)
	assert.Equal(t, 1.0, s.Duration)
}

func TestExperiment_RunBeforeSetup(t *testing.T) {
	e := New(testConfig("cold_dark", 1))
	_, err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrNotSetup)
}

func TestExperiment_UnknownScenario(t *testing.T) {
	e := New(testConfig("nope", 1))
	assert.ErrorIs(t, e.Setup(NewRegistry(), nil), ErrUnknownScenario)
}

func TestExperiment_InvalidAircraft(t *testing.T) {
	cfg := testConfig("cold_dark", 1)
	cfg.Aircraft.PhysicsStep = -1
	e := New(cfg)
	assert.ErrorIs(t, e.Setup(NewRegistry(), nil), aircraft.ErrInvalidConfig)
}

func TestExperiment_EngineStart(t *testing.T) {
	e := New(testConfig("engine_start", 30))
	require.NoError(t, e.Setup(NewRegistry(), nil))

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 600, result.StepsTaken)

	green, ok := result.Last("HYD_GREEN_SYSTEM_1_SECTION_PRESSURE")
	require.True(t, ok)
	assert.Greater(t, green, 2500.0)

	n2, _ := result.Last("ENGINE_2_N2")
	assert.Greater(t, n2, 50.0)
}

func TestExperiment_ScenarioDurationDefault(t *testing.T) {
	cfg := testConfig("cold_dark", 0)
	cfg.Record = []string{"HYD_BLUE_SYSTEM_1_SECTION_PRESSURE"}
	e := New(cfg)
	require.NoError(t, e.Setup(NewRegistry(), nil))

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 30, result.Times[len(result.Times)-1], 1e-6)
	assert.Len(t, result.Series, 1)
}

func TestExperiment_InitialFailures(t *testing.T) {
	leak := hydraulic.Failure{Kind: hydraulic.ReservoirLeak, Target: "BLUE"}
	cfg := testConfig("cold_dark", 1)
	cfg.Failures = []hydraulic.Failure{leak}

	e := New(cfg)
	require.NoError(t, e.Setup(NewRegistry(), nil))
	assert.True(t, e.Aircraft().Failures().IsActive(leak))
}

func TestExperiment_ScriptRunsEachFrame(t *testing.T) {
	reg := NewRegistry()
	var seen []float64
	reg.Register(Scenario{
		Name:     "probe",
		Duration: 0.2,
		Script:   func(_ *aircraft.Aircraft, t float64) { seen = append(seen, t) },
	})

	e := New(testConfig("probe", 0))
	require.NoError(t, e.Setup(reg, nil))
	_, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Len(t, seen, 4)
	assert.Equal(t, 0.0, seen[0])
}

func TestExperiment_RunWithCallbackStops(t *testing.T) {
	e := New(testConfig("cold_dark", 0))
	require.NoError(t, e.Setup(NewRegistry(), nil))

	frames := 0
	err := e.RunWithCallback(context.Background(), func(f sim.Frame) bool {
		frames++
		return f.Index < 10
	})
	require.NoError(t, err)
	assert.Equal(t, 10, frames)
}
