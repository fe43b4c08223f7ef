package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Scenario != DefaultScenario {
		t.Errorf("expected scenario %s, got %s", DefaultScenario, cfg.Scenario)
	}
	if cfg.Dt <= 0 {
		t.Error("dt should be positive")
	}
	require.NoError(t, cfg.Validate())
}

func TestLoad_OverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := []byte(`
scenario: rat_deploy
seed: 42
failures: [reservoir_leak:blue]
aircraft:
  ptu:
    efficiency: 0.7
`)
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "rat_deploy", cfg.Scenario)
	assert.Equal(t, int64(42), cfg.Seed)
	assert.Equal(t, DefaultDt, cfg.Dt)
	assert.Equal(t, 0.7, cfg.Aircraft.PTU.Efficiency)
	assert.Equal(t, aircraft.DefaultConfig().Green, cfg.Aircraft.Green)

	failures, err := cfg.ParseFailures()
	require.NoError(t, err)
	assert.Equal(t, []hydraulic.Failure{{Kind: hydraulic.ReservoirLeak, Target: "BLUE"}}, failures)
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("failures: [melt:GREEN]\n"), 0644))

	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.ErrorIs(t, err, hydraulic.ErrUnknownFailure)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cfg.yaml")
	cfg := GetPreset("a320", "cold")
	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"zero dt", func(c *Config) { c.Dt = 0 }},
		{"negative duration", func(c *Config) { c.Duration = -1 }},
		{"push interval", func(c *Config) { c.Telemetry.PushInterval = 0 }},
		{"aircraft", func(c *Config) { c.Aircraft.PTU.Efficiency = 2 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)
		})
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("a320", "cold")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Aircraft.PTU.Efficiency != 0.75 {
		t.Errorf("expected ptu efficiency 0.75, got %f", cfg.Aircraft.PTU.Efficiency)
	}

	// Presets are fresh copies.
	cfg.Aircraft.PTU.Efficiency = 0.1
	assert.Equal(t, 0.75, GetPreset("a320", "cold").Aircraft.PTU.Efficiency)
}

func TestGetPreset_NotFound(t *testing.T) {
	if GetPreset("a320", "nonexistent") != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if GetPreset("nonexistent", "default") != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestPresetsValidate(t *testing.T) {
	for _, family := range ListFamilies() {
		for _, name := range ListPresets(family) {
			t.Run(family+"/"+name, func(t *testing.T) {
				assert.NoError(t, GetPreset(family, name).Validate())
			})
		}
	}
	assert.Nil(t, ListPresets("nonexistent"))
}

func TestExperimentConfig(t *testing.T) {
	cfg := GetPreset("a320", "leaky")
	exp, err := cfg.Experiment()
	require.NoError(t, err)
	assert.Equal(t, cfg.Scenario, exp.Scenario)
	assert.Equal(t, cfg.Dt, exp.FrameDt)
	require.Len(t, exp.Failures, 1)
	assert.Equal(t, hydraulic.ReservoirReturnLeak, exp.Failures[0].Kind)
}
