package config

import (
	"sort"

	"github.com/san-kum/hydrosim/internal/hydraulic"
)

var Presets = map[string]map[string]func() *Config{
	"a320": {
		"default": DefaultConfig,
		// Cold soaked: low reservoir pressurisation and a sluggish PTU.
		"cold": func() *Config {
			cfg := DefaultConfig()
			cfg.Aircraft.ReservoirAirPressure = 35
			cfg.Aircraft.PTU.Efficiency = 0.75
			return cfg
		},
		"leaky": func() *Config {
			cfg := DefaultConfig()
			cfg.Aircraft.Green.ReservoirLevel = 2.4
			cfg.Aircraft.Yellow.ReservoirLevel = 2.2
			cfg.Failures = []string{
				hydraulic.Failure{Kind: hydraulic.ReservoirReturnLeak, Target: string(hydraulic.Green)}.String(),
			}
			return cfg
		},
		"unprimed": func() *Config {
			cfg := DefaultConfig()
			cfg.Aircraft.Green.PrimingRatio = 0.5
			cfg.Aircraft.Blue.PrimingRatio = 0.5
			cfg.Aircraft.Yellow.PrimingRatio = 0.5
			return cfg
		},
	},
	"scenario": {
		"ptu": func() *Config {
			cfg := DefaultConfig()
			cfg.Scenario = "ptu_bark"
			cfg.Dt = 0.02
			return cfg
		},
		"emergency": func() *Config {
			cfg := DefaultConfig()
			cfg.Scenario = "rat_deploy"
			return cfg
		},
	},
}

// GetPreset returns a fresh copy of the named preset or nil.
func GetPreset(family, preset string) *Config {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	fn, ok := familyPresets[preset]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets(family string) []string {
	familyPresets, ok := Presets[family]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(familyPresets))
	for name := range familyPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func ListFamilies() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
