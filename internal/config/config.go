package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/experiment"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

const (
	DefaultScenario      = "engine_start"
	DefaultDt            = 0.05
	DefaultTelemetryAddr = ":8080"
	DefaultPushInterval  = 0.2
)

var ErrInvalidConfig = errors.New("config: invalid")

type Config struct {
	Scenario string   `yaml:"scenario"`
	Dt       float64  `yaml:"dt"`
	// Duration of zero keeps the scenario's own length.
	Duration float64  `yaml:"duration"`
	Seed     int64    `yaml:"seed"`
	Failures []string `yaml:"failures,omitempty"`
	Record   []string `yaml:"record,omitempty"`

	Aircraft  aircraft.Config `yaml:"aircraft"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type TelemetryConfig struct {
	Addr string `yaml:"addr"`

	// PushInterval is the websocket snapshot period in seconds.
	PushInterval float64 `yaml:"push_interval"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario: DefaultScenario,
		Dt:       DefaultDt,
		Aircraft: aircraft.DefaultConfig(),
		Telemetry: TelemetryConfig{
			Addr:         DefaultTelemetryAddr,
			PushInterval: DefaultPushInterval,
		},
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("%w: dt must be positive, got %f", ErrInvalidConfig, c.Dt)
	}
	if c.Duration < 0 {
		return fmt.Errorf("%w: duration must not be negative", ErrInvalidConfig)
	}
	if c.Telemetry.PushInterval <= 0 {
		return fmt.Errorf("%w: telemetry push interval must be positive", ErrInvalidConfig)
	}
	if _, err := c.ParseFailures(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	if err := c.Aircraft.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func (c *Config) ParseFailures() ([]hydraulic.Failure, error) {
	out := make([]hydraulic.Failure, 0, len(c.Failures))
	for _, s := range c.Failures {
		f, err := hydraulic.ParseFailure(s)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func (c *Config) Experiment() (experiment.Config, error) {
	failures, err := c.ParseFailures()
	if err != nil {
		return experiment.Config{}, err
	}
	return experiment.Config{
		Scenario: c.Scenario,
		Aircraft: c.Aircraft,
		FrameDt:  c.Dt,
		Duration: c.Duration,
		Seed:     c.Seed,
		Failures: failures,
		Record:   c.Record,
	}, nil
}
