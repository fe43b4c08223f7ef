package experiment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/hydraulic"
	"github.com/san-kum/hydrosim/internal/sim"
)

type Config struct {
	Scenario string
	Aircraft aircraft.Config
	FrameDt  float64
	// Duration overrides the scenario length when positive.
	Duration float64
	Seed     int64
	Failures []hydraulic.Failure
	Record   []string
}

// Experiment binds one scenario to a freshly built aircraft.
type Experiment struct {
	cfg      Config
	scenario Scenario
	plant    *aircraft.Aircraft
	runner   *sim.Runner
	logger   *slog.Logger
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) { e.logger = l }
}

func New(cfg Config, opts ...Option) *Experiment {
	e := &Experiment{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Setup builds the aircraft, applies the initial failures and runs the
// scenario's setup hook.
func (e *Experiment) Setup(reg *Registry, metrics []sim.Metric) error {
	scenario, err := reg.Get(e.cfg.Scenario)
	if err != nil {
		return err
	}

	plant, err := aircraft.New(e.cfg.Aircraft, e.cfg.Seed)
	if err != nil {
		return fmt.Errorf("failed to build aircraft: %w", err)
	}
	for _, f := range e.cfg.Failures {
		plant.SetFailure(f, true)
	}
	if scenario.Setup != nil {
		plant.Do(scenario.Setup)
	}

	e.scenario = scenario
	e.plant = plant
	e.runner = sim.New(&scriptedPlant{aircraft: plant, script: scenario.Script}, sim.WithLogger(e.logger))
	for _, m := range metrics {
		e.runner.AddMetric(m)
	}

	e.logger.Info("experiment ready",
		"scenario", scenario.Name,
		"seed", e.cfg.Seed,
		"failures", len(e.cfg.Failures))
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.runner == nil {
		return nil, ErrNotSetup
	}
	return e.runner.Run(ctx, e.simConfig())
}

// RunRealtime paces the scenario against the wall clock. A zero duration
// runs until ctx is done.
func (e *Experiment) RunRealtime(ctx context.Context, callback func(sim.Frame) bool) error {
	if e.runner == nil {
		return ErrNotSetup
	}
	cfg := e.simConfig()
	if e.cfg.Duration == 0 {
		cfg.Duration = 0
	}
	return e.runner.RunRealtime(ctx, cfg, callback)
}

// RunWithCallback steps as fast as possible until the callback stops it.
func (e *Experiment) RunWithCallback(ctx context.Context, callback func(sim.Frame) bool) error {
	if e.runner == nil {
		return ErrNotSetup
	}
	cfg := e.simConfig()
	cfg.Duration = 0
	return e.runner.RunWithCallback(ctx, cfg, callback)
}

func (e *Experiment) simConfig() sim.Config {
	duration := e.scenario.Duration
	if e.cfg.Duration > 0 {
		duration = e.cfg.Duration
	}
	return sim.Config{
		FrameDt:       e.cfg.FrameDt,
		Duration:      duration,
		Record:        e.cfg.Record,
		ValidateState: true,
	}
}

func (e *Experiment) Aircraft() *aircraft.Aircraft { return e.plant }
func (e *Experiment) Runner() *sim.Runner          { return e.runner }
func (e *Experiment) Scenario() Scenario           { return e.scenario }

// Plant returns the scripted aircraft for callers that advance frames
// themselves instead of going through the runner.
func (e *Experiment) Plant() sim.Plant {
	if e.plant == nil {
		return nil
	}
	return &scriptedPlant{aircraft: e.plant, script: e.scenario.Script}
}

// scriptedPlant runs the scenario script before each aircraft step.
type scriptedPlant struct {
	aircraft *aircraft.Aircraft
	script   func(a *aircraft.Aircraft, t float64)
}

func (p *scriptedPlant) Step(t, frameDt float64) error {
	if p.script != nil {
		p.aircraft.Do(func(a *aircraft.Aircraft) { p.script(a, t) })
	}
	return p.aircraft.Step(t, frameDt)
}

func (p *scriptedPlant) Write(w hydraulic.Writer) { p.aircraft.Write(w) }
