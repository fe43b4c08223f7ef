package sim

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

// Runner drives a Plant frame by frame. Cancellation is checked between
// frames only.
type Runner struct {
	plant     Plant
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

type Option func(*Runner)

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.logger = l }
}

func New(plant Plant, opts ...Option) *Runner {
	r := &Runner{
		plant:     plant,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) AddMetric(m Metric)     { r.metrics = append(r.metrics, m) }
func (r *Runner) AddObserver(o Observer) { r.observers = append(r.observers, o) }

func (r *Runner) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	frames := int(math.Round(cfg.Duration / cfg.FrameDt))
	result := &Result{
		Times:   make([]float64, 0, frames+1),
		Series:  make(map[string][]float64),
		Metrics: make(map[string]float64),
	}
	keep := recordFilter(cfg.Record)

	for _, m := range r.metrics {
		m.Reset()
	}

	r.logger.Debug("run started", "frames", frames, "frame_dt", cfg.FrameDt)

	record := func(f Frame) {
		result.Times = append(result.Times, f.Time)
		for name, v := range f.Values {
			if keep != nil && !keep[name] {
				continue
			}
			result.Series[name] = append(result.Series[name], v)
		}
		for _, m := range r.metrics {
			m.Observe(f)
		}
		for _, obs := range r.observers {
			obs.OnFrame(f)
		}
	}

	record(r.snapshot(0, 0))

	t := 0.0
	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			r.logger.Info("run canceled", "time", t, "frames", result.StepsTaken)
			return result, ctx.Err()
		default:
		}

		if err := r.plant.Step(t, cfg.FrameDt); err != nil {
			return result, &dynamo.SimulationError{Step: i, Time: t, Wrapped: err}
		}
		t += cfg.FrameDt
		result.StepsTaken++

		f := r.snapshot(i+1, t)
		if cfg.ValidateState {
			if name, ok := invalidValue(f.Values); ok {
				return result, &dynamo.SimulationError{
					Step:    i,
					Time:    t,
					Wrapped: fmt.Errorf("%w: %s", dynamo.ErrInvalidState, name),
				}
			}
		}
		record(f)
	}

	for _, m := range r.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	r.logger.Debug("run finished", "frames", result.StepsTaken, "sim_time", t)
	return result, nil
}

// RunWithCallback steps until the duration elapses or the callback returns
// false. A zero duration runs until the callback stops it. Observers see
// every frame, the callback may be nil.
func (r *Runner) RunWithCallback(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if cfg.FrameDt <= 0 {
		return fmt.Errorf("frame dt must be positive, got %f", cfg.FrameDt)
	}

	t := 0.0
	for i := 0; cfg.Duration <= 0 || t < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := r.plant.Step(t, cfg.FrameDt); err != nil {
			return &dynamo.SimulationError{Step: i, Time: t, Wrapped: err}
		}
		t += cfg.FrameDt

		if !r.emit(r.snapshot(i+1, t), callback) {
			return nil
		}
	}
	return nil
}

// RunRealtime paces frames against the wall clock. It returns when ctx is
// done, the duration elapses, or the callback returns false.
func (r *Runner) RunRealtime(ctx context.Context, cfg Config, callback func(Frame) bool) error {
	if cfg.FrameDt <= 0 {
		return fmt.Errorf("frame dt must be positive, got %f", cfg.FrameDt)
	}

	ticker := time.NewTicker(time.Duration(cfg.FrameDt * float64(time.Second)))
	defer ticker.Stop()

	r.logger.Info("realtime run started", "frame_dt", cfg.FrameDt)

	t := 0.0
	for i := 0; cfg.Duration <= 0 || t < cfg.Duration; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if err := r.plant.Step(t, cfg.FrameDt); err != nil {
			return &dynamo.SimulationError{Step: i, Time: t, Wrapped: err}
		}
		t += cfg.FrameDt

		if !r.emit(r.snapshot(i+1, t), callback) {
			return nil
		}
	}
	return nil
}

// emit hands a frame to the observers, then the callback.
func (r *Runner) emit(f Frame, callback func(Frame) bool) bool {
	for _, obs := range r.observers {
		obs.OnFrame(f)
	}
	return callback == nil || callback(f)
}

func (r *Runner) snapshot(index int, t float64) Frame {
	values := make(hydraulic.MapWriter)
	r.plant.Write(values)
	return Frame{Index: index, Time: t, Values: values}
}

func validateConfig(cfg Config) error {
	if cfg.FrameDt <= 0 {
		return fmt.Errorf("frame dt must be positive, got %f", cfg.FrameDt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}

func recordFilter(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}
	return keep
}

func invalidValue(values hydraulic.MapWriter) (string, bool) {
	names := make([]string, 0, len(values))
	for n, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			names = append(names, n)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}
