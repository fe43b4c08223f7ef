package sim

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydraulic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// decayPlant relaxes a single value toward zero, x' = -x.
type decayPlant struct {
	x     float64
	calls int
	fail  int
}

var errPlant = errors.New("plant failed")

func (p *decayPlant) Step(t, dt float64) error {
	p.calls++
	if p.fail > 0 && p.calls == p.fail {
		return errPlant
	}
	p.x -= p.x * dt
	return nil
}

func (p *decayPlant) Write(w hydraulic.Writer) {
	w.WriteFloat("X", p.x)
	w.WriteBool("POSITIVE", p.x > 0)
}

func TestRunnerRun(t *testing.T) {
	plant := &decayPlant{x: 1}
	runner := New(plant)

	result, err := runner.Run(context.Background(), Config{FrameDt: 0.01, Duration: 1})
	require.NoError(t, err)

	assert.Equal(t, 100, result.StepsTaken)
	assert.Len(t, result.Times, 101)
	assert.Len(t, result.Series["X"], 101)

	last, ok := result.Last("X")
	require.True(t, ok)
	assert.InDelta(t, math.Exp(-1), last, 0.01)
}

func TestRunnerInvalidConfig(t *testing.T) {
	runner := New(&decayPlant{x: 1})

	tests := []struct {
		name string
		cfg  Config
	}{
		{"zero dt", Config{FrameDt: 0, Duration: 1.0}},
		{"negative dt", Config{FrameDt: -0.1, Duration: 1.0}},
		{"zero duration", Config{FrameDt: 0.1, Duration: 0}},
		{"negative duration", Config{FrameDt: 0.1, Duration: -1.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runner.Run(context.Background(), tt.cfg)
			assert.Error(t, err)
		})
	}
}

func TestRunnerRecordFilter(t *testing.T) {
	runner := New(&decayPlant{x: 1})

	result, err := runner.Run(context.Background(), Config{FrameDt: 0.1, Duration: 1, Record: []string{"X"}})
	require.NoError(t, err)

	assert.Contains(t, result.Series, "X")
	assert.NotContains(t, result.Series, "POSITIVE")
}

type meanMetric struct {
	count int
	sum   float64
}

func (m *meanMetric) Name() string { return "mean_x" }
func (m *meanMetric) Observe(f Frame) {
	m.count++
	m.sum += f.Values["X"]
}
func (m *meanMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}
func (m *meanMetric) Reset() {
	m.count = 0
	m.sum = 0
}

func TestRunnerMetricsAndObservers(t *testing.T) {
	runner := New(&decayPlant{x: 1})

	metric := &meanMetric{}
	runner.AddMetric(metric)

	frames := 0
	runner.AddObserver(ObserverFunc(func(f Frame) { frames++ }))

	result, err := runner.Run(context.Background(), Config{FrameDt: 0.1, Duration: 1})
	require.NoError(t, err)

	assert.Contains(t, result.Metrics, "mean_x")
	assert.Equal(t, 11, metric.count)
	assert.Equal(t, 11, frames)
	assert.Greater(t, result.Metrics["mean_x"], 0.0)
}

func TestRunnerPlantError(t *testing.T) {
	runner := New(&decayPlant{x: 1, fail: 3})

	_, err := runner.Run(context.Background(), Config{FrameDt: 0.1, Duration: 1})
	require.Error(t, err)

	var simErr *dynamo.SimulationError
	require.ErrorAs(t, err, &simErr)
	assert.Equal(t, 2, simErr.Step)
	assert.ErrorIs(t, err, errPlant)
}

type nanPlant struct{}

func (nanPlant) Step(t, dt float64) error { return nil }
func (nanPlant) Write(w hydraulic.Writer) { w.WriteFloat("BAD", math.NaN()) }

func TestRunnerValidateState(t *testing.T) {
	_, err := New(nanPlant{}).Run(context.Background(), Config{FrameDt: 0.1, Duration: 1, ValidateState: true})
	assert.ErrorIs(t, err, dynamo.ErrInvalidState)
}

func TestRunnerCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := New(&decayPlant{x: 1}).Run(ctx, Config{FrameDt: 0.1, Duration: 1})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, result.StepsTaken)
}

func TestRunWithCallbackStops(t *testing.T) {
	plant := &decayPlant{x: 1}
	err := New(plant).RunWithCallback(context.Background(), Config{FrameDt: 0.1}, func(f Frame) bool {
		return f.Index < 5
	})
	require.NoError(t, err)
	assert.Equal(t, 5, plant.calls)
}

func TestRunWithCallbackNotifiesObservers(t *testing.T) {
	runner := New(&decayPlant{x: 1})
	var times []float64
	runner.AddObserver(ObserverFunc(func(f Frame) { times = append(times, f.Time) }))

	require.NoError(t, runner.RunWithCallback(context.Background(), Config{FrameDt: 0.5, Duration: 2}, nil))
	assert.InDeltaSlice(t, []float64{0.5, 1, 1.5, 2}, times, 1e-9)
}

func TestRunRealtimeCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	frames := 0
	err := New(&decayPlant{x: 1}).RunRealtime(ctx, Config{FrameDt: 0.01}, func(f Frame) bool {
		frames++
		return true
	})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Positive(t, frames)
}
