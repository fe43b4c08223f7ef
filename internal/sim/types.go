package sim

import (
	"sort"

	"github.com/san-kum/hydrosim/internal/hydraulic"
)

// Plant is advanced one frame at a time by the Runner. Frames may be longer
// than the plant's own physics step.
type Plant interface {
	Step(t, frameDt float64) error
	Write(w hydraulic.Writer)
}

// Frame is the telemetry written by the plant at the end of one frame.
type Frame struct {
	Index  int
	Time   float64
	Values hydraulic.MapWriter
}

type Metric interface {
	Name() string
	Observe(f Frame)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(f Frame)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(f Frame)

func (fn ObserverFunc) OnFrame(f Frame) { fn(f) }

type Config struct {
	FrameDt  float64
	Duration float64
	// Record limits the series kept in the result. Empty keeps everything.
	Record []string
	// ValidateState stops the run on the first NaN or Inf telemetry value.
	ValidateState bool
}

type Result struct {
	Times      []float64
	Series     map[string][]float64
	Metrics    map[string]float64
	StepsTaken int
}

// Last returns the final recorded value of a series.
func (r *Result) Last(name string) (float64, bool) {
	s, ok := r.Series[name]
	if !ok || len(s) == 0 {
		return 0, false
	}
	return s[len(s)-1], true
}

// Names lists the recorded series in name order.
func (r *Result) Names() []string {
	names := make([]string, 0, len(r.Series))
	for n := range r.Series {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
