package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/sim"
)

// MeanAbs averages the magnitude of a series over the run.
type MeanAbs struct {
	name    string
	series  string
	sum     float64
	samples int
}

func NewMeanAbs(name, series string) *MeanAbs {
	return &MeanAbs{
		name:   name,
		series: series,
	}
}

func (m *MeanAbs) Name() string {
	return m.name
}

func (m *MeanAbs) Observe(f sim.Frame) {
	v, ok := f.Values[m.series]
	if !ok {
		return
	}
	m.sum += math.Abs(v)
	m.samples++
}

func (m *MeanAbs) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanAbs) Reset() {
	m.sum = 0
	m.samples = 0
}
