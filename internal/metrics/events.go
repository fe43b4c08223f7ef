package metrics

import (
	"math"

	"github.com/san-kum/hydrosim/internal/sim"
)

// TimeToThreshold records the first frame time at which a series reaches
// a threshold. It reads -1 when the threshold is never reached.
type TimeToThreshold struct {
	name      string
	series    string
	threshold float64
	at        float64
	reached   bool
}

func NewTimeToThreshold(name, series string, threshold float64) *TimeToThreshold {
	return &TimeToThreshold{name: name, series: series, threshold: threshold}
}

func (m *TimeToThreshold) Name() string { return m.name }

func (m *TimeToThreshold) Observe(f sim.Frame) {
	if m.reached {
		return
	}
	if v, ok := f.Values[m.series]; ok && v >= m.threshold {
		m.at = f.Time
		m.reached = true
	}
}

func (m *TimeToThreshold) Value() float64 {
	if !m.reached {
		return -1
	}
	return m.at
}

func (m *TimeToThreshold) Reset() {
	m.at = 0
	m.reached = false
}

// EdgeCount counts rising edges of a series through zero, such as PTU
// barks or pump low-pressure warnings.
type EdgeCount struct {
	name   string
	series string
	high   bool
	count  int
}

func NewEdgeCount(name, series string) *EdgeCount {
	return &EdgeCount{name: name, series: series}
}

func (m *EdgeCount) Name() string { return m.name }

func (m *EdgeCount) Observe(f sim.Frame) {
	v, ok := f.Values[m.series]
	if !ok {
		return
	}
	high := v > 0
	if high && !m.high {
		m.count++
	}
	m.high = high
}

func (m *EdgeCount) Value() float64 { return float64(m.count) }

func (m *EdgeCount) Reset() {
	m.high = false
	m.count = 0
}

// Peak tracks the maximum (or minimum) of a series.
type Peak struct {
	name   string
	series string
	min    bool
	value  float64
}

func NewMax(name, series string) *Peak {
	return &Peak{name: name, series: series, value: math.Inf(-1)}
}

func NewMin(name, series string) *Peak {
	return &Peak{name: name, series: series, min: true, value: math.Inf(1)}
}

func (m *Peak) Name() string { return m.name }

func (m *Peak) Observe(f sim.Frame) {
	v, ok := f.Values[m.series]
	if !ok {
		return
	}
	if m.min {
		m.value = math.Min(m.value, v)
	} else {
		m.value = math.Max(m.value, v)
	}
}

// Value is zero when the series never appeared.
func (m *Peak) Value() float64 {
	if math.IsInf(m.value, 0) {
		return 0
	}
	return m.value
}

func (m *Peak) Reset() {
	if m.min {
		m.value = math.Inf(1)
	} else {
		m.value = math.Inf(-1)
	}
}
