package metrics

import "github.com/san-kum/hydrosim/internal/sim"

// Availability is the fraction of frames in which a series is at or above
// a threshold, for example a circuit above its pressure switch setting.
type Availability struct {
	name      string
	series    string
	threshold float64
	available int
	samples   int
}

func NewAvailability(name, series string, threshold float64) *Availability {
	return &Availability{
		name:      name,
		series:    series,
		threshold: threshold,
	}
}

func (a *Availability) Name() string {
	return a.name
}

func (a *Availability) Observe(f sim.Frame) {
	v, ok := f.Values[a.series]
	if !ok {
		return
	}
	a.samples++
	if v >= a.threshold {
		a.available++
	}
}

func (a *Availability) Value() float64 {
	if a.samples == 0 {
		return 0
	}
	return float64(a.available) / float64(a.samples)
}

func (a *Availability) Reset() {
	a.available = 0
	a.samples = 0
}
