package metrics

import (
	"github.com/san-kum/hydrosim/internal/sim"
)

// Drift is the largest drop of a series below its first value. On a
// reservoir level it is the fluid lost or parked in the circuit.
type Drift struct {
	name     string
	series   string
	initial  float64
	maxDrop  float64
	samples  int
	relative bool
}

func NewDrift(name, series string) *Drift {
	return &Drift{
		name:   name,
		series: series,
	}
}

// NewRelativeDrift reports the drop as a fraction of the first value.
func NewRelativeDrift(name, series string) *Drift {
	d := NewDrift(name, series)
	d.relative = true
	return d
}

func (d *Drift) Name() string { return d.name }

func (d *Drift) Observe(f sim.Frame) {
	v, ok := f.Values[d.series]
	if !ok {
		return
	}
	if d.samples == 0 {
		d.initial = v
	}
	d.samples++
	d.maxDrop = max(d.maxDrop, d.initial-v)
}

func (d *Drift) Value() float64 {
	if d.relative {
		if d.initial == 0 {
			return 0
		}
		return d.maxDrop / d.initial
	}
	return d.maxDrop
}

func (d *Drift) Reset() {
	d.initial = 0
	d.maxDrop = 0
	d.samples = 0
}
