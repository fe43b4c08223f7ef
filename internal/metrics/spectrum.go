package metrics

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/hydrosim/internal/sim"
)

// minSpectrumSamples is the shortest record worth transforming.
const minSpectrumSamples = 16

// DominantFrequency reports the strongest oscillation of a series in Hz,
// such as the cycling of a barking PTU. Frames must be evenly spaced. It
// reads 0 for short or flat records.
type DominantFrequency struct {
	name    string
	series  string
	samples []float64
	t0, t1  float64
}

func NewDominantFrequency(name, series string) *DominantFrequency {
	return &DominantFrequency{name: name, series: series}
}

func (m *DominantFrequency) Name() string { return m.name }

func (m *DominantFrequency) Observe(f sim.Frame) {
	v, ok := f.Values[m.series]
	if !ok {
		return
	}
	if len(m.samples) == 0 {
		m.t0 = f.Time
	}
	m.t1 = f.Time
	m.samples = append(m.samples, v)
}

func (m *DominantFrequency) Value() float64 {
	n := len(m.samples)
	if n < minSpectrumSamples || m.t1 <= m.t0 {
		return 0
	}
	dt := (m.t1 - m.t0) / float64(n-1)

	mean := stat.Mean(m.samples, nil)
	seq := make([]float64, n)
	for i, v := range m.samples {
		seq[i] = v - mean
	}
	window.Hann(seq)

	fft := fourier.NewFFT(n)
	coeffs := fft.Coefficients(nil, seq)

	peak, best := 0, 0.
	for i := 1; i < len(coeffs); i++ {
		if p := cmplx.Abs(coeffs[i]); p > best {
			peak, best = i, p
		}
	}
	if peak == 0 || best < 1e-9 {
		return 0
	}
	return fft.Freq(peak) / dt
}

func (m *DominantFrequency) Reset() {
	m.samples = m.samples[:0]
	m.t0, m.t1 = 0, 0
}
