package dynamo

import "math/rand"

// Random supplies the per-component variability (heat time constants,
// valve hysteresis draws). A fixed seed makes a run reproducible.
type Random struct {
	r *rand.Rand
}

func NewRandom(seed int64) *Random {
	return &Random{r: rand.New(rand.NewSource(seed))}
}

// Normal draws from N(mean, std).
func (r *Random) Normal(mean, std float64) float64 {
	return mean + std*r.r.NormFloat64()
}

// Range draws uniformly from [lo, hi).
func (r *Random) Range(lo, hi float64) float64 {
	return lo + (hi-lo)*r.r.Float64()
}

// NormalFloor draws from N(mean, std) and floors the result at min.
func (r *Random) NormalFloor(mean, std, min float64) float64 {
	v := r.Normal(mean, std)
	if v < min {
		return min
	}
	return v
}
