package hydraulic

const standardGravity = 9.80665

// Attitude in degrees. Positive pitch is nose up, positive bank is right
// wing down.
type Attitude struct {
	PitchDeg float64
	BankDeg  float64
}

// Acceleration is body-frame kinematic acceleration in m/s2, gravity
// excluded. Vertical is positive up.
type Acceleration struct {
	Lateral      float64
	Vertical     float64
	Longitudinal float64
}

// StepContext carries the aircraft state every component reads during one
// physics step. It is passed by value through the update pass.
type StepContext struct {
	Dt                     float64
	AmbientPressure        float64
	Attitude               Attitude
	Acceleration           Acceleration
	IndicatedAirspeedKnots float64
	OnGround               bool
}

// NewStepContext returns a level, sea-level, on-ground context.
func NewStepContext(dt float64) StepContext {
	return StepContext{
		Dt:              dt,
		AmbientPressure: ambientPressure,
		OnGround:        true,
	}
}

func (s StepContext) WithDt(dt float64) StepContext {
	s.Dt = dt
	return s
}

func (s StepContext) ambient() float64 {
	if s.AmbientPressure <= 0 {
		return ambientPressure
	}
	return s.AmbientPressure
}
