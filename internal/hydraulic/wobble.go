package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/integrators"
)

// The reservoir fluid is modelled as a damped mass on a spring anchored
// below the reservoir centre. Axes are lateral, vertical, longitudinal.
const (
	wobbleMass      = 100.
	wobbleStiffness = 5000.
	wobbleDamping   = 500.
	wobbleAnchorY   = -0.2

	wobbleMaxSubStep          = 0.05
	wobbleGravityTimeConstant = 0.5

	gTrapDelayMean = 20.
	gTrapDelayStd  = 4.
	gTrapDelayMin  = 8.
	gTrapDelayMax  = 32.
)

var (
	wobbleAnchor = [3]float64{0, wobbleAnchorY, 0}
	levelGravity = [3]float64{0, -standardGravity, 0}

	gaugeLateral = dynamo.MustTable(
		[]float64{-1, -0.2, 0, 0.2, 0.4, 1},
		[]float64{0.2, 0.95, 1, 1.05, 1.2, 1.3},
	)
	gaugeLongitudinal = dynamo.MustTable(
		[]float64{-1, -0.1, 0, 0.1, 0.4, 1},
		[]float64{0.2, 0.98, 1, 0.98, 0.2, 0.2},
	)
	gaugeVertical = dynamo.MustTable(
		[]float64{-1, -0.1, 0, 0.1, 0.2, 1},
		[]float64{1, 1, 0.7, 0.9, 1.2, 1.5},
	)
	usableLateral = dynamo.MustTable(
		[]float64{-1, -0.2, 0, 0.2, 0.4, 1},
		[]float64{0.2, 0.8, 1, 1, 1, 1},
	)
	usableLongitudinal = dynamo.MustTable(
		[]float64{-1, -0.1, 0, 0.1, 0.4, 1},
		[]float64{0.2, 1, 1, 1, 0.2, 0.2},
	)
)

// wobbleDynamics: x = [p(3), v(3)], u = forcing acceleration relative to
// level flight.
type wobbleDynamics struct{}

func (wobbleDynamics) Derive(x dynamo.State, u dynamo.Control, t float64) dynamo.State {
	dx := make(dynamo.State, 6)
	for i := 0; i < 3; i++ {
		dx[i] = x[3+i]
		dx[3+i] = (wobbleStiffness*(wobbleAnchor[i]-x[i])-wobbleDamping*x[3+i])/wobbleMass + u[i]
	}
	return dx
}

func (wobbleDynamics) StateDim() int   { return 6 }
func (wobbleDynamics) ControlDim() int { return 3 }

// fluidPhysics tracks where the fluid sits in the reservoir and how much
// of it the pumps and the gauge can see.
type fluidPhysics struct {
	integ   dynamo.Integrator
	state   dynamo.State
	gravity [3]*dynamo.LowPassFilter
	forcing dynamo.Control
	gTrap   *dynamo.DelayedTrueGate
	t       float64
}

func newFluidPhysics(rnd *dynamo.Random) *fluidPhysics {
	f := &fluidPhysics{
		integ:   integrators.NewRK4(),
		state:   dynamo.State{wobbleAnchor[0], wobbleAnchor[1], wobbleAnchor[2], 0, 0, 0},
		forcing: make(dynamo.Control, 3),
		gTrap: dynamo.NewDelayedTrueGate(
			dynamo.Clamp(rnd.Normal(gTrapDelayMean, gTrapDelayStd), gTrapDelayMin, gTrapDelayMax),
		),
	}
	for i := range f.gravity {
		f.gravity[i] = dynamo.NewLowPassFilterWithInit(wobbleGravityTimeConstant, levelGravity[i])
	}
	return f
}

func (f *fluidPhysics) update(step StepContext) {
	pitch := step.Attitude.PitchDeg * math.Pi / 180
	bank := step.Attitude.BankDeg * math.Pi / 180

	body := [3]float64{
		standardGravity*math.Sin(bank)*math.Cos(pitch) - step.Acceleration.Lateral,
		-standardGravity*math.Cos(pitch)*math.Cos(bank) - step.Acceleration.Vertical,
		-standardGravity*math.Sin(pitch) - step.Acceleration.Longitudinal,
	}
	for i := range body {
		f.forcing[i] = f.gravity[i].Update(step.Dt, body[i]) - levelGravity[i]
	}

	remaining := step.Dt
	for remaining > 1e-9 {
		h := math.Min(remaining, wobbleMaxSubStep)
		copy(f.state, f.integ.Step(wobbleDynamics{}, f.state, f.forcing, f.t, h))
		f.t += h
		remaining -= h
	}

	f.gTrap.Update(step.Dt, f.isFluidGoingUp())
}

func (f *fluidPhysics) position() (lateral, vertical, longitudinal float64) {
	return f.state[0], f.state[1], f.state[2]
}

func (f *fluidPhysics) isFluidGoingUp() bool { return f.state[1] > 0 }

func (f *fluidPhysics) isGTrapEmpty() bool { return f.gTrap.Output() }

func (f *fluidPhysics) gaugeModifier() float64 {
	lat, vert, long := f.position()
	return gaugeLateral.Lookup(lat) * gaugeLongitudinal.Lookup(long) * gaugeVertical.Lookup(vert)
}

func (f *fluidPhysics) usableLevelModifier() float64 {
	if f.isGTrapEmpty() {
		return 0
	}
	lat, _, long := f.position()
	return usableLateral.Lookup(lat) * usableLongitudinal.Lookup(long)
}
