package experiment

import (
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

// Scenario scripts the testbed. Setup runs once before the first frame,
// Script at the start of every frame with the aircraft locked.
type Scenario struct {
	Name        string
	Description string
	Duration    float64
	Setup       func(a *aircraft.Aircraft)
	Script      func(a *aircraft.Aircraft, t float64)
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}

	r.Register(Scenario{
		Name:        "cold_dark",
		Description: "parked with no engines and no ground power",
		Duration:    30,
	})
	r.Register(Scenario{
		Name:        "engine_start",
		Description: "engine 1 started at 2 s, engine 2 at 15 s",
		Duration:    60,
		Script: func(a *aircraft.Aircraft, t float64) {
			engines := a.Engines()
			engines[0].SetMaster(t >= 2)
			engines[1].SetMaster(t >= 15)
		},
	})
	r.Register(Scenario{
		Name:        "ptu_bark",
		Description: "engine 1 only, the PTU pressurises yellow from green",
		Duration:    40,
		Setup: func(a *aircraft.Aircraft) {
			a.StartEngines()
			stopEngine(a.Engines()[1])
		},
		Script: func(a *aircraft.Aircraft, t float64) {
			// Surface demand once yellow has settled makes the PTU cycle.
			if t >= 25 {
				a.CommandSurfaces(math.Sin(t))
			}
		},
	})
	r.Register(Scenario{
		Name:        "engine_failure",
		Description: "engine 1 fails at 10 s in cruise, green recovers through the PTU",
		Duration:    60,
		Setup: func(a *aircraft.Aircraft) {
			airborne(a, 250)
			a.StartEngines()
		},
		Script: func(a *aircraft.Aircraft, t float64) {
			if t >= 10 {
				a.Engines()[0].Fail()
			}
		},
	})
	r.Register(Scenario{
		Name:        "reservoir_leak",
		Description: "green reservoir leak from 5 s with the PTU off",
		Duration:    90,
		Setup: func(a *aircraft.Aircraft) {
			a.StartEngines()
			a.Panel().PTUAuto = false
		},
		Script: func(a *aircraft.Aircraft, t float64) {
			a.SetFailure(hydraulic.Failure{Kind: hydraulic.ReservoirLeak, Target: string(hydraulic.Green)}, t >= 5)
		},
	})
	r.Register(Scenario{
		Name:        "inverted_flight",
		Description: "inverted from 5 s to 45 s, the g-traps empty and pumps cavitate",
		Duration:    70,
		Setup: func(a *aircraft.Aircraft) {
			airborne(a, 250)
			a.StartEngines()
		},
		Script: func(a *aircraft.Aircraft, t float64) {
			f := a.Flight()
			f.Attitude.BankDeg = 0
			if t >= 5 && t < 45 {
				f.Attitude.BankDeg = 180
			}
			a.SetFlight(f)
		},
	})
	r.Register(Scenario{
		Name:        "rat_deploy",
		Description: "dual engine failure at 200 kt, the RAT deploys and pressurises blue",
		Duration:    60,
		Setup: func(a *aircraft.Aircraft) {
			airborne(a, 200)
			a.StartEngines()
		},
		Script: func(a *aircraft.Aircraft, t float64) {
			if t >= 2 {
				for _, e := range a.Engines() {
					e.Fail()
				}
			}
		},
	})
	r.Register(Scenario{
		Name:        "hand_pump",
		Description: "cargo door opened with the yellow hand pump",
		Duration:    60,
		Setup: func(a *aircraft.Aircraft) {
			a.Panel().HandPump = true
			a.CargoDoor().Command(1)
		},
	})
	r.Register(Scenario{
		Name:        "control_sweep",
		Description: "all surfaces swept at 0.5 Hz with both engines at idle",
		Duration:    30,
		Setup: func(a *aircraft.Aircraft) {
			a.StartEngines()
		},
		Script: func(a *aircraft.Aircraft, t float64) {
			if t >= 5 {
				a.CommandSurfaces(math.Sin(math.Pi * t))
			}
		},
	})

	return r
}

// Register adds or replaces a scenario.
func (r *Registry) Register(s Scenario) {
	r.scenarios[s.Name] = s
}

func (r *Registry) Get(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("%w: %s", ErrUnknownScenario, name)
	}
	return s, nil
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func airborne(a *aircraft.Aircraft, knots float64) {
	f := a.Flight()
	f.OnGround = false
	f.IndicatedAirspeedKnots = knots
	a.SetFlight(f)
}

func stopEngine(e *aircraft.Engine) {
	e.SetMaster(false)
	e.ForceN2(0)
}
