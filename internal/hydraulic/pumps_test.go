package hydraulic

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

func TestPump_NoFlowBelowMinimumSpeed(t *testing.T) {
	p := NewPump(A320EngineDrivenPump())
	r := newTestReservoir(t, Green, 5, 5, 3)
	step := NewStepContext(testDt)

	p.Update(step, fixedPressure(0), r, 50, NewStaticPumpController(true))
	assert.Equal(t, 0.0, p.DeltaVolMax())

	for i := 0; i < 30; i++ {
		p.Update(step, fixedPressure(0), r, 4000, NewStaticPumpController(true))
	}
	assert.Greater(t, p.DeltaVolMax(), 0.0)
}

func TestPump_EmptyReservoirCavitates(t *testing.T) {
	p := NewPump(A320EngineDrivenPump())
	r := newTestReservoir(t, Green, 5, 5, 0.1)
	p.Update(NewStepContext(testDt), fixedPressure(0), r, 4000, NewStaticPumpController(true))
	assert.Equal(t, 0.0, p.CavitationEfficiency())
	assert.Equal(t, 0.0, p.DeltaVolMax())
}

func TestPump_DisplacementFollowsRequest(t *testing.T) {
	p := NewPump(A320EngineDrivenPump())
	r := newTestReservoir(t, Green, 5, 5, 3)
	step := NewStepContext(testDt)
	for i := 0; i < 60; i++ {
		p.Update(step, fixedPressure(1000), r, 4000, NewStaticPumpController(true))
	}

	p.UpdateAfterPressureRegulation(step, 0, r, true)
	assert.Equal(t, 0.0, p.Displacement())
	assert.Equal(t, 0.0, p.Flow())

	p.UpdateAfterPressureRegulation(step, 1, r, true)
	assert.InDelta(t, 2.4, p.Displacement(), 0.01)
	assert.InDelta(t, gallonsPerSecond(4000, p.Displacement()), p.Flow(), 1e-9)

	p.UpdateAfterPressureRegulation(step, 1, r, false)
	assert.Equal(t, 0.0, p.Flow())
}

func TestEngineDrivenPump_Declutch(t *testing.T) {
	p := NewEngineDrivenPump("GREEN", A320EngineDrivenPump(), dynamo.NewRandom(1))
	r := newTestReservoir(t, Green, 5, 5, 3)
	ctrl := NewStaticPumpController(true)

	runFor(1, func(step StepContext) { p.Update(step, fixedPressure(3000), r, 4000, ctrl) })
	assert.Equal(t, 4000.0, p.Speed())
	assert.True(t, p.IsActive())

	ctrl.ShaftDisconnected = true
	runFor(2, func(step StepContext) { p.Update(step, fixedPressure(3000), r, 4000, ctrl) })
	assert.InDelta(t, 2400, p.Speed(), 2*edpSpoolDownRatePerSecond*testDt)

	runFor(5, func(step StepContext) { p.Update(step, fixedPressure(3000), r, 4000, ctrl) })
	assert.Equal(t, 0.0, p.Speed())
}

func TestEngineDrivenPump_SpoolDownIgnoresFrameStep(t *testing.T) {
	for _, dt := range []float64{0.01, 0.05, 0.1} {
		p := NewEngineDrivenPump("GREEN", A320EngineDrivenPump(), dynamo.NewRandom(1))
		r := newTestReservoir(t, Green, 5, 5, 3)
		ctrl := NewStaticPumpController(true)
		step := NewStepContext(dt)

		p.Update(step, fixedPressure(3000), r, 4000, ctrl)
		ctrl.ShaftDisconnected = true
		for i := 0; i < int(math.Round(2/dt)); i++ {
			p.Update(step, fixedPressure(3000), r, 4000, ctrl)
		}
		assert.InDelta(t, 4000-2*edpSpoolDownRatePerSecond, p.Speed(), 1e-6, "dt %v", dt)
	}
}

func TestEngineDrivenPump_OverheatDamages(t *testing.T) {
	p := NewEngineDrivenPump("BLUE", A320EngineDrivenPump(), dynamo.NewRandom(1))
	r := newTestReservoir(t, Blue, 5, 5, 3)
	ctrl := NewStaticPumpController(true)

	failures := FailureSet{}
	failures.Activate(Failure{Kind: EnginePumpOverheat, Target: "BLUE"})
	p.ApplyFailures(failures)

	runFor(60, func(step StepContext) { p.Update(step, fixedPressure(3000), r, 4000, ctrl) })
	assert.True(t, p.IsOverheating())

	runFor(200, func(step StepContext) { p.Update(step, fixedPressure(3000), r, 4000, ctrl) })
	require.True(t, p.IsDamaged())
	assert.Equal(t, 0.0, p.Speed(), "a damaged pump declutches")

	w := MapWriter{}
	p.Write(w)
	assert.Equal(t, 1.0, w["HYD_BLUE_EDPUMP_OVHT"])
}

func TestElectricPump_SpinsUpAndPressurises(t *testing.T) {
	c := newTestCircuit(t, testCircuitConfig(Yellow, 1))
	p := NewElectricPump("YELLOW", "AC_2", 45, A320ElectricPump(), dynamo.NewRandom(2))
	p.ReceivePower(allPowered())
	ctrl := NewStaticPumpController(true)

	runFor(15, func(step StepContext) {
		p.Update(step, c.PumpSection(0), c.Reservoir(), ctrl)
		require.NoError(t, c.Update(step, []HeatingPressureSource{p}, nil, nil, nil, &StaticCircuitController{}, DefaultReservoirAirPressure))
		require.LessOrEqual(t, p.Current(), 45.0)
	})

	assert.True(t, p.IsActive())
	assert.InDelta(t, 7600, p.Speed(), 500)
	assert.Greater(t, c.SystemPressure(), 2500.0)

	p.ReceivePower(testBuses{})
	runFor(5, func(step StepContext) {
		p.Update(step, c.PumpSection(0), c.Reservoir(), ctrl)
		require.NoError(t, c.Update(step, []HeatingPressureSource{p}, nil, nil, nil, &StaticCircuitController{}, DefaultReservoirAirPressure))
	})
	assert.False(t, p.IsActive())
	assert.Equal(t, 0.0, p.Speed())
	assert.Equal(t, 0.0, p.Current())
}

func TestElectricPump_Telemetry(t *testing.T) {
	p := NewElectricPump("BLUE", "AC_1", 45, A320ElectricPump(), dynamo.NewRandom(2))
	w := MapWriter{}
	p.Write(w)
	for _, name := range []string{"HYD_BLUE_EPUMP_ACTIVE", "HYD_BLUE_EPUMP_RPM", "HYD_BLUE_EPUMP_OVHT", "HYD_BLUE_EPUMP_CAVITATION"} {
		assert.Contains(t, w, name)
	}
}

func TestManualPump_Ramps(t *testing.T) {
	p := NewManualPump(A320ElectricPump())
	r := newTestReservoir(t, Yellow, 5, 5, 3)
	ctrl := NewStaticPumpController(true)

	runFor(3, func(step StepContext) { p.Update(step, fixedPressure(0), r, ctrl) })
	assert.InDelta(t, 3000, p.Speed(), 2*manualPumpSpoolRate*testDt)

	runFor(10, func(step StepContext) { p.Update(step, fixedPressure(0), r, ctrl) })
	assert.Equal(t, 7600.0, p.Speed())

	ctrl.Pressurise = false
	runFor(10, func(step StepContext) { p.Update(step, fixedPressure(0), r, ctrl) })
	assert.Equal(t, 0.0, p.Speed())
}

func TestRamAirTurbine_DeploymentLatches(t *testing.T) {
	rat := NewRamAirTurbine(A320RamAirTurbine())
	r := newTestReservoir(t, Blue, 5, 5, 3)
	step := NewStepContext(testDt)

	rat.Update(step, fixedPressure(0), r, deployRAT(false))
	rat.UpdatePosition(1)
	assert.Equal(t, 0.0, rat.StowPosition())

	rat.Update(step, fixedPressure(0), r, deployRAT(true))
	rat.UpdatePosition(0.5)
	assert.InDelta(t, 0.5, rat.StowPosition(), 1e-9)

	rat.Update(step, fixedPressure(0), r, deployRAT(false))
	rat.UpdatePosition(5)
	assert.Equal(t, 1.0, rat.StowPosition())
	assert.True(t, rat.IsDeployed())
}

func TestRamAirTurbine_SpinsInAirflow(t *testing.T) {
	rat := NewRamAirTurbine(A320RamAirTurbine())
	r := newTestReservoir(t, Blue, 5, 5, 3)

	runFor(20, func(step StepContext) {
		step.IndicatedAirspeedKnots = 140
		step.OnGround = false
		rat.Update(step, fixedPressure(2500), r, deployRAT(true))
		rat.UpdatePosition(step.Dt)
		rat.UpdatePhysics(step, fixedPressure(2500))
	})

	assert.Greater(t, rat.Speed(), 3000.0)
	assert.Less(t, rat.Speed(), 6500.0)

	w := MapWriter{}
	rat.Write(w)
	assert.Equal(t, 1.0, w["RAT_STOW_POSITION"])
	assert.Greater(t, w["RAT_PROPELLER_ANGLE"], 0.0)
	assert.Less(t, w["RAT_ANGULAR_POSITION"], 360.0)
}

func TestRamAirTurbine_StillWithoutAirspeed(t *testing.T) {
	tests := []struct {
		name     string
		pressure float64
	}{
		{"unpressurised", 0},
		{"pressurised by another pump", 1500},
		{"at target pressure", 3000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rat := NewRamAirTurbine(A320RamAirTurbine())
			r := newTestReservoir(t, Blue, 5, 5, 3)
			section := fixedPressure(tt.pressure)

			runFor(30, func(step StepContext) {
				rat.Update(step, section, r, deployRAT(true))
				rat.UpdatePosition(step.Dt)
				rat.UpdatePhysics(step, section)
				rat.UpdateAfterPressureRegulation(step, rat.DeltaVolMax(), r, true)
				require.GreaterOrEqual(t, rat.Speed(), 0.0)
			})

			assert.True(t, rat.IsDeployed())
			assert.InDelta(t, 0, rat.Speed(), 1)

			w := MapWriter{}
			rat.Write(w)
			for name, v := range w {
				assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), name)
			}
		})
	}
}

func TestRamAirTurbine_SpinsDownUnderLoad(t *testing.T) {
	rat := NewRamAirTurbine(A320RamAirTurbine())
	r := newTestReservoir(t, Blue, 5, 5, 3)
	section := fixedPressure(2500)

	airspeed := 140.0
	runFor(40, func(step StepContext) {
		step.IndicatedAirspeedKnots = airspeed
		step.OnGround = false
		rat.Update(step, section, r, deployRAT(true))
		rat.UpdatePosition(step.Dt)
		rat.UpdatePhysics(step, section)
		rat.UpdateAfterPressureRegulation(step, rat.DeltaVolMax(), r, true)
		require.GreaterOrEqual(t, rat.Speed(), 0.0)
		require.False(t, math.IsInf(rat.Speed(), 0))
		airspeed = math.Max(airspeed-10*step.Dt, 0)
	})

	assert.InDelta(t, 0, rat.Speed(), 1)
	assert.Equal(t, 0.0, rat.Flow())
}
