package aircraft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hydrosim/internal/hydraulic"
)

func runningEngine(n int, master bool) *Engine {
	e := NewEngine(n)
	e.SetMaster(master)
	if master {
		e.ForceN2(engineIdleN2)
	}
	return e
}

func TestPTUController(t *testing.T) {
	tests := []struct {
		name         string
		powered      bool
		onGround     bool
		m1, m2       bool
		parkingBrake bool
		want         bool
	}{
		{"unpowered always enabled", false, true, true, false, true, true},
		{"single engine with brake on ground", true, true, true, false, true, false},
		{"single engine without brake", true, true, true, false, false, true},
		{"both engines with brake", true, true, true, true, true, true},
		{"no engines with brake", true, true, false, false, true, true},
		{"airborne single engine", true, false, false, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			panel := DefaultPanel()
			panel.ParkingBrake = tt.parkingBrake

			elec := NewElectrical()
			elec.SetExternalPower(tt.powered)
			elec.Update(false, false)

			c := &ptuController{bus: BusDCGndFlt}
			c.receivePower(elec)
			c.update(&panel, tt.onGround, runningEngine(1, tt.m1), runningEngine(2, tt.m2))
			assert.Equal(t, tt.want, c.ShouldEnable())
		})
	}
}

func TestEDPController(t *testing.T) {
	panel := DefaultPanel()
	elec := NewElectrical()
	elec.Update(false, false)

	c := newEDPController(hydraulic.Green, 1, BusDCEss)
	c.receivePower(elec)

	c.update(&panel, runningEngine(1, true), true)
	assert.True(t, c.ShouldPressurise())
	assert.False(t, c.lowPress)

	panel.EDPAuto[0] = false
	c.update(&panel, runningEngine(1, true), false)
	assert.False(t, c.ShouldPressurise())

	elec.FailBus(BusDCEss)
	elec.Update(false, false)
	c.receivePower(elec)
	c.update(&panel, runningEngine(1, false), false)
	assert.True(t, c.ShouldPressurise(), "unpowered solenoid leaves the pump pressurising")
	assert.True(t, c.lowPress)
}

func TestBlueElectricPumpAuto(t *testing.T) {
	panel := DefaultPanel()
	elec := NewElectrical()
	elec.SetExternalPower(true)
	elec.Update(false, false)

	c := &electricPumpController{color: hydraulic.Blue, bus: BusDCEss}
	c.receivePower(elec)

	off := runningEngine(1, false)
	c.updateBlue(&panel, true, off, runningEngine(2, false), false)
	assert.False(t, c.ShouldPressurise())

	c.updateBlue(&panel, true, runningEngine(1, true), runningEngine(2, false), false)
	assert.True(t, c.ShouldPressurise())

	c.updateBlue(&panel, false, off, off, false)
	assert.True(t, c.ShouldPressurise())

	panel.BlueEPumpOverride = true
	c.updateBlue(&panel, true, off, off, false)
	assert.True(t, c.ShouldPressurise())
}

func TestRATController(t *testing.T) {
	elec := NewElectrical()
	elec.Update(false, false)
	c := &ratController{solenoid1: BusDCHot1, solenoid2: BusDCHot2}
	c.receivePower(elec)

	panel := DefaultPanel()
	c.update(&panel, true, 0)
	assert.False(t, c.ShouldDeploy(), "no auto deployment when stopped")

	c.update(&panel, true, 180)
	assert.True(t, c.ShouldDeploy())

	c.update(&panel, false, 180)
	assert.False(t, c.ShouldDeploy())

	panel.RATManOn = true
	c.update(&panel, false, 0)
	assert.True(t, c.ShouldDeploy())
}

func TestCircuitControllerFireValves(t *testing.T) {
	panel := DefaultPanel()
	c := &circuitController{color: hydraulic.Yellow, panel: &panel, pumpEngines: map[int]int{0: 2}}

	assert.True(t, c.ShouldOpenFireShutoffValve(0))
	assert.True(t, c.ShouldOpenFireShutoffValve(1))

	panel.EngineFireReleased[1] = true
	assert.False(t, c.ShouldOpenFireShutoffValve(0))
	assert.True(t, c.ShouldOpenFireShutoffValve(1), "electric pump section has no fire valve logic")

	panel.LeakMeasurementOff = map[hydraulic.Color]bool{hydraulic.Yellow: true}
	assert.False(t, c.ShouldOpenLeakMeasurementValve())
}

func TestElectrical(t *testing.T) {
	e := NewElectrical()
	e.Update(false, false)
	assert.True(t, e.IsEmergency())
	assert.True(t, e.IsPowered(BusDCEss))
	assert.Equal(t, 0.0, e.Potential(BusAC1))

	e.Update(true, false)
	assert.False(t, e.IsEmergency())
	assert.True(t, e.IsPowered(BusAC2), "bus tie feeds both sides")
	assert.Equal(t, acBusPotential, e.Potential(BusAC1))

	e.FailBus(BusAC2)
	e.Update(true, false)
	assert.False(t, e.IsPowered(BusAC2))
	assert.False(t, e.IsPowered(BusDC2))
	assert.Equal(t, []hydraulic.BusID{BusAC2}, e.FailedBuses())

	e.RestoreBus(BusAC2)
	e.Update(true, false)
	assert.True(t, e.IsPowered(BusAC2))
}

func TestEngineSpool(t *testing.T) {
	e := NewEngine(1)
	e.SetMaster(true)
	for i := 0; i < 600; i++ {
		e.Update(0.1, 0)
	}
	assert.InDelta(t, engineIdleN2, e.N2(), 0.1)
	assert.InDelta(t, engineIdleN2*edpRpmPerN2Percent, e.ShaftSpeed(), 5)
	assert.True(t, e.IsAboveMinIdle())

	e.Fail()
	for i := 0; i < 600; i++ {
		e.Update(0.1, 200)
	}
	assert.InDelta(t, 16, e.N2(), 0.1)
	assert.False(t, e.IsAboveMinIdle())
}

func TestSurfaceActuator(t *testing.T) {
	a := NewSurfaceActuator("TEST", 0.1, 2)
	a.Command(1)

	a.Update(0.1, 500)
	assert.Equal(t, 0.0, a.Position(), "stalls without pressure")

	for i := 0; i < 10; i++ {
		a.Update(0.1, 3000)
	}
	assert.InDelta(t, 1, a.Position(), 1e-9)
	assert.InDelta(t, 0.05, a.UsedVolume(), 1e-9)
	assert.Equal(t, a.UsedVolume(), a.ReturnedVolume())

	a.ResetVolumes()
	assert.Equal(t, 0.0, a.UsedVolume())
}

func TestEngineLookup(t *testing.T) {
	a, err := New(DefaultConfig(), 1)
	require.NoError(t, err)

	_, err = a.Engine(3)
	assert.ErrorIs(t, err, ErrUnknownEngine)
	_, err = a.EngineDrivenPump(0)
	assert.ErrorIs(t, err, ErrUnknownEngine)
	assert.Nil(t, a.ElectricPump(hydraulic.Green))
}
