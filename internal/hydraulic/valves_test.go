package hydraulic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

func TestCheckValve_OneDirection(t *testing.T) {
	fluid := NewFluid(DefaultBulkModulus, dynamo.NewRandom(1))
	step := NewStepContext(testDt)

	up := newTestSection(0.8, 0.8)
	down := newTestSection(9, 9.01)
	up.updatePressure(step, fluid)
	down.updatePressure(step, fluid)
	up.maxPumpableVolume = 0
	up.volumeTarget = 0

	v := NewCheckValve()
	for i := 0; i < 20; i++ {
		v.updateFlowForecast(step, up, down, fluid)
		assert.Equal(t, 0.0, v.MaxVirtualVolume())
	}
}

func TestCheckValve_PassesPumpSurplus(t *testing.T) {
	fluid := NewFluid(DefaultBulkModulus, dynamo.NewRandom(1))
	step := NewStepContext(testDt)

	up := newTestSection(0.8, 0.8)
	down := newTestSection(9, 9)
	up.updatePressure(step, fluid)
	down.updatePressure(step, fluid)
	up.maxPumpableVolume = 0.05
	up.volumeTarget = 0.01

	v := NewCheckValve()
	v.updateFlowForecast(step, up, down, fluid)
	assert.InDelta(t, 0.04, v.MaxVirtualVolume(), 1e-9)
}

func TestPriorityValve(t *testing.T) {
	tests := []struct {
		name     string
		upstream float64
		check    func(t *testing.T, downstream float64)
	}{
		{"open", 3000, func(t *testing.T, d float64) { assert.GreaterOrEqual(t, d, 2800.0) }},
		{"closed", 1450, func(t *testing.T, d float64) { assert.LessOrEqual(t, d, 50.0) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewPriorityValve(1500, 2000)
			runFor(2, func(step StepContext) { v.Update(step, tt.upstream) })
			tt.check(t, v.DownstreamPressure())
		})
	}
}

type leakValveCommand bool

func (c leakValveCommand) ShouldOpenFireShutoffValve(int) bool  { return true }
func (c leakValveCommand) ShouldOpenLeakMeasurementValve() bool { return bool(c) }
func (c leakValveCommand) ShouldRoutePumpToAuxiliary(int) bool  { return false }

func TestLeakMeasurementValve(t *testing.T) {
	t.Run("closes when powered and commanded", func(t *testing.T) {
		v := NewLeakMeasurementValve(DefaultLeakValveBus)
		v.ReceivePower(allPowered())
		runFor(5, func(step StepContext) { v.Update(step, 3000, leakValveCommand(false)) })
		assert.Less(t, v.DownstreamPressure(), 10.0)
	})

	t.Run("fails open unpowered", func(t *testing.T) {
		v := NewLeakMeasurementValve(DefaultLeakValveBus)
		v.ReceivePower(testBuses{})
		runFor(5, func(step StepContext) { v.Update(step, 3000, leakValveCommand(false)) })
		assert.Greater(t, v.DownstreamPressure(), 2900.0)
	})
}

func TestFireValve_HoldsWhenUnpowered(t *testing.T) {
	v := NewFireValve(DefaultFireValveBus)
	v.ReceivePower(allPowered())
	v.Update(true)
	assert.True(t, v.IsOpen())

	v.ReceivePower(testBuses{})
	v.Update(false)
	assert.True(t, v.IsOpen())

	v.ReceivePower(allPowered())
	v.Update(false)
	assert.False(t, v.IsOpen())
}
