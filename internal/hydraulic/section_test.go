package hydraulic

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

func newTestSection(maxVolume, volume float64) *Section {
	return newSection(sectionConfig{
		color:         Green,
		kind:          systemSection,
		number:        1,
		staticLeak:    0.03,
		initialVolume: volume,
		maxVolume:     maxVolume,
		switchLow:     1450,
		switchHigh:    1900,
	})
}

func TestSection_LinearCompressibility(t *testing.T) {
	fluid := NewFluid(DefaultBulkModulus, dynamo.NewRandom(1))
	s := newTestSection(2, 2)
	step := NewStepContext(testDt)

	s.updatePressure(step, fluid)
	before := s.Pressure()

	dv := 0.01
	s.volume += dv
	s.updatePressure(step, fluid)

	assert.InDelta(t, dv/2*DefaultBulkModulus, s.Pressure()-before, 1e-6)
}

func TestSection_PressureFlooredAtAmbient(t *testing.T) {
	fluid := NewFluid(DefaultBulkModulus, dynamo.NewRandom(1))
	tests := []struct {
		name   string
		volume float64
	}{
		{"primed", 1},
		{"half empty", 0.5},
		{"empty", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSection(1, tt.volume)
			s.updatePressure(NewStepContext(testDt), fluid)
			assert.GreaterOrEqual(t, s.Pressure(), ambientPressure)
		})
	}
}

func TestSection_ZeroActuatorIsIdempotent(t *testing.T) {
	step := NewStepContext(testDt)
	fluid := NewFluid(DefaultBulkModulus, dynamo.NewRandom(1))

	plain := newTestSection(2, 2.01)
	withActuator := newTestSection(2, 2.01)
	plain.updatePressure(step, fluid)
	withActuator.updatePressure(step, fluid)

	r1 := newTestReservoir(t, Green, 5, 5, 3)
	r2 := newTestReservoir(t, Green, 5, 5, 3)

	a := &countingActuator{}
	withActuator.updateActuatorVolumes(a)

	plain.updateFlow(step, r1, nil, 3000)
	withActuator.updateFlow(step, r2, nil, 3000)

	assert.Equal(t, plain.deltaVolumeFlowPass, withActuator.deltaVolumeFlowPass)
	assert.Equal(t, 1, a.resets)
}

func TestSection_ActuatorConsumesAndReturns(t *testing.T) {
	step := NewStepContext(testDt)
	fluid := NewFluid(DefaultBulkModulus, dynamo.NewRandom(1))
	s := newTestSection(2, 2)
	s.updatePressure(step, fluid)
	r := newTestReservoir(t, Green, 5, 5, 3)

	s.updateActuatorVolumes(&countingActuator{used: 0.1, returned: 0.05})
	s.updateFlow(step, r, nil, 3000)

	assert.InDelta(t, -0.1, s.deltaVolumeFlowPass, 1e-9)
	assert.InDelta(t, 3.05, r.Level(), 1e-9)
}

func TestSection_StaticLeakScalesWithPressure(t *testing.T) {
	step := NewStepContext(1)
	s := newTestSection(1, 1)
	s.pressure = 3000 + ambientPressure
	assert.InDelta(t, 0.03, s.staticLeakVolume(step, 3000), 1e-9)

	s.pressure = ambientPressure
	assert.Equal(t, 0.0, s.staticLeakVolume(step, 3000))
}

func TestSection_TelemetryNames(t *testing.T) {
	s := newSection(sectionConfig{
		color: Yellow, kind: pumpSection, number: 2,
		maxVolume: 0.8, initialVolume: 0.8,
		fireValve: NewFireValve(DefaultFireValveBus),
	})
	w := MapWriter{}
	s.Write(w)
	assert.Contains(t, w, "HYD_YELLOW_PUMP_2_SECTION_PRESSURE")
	assert.Contains(t, w, "HYD_YELLOW_PUMP_2_SECTION_PRESSURE_SWITCH")
	assert.Contains(t, w, "HYD_YELLOW_PUMP_2_FIRE_VALVE_OPENED")
}
