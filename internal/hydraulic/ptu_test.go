package hydraulic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

func newTestPTU() *PowerTransferUnit {
	return NewPowerTransferUnit(A320PowerTransferUnitCharacteristics(), dynamo.NewRandom(9))
}

func TestPTU_EqualPressuresStop(t *testing.T) {
	ptu := newTestPTU()
	runFor(5, func(step StepContext) { ptu.Update(step, fixedPressure(3000), fixedPressure(3000), enablePTU(true)) })

	assert.Equal(t, 0.0, ptu.ShaftSpeed())
	assert.Equal(t, 0.0, ptu.FlowToLeft())
	assert.Equal(t, 0.0, ptu.FlowToRight())
	assert.False(t, ptu.IsRotating())
}

func TestPTU_LeftDrivesRight(t *testing.T) {
	ptu := newTestPTU()
	runFor(0.5, func(step StepContext) {
		ptu.Update(step, fixedPressure(3000), fixedPressure(ambientPressure), enablePTU(true))
		require.False(t, ptu.FlowToLeft() > 0 && ptu.FlowToRight() > 0)
	})

	assert.True(t, ptu.IsValveOpened())
	assert.True(t, ptu.IsActiveLeftToRight())
	assert.Less(t, ptu.ShaftSpeed(), -ptuMinSpeedRpm)
	assert.Less(t, ptu.FlowToLeft(), 0.0)
	assert.InDelta(t, -ptu.FlowToLeft()*0.8, ptu.FlowToRight(), 1e-12)
}

func TestPTU_RightDrivesLeft(t *testing.T) {
	ptu := newTestPTU()
	runFor(0.5, func(step StepContext) {
		ptu.Update(step, fixedPressure(ambientPressure), fixedPressure(3000), enablePTU(true))
	})

	assert.True(t, ptu.IsActiveRightToLeft())
	assert.Less(t, ptu.FlowToRight(), 0.0)
	assert.InDelta(t, -ptu.FlowToRight()*0.8, ptu.FlowToLeft(), 1e-12)
}

func TestPTU_DisabledDoesNotTurn(t *testing.T) {
	ptu := newTestPTU()
	runFor(2, func(step StepContext) { ptu.Update(step, fixedPressure(3000), fixedPressure(0), enablePTU(false)) })

	assert.Equal(t, 0.0, ptu.ShaftSpeed())
	w := MapWriter{}
	ptu.Write(w)
	assert.Equal(t, 0.0, w["HYD_PTU_VALVE_OPENED"])
	assert.Equal(t, 0.0, w["HYD_PTU_SHAFT_RPM"])
}

func TestPTU_BarkStrengthHandshake(t *testing.T) {
	ptu := newTestPTU()
	drive := func(enabled bool) func(StepContext) {
		return func(step StepContext) {
			ptu.Update(step, fixedPressure(3000), fixedPressure(ambientPressure), enablePTU(enabled))
		}
	}

	runFor(1, drive(true))
	assert.Equal(t, 5, ptu.BarkStrength())

	runFor(1, drive(false))
	runFor(1, drive(true))
	assert.Equal(t, 0, ptu.BarkStrength(), "a stop must be reported once")

	ptu.AcknowledgeWrite()
	assert.Equal(t, 5, ptu.BarkStrength())
}

func TestPTU_BarkStrengthTable(t *testing.T) {
	tests := []struct {
		rpm  float64
		want int
	}{
		{2000, 5},
		{1600, 4},
		{1500, 3},
		{1400, 2},
		{1000, 1},
		{1370, 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, barkStrength(tt.rpm), "rpm %.0f", tt.rpm)
	}
}

func TestPTU_ContinuousMode(t *testing.T) {
	ptu := newTestPTU()
	runFor(1, func(step StepContext) { ptu.Update(step, fixedPressure(3000), fixedPressure(0), enablePTU(true)) })
	assert.False(t, ptu.IsInContinuousMode())
	runFor(2, func(step StepContext) { ptu.Update(step, fixedPressure(3000), fixedPressure(0), enablePTU(true)) })
	assert.True(t, ptu.IsInContinuousMode())
}

func TestPTU_Overrides(t *testing.T) {
	ptu := newTestPTU()
	ptu.ApplyOverrides(0, 0)
	assert.Equal(t, A320PowerTransferUnitCharacteristics(), ptu.Characteristics())

	ptu.ApplyOverrides(20, 0.6)
	assert.Equal(t, 20.0, ptu.Characteristics().DeactivationDeltaPressure)
	assert.Equal(t, 0.6, ptu.Characteristics().Efficiency)
}

func TestEquilibriumDisplacement(t *testing.T) {
	assert.InDelta(t, 0.92, equilibriumDisplacement(3000, 3000), 1e-12)
	assert.Equal(t, ptuMaxRightDisplacement, equilibriumDisplacement(3000, 1000))
	assert.Equal(t, ptuMinRightDisplacement, equilibriumDisplacement(100, 3000))
	assert.Equal(t, ptuMaxRightDisplacement, equilibriumDisplacement(3000, 0))
}

// Green drives the left side, yellow has no pump of its own.
func TestPTU_PressurisesUnpoweredCircuit(t *testing.T) {
	greenCfg := testCircuitConfig(Green, 1)
	greenCfg.PTULeft = true
	yellowCfg := testCircuitConfig(Yellow, 1)
	yellowCfg.PTURight = true

	green := newEDPRig(t, greenCfg)
	yellow := newTestCircuit(t, yellowCfg)
	yellowPump := NewEngineDrivenPump("YELLOW", A320EngineDrivenPump(), dynamo.NewRandom(4))
	off := NewStaticPumpController(false)
	ptu := newTestPTU()

	runFor(30, func(step StepContext) {
		green.pump.Update(step, green.circuit.PumpSection(0), green.circuit.Reservoir(), green.engineRpm, green.pumpCtrl)
		yellowPump.Update(step, yellow.PumpSection(0), yellow.Reservoir(), 0, off)

		require.NoError(t, green.circuit.Update(step, []HeatingPressureSource{green.pump}, nil, nil, ptu, green.circuitCtl, DefaultReservoirAirPressure))
		require.NoError(t, yellow.Update(step, []HeatingPressureSource{yellowPump}, nil, nil, ptu, &StaticCircuitController{}, DefaultReservoirAirPressure))

		ptu.Update(step, green.circuit.SystemSection(), yellow.SystemSection(), enablePTU(true))
	})

	assert.Greater(t, yellow.SystemPressure(), 1500.0)
	assert.Greater(t, green.circuit.SystemPressure(), 1500.0)
}
