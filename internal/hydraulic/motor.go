package hydraulic

import (
	"math"

	"github.com/san-kum/hydrosim/internal/control"
)

const (
	motorInertia                = 0.007
	motorDynamicFriction        = 0.00004
	motorResistantTorqueWhenOff = 2.8
	motorEfficiency             = 0.95
	motorPGain                  = 0.05
	motorIGain                  = 0.5
	motorLowSpeedRpm            = 5.
	motorLowSpeedTorquePerAmp   = 0.5
)

// electricalPumpPhysics is a three phase AC motor whose current is
// regulated to hold the pump's rated speed.
type electricalPumpPhysics struct {
	bus       BusID
	powered   bool
	potential float64
	active    bool

	speed     float64 // rad/s
	current   float64
	power     float64
	generated float64
	resistant float64

	regulator *control.PID
}

func newElectricalPumpPhysics(bus BusID, maxCurrent, regulatedSpeed float64) *electricalPumpPhysics {
	return &electricalPumpPhysics{
		bus:       bus,
		regulator: control.NewPID(motorPGain, motorIGain, 0, regulatedSpeed, 0, maxCurrent),
	}
}

func (m *electricalPumpPhysics) receivePower(buses ElectricalBuses) {
	m.powered = buses.IsPowered(m.bus)
	m.potential = buses.Potential(m.bus)
}

func (m *electricalPumpPhysics) shouldRun() bool { return m.active && m.powered }

// update advances the shaft one step under pump load at pressure (psi) and
// displacement (in3).
func (m *electricalPumpPhysics) update(dt, pressure, displacement float64) {
	rpm := radPerSecToRpm(m.speed)

	friction := motorDynamicFriction * rpm
	if m.shouldRun() {
		m.resistant = pressure*displacement/(2*math.Pi)*lbfInchToNewtonMeter + friction
	} else {
		m.resistant = motorResistantTorqueWhenOff + friction
	}

	if m.shouldRun() {
		m.current = m.regulator.Update(rpm, dt)
		m.power = m.potential * m.current * math.Sqrt(3)
	} else {
		m.regulator.Reset()
		m.current = 0
		m.power = 0
	}

	switch {
	case !m.shouldRun():
		m.generated = 0
	case rpm < motorLowSpeedRpm && m.current > 0:
		m.generated = motorLowSpeedTorquePerAmp * m.current
	case m.speed > 0:
		m.generated = motorEfficiency * m.power / m.speed
	default:
		m.generated = 0
	}

	m.speed = math.Max(m.speed+(m.generated-m.resistant)/motorInertia*dt, 0)
}

func (m *electricalPumpPhysics) rpm() float64 { return radPerSecToRpm(m.speed) }
