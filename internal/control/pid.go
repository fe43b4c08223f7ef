package control

import (
	"github.com/san-kum/hydrosim/internal/dynamo"
)

// PID is a clamped PID regulator. The integral term is held inside the
// output limits so a saturated loop recovers without windup.
type PID struct {
	Kp     float64
	Ki     float64
	Kd     float64
	Target float64
	Min    float64
	Max    float64

	integral float64
	prevErr  float64
	output   float64
	first    bool
}

func NewPID(kp, ki, kd, target, min, max float64) *PID {
	return &PID{
		Kp:     kp,
		Ki:     ki,
		Kd:     kd,
		Target: target,
		Min:    min,
		Max:    max,
		first:  true,
	}
}

// Update returns the control output for a measurement taken dt after the
// previous one.
func (p *PID) Update(measurement, dt float64) float64 {
	err := p.Target - measurement

	if dt > 0 {
		p.integral = dynamo.Clamp(p.integral+p.Ki*err*dt, p.Min, p.Max)
	}

	derivative := 0.0
	if !p.first && dt > 0 {
		derivative = (err - p.prevErr) / dt
	}
	p.first = false
	p.prevErr = err

	p.output = dynamo.Clamp(p.Kp*err+p.integral+p.Kd*derivative, p.Min, p.Max)
	return p.output
}

func (p *PID) Output() float64 { return p.output }

func (p *PID) Reset() {
	p.integral = 0
	p.prevErr = 0
	p.output = 0
	p.first = true
}
