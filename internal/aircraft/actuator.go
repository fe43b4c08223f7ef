package aircraft

import (
	"math"

	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

// Below this the surface stalls against its air load.
const actuatorMinPressure = 1000.

// SurfaceActuator is a flight control or door jack. It moves at the
// commanded rate while its supply is pressurised and draws fluid in
// proportion to the travel. The same volume goes back to the reservoir.
type SurfaceActuator struct {
	name string

	// Gallons for a full -1 to 1 stroke.
	strokeVolume float64
	maxRate      float64

	position float64
	command  float64

	used     float64
	returned float64
}

func NewSurfaceActuator(name string, strokeVolume, maxRate float64) *SurfaceActuator {
	return &SurfaceActuator{name: name, strokeVolume: strokeVolume, maxRate: maxRate}
}

// Command sets the target position in [-1, 1].
func (a *SurfaceActuator) Command(position float64) {
	a.command = dynamo.Clamp(position, -1, 1)
}

func (a *SurfaceActuator) Update(dt, supplyPressure float64) {
	if supplyPressure < actuatorMinPressure {
		return
	}
	// Rate drops off with supply pressure, as the valve flow does.
	rate := a.maxRate * math.Sqrt(min(supplyPressure/3000, 1))
	move := dynamo.Clamp(a.command-a.position, -rate*dt, rate*dt)
	a.position += move

	volume := math.Abs(move) / 2 * a.strokeVolume
	a.used += volume
	a.returned += volume
}

func (a *SurfaceActuator) UsedVolume() float64     { return a.used }
func (a *SurfaceActuator) ReturnedVolume() float64 { return a.returned }

func (a *SurfaceActuator) ResetVolumes() {
	a.used = 0
	a.returned = 0
}

func (a *SurfaceActuator) Position() float64 { return a.position }
func (a *SurfaceActuator) Name() string      { return a.name }

func (a *SurfaceActuator) Write(w hydraulic.Writer) {
	w.WriteFloat("ACTUATOR_"+a.name+"_POSITION", a.position)
}

var _ hydraulic.Actuator = (*SurfaceActuator)(nil)
