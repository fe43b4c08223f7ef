package aircraft

import (
	"fmt"

	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

const (
	engineIdleN2    = 60.
	engineMinIdleN2 = 55.
	engineSpoolTau  = 5.

	// Gearbox ratio from N2 percent to EDP shaft rpm.
	edpRpmPerN2Percent = 4000. / 100.
	// Windmilling N2 per knot, capped.
	windmillN2PerKnot  = 0.08
	windmillMaxN2      = 20.
)

// Engine is a first-order N2 spool. Only what the hydraulics need is
// modelled: the gearbox speed and whether the generator is online.
type Engine struct {
	number int
	master bool
	failed bool
	target float64
	n2     *dynamo.LowPassFilter
}

func NewEngine(number int) *Engine {
	return &Engine{number: number, n2: dynamo.NewLowPassFilter(engineSpoolTau)}
}

// SetMaster starts or shuts down the engine.
func (e *Engine) SetMaster(on bool) { e.master = on }

// Fail flames the engine out. It windmills with airspeed afterwards.
func (e *Engine) Fail()          { e.failed = true }
func (e *Engine) Restore()       { e.failed = false }
func (e *Engine) IsFailed() bool { return e.failed }

// SetThrust sets the commanded N2 between idle and 100 percent.
func (e *Engine) SetThrust(n2 float64) {
	e.target = dynamo.Clamp(n2, engineIdleN2, 100)
}

func (e *Engine) Update(dt, airspeedKnots float64) {
	target := min(airspeedKnots*windmillN2PerKnot, windmillMaxN2)
	if e.master && !e.failed {
		target = max(e.target, engineIdleN2)
	}
	e.n2.Update(dt, max(target, 0))
}

// ForceN2 sets the spool state directly, for starting a scenario mid
// flight.
func (e *Engine) ForceN2(n2 float64) { e.n2.Reset(n2) }

func (e *Engine) N2() float64          { return e.n2.Output() }
func (e *Engine) ShaftSpeed() float64  { return e.n2.Output() * edpRpmPerN2Percent }
func (e *Engine) IsAboveMinIdle() bool { return e.n2.Output() >= engineMinIdleN2 }
func (e *Engine) IsMasterOn() bool     { return e.master }
func (e *Engine) Number() int          { return e.number }

func (e *Engine) Write(w hydraulic.Writer) {
	w.WriteFloat(fmt.Sprintf("ENGINE_%d_N2", e.number), e.N2())
	w.WriteBool(fmt.Sprintf("ENGINE_%d_MASTER", e.number), e.master)
}
