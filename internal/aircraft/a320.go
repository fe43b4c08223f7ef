package aircraft

import (
	"fmt"
	"sync"

	"github.com/san-kum/hydrosim/internal/dynamo"
	"github.com/san-kum/hydrosim/internal/hydraulic"
	"github.com/san-kum/hydrosim/internal/sim"
)

// Colors lists the circuits in display order.
var Colors = []hydraulic.Color{hydraulic.Green, hydraulic.Blue, hydraulic.Yellow}

// Flight is the part of the aircraft state the hydraulics read from
// outside: attitude, load factor and airspeed.
type Flight struct {
	Attitude               hydraulic.Attitude     `json:"attitude"`
	Acceleration           hydraulic.Acceleration `json:"acceleration"`
	IndicatedAirspeedKnots float64                `json:"ias_knots"`
	OnGround               bool                   `json:"on_ground"`

	// AmbientPressure in psi. Zero means sea level.
	AmbientPressure float64 `json:"ambient_pressure"`
}

// Aircraft is the A320 hydraulic testbed. Green has the engine 1 pump,
// blue an electric pump with the RAT on its system section, yellow the
// engine 2 pump, an electric pump and a hand pump on its auxiliary
// section. The PTU links green (left) and yellow (right).
//
// Step and Write lock the aircraft. Callers that mutate it from another
// goroutine use Do.
type Aircraft struct {
	mu sync.Mutex

	cfg      Config
	panel    Panel
	flight   Flight
	failures hydraulic.FailureSet
	elec     *Electrical
	engines  [2]*Engine

	green  *hydraulic.Circuit
	blue   *hydraulic.Circuit
	yellow *hydraulic.Circuit

	edp1        *hydraulic.EngineDrivenPump
	edp2        *hydraulic.EngineDrivenPump
	blueEPump   *hydraulic.ElectricPump
	yellowEPump *hydraulic.ElectricPump
	rat         *hydraulic.RamAirTurbine
	handPump    *hydraulic.ManualPump
	ptu         *hydraulic.PowerTransferUnit

	edp1Ctl        *edpController
	edp2Ctl        *edpController
	blueEPumpCtl   *electricPumpController
	yellowEPumpCtl *electricPumpController
	ptuCtl         *ptuController
	ratCtl         *ratController
	circuitCtl     map[hydraulic.Color]*circuitController

	actuators map[hydraulic.Color][]*SurfaceActuator
	cargoDoor *SurfaceActuator

	hydraulicLoop *sim.FixedStepLoop
	ratLoop       sim.MaxStepLoop
	time          float64
}

// New builds a cold and dark aircraft on the ground. The seed drives every
// random draw in the hydraulic components.
func New(cfg Config, seed int64) (*Aircraft, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	rnd := dynamo.NewRandom(seed)

	a := &Aircraft{
		cfg:           cfg,
		panel:         DefaultPanel(),
		flight:        Flight{OnGround: true},
		failures:      make(hydraulic.FailureSet),
		elec:          NewElectrical(),
		engines:       [2]*Engine{NewEngine(1), NewEngine(2)},
		hydraulicLoop: sim.NewFixedStepLoop(cfg.PhysicsStep),
		ratLoop:       sim.NewMaxStepLoop(cfg.RATMaxStep),
	}

	var err error
	if a.green, err = buildCircuit(cfg.Green, hydraulic.Green, 1, false, rnd); err != nil {
		return nil, err
	}
	if a.blue, err = buildCircuit(cfg.Blue, hydraulic.Blue, 1, false, rnd); err != nil {
		return nil, err
	}
	if a.yellow, err = buildCircuit(cfg.Yellow, hydraulic.Yellow, 2, true, rnd); err != nil {
		return nil, err
	}

	a.edp1 = hydraulic.NewEngineDrivenPump("GREEN", hydraulic.A320EngineDrivenPump(), rnd)
	a.edp2 = hydraulic.NewEngineDrivenPump("YELLOW", hydraulic.A320EngineDrivenPump(), rnd)
	a.blueEPump = hydraulic.NewElectricPump("BLUE", BusAC1, cfg.ElectricPumpCurrent, hydraulic.A320ElectricPump(), rnd)
	a.yellowEPump = hydraulic.NewElectricPump("YELLOW", BusAC2, cfg.ElectricPumpCurrent, hydraulic.A320ElectricPump(), rnd)
	a.rat = hydraulic.NewRamAirTurbine(hydraulic.A320RamAirTurbine())
	a.handPump = hydraulic.NewManualPump(hydraulic.A380AuxiliaryPump())
	a.ptu = hydraulic.NewPowerTransferUnit(cfg.PTU, rnd)

	a.edp1Ctl = newEDPController(hydraulic.Green, 1, BusDCEss)
	a.edp2Ctl = newEDPController(hydraulic.Yellow, 2, BusDC2, BusDCEss)
	a.blueEPumpCtl = &electricPumpController{color: hydraulic.Blue, bus: BusDCEss}
	a.yellowEPumpCtl = &electricPumpController{color: hydraulic.Yellow, bus: BusDC2}
	a.ptuCtl = &ptuController{bus: BusDCGndFlt}
	a.ratCtl = &ratController{solenoid1: BusDCHot1, solenoid2: BusDCHot2}
	a.circuitCtl = map[hydraulic.Color]*circuitController{
		hydraulic.Green:  {color: hydraulic.Green, panel: &a.panel, pumpEngines: map[int]int{0: 1}},
		hydraulic.Blue:   {color: hydraulic.Blue, panel: &a.panel},
		hydraulic.Yellow: {color: hydraulic.Yellow, panel: &a.panel, pumpEngines: map[int]int{0: 2}},
	}

	a.actuators = map[hydraulic.Color][]*SurfaceActuator{
		hydraulic.Green: {
			NewSurfaceActuator("GREEN_AILERON", 0.04, 2),
			NewSurfaceActuator("GREEN_ELEVATOR", 0.05, 2),
		},
		hydraulic.Blue: {
			NewSurfaceActuator("BLUE_AILERON", 0.04, 2),
			NewSurfaceActuator("BLUE_ELEVATOR", 0.05, 2),
		},
		hydraulic.Yellow: {
			NewSurfaceActuator("YELLOW_ELEVATOR", 0.05, 2),
			NewSurfaceActuator("YELLOW_RUDDER", 0.06, 1.5),
		},
	}
	a.cargoDoor = NewSurfaceActuator("CARGO_DOOR", 0.05, 0.1)

	a.updatePower()
	return a, nil
}

func buildCircuit(spec CircuitSpec, color hydraulic.Color, pumps int, aux bool, rnd *dynamo.Random) (*hydraulic.Circuit, error) {
	reservoir, err := hydraulic.NewReservoir(spec.reservoirConfig(color), rnd)
	if err != nil {
		return nil, fmt.Errorf("%s reservoir: %w", color, err)
	}
	cfg := spec.circuitConfig(color, pumps)
	cfg.PTULeft = color == hydraulic.Green
	cfg.PTURight = color == hydraulic.Yellow
	cfg.HasAuxiliarySection = aux

	circuit, err := hydraulic.NewCircuit(cfg, reservoir, rnd)
	if err != nil {
		return nil, fmt.Errorf("%s circuit: %w", color, err)
	}
	return circuit, nil
}

// Step advances one frame. Hydraulics run in fixed steps, the RAT
// propeller in sub-steps no longer than the RAT max step.
func (a *Aircraft) Step(t, frameDt float64) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.updateEveryFrame(frameDt)

	var err error
	a.hydraulicLoop.Run(frameDt, func(dt float64) {
		if err == nil {
			err = a.updateFixedStep(a.stepContext(dt))
		}
	})
	if err != nil {
		return err
	}

	a.ratLoop.Run(frameDt, func(dt float64) {
		a.rat.UpdatePhysics(a.stepContext(dt), a.blue.SystemSection())
	})

	a.time += frameDt
	return nil
}

func (a *Aircraft) stepContext(dt float64) hydraulic.StepContext {
	return hydraulic.StepContext{
		Dt:                     dt,
		AmbientPressure:        a.flight.AmbientPressure,
		Attitude:               a.flight.Attitude,
		Acceleration:           a.flight.Acceleration,
		IndicatedAirspeedKnots: a.flight.IndicatedAirspeedKnots,
		OnGround:               a.flight.OnGround,
	}
}

func (a *Aircraft) updatePower() {
	a.elec.Update(a.engines[0].IsAboveMinIdle(), a.engines[1].IsAboveMinIdle())

	for _, c := range []*hydraulic.Circuit{a.green, a.blue, a.yellow} {
		c.ReceivePower(a.elec)
	}
	a.blueEPump.ReceivePower(a.elec)
	a.yellowEPump.ReceivePower(a.elec)

	a.edp1Ctl.receivePower(a.elec)
	a.edp2Ctl.receivePower(a.elec)
	a.blueEPumpCtl.receivePower(a.elec)
	a.yellowEPumpCtl.receivePower(a.elec)
	a.ptuCtl.receivePower(a.elec)
	a.ratCtl.receivePower(a.elec)
}

func (a *Aircraft) updateEveryFrame(frameDt float64) {
	ias := a.flight.IndicatedAirspeedKnots
	for _, e := range a.engines {
		e.Update(frameDt, ias)
	}
	a.updatePower()

	a.ratCtl.update(&a.panel, a.elec.IsEmergency(), ias)
	a.rat.UpdatePosition(frameDt)

	a.ptuCtl.update(&a.panel, a.flight.OnGround, a.engines[0], a.engines[1])
	a.edp1Ctl.update(&a.panel, a.engines[0], a.green.PumpSectionSwitchPressurised(0))
	a.edp2Ctl.update(&a.panel, a.engines[1], a.yellow.PumpSectionSwitchPressurised(0))
	a.blueEPumpCtl.updateBlue(&a.panel, a.flight.OnGround, a.engines[0], a.engines[1], a.blue.PumpSectionSwitchPressurised(0))
	a.yellowEPumpCtl.updateYellow(&a.panel, a.yellow.PumpSectionSwitchPressurised(1))
}

func (a *Aircraft) updateFixedStep(step hydraulic.StepContext) error {
	for _, c := range []*hydraulic.Circuit{a.green, a.blue, a.yellow} {
		c.ApplyFailures(a.failures)
	}
	a.edp1.ApplyFailures(a.failures)
	a.edp2.ApplyFailures(a.failures)
	a.blueEPump.ApplyFailures(a.failures)
	a.yellowEPump.ApplyFailures(a.failures)

	if err := a.updateActuators(step); err != nil {
		return err
	}

	a.edp1.Update(step, a.green.PumpSection(0), a.green.Reservoir(), a.engines[0].ShaftSpeed(), a.edp1Ctl)
	a.edp2.Update(step, a.yellow.PumpSection(0), a.yellow.Reservoir(), a.engines[1].ShaftSpeed(), a.edp2Ctl)
	a.blueEPump.Update(step, a.blue.PumpSection(0), a.blue.Reservoir(), a.blueEPumpCtl)
	a.yellowEPump.Update(step, a.yellow.PumpSection(1), a.yellow.Reservoir(), a.yellowEPumpCtl)
	a.rat.Update(step, a.blue.SystemSection(), a.blue.Reservoir(), a.ratCtl)
	a.handPump.Update(step, a.yellow.AuxiliarySection(), a.yellow.Reservoir(), handPumpController{panel: &a.panel})

	air := a.cfg.ReservoirAirPressure

	if err := a.green.Update(step,
		[]hydraulic.HeatingPressureSource{a.edp1}, nil, nil,
		a.ptu, a.circuitCtl[hydraulic.Green], air); err != nil {
		return err
	}
	if err := a.blue.Update(step,
		[]hydraulic.HeatingPressureSource{a.blueEPump}, a.rat, nil,
		nil, a.circuitCtl[hydraulic.Blue], air); err != nil {
		return err
	}
	if err := a.yellow.Update(step,
		[]hydraulic.HeatingPressureSource{a.edp2, a.yellowEPump}, nil, a.handPump,
		a.ptu, a.circuitCtl[hydraulic.Yellow], air); err != nil {
		return err
	}

	// Both circuits have consumed last step's PTU flows.
	a.ptu.Update(step, a.green.SystemSection(), a.yellow.SystemSection(), a.ptuCtl)
	return nil
}

func (a *Aircraft) updateActuators(step hydraulic.StepContext) error {
	for _, color := range Colors {
		circuit := a.circuit(color)
		supply := circuit.SystemSection().PressureDownstreamPriorityValve()
		for _, act := range a.actuators[color] {
			act.Update(step.Dt, supply)
			circuit.UpdateSystemActuatorVolumes(act)
		}
	}

	a.cargoDoor.Update(step.Dt, a.yellow.AuxiliarySection().Pressure())
	return a.yellow.UpdateAuxiliaryActuatorVolumes(a.cargoDoor)
}

func (a *Aircraft) circuit(color hydraulic.Color) *hydraulic.Circuit {
	switch color {
	case hydraulic.Blue:
		return a.blue
	case hydraulic.Yellow:
		return a.yellow
	default:
		return a.green
	}
}

// Write emits every component's telemetry. It also acknowledges the PTU
// bark handshake, so each bark is reported once.
func (a *Aircraft) Write(w hydraulic.Writer) {
	a.mu.Lock()
	defer a.mu.Unlock()

	for _, c := range []*hydraulic.Circuit{a.green, a.blue, a.yellow} {
		c.Write(w)
	}
	a.edp1.Write(w)
	a.edp2.Write(w)
	a.blueEPump.Write(w)
	a.yellowEPump.Write(w)
	a.rat.Write(w)
	a.ptu.Write(w)
	a.ptu.AcknowledgeWrite()

	a.edp1Ctl.Write(w)
	a.edp2Ctl.Write(w)
	a.blueEPumpCtl.Write(w)
	a.yellowEPumpCtl.Write(w)

	for _, e := range a.engines {
		e.Write(w)
	}
	a.elec.Write(w)
	for _, color := range Colors {
		for _, act := range a.actuators[color] {
			act.Write(w)
		}
	}
	a.cargoDoor.Write(w)

	w.WriteFloat("HYD_HAND_PUMP_RPM", a.handPump.Speed())
	w.WriteBool("HYD_RAT_DEPLOYED", a.rat.IsDeployed())
}

// Do runs fn with the aircraft locked. Use it to change controls, flight
// state or failures while a run is in progress.
func (a *Aircraft) Do(fn func(a *Aircraft)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn(a)
}

// The accessors below are not locked. Call them from the stepping
// goroutine or inside Do.

func (a *Aircraft) Config() Config                               { return a.cfg }
func (a *Aircraft) Panel() *Panel                                { return &a.panel }
func (a *Aircraft) Flight() Flight                               { return a.flight }
func (a *Aircraft) SetFlight(f Flight)                           { a.flight = f }
func (a *Aircraft) Failures() hydraulic.FailureSet               { return a.failures }
func (a *Aircraft) Electrical() *Electrical                      { return a.elec }
func (a *Aircraft) Circuit(c hydraulic.Color) *hydraulic.Circuit { return a.circuit(c) }
func (a *Aircraft) PTU() *hydraulic.PowerTransferUnit            { return a.ptu }
func (a *Aircraft) RAT() *hydraulic.RamAirTurbine                { return a.rat }
func (a *Aircraft) HandPump() *hydraulic.ManualPump              { return a.handPump }
func (a *Aircraft) CargoDoor() *SurfaceActuator                  { return a.cargoDoor }
func (a *Aircraft) Time() float64                                { return a.time }

func (a *Aircraft) Engines() []*Engine { return a.engines[:] }

func (a *Aircraft) Engine(number int) (*Engine, error) {
	if number < 1 || number > len(a.engines) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownEngine, number)
	}
	return a.engines[number-1], nil
}

// EngineDrivenPump returns the pump on engine 1 (green) or 2 (yellow).
func (a *Aircraft) EngineDrivenPump(number int) (*hydraulic.EngineDrivenPump, error) {
	switch number {
	case 1:
		return a.edp1, nil
	case 2:
		return a.edp2, nil
	}
	return nil, fmt.Errorf("%w: %d", ErrUnknownEngine, number)
}

// ElectricPump returns the blue or yellow electric pump, nil for green.
func (a *Aircraft) ElectricPump(color hydraulic.Color) *hydraulic.ElectricPump {
	switch color {
	case hydraulic.Blue:
		return a.blueEPump
	case hydraulic.Yellow:
		return a.yellowEPump
	}
	return nil
}

func (a *Aircraft) Actuators(color hydraulic.Color) []*SurfaceActuator { return a.actuators[color] }

// CommandSurfaces sends the same position command to every flight control
// actuator.
func (a *Aircraft) CommandSurfaces(position float64) {
	for _, color := range Colors {
		for _, act := range a.actuators[color] {
			act.Command(position)
		}
	}
}

// StartEngines puts both engines at idle with masters on, as after a
// normal start.
func (a *Aircraft) StartEngines() {
	for _, e := range a.engines {
		e.SetMaster(true)
		e.ForceN2(engineIdleN2)
	}
	a.updatePower()
}

func (a *Aircraft) SetFailure(f hydraulic.Failure, active bool) {
	if active {
		a.failures.Activate(f)
	} else {
		a.failures.Clear(f)
	}
}

var _ sim.Plant = (*Aircraft)(nil)
