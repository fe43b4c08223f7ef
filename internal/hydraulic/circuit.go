package hydraulic

import (
	"fmt"

	"github.com/san-kum/hydrosim/internal/dynamo"
)

const (
	pumpSectionMaxVolume  = 0.8
	pumpSectionStaticLeak = 0.005

	systemSectionStaticLeak = 0.03
	auxSectionStaticLeak    = 0.001
	// Auxiliary section size relative to the system section.
	auxToSystemSizeRatio = 0.5

	DefaultFireValveBus BusID = "DC_ESS"
	DefaultLeakValveBus BusID = "DC_GND_FLT_SERVICE"
)

// CircuitConfig sizes one hydraulic circuit. Pressures in psi, volumes in
// gallons.
type CircuitConfig struct {
	Color        Color
	PumpSections int
	// PrimingRatio is the initial fill of every section, 1 meaning primed.
	PrimingRatio          float64
	HighPressureMaxVolume float64

	SystemSwitchLow  float64
	SystemSwitchHigh float64
	PumpSwitchLow    float64
	PumpSwitchHigh   float64

	PTULeft             bool
	PTURight            bool
	HasAuxiliarySection bool

	TargetPressure       float64
	PriorityValveClosed  float64
	PriorityValveOpen    float64
	AccumulatorPrecharge float64
	AccumulatorVolume    float64

	FireValveBus BusID
	LeakValveBus BusID
}

// Circuit is a complete hydraulic system: one section per main pump, each
// feeding the system section (or the auxiliary section when routed there)
// through a check valve. The circuit owns its reservoir and fluid.
type Circuit struct {
	color Color

	pumpSections []*Section
	system       *Section
	auxiliary    *Section

	checkValves []*CheckValve
	routedToAux []bool

	fluid     *Fluid
	reservoir *Reservoir

	targetPressure float64
}

func NewCircuit(cfg CircuitConfig, reservoir *Reservoir, rnd *dynamo.Random) (*Circuit, error) {
	if cfg.PumpSections <= 0 {
		return nil, ErrNoPumpSection
	}
	if reservoir == nil {
		return nil, fmt.Errorf("circuit %s: nil reservoir: %w", cfg.Color, ErrInvalidVolume)
	}

	if cfg.TargetPressure <= 0 {
		return nil, fmt.Errorf("circuit %s: target pressure %.0f: %w", cfg.Color, cfg.TargetPressure, ErrInvalidPressure)
	}

	systemVolume := cfg.HighPressureMaxVolume - pumpSectionMaxVolume*float64(cfg.PumpSections)
	if systemVolume <= 0 {
		return nil, fmt.Errorf("circuit %s: high pressure volume %.2f too small for %d pumps: %w",
			cfg.Color, cfg.HighPressureMaxVolume, cfg.PumpSections, ErrInvalidVolume)
	}

	fireBus := cfg.FireValveBus
	if fireBus == "" {
		fireBus = DefaultFireValveBus
	}
	leakBus := cfg.LeakValveBus
	if leakBus == "" {
		leakBus = DefaultLeakValveBus
	}

	c := &Circuit{
		color:          cfg.Color,
		fluid:          NewFluid(DefaultBulkModulus, rnd),
		reservoir:      reservoir,
		targetPressure: cfg.TargetPressure,
	}

	for i := 1; i <= cfg.PumpSections; i++ {
		c.pumpSections = append(c.pumpSections, newSection(sectionConfig{
			color:         cfg.Color,
			kind:          pumpSection,
			number:        i,
			staticLeak:    pumpSectionStaticLeak,
			initialVolume: pumpSectionMaxVolume * cfg.PrimingRatio,
			maxVolume:     pumpSectionMaxVolume,
			switchLow:     cfg.PumpSwitchLow,
			switchHigh:    cfg.PumpSwitchHigh,
			fireValve:     NewFireValve(fireBus),
		}))
		c.checkValves = append(c.checkValves, NewCheckValve())
		c.routedToAux = append(c.routedToAux, false)
	}

	c.system = newSection(sectionConfig{
		color:         cfg.Color,
		kind:          systemSection,
		number:        1,
		staticLeak:    systemSectionStaticLeak,
		initialVolume: systemVolume * cfg.PrimingRatio,
		maxVolume:     systemVolume,
		accumulator:   NewSystemAccumulator(cfg.AccumulatorPrecharge, cfg.AccumulatorVolume, 0, cfg.TargetPressure),
		switchLow:     cfg.SystemSwitchLow,
		switchHigh:    cfg.SystemSwitchHigh,
		ptuLeft:       cfg.PTULeft,
		ptuRight:      cfg.PTURight,
		leakValve:     NewLeakMeasurementValve(leakBus),
		priorityValve: NewPriorityValve(cfg.PriorityValveClosed, cfg.PriorityValveOpen),
	})

	if cfg.HasAuxiliarySection {
		auxVolume := systemVolume * auxToSystemSizeRatio
		c.auxiliary = newSection(sectionConfig{
			color:         cfg.Color,
			kind:          auxiliarySection,
			number:        1,
			staticLeak:    auxSectionStaticLeak,
			initialVolume: auxVolume * cfg.PrimingRatio,
			maxVolume:     auxVolume,
			switchLow:     cfg.SystemSwitchLow,
			switchHigh:    cfg.SystemSwitchHigh,
		})
	}

	return c, nil
}

// Update runs one physics step. mainPumps is indexed like the pump
// sections. systemPump, auxPump and ptu may be nil.
func (c *Circuit) Update(
	step StepContext,
	mainPumps []HeatingPressureSource,
	systemPump HeatingPressureSource,
	auxPump HeatingPressureSource,
	ptu *PowerTransferUnit,
	controller CircuitController,
	reservoirAirPressure float64,
) error {
	if len(mainPumps) != len(c.pumpSections) {
		return fmt.Errorf("circuit %s: got %d pumps for %d sections: %w",
			c.color, len(mainPumps), len(c.pumpSections), ErrPumpCount)
	}

	c.fluid.Update(step.Dt, c.anyPumpOverheating(mainPumps, systemPump, auxPump) ||
		(ptu != nil && ptu.IsOverheating() && ptu.IsRotating()))
	c.reservoir.Update(step, reservoirAirPressure, c.fluid)

	for i, s := range c.pumpSections {
		s.updateShutoffValve(i, controller)
	}
	c.system.updateLeakMeasurementValve(step, controller)
	for i := range c.routedToAux {
		c.routedToAux[i] = controller.ShouldRoutePumpToAuxiliary(i)
	}

	c.forEachSection(func(s *Section) { s.updateFlow(step, c.reservoir, ptu, c.targetPressure) })
	c.forEachSection(func(s *Section) { s.updateTargetVolumeAfterFlowUpdate(c.targetPressure, c.fluid) })

	for i, s := range c.pumpSections {
		s.updateMaximumPumpingCapacity(mainPumps[i])
	}
	if systemPump != nil {
		c.system.updateMaximumPumpingCapacity(systemPump)
	}
	if auxPump != nil && c.auxiliary != nil {
		c.auxiliary.updateMaximumPumpingCapacity(auxPump)
	}

	for i, v := range c.checkValves {
		v.updateFlowForecast(step, c.pumpSections[i], c.downstreamOf(i), c.fluid)
	}

	c.updateFinalValveFlows(false)
	if c.auxiliary != nil {
		c.updateFinalValveFlows(true)
	}

	for i, s := range c.pumpSections {
		s.updateDownstreamDeltaVol(c.checkValves[i])
	}
	for i, v := range c.checkValves {
		c.downstreamOf(i).updateUpstreamDeltaVol(v)
	}

	for i, s := range c.pumpSections {
		s.updatePumpState(step, mainPumps[i], c.reservoir)
	}
	if systemPump != nil {
		c.system.updatePumpState(step, systemPump, c.reservoir)
	}
	if auxPump != nil && c.auxiliary != nil {
		c.auxiliary.updatePumpState(step, auxPump, c.reservoir)
	}

	c.forEachSection(func(s *Section) { s.updateFinalDeltaVolAndPressure(step, c.fluid) })
	return nil
}

func (c *Circuit) anyPumpOverheating(mainPumps []HeatingPressureSource, others ...HeatingPressureSource) bool {
	heats := func(p HeatingPressureSource) bool {
		return p != nil && p.Flow() > heatTransferMinFlow && p.IsOverheating()
	}
	for _, p := range mainPumps {
		if heats(p) {
			return true
		}
	}
	for _, p := range others {
		if heats(p) {
			return true
		}
	}
	return false
}

func (c *Circuit) forEachSection(fn func(*Section)) {
	for _, s := range c.pumpSections {
		fn(s)
	}
	fn(c.system)
	if c.auxiliary != nil {
		fn(c.auxiliary)
	}
}

// isRoutedToAux ignores routing requests on circuits without an auxiliary
// section.
func (c *Circuit) isRoutedToAux(i int) bool {
	return c.auxiliary != nil && c.routedToAux[i]
}

func (c *Circuit) downstreamOf(i int) *Section {
	if c.isRoutedToAux(i) {
		return c.auxiliary
	}
	return c.system
}

// updateFinalValveFlows splits what the downstream section needs across
// the check valves feeding it, in proportion to each valve's forecast.
func (c *Circuit) updateFinalValveFlows(toAux bool) {
	downstream := c.system
	if toAux {
		downstream = c.auxiliary
	}

	var total float64
	for i, v := range c.checkValves {
		if c.isRoutedToAux(i) == toAux {
			total += v.maxVirtual
		}
	}

	used := max(downstream.volumeTarget, 0)

	switch {
	case used >= total:
		for i, v := range c.checkValves {
			if c.isRoutedToAux(i) == toAux {
				v.volume = v.maxVirtual
			}
		}
	case total > 0:
		ratio := used / total
		for i, v := range c.checkValves {
			if c.isRoutedToAux(i) == toAux {
				v.volume = v.maxVirtual * ratio
			}
		}
	}
}

func (c *Circuit) UpdateSystemActuatorVolumes(a Actuator) {
	c.system.updateActuatorVolumes(a)
}

func (c *Circuit) UpdateAuxiliaryActuatorVolumes(a Actuator) error {
	if c.auxiliary == nil {
		return fmt.Errorf("circuit %s: %w", c.color, ErrNoAuxiliarySection)
	}
	c.auxiliary.updateActuatorVolumes(a)
	return nil
}

func (c *Circuit) ReceivePower(buses ElectricalBuses) {
	c.forEachSection(func(s *Section) { s.receivePower(buses) })
}

func (c *Circuit) ApplyFailures(f FailureChecker) {
	c.reservoir.ApplyFailures(f)
}

func (c *Circuit) Color() Color                     { return c.color }
func (c *Circuit) PumpSectionCount() int            { return len(c.pumpSections) }
func (c *Circuit) PumpPressure(i int) float64       { return c.pumpSections[i].Pressure() }
func (c *Circuit) PumpSection(i int) *Section       { return c.pumpSections[i] }
func (c *Circuit) IsFireValveOpen(i int) bool       { return c.pumpSections[i].FireValveIsOpen() }
func (c *Circuit) IsRoutedToAuxiliary(i int) bool   { return c.isRoutedToAux(i) }
func (c *Circuit) SystemSection() *Section          { return c.system }
func (c *Circuit) SystemPressure() float64          { return c.system.Pressure() }
func (c *Circuit) SystemAccumulatorVolume() float64 { return c.system.AccumulatorVolume() }
func (c *Circuit) Reservoir() *Reservoir            { return c.reservoir }
func (c *Circuit) ReservoirLevel() float64          { return c.reservoir.Level() }
func (c *Circuit) Fluid() *Fluid                    { return c.fluid }
func (c *Circuit) TargetPressure() float64          { return c.targetPressure }
func (c *Circuit) HasAuxiliarySection() bool        { return c.auxiliary != nil }

func (c *Circuit) PumpSectionSwitchPressurised(i int) bool {
	return c.pumpSections[i].IsPressureSwitchPressurised()
}

func (c *Circuit) SystemSectionSwitchPressurised() bool {
	return c.system.IsPressureSwitchPressurised()
}

// AuxiliarySection falls back to the system section when the circuit has
// none.
func (c *Circuit) AuxiliarySection() *Section {
	if c.auxiliary != nil {
		return c.auxiliary
	}
	return c.system
}

func (c *Circuit) Write(w Writer) {
	c.reservoir.Write(w)
	c.forEachSection(func(s *Section) { s.Write(w) })
}
