package hydraulic

// BusID names an electrical bus, for example "DC_ESS" or "AC_1".
type BusID string

// ElectricalBuses is the electrical network as seen by hydraulic
// components.
type ElectricalBuses interface {
	IsPowered(bus BusID) bool
	// Potential is the bus voltage, zero when unpowered.
	Potential(bus BusID) float64
}

// Actuator is anything that draws fluid from a section and returns it to
// the reservoir. Volumes accumulate between calls to ResetVolumes.
type Actuator interface {
	UsedVolume() float64
	ReturnedVolume() float64
	ResetVolumes()
}

// HeatingElement reports thermal state.
type HeatingElement interface {
	IsOverheating() bool
	IsDamaged() bool
}

// PressureSource is a pump as seen by a section.
type PressureSource interface {
	// DeltaVolMax is the most the pump can deliver this step, in gallons.
	DeltaVolMax() float64
	UpdateAfterPressureRegulation(step StepContext, volumeRequired float64, reservoir *Reservoir, connected bool)
	Flow() float64
	Displacement() float64
}

// HeatingPressureSource is implemented by every pump variant.
type HeatingPressureSource interface {
	PressureSource
	HeatingElement
}

// SectionPressure is the read-only view of a section other components use.
type SectionPressure interface {
	Pressure() float64
	PressureDownstreamLeakValve() float64
	PressureDownstreamPriorityValve() float64
	IsPressureSwitchPressurised() bool
}

type PumpController interface {
	ShouldPressurise() bool
	// MaxDisplacementRestriction scales the maximum displacement, 1 for
	// no restriction.
	MaxDisplacementRestriction() float64
	IsInputShaftConnected() bool
}

type CircuitController interface {
	ShouldOpenFireShutoffValve(pumpIndex int) bool
	ShouldOpenLeakMeasurementValve() bool
	ShouldRoutePumpToAuxiliary(pumpIndex int) bool
}

type PowerTransferUnitController interface {
	ShouldEnable() bool
}

type RamAirTurbineController interface {
	ShouldDeploy() bool
}

// StaticPumpController is a fixed pump command, handy for tests and
// scripted scenarios.
type StaticPumpController struct {
	Pressurise        bool
	Restriction       float64
	ShaftDisconnected bool
}

func NewStaticPumpController(pressurise bool) *StaticPumpController {
	return &StaticPumpController{Pressurise: pressurise, Restriction: 1}
}

func (c *StaticPumpController) ShouldPressurise() bool              { return c.Pressurise }
func (c *StaticPumpController) MaxDisplacementRestriction() float64 { return c.Restriction }
func (c *StaticPumpController) IsInputShaftConnected() bool         { return !c.ShaftDisconnected }

// StaticCircuitController keeps every fire valve open, the leak
// measurement valve open, and routes the listed pumps to the auxiliary
// section.
type StaticCircuitController struct {
	ClosedFireValves map[int]bool
	LeakValveClosed  bool
	AuxiliaryRouted  map[int]bool
}

func (c *StaticCircuitController) ShouldOpenFireShutoffValve(pumpIndex int) bool {
	return !c.ClosedFireValves[pumpIndex]
}

func (c *StaticCircuitController) ShouldOpenLeakMeasurementValve() bool {
	return !c.LeakValveClosed
}

func (c *StaticCircuitController) ShouldRoutePumpToAuxiliary(pumpIndex int) bool {
	return c.AuxiliaryRouted[pumpIndex]
}
