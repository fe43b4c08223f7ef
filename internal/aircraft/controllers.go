package aircraft

import (
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

// edpLowN2 is the N2 below which an engine pump reads low pressure
// whatever its section switch says.
const edpLowN2 = 5.

// ratAutoDeployMinKnots keeps the emergency logic from deploying the RAT on
// a cold and dark aircraft.
const ratAutoDeployMinKnots = 100.

// Panel holds the cockpit controls the hydraulic logic reads. Engine
// indexed arrays are zero based: index 0 is engine 1.
type Panel struct {
	EDPAuto            [2]bool `json:"edp_auto"`
	EngineFireReleased [2]bool `json:"engine_fire_released"`
	BlueEPumpAuto      bool    `json:"blue_epump_auto"`
	BlueEPumpOverride  bool    `json:"blue_epump_override"`
	YellowEPumpOn      bool    `json:"yellow_epump_on"`
	PTUAuto            bool    `json:"ptu_auto"`
	RATManOn           bool    `json:"rat_man_on"`
	ParkingBrake       bool    `json:"parking_brake"`
	HandPump           bool    `json:"hand_pump"`

	// LeakMeasurementOff closes the leak measurement valve of a circuit.
	LeakMeasurementOff map[hydraulic.Color]bool `json:"leak_measurement_off,omitempty"`
}

func DefaultPanel() Panel {
	return Panel{
		EDPAuto:       [2]bool{true, true},
		BlueEPumpAuto: true,
		PTUAuto:       true,
	}
}

type edpController struct {
	color      hydraulic.Color
	engine     int
	buses      []hydraulic.BusID
	powered    bool
	pressurise bool
	lowPress   bool
}

func newEDPController(color hydraulic.Color, engine int, buses ...hydraulic.BusID) *edpController {
	return &edpController{color: color, engine: engine, buses: buses, pressurise: true}
}

func (c *edpController) receivePower(buses hydraulic.ElectricalBuses) {
	c.powered = false
	for _, b := range c.buses {
		c.powered = c.powered || buses.IsPowered(b)
	}
}

// update commands the pump. The solenoid is energised to depressurise, so
// an unpowered controller leaves the pump pressurising.
func (c *edpController) update(panel *Panel, engine *Engine, sectionPressurised bool) {
	i := c.engine - 1
	command := panel.EDPAuto[i] && !panel.EngineFireReleased[i]
	c.pressurise = !c.powered || command
	c.lowPress = c.pressurise && (!sectionPressurised || engine.N2() < edpLowN2)
}

func (c *edpController) ShouldPressurise() bool              { return c.pressurise }
func (c *edpController) MaxDisplacementRestriction() float64 { return 1 }
func (c *edpController) IsInputShaftConnected() bool         { return true }

func (c *edpController) Write(w hydraulic.Writer) {
	w.WriteBool("HYD_"+string(c.color)+"_EDPUMP_LOW_PRESS", c.lowPress)
}

type electricPumpController struct {
	color      hydraulic.Color
	bus        hydraulic.BusID
	powered    bool
	pressurise bool
	lowPress   bool
}

func (c *electricPumpController) receivePower(buses hydraulic.ElectricalBuses) {
	c.powered = buses.IsPowered(c.bus)
}

// updateBlue runs the blue pump automatically once airborne or with an
// engine running.
func (c *electricPumpController) updateBlue(panel *Panel, onGround bool, eng1, eng2 *Engine, sectionPressurised bool) {
	command := panel.BlueEPumpAuto &&
		(!onGround || eng1.IsAboveMinIdle() || eng2.IsAboveMinIdle() || panel.BlueEPumpOverride)
	c.pressurise = c.powered && command
	c.lowPress = c.pressurise && !sectionPressurised
}

func (c *electricPumpController) updateYellow(panel *Panel, sectionPressurised bool) {
	c.pressurise = c.powered && panel.YellowEPumpOn
	c.lowPress = c.pressurise && !sectionPressurised
}

func (c *electricPumpController) ShouldPressurise() bool              { return c.pressurise }
func (c *electricPumpController) MaxDisplacementRestriction() float64 { return 1 }
func (c *electricPumpController) IsInputShaftConnected() bool         { return true }

func (c *electricPumpController) Write(w hydraulic.Writer) {
	w.WriteBool("HYD_"+string(c.color)+"_EPUMP_LOW_PRESS", c.lowPress)
}

type ptuController struct {
	bus     hydraulic.BusID
	powered bool
	enable  bool
}

func (c *ptuController) receivePower(buses hydraulic.ElectricalBuses) {
	c.powered = buses.IsPowered(c.bus)
}

// update inhibits the PTU on ground with exactly one engine master on and
// the parking brake set. Without control power the PTU is always enabled.
func (c *ptuController) update(panel *Panel, onGround bool, eng1, eng2 *Engine) {
	m1, m2 := eng1.IsMasterOn(), eng2.IsMasterOn()
	command := panel.PTUAuto && (!onGround || m1 == m2 || !panel.ParkingBrake)
	c.enable = !c.powered || command
}

func (c *ptuController) ShouldEnable() bool { return c.enable }

type ratController struct {
	solenoid1, solenoid2 hydraulic.BusID
	powered1, powered2   bool
	deploy               bool
}

func (c *ratController) receivePower(buses hydraulic.ElectricalBuses) {
	c.powered1 = buses.IsPowered(c.solenoid1)
	c.powered2 = buses.IsPowered(c.solenoid2)
}

func (c *ratController) update(panel *Panel, emergency bool, airspeedKnots float64) {
	auto := emergency && airspeedKnots > ratAutoDeployMinKnots
	c.deploy = (c.powered1 && panel.RATManOn) || (c.powered2 && auto)
}

func (c *ratController) ShouldDeploy() bool { return c.deploy }

// circuitController maps pump sections to the engine whose fire pushbutton
// closes their shutoff valve. Sections with no engine stay open.
type circuitController struct {
	color       hydraulic.Color
	panel       *Panel
	pumpEngines map[int]int
}

func (c *circuitController) ShouldOpenFireShutoffValve(pumpIndex int) bool {
	engine, ok := c.pumpEngines[pumpIndex]
	if !ok {
		return true
	}
	return !c.panel.EngineFireReleased[engine-1]
}

func (c *circuitController) ShouldOpenLeakMeasurementValve() bool {
	return !c.panel.LeakMeasurementOff[c.color]
}

func (c *circuitController) ShouldRoutePumpToAuxiliary(int) bool { return false }

type handPumpController struct {
	panel *Panel
}

func (c handPumpController) ShouldPressurise() bool              { return c.panel.HandPump }
func (c handPumpController) MaxDisplacementRestriction() float64 { return 1 }
func (c handPumpController) IsInputShaftConnected() bool         { return true }

var (
	_ hydraulic.PumpController              = (*edpController)(nil)
	_ hydraulic.PumpController              = (*electricPumpController)(nil)
	_ hydraulic.PumpController              = handPumpController{}
	_ hydraulic.PowerTransferUnitController = (*ptuController)(nil)
	_ hydraulic.RamAirTurbineController     = (*ratController)(nil)
	_ hydraulic.CircuitController           = (*circuitController)(nil)
)
