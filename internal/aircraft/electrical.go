package aircraft

import (
	"sort"

	"github.com/san-kum/hydrosim/internal/hydraulic"
)

const (
	BusAC1      hydraulic.BusID = "AC_1"
	BusAC2      hydraulic.BusID = "AC_2"
	BusDC1      hydraulic.BusID = "DC_1"
	BusDC2      hydraulic.BusID = "DC_2"
	BusDCEss    hydraulic.BusID = "DC_ESS"
	BusDCGndFlt hydraulic.BusID = "DC_GND_FLT_SERVICE"
	BusDCHot1   hydraulic.BusID = "DC_HOT_1"
	BusDCHot2   hydraulic.BusID = "DC_HOT_2"
)

const (
	acBusPotential = 115.
	dcBusPotential = 28.
)

var allBuses = []hydraulic.BusID{BusAC1, BusAC2, BusDC1, BusDC2, BusDCEss, BusDCGndFlt, BusDCHot1, BusDCHot2}

// Electrical is a coarse power network. Engine generators or external
// power feed the AC buses and the batteries keep the essential and hot
// buses alive. Buses can be failed individually.
type Electrical struct {
	externalPower bool
	powered       map[hydraulic.BusID]bool
	failed        map[hydraulic.BusID]bool
}

func NewElectrical() *Electrical {
	return &Electrical{
		powered: make(map[hydraulic.BusID]bool),
		failed:  make(map[hydraulic.BusID]bool),
	}
}

func (e *Electrical) SetExternalPower(on bool) { e.externalPower = on }
func (e *Electrical) ExternalPower() bool      { return e.externalPower }

// FailBus forces a bus unpowered until RestoreBus.
func (e *Electrical) FailBus(bus hydraulic.BusID)    { e.failed[bus] = true }
func (e *Electrical) RestoreBus(bus hydraulic.BusID) { delete(e.failed, bus) }

// Update recomputes bus power from the generator states. The bus tie lets
// any single source feed both AC sides.
func (e *Electrical) Update(gen1, gen2 bool) {
	ac := gen1 || gen2 || e.externalPower

	e.set(BusAC1, ac)
	e.set(BusAC2, ac)
	e.set(BusDC1, e.powered[BusAC1])
	e.set(BusDC2, e.powered[BusAC2])
	e.set(BusDCGndFlt, e.powered[BusAC1] || e.powered[BusAC2])
	e.set(BusDCEss, true)
	e.set(BusDCHot1, true)
	e.set(BusDCHot2, true)
}

func (e *Electrical) set(bus hydraulic.BusID, on bool) {
	e.powered[bus] = on && !e.failed[bus]
}

func (e *Electrical) IsPowered(bus hydraulic.BusID) bool { return e.powered[bus] }

func (e *Electrical) Potential(bus hydraulic.BusID) float64 {
	if !e.powered[bus] {
		return 0
	}
	switch bus {
	case BusAC1, BusAC2:
		return acBusPotential
	default:
		return dcBusPotential
	}
}

// IsEmergency reports loss of both main AC buses.
func (e *Electrical) IsEmergency() bool {
	return !e.powered[BusAC1] && !e.powered[BusAC2]
}

func (e *Electrical) Write(w hydraulic.Writer) {
	for _, bus := range allBuses {
		w.WriteBool("ELEC_"+string(bus)+"_IS_POWERED", e.powered[bus])
	}
}

// FailedBuses lists failed buses in name order.
func (e *Electrical) FailedBuses() []hydraulic.BusID {
	out := make([]hydraulic.BusID, 0, len(e.failed))
	for b := range e.failed {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

var _ hydraulic.ElectricalBuses = (*Electrical)(nil)
