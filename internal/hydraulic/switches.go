package hydraulic

import "github.com/san-kum/hydrosim/internal/dynamo"

type PressureSwitchKind int

const (
	// Absolute switches read gauge pressure as given.
	Absolute PressureSwitchKind = iota
	// Relative switches subtract ambient pressure first.
	Relative
)

const pressureSwitchFilterTimeConstant = 0.2

// PressureSwitch is a hysteresis switch on filtered pressure. It starts
// not pressurised.
type PressureSwitch struct {
	high        float64
	low         float64
	kind        PressureSwitchKind
	pressurised bool
	filtered    *dynamo.LowPassFilter
}

func NewPressureSwitch(high, low float64, kind PressureSwitchKind) *PressureSwitch {
	return &PressureSwitch{
		high:     high,
		low:      low,
		kind:     kind,
		filtered: dynamo.NewLowPassFilter(pressureSwitchFilterTimeConstant),
	}
}

func (s *PressureSwitch) Update(step StepContext, pressure float64) {
	if s.kind == Relative {
		pressure -= step.ambient()
	}
	p := s.filtered.Update(step.Dt, pressure)

	if p <= s.low {
		s.pressurised = false
	} else if p >= s.high {
		s.pressurised = true
	}
}

func (s *PressureSwitch) IsPressurised() bool { return s.pressurised }

const levelSwitchHysteresis = 0.1

// LevelSwitch reports a low reservoir level. It cannot trip while fluid
// sits at the top of the reservoir.
type LevelSwitch struct {
	threshold float64
	low       bool
}

func NewLevelSwitch(threshold float64) *LevelSwitch {
	return &LevelSwitch{threshold: threshold}
}

func (s *LevelSwitch) Update(level float64, upsideDown bool) {
	if level <= s.threshold && !upsideDown {
		s.low = true
	} else if level >= s.threshold+levelSwitchHysteresis || upsideDown {
		s.low = false
	}
}

func (s *LevelSwitch) IsLowLevel() bool { return s.low }
