package aircraft

import (
	"fmt"

	"github.com/san-kum/hydrosim/internal/hydraulic"
)

const (
	DefaultPhysicsStep          = 0.033
	DefaultRATMaxStep           = 0.033
	DefaultElectricPumpCurrent  = 45.
	defaultSystemSwitchLow      = 1450.
	defaultSystemSwitchHigh     = 1750.
	defaultPumpSwitchLow        = 1740.
	defaultPumpSwitchHigh       = 2200.
	defaultTargetPressure       = 3000.
	defaultAccumulatorPrecharge = 1885.
	defaultAccumulatorVolume    = 0.264
	defaultPriorityValveClosed  = 1500.
	defaultPriorityValveOpen    = 2000.
	maxPhysicsStep              = 0.1
)

// CircuitSpec sizes one circuit and its reservoir. Volumes in gallons,
// pressures in psi.
type CircuitSpec struct {
	ReservoirCapacity    float64 `yaml:"reservoir_capacity" json:"reservoir_capacity"`
	ReservoirGaugeable   float64 `yaml:"reservoir_gaugeable" json:"reservoir_gaugeable"`
	ReservoirLevel       float64 `yaml:"reservoir_level" json:"reservoir_level"`
	HighPressureVolume   float64 `yaml:"high_pressure_volume" json:"high_pressure_volume"`
	PrimingRatio         float64 `yaml:"priming_ratio" json:"priming_ratio"`
	TargetPressure       float64 `yaml:"target_pressure" json:"target_pressure"`
	AccumulatorPrecharge float64 `yaml:"accumulator_precharge" json:"accumulator_precharge"`
	AccumulatorVolume    float64 `yaml:"accumulator_volume" json:"accumulator_volume"`
}

// Config describes the testbed. The zero value is not usable, start from
// DefaultConfig.
type Config struct {
	PhysicsStep          float64 `yaml:"physics_step" json:"physics_step"`
	RATMaxStep           float64 `yaml:"rat_max_step" json:"rat_max_step"`
	ReservoirAirPressure float64 `yaml:"reservoir_air_pressure" json:"reservoir_air_pressure"`
	ElectricPumpCurrent  float64 `yaml:"electric_pump_current" json:"electric_pump_current"`

	Green  CircuitSpec `yaml:"green" json:"green"`
	Blue   CircuitSpec `yaml:"blue" json:"blue"`
	Yellow CircuitSpec `yaml:"yellow" json:"yellow"`

	PTU hydraulic.PowerTransferUnitCharacteristics `yaml:"ptu" json:"ptu"`
}

func defaultCircuit(capacity, gaugeable, level, hpVolume float64) CircuitSpec {
	return CircuitSpec{
		ReservoirCapacity:    capacity,
		ReservoirGaugeable:   gaugeable,
		ReservoirLevel:       level,
		HighPressureVolume:   hpVolume,
		PrimingRatio:         1,
		TargetPressure:       defaultTargetPressure,
		AccumulatorPrecharge: defaultAccumulatorPrecharge,
		AccumulatorVolume:    defaultAccumulatorVolume,
	}
}

func DefaultConfig() Config {
	return Config{
		PhysicsStep:          DefaultPhysicsStep,
		RATMaxStep:           DefaultRATMaxStep,
		ReservoirAirPressure: hydraulic.DefaultReservoirAirPressure,
		ElectricPumpCurrent:  DefaultElectricPumpCurrent,
		Green:                defaultCircuit(3.83, 3.56, 3.3, 10.2),
		Blue:                 defaultCircuit(1.7, 1.6, 1.4, 8),
		Yellow:               defaultCircuit(3.3, 3.1, 2.9, 10),
		PTU:                  hydraulic.A320PowerTransferUnitCharacteristics(),
	}
}

func (c *Config) Validate() error {
	if c.PhysicsStep <= 0 || c.PhysicsStep > maxPhysicsStep {
		return fmt.Errorf("%w: physics step %.3f s outside (0, %.1f]", ErrInvalidConfig, c.PhysicsStep, maxPhysicsStep)
	}
	if c.RATMaxStep <= 0 {
		return fmt.Errorf("%w: rat max step must be positive", ErrInvalidConfig)
	}
	if c.ElectricPumpCurrent <= 0 {
		return fmt.Errorf("%w: electric pump current must be positive", ErrInvalidConfig)
	}
	if c.PTU.Efficiency <= 0 || c.PTU.Efficiency > 1 {
		return fmt.Errorf("%w: ptu efficiency %.2f outside (0, 1]", ErrInvalidConfig, c.PTU.Efficiency)
	}
	for _, color := range Colors {
		spec := c.Circuit(color)
		if spec.ReservoirLevel > spec.ReservoirCapacity {
			return fmt.Errorf("%w: %s reservoir level above capacity", ErrInvalidConfig, color)
		}
		if spec.PrimingRatio < 0 || spec.PrimingRatio > 1 {
			return fmt.Errorf("%w: %s priming ratio must be in [0, 1]", ErrInvalidConfig, color)
		}
	}
	return nil
}

// Circuit returns the spec for a circuit color.
func (c *Config) Circuit(color hydraulic.Color) CircuitSpec {
	return *c.CircuitRef(color)
}

// CircuitRef returns a pointer into the config for in-place edits.
func (c *Config) CircuitRef(color hydraulic.Color) *CircuitSpec {
	switch color {
	case hydraulic.Blue:
		return &c.Blue
	case hydraulic.Yellow:
		return &c.Yellow
	default:
		return &c.Green
	}
}

func (s CircuitSpec) reservoirConfig(color hydraulic.Color) hydraulic.ReservoirConfig {
	return hydraulic.ReservoirConfig{
		Color:             color,
		MaxCapacity:       s.ReservoirCapacity,
		MaxGaugeable:      s.ReservoirGaugeable,
		InitialLevel:      s.ReservoirLevel,
		LowLevelThreshold: 0.1 * s.ReservoirCapacity,
		AirSwitches: []*hydraulic.PressureSwitch{
			hydraulic.NewPressureSwitch(23.45, 20.55, hydraulic.Relative),
		},
	}
}

func (s CircuitSpec) circuitConfig(color hydraulic.Color, pumps int) hydraulic.CircuitConfig {
	return hydraulic.CircuitConfig{
		Color:                 color,
		PumpSections:          pumps,
		PrimingRatio:          s.PrimingRatio,
		HighPressureMaxVolume: s.HighPressureVolume,
		SystemSwitchLow:       defaultSystemSwitchLow,
		SystemSwitchHigh:      defaultSystemSwitchHigh,
		PumpSwitchLow:         defaultPumpSwitchLow,
		PumpSwitchHigh:        defaultPumpSwitchHigh,
		TargetPressure:        s.TargetPressure,
		PriorityValveClosed:   defaultPriorityValveClosed,
		PriorityValveOpen:     defaultPriorityValveOpen,
		AccumulatorPrecharge:  s.AccumulatorPrecharge,
		AccumulatorVolume:     s.AccumulatorVolume,
		FireValveBus:          BusDCEss,
		LeakValveBus:          BusDCGndFlt,
	}
}
