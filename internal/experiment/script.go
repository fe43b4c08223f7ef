package experiment

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/hydrosim/internal/aircraft"
	"github.com/san-kum/hydrosim/internal/hydraulic"
)

var ErrInvalidScript = errors.New("experiment: invalid scenario script")

// ScriptFile is a scenario written in YAML. Setup actions run once before
// the first frame. Events set state from their time on and are replayed
// in time order every frame, so a later event on the same control wins.
//
//	name: green_leak_in_cruise
//	duration: 120
//	setup:
//	  - {action: start_engines}
//	  - {action: airspeed, value: 250}
//	events:
//	  - {at: 10, action: failure, target: "reservoir_leak:GREEN", value: true}
//	  - {at: 40, action: panel, target: ptu_auto, value: false}
type ScriptFile struct {
	Name        string        `yaml:"name"`
	Description string        `yaml:"description"`
	Duration    float64       `yaml:"duration"`
	Setup       []ScriptEvent `yaml:"setup"`
	Events      []ScriptEvent `yaml:"events"`
}

type ScriptEvent struct {
	At     float64 `yaml:"at"`
	Action string  `yaml:"action"`
	Target string  `yaml:"target,omitempty"`
	Value  any     `yaml:"value,omitempty"`
}

type compiledEvent struct {
	at    float64
	apply func(a *aircraft.Aircraft)
}

// LoadScenario reads a YAML scenario script.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, err
	}
	var file ScriptFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Scenario{}, fmt.Errorf("%w: %s: %w", ErrInvalidScript, path, err)
	}
	return file.Compile()
}

// Compile checks every action and turns the file into a Scenario.
func (f ScriptFile) Compile() (Scenario, error) {
	if f.Name == "" {
		return Scenario{}, fmt.Errorf("%w: missing name", ErrInvalidScript)
	}
	if f.Duration <= 0 {
		return Scenario{}, fmt.Errorf("%w: %s: duration must be positive", ErrInvalidScript, f.Name)
	}

	setup := make([]func(a *aircraft.Aircraft), 0, len(f.Setup))
	for i, ev := range f.Setup {
		apply, err := compileAction(ev)
		if err != nil {
			return Scenario{}, fmt.Errorf("%w: %s: setup %d: %w", ErrInvalidScript, f.Name, i, err)
		}
		setup = append(setup, apply)
	}

	events := make([]compiledEvent, 0, len(f.Events))
	for i, ev := range f.Events {
		if ev.Action == "start_engines" {
			return Scenario{}, fmt.Errorf("%w: %s: event %d: start_engines is a setup action", ErrInvalidScript, f.Name, i)
		}
		apply, err := compileAction(ev)
		if err != nil {
			return Scenario{}, fmt.Errorf("%w: %s: event %d: %w", ErrInvalidScript, f.Name, i, err)
		}
		events = append(events, compiledEvent{at: ev.At, apply: apply})
	}
	sort.SliceStable(events, func(i, j int) bool { return events[i].at < events[j].at })

	s := Scenario{Name: f.Name, Description: f.Description, Duration: f.Duration}
	if len(setup) > 0 {
		s.Setup = func(a *aircraft.Aircraft) {
			for _, fn := range setup {
				fn(a)
			}
		}
	}
	if len(events) > 0 {
		s.Script = func(a *aircraft.Aircraft, t float64) {
			for _, ev := range events {
				if ev.at > t {
					return
				}
				ev.apply(a)
			}
		}
	}
	return s, nil
}

func compileAction(ev ScriptEvent) (func(a *aircraft.Aircraft), error) {
	switch ev.Action {
	case "start_engines":
		return func(a *aircraft.Aircraft) { a.StartEngines() }, nil

	case "engine_master", "engine_fail", "engine_thrust":
		n, err := strconv.Atoi(ev.Target)
		if err != nil || n < 1 || n > 2 {
			return nil, fmt.Errorf("%s: engine must be 1 or 2, got %q", ev.Action, ev.Target)
		}
		if ev.Action == "engine_thrust" {
			v, err := asFloat(ev.Value)
			if err != nil {
				return nil, err
			}
			return func(a *aircraft.Aircraft) { a.Engines()[n-1].SetThrust(v) }, nil
		}
		on, err := asBool(ev.Value)
		if err != nil {
			return nil, err
		}
		if ev.Action == "engine_master" {
			return func(a *aircraft.Aircraft) { a.Engines()[n-1].SetMaster(on) }, nil
		}
		return func(a *aircraft.Aircraft) {
			e := a.Engines()[n-1]
			if on {
				e.Fail()
			} else {
				e.Restore()
			}
		}, nil

	case "failure":
		f, err := hydraulic.ParseFailure(ev.Target)
		if err != nil {
			return nil, err
		}
		on, err := asBool(ev.Value)
		if err != nil {
			return nil, err
		}
		return func(a *aircraft.Aircraft) { a.SetFailure(f, on) }, nil

	case "panel":
		on, err := asBool(ev.Value)
		if err != nil {
			return nil, err
		}
		sw, err := panelSwitch(ev.Target)
		if err != nil {
			return nil, err
		}
		return func(a *aircraft.Aircraft) { *sw(a.Panel()) = on }, nil

	case "on_ground", "external_power":
		on, err := asBool(ev.Value)
		if err != nil {
			return nil, err
		}
		if ev.Action == "external_power" {
			return func(a *aircraft.Aircraft) { a.Electrical().SetExternalPower(on) }, nil
		}
		return flight(func(f *aircraft.Flight) { f.OnGround = on }), nil

	case "airspeed", "bank", "pitch", "vertical_accel", "surfaces", "cargo_door":
		v, err := asFloat(ev.Value)
		if err != nil {
			return nil, err
		}
		switch ev.Action {
		case "airspeed":
			return flight(func(f *aircraft.Flight) { f.IndicatedAirspeedKnots = v }), nil
		case "bank":
			return flight(func(f *aircraft.Flight) { f.Attitude.BankDeg = v }), nil
		case "pitch":
			return flight(func(f *aircraft.Flight) { f.Attitude.PitchDeg = v }), nil
		case "vertical_accel":
			return flight(func(f *aircraft.Flight) { f.Acceleration.Vertical = v }), nil
		case "surfaces":
			return func(a *aircraft.Aircraft) { a.CommandSurfaces(v) }, nil
		default:
			return func(a *aircraft.Aircraft) { a.CargoDoor().Command(v) }, nil
		}
	}
	return nil, fmt.Errorf("unknown action %q", ev.Action)
}

func flight(fn func(f *aircraft.Flight)) func(a *aircraft.Aircraft) {
	return func(a *aircraft.Aircraft) {
		f := a.Flight()
		fn(&f)
		a.SetFlight(f)
	}
}

// panelSwitch maps a switch name to an accessor for that switch.
func panelSwitch(name string) (func(p *aircraft.Panel) *bool, error) {
	switch strings.ToLower(name) {
	case "ptu_auto":
		return func(p *aircraft.Panel) *bool { return &p.PTUAuto }, nil
	case "parking_brake":
		return func(p *aircraft.Panel) *bool { return &p.ParkingBrake }, nil
	case "rat_man_on":
		return func(p *aircraft.Panel) *bool { return &p.RATManOn }, nil
	case "yellow_epump_on":
		return func(p *aircraft.Panel) *bool { return &p.YellowEPumpOn }, nil
	case "blue_epump_auto":
		return func(p *aircraft.Panel) *bool { return &p.BlueEPumpAuto }, nil
	case "blue_epump_override":
		return func(p *aircraft.Panel) *bool { return &p.BlueEPumpOverride }, nil
	case "hand_pump":
		return func(p *aircraft.Panel) *bool { return &p.HandPump }, nil
	case "edp_auto_1":
		return func(p *aircraft.Panel) *bool { return &p.EDPAuto[0] }, nil
	case "edp_auto_2":
		return func(p *aircraft.Panel) *bool { return &p.EDPAuto[1] }, nil
	case "engine_fire_released_1":
		return func(p *aircraft.Panel) *bool { return &p.EngineFireReleased[0] }, nil
	case "engine_fire_released_2":
		return func(p *aircraft.Panel) *bool { return &p.EngineFireReleased[1] }, nil
	}
	return nil, fmt.Errorf("unknown panel switch %q", name)
}

func asBool(v any) (bool, error) {
	switch b := v.(type) {
	case bool:
		return b, nil
	case nil:
		return false, fmt.Errorf("missing value")
	}
	return false, fmt.Errorf("value %v is not a boolean", v)
}

func asFloat(v any) (float64, error) {
	switch x := v.(type) {
	case int:
		return float64(x), nil
	case float64:
		return x, nil
	case nil:
		return 0, fmt.Errorf("missing value")
	}
	return 0, fmt.Errorf("value %v is not a number", v)
}
