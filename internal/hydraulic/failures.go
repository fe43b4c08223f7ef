package hydraulic

import (
	"fmt"
	"strings"
)

type Color string

const (
	Green  Color = "GREEN"
	Blue   Color = "BLUE"
	Yellow Color = "YELLOW"
)

type FailureKind int

const (
	ReservoirLeak FailureKind = iota
	ReservoirReturnLeak
	EnginePumpOverheat
	ElectricPumpOverheat
)

var failureKindNames = map[FailureKind]string{
	ReservoirLeak:        "reservoir_leak",
	ReservoirReturnLeak:  "reservoir_return_leak",
	EnginePumpOverheat:   "edp_overheat",
	ElectricPumpOverheat: "epump_overheat",
}

func (k FailureKind) String() string {
	if n, ok := failureKindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("failure(%d)", int(k))
}

// ParseFailureKind is the inverse of FailureKind.String.
func ParseFailureKind(s string) (FailureKind, error) {
	for k, n := range failureKindNames {
		if n == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownFailure, s)
}

// Failure identifies one failure on one component. Target is a circuit
// color for reservoir failures and a pump id for pump failures.
type Failure struct {
	Kind   FailureKind
	Target string
}

func (f Failure) String() string { return f.Kind.String() + ":" + f.Target }

// ParseFailure reads the "kind:target" form written by Failure.String.
// The target is upper-cased to match circuit colors and pump ids.
func ParseFailure(s string) (Failure, error) {
	name, target, ok := strings.Cut(s, ":")
	if !ok || target == "" {
		return Failure{}, fmt.Errorf("%w: %q has no target", ErrUnknownFailure, s)
	}
	kind, err := ParseFailureKind(name)
	if err != nil {
		return Failure{}, err
	}
	return Failure{Kind: kind, Target: strings.ToUpper(target)}, nil
}

type FailureChecker interface {
	IsActive(f Failure) bool
}

// FailureSet is a mutable set of active failures.
type FailureSet map[Failure]bool

func (s FailureSet) IsActive(f Failure) bool { return s[f] }

func (s FailureSet) Activate(f Failure) { s[f] = true }

func (s FailureSet) Clear(f Failure) { delete(s, f) }

// Active lists active failures in no particular order.
func (s FailureSet) Active() []Failure {
	out := make([]Failure, 0, len(s))
	for f, on := range s {
		if on {
			out = append(out, f)
		}
	}
	return out
}
