package hydraulic

import "errors"

var (
	// ErrNoPumpSection indicates a circuit built without any main pump.
	ErrNoPumpSection = errors.New("hydraulic: circuit needs at least one pump section")

	// ErrNoAuxiliarySection indicates an auxiliary operation on a circuit
	// built without an auxiliary section.
	ErrNoAuxiliarySection = errors.New("hydraulic: circuit has no auxiliary section")

	// ErrInvalidVolume indicates a non-positive or inconsistent volume.
	ErrInvalidVolume = errors.New("hydraulic: invalid volume")

	// ErrInvalidPressure indicates a non-positive target pressure.
	ErrInvalidPressure = errors.New("hydraulic: invalid pressure")

	// ErrPumpCount indicates a main pump slice that does not match the
	// circuit's pump sections.
	ErrPumpCount = errors.New("hydraulic: pump count does not match pump sections")

	ErrUnknownFailure = errors.New("hydraulic: unknown failure kind")
)
