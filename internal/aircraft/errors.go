package aircraft

import "errors"

var (
	// ErrInvalidConfig indicates an aircraft configuration that cannot be
	// built.
	ErrInvalidConfig = errors.New("aircraft: invalid configuration")

	// ErrUnknownEngine indicates an engine number other than 1 or 2.
	ErrUnknownEngine = errors.New("aircraft: unknown engine")
)
