package experiment

import "errors"

var (
	ErrUnknownScenario = errors.New("experiment: unknown scenario")
	ErrNotSetup        = errors.New("experiment: not set up")
)
