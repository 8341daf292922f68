package salvage

import "errors"

// Sentinel errors.
var (
	// ErrConfigNotFound is returned when no .salvage.yaml is found.
	ErrConfigNotFound = errors.New("salvage: no .salvage.yaml found")

	// ErrUnknownParser is returned when an unregistered parser is requested.
	ErrUnknownParser = errors.New("salvage: unknown parser")

	// ErrInvalidConfig is returned when a config file has invalid values.
	ErrInvalidConfig = errors.New("salvage: invalid config")

	// ErrLineStream is returned when source text cannot be read as lines.
	ErrLineStream = errors.New("salvage: cannot read source lines")
)
