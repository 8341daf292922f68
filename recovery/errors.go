package recovery

import "errors"

// Sentinel errors for the recovery package.
var (
	// ErrUnknownStrategy is returned when a strategy name is not built in.
	ErrUnknownStrategy = errors.New("recovery: unknown strategy")

	// ErrInvalidFilter is returned when a skip predicate does not compile.
	ErrInvalidFilter = errors.New("recovery: invalid skip predicate")
)
