package runner

import "errors"

// Sentinel errors for the runner package.
var (
	// ErrMaxFailures is returned when the max failure limit is reached.
	ErrMaxFailures = errors.New("runner: max failures reached")

	// ErrNoDriver is returned when no recovery driver is configured.
	ErrNoDriver = errors.New("runner: no recovery driver configured")

	// Test errors for use in unit tests.
	errTestStop = errors.New("test: stop")
	errTestRead = errors.New("test: read")
)
