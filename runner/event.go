// Package runner parses batches of source files and recovers the ones that
// fail, reporting one event stream per file.
package runner

import (
	"time"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
)

// Action represents the type of file event.
type Action string

// Action constants for file events.
const (
	ActionRun         Action = "run"
	ActionClean       Action = "clean"
	ActionRecovered   Action = "recovered"
	ActionUnrecovered Action = "unrecovered"
	ActionError       Action = "error"
)

// IsTerminal returns true if this action ends a file.
func (a Action) IsTerminal() bool {
	return a == ActionClean || a == ActionRecovered || a == ActionUnrecovered || a == ActionError
}

// IsFailure returns true if the file still does not parse.
func (a Action) IsFailure() bool {
	return a == ActionUnrecovered || a == ActionError
}

// Event represents a single file event emitted during a run.
type Event struct {
	Time    time.Time     // When the event occurred
	Action  Action        // What happened
	File    string        // Source file path
	Elapsed time.Duration // Time taken (for terminal events)
	Error   error         // I/O or rewrite failure (for ActionError)

	// Diagnostics of the last parse attempt. Empty for clean files.
	Diagnostics []salvage.Diagnostic

	// Patches made across every recovery round.
	Patches []recovery.Patch

	// Rounds is how many recovery passes ran. Zero for clean files.
	Rounds int
}
