package runner

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
)

// Result accumulates file results during a run.
type Result struct {
	mu sync.RWMutex

	StartTime time.Time
	EndTime   time.Time

	Total       int
	Clean       int
	Recovered   int
	Unrecovered int
	Errors      int

	// Files indexed by path.
	Files map[string]*FileResult

	// Order preserves completion order for display.
	Order []string
}

// NewResult creates an initialized Result.
func NewResult() *Result {
	return &Result{
		StartTime: time.Now(),
		Files:     make(map[string]*FileResult),
	}
}

// Add records a terminal event in the result.
func (r *Result) Add(event Event) {
	if !event.Action.IsTerminal() {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.Files[event.File] = &FileResult{
		File:        event.File,
		Status:      event.Action,
		Elapsed:     event.Elapsed,
		Error:       event.Error,
		Diagnostics: event.Diagnostics,
		Patches:     event.Patches,
		Rounds:      event.Rounds,
	}
	r.Order = append(r.Order, event.File)
	r.Total++

	switch event.Action {
	case ActionClean:
		r.Clean++
	case ActionRecovered:
		r.Recovered++
	case ActionUnrecovered:
		r.Unrecovered++
	case ActionError:
		r.Errors++
	case ActionRun:
		// Not a terminal action
	}
}

// Failures returns the number of files that still do not parse.
func (r *Result) Failures() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.Unrecovered + r.Errors
}

// Finish marks the result as complete.
func (r *Result) Finish() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.EndTime = time.Now()
}

// Elapsed returns the total execution time.
func (r *Result) Elapsed() time.Duration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}

	return r.EndTime.Sub(r.StartTime)
}

// Ok returns true if every file parsed, with or without recovery.
func (r *Result) Ok() bool {
	return r.Failures() == 0
}

// FailedFiles returns unrecovered and errored files sorted by path.
func (r *Result) FailedFiles() []*FileResult {
	return r.filter(func(fr *FileResult) bool { return fr.Status.IsFailure() })
}

// RecoveredFiles returns recovered files sorted by path.
func (r *Result) RecoveredFiles() []*FileResult {
	return r.filter(func(fr *FileResult) bool { return fr.Status == ActionRecovered })
}

func (r *Result) filter(keep func(*FileResult) bool) []*FileResult {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*FileResult

	for _, path := range r.Order {
		if fr := r.Files[path]; keep(fr) {
			out = append(out, fr)
		}
	}

	slices.SortFunc(out, func(a, b *FileResult) int {
		return cmp.Compare(a.File, b.File)
	})

	return out
}

// FileResult holds the outcome of a single file.
type FileResult struct {
	File        string
	Status      Action
	Elapsed     time.Duration
	Error       error
	Diagnostics []salvage.Diagnostic
	Patches     []recovery.Patch
	Rounds      int
}
