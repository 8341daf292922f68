package salvage

import (
	"fmt"
	"slices"
	"sync"
)

// Parser turns source text into a tree plus diagnostics.
//
// Implementations never return an error for bad input: every problem is
// reported as a Diagnostic on the Result.
type Parser interface {
	// Name returns the parser identifier (e.g., "java").
	Name() string

	// Parse parses source. filename is used for positions only.
	Parse(filename, source string) *Result
}

// Result is the outcome of one parse attempt.
type Result struct {
	// Tree is the parser-specific syntax tree. It may be partial or nil when
	// Diagnostics is non-empty.
	Tree any

	Diagnostics []Diagnostic
}

// OK returns true if the parse produced no diagnostics.
func (r *Result) OK() bool {
	return r != nil && len(r.Diagnostics) == 0
}

// ParserFactory creates a Parser.
type ParserFactory func() Parser

var (
	parsersMu sync.RWMutex
	parsers   = make(map[string]ParserFactory)
)

// RegisterParser registers a parser factory by name.
func RegisterParser(name string, factory ParserFactory) {
	parsersMu.Lock()
	defer parsersMu.Unlock()

	parsers[name] = factory
}

// NewParser creates a parser instance by name.
func NewParser(name string) (Parser, error) {
	parsersMu.RLock()
	factory, ok := parsers[name]
	parsersMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParser, name)
	}

	return factory(), nil
}

// RegisteredParsers returns the names of all registered parsers, sorted.
func RegisteredParsers() []string {
	parsersMu.RLock()
	defer parsersMu.RUnlock()

	names := make([]string, 0, len(parsers))
	for name := range parsers {
		names = append(names, name)
	}

	slices.Sort(names)

	return names
}
