// Package salvage recovers source text that a parser rejected.
//
// A recovery pass reads the diagnostics of a failed parse, patches the lines
// they point at with narrow heuristics, and hands the patched text back to the
// same parser. Patches keep the document's line and column geometry so that
// positions computed against the original text stay meaningful.
package salvage

import (
	"fmt"

	"github.com/alecthomas/participle/v2/lexer"
)

// Span represents a range in source code.
type Span struct {
	Start lexer.Position
	End   lexer.Position
}

// Resolvable reports whether the span points at a real line.
func (s *Span) Resolvable() bool {
	return s != nil && s.Start.Line > 0
}

// Diagnostic is a problem reported by a parser.
//
// Lexical failures usually carry no span: the lexer aborted before any token
// range existed, and the location only survives inside Message.
type Diagnostic struct {
	Message string
	Span    *Span
}

// At returns a diagnostic whose span starts and ends at pos.
func At(pos lexer.Position, message string) Diagnostic {
	return Diagnostic{
		Message: message,
		Span:    &Span{Start: pos, End: pos},
	}
}

// Unlocated returns a diagnostic without a span.
func Unlocated(message string) Diagnostic {
	return Diagnostic{Message: message}
}

// Line returns the 1-based line the diagnostic begins on, or 0 when unknown.
func (d Diagnostic) Line() int {
	if !d.Span.Resolvable() {
		return 0
	}

	return d.Span.Start.Line
}

func (d Diagnostic) String() string {
	if !d.Span.Resolvable() {
		return d.Message
	}

	return fmt.Sprintf("%d:%d: %s", d.Span.Start.Line, d.Span.Start.Column, d.Message)
}
