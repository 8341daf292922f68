package recovery

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/rlch/salvage"
)

// Markers written into patched source.
const (
	// LineComment prefixes a commented-out line.
	LineComment = "//"
	// Filler pads synthesized string literals.
	Filler = "?"
)

// Strategy is one line-level repair heuristic.
type Strategy struct {
	// Name is a short identifier for the strategy (used in patch records).
	Name string

	// Doc is a brief description of what the strategy repairs.
	Doc string

	// Apply inspects line and returns a decision. A DecisionReplace result
	// must leave the new text in line.Text; other results must not touch it.
	Apply func(line *Line, idx *Index) Decision
}

// DefaultStrategies returns all built-in strategies in pipeline order.
func DefaultStrategies() []*Strategy {
	return []*Strategy{
		DecompilerStrategy,
		TerminatorStrategy,
		QuoteStrategy,
		BraceStrategy,
	}
}

// StrategiesByName returns the built-in strategies whose names are listed,
// in pipeline order.
func StrategiesByName(names []string) ([]*Strategy, error) {
	all := DefaultStrategies()

	for _, name := range names {
		if !slices.ContainsFunc(all, func(s *Strategy) bool { return s.Name == name }) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
		}
	}

	return slices.DeleteFunc(all, func(s *Strategy) bool {
		return !slices.Contains(names, s.Name)
	}), nil
}

// ----------------------------------------------------------------------------
// Strategy: decompiler
// ----------------------------------------------------------------------------

// Decompilers emit "** " pseudocode where they could not structure control
// flow, e.g. "** GOTO lbl" or "** continue;".
const (
	decompilerMarker   = "** "
	decompilerContinue = "** continue;"
	decompilerCase     = "** case "
	decompilerGoto     = "** GOTO "
)

// DecompilerStrategy rewrites or comments out decompiler pseudocode.
var DecompilerStrategy = &Strategy{
	Name: salvage.StrategyDecompiler,
	Doc:  "Rewrites decompiler pseudocode markers into valid statements or comments them out.",
	Apply: func(line *Line, _ *Index) Decision {
		trim := strings.TrimSpace(line.Text)

		switch {
		case strings.Contains(trim, decompilerContinue):
			line.Text = strings.ReplaceAll(line.Text, decompilerContinue, "continue;")

			return DecisionReplace
		case strings.Contains(trim, decompilerCase):
			line.Text = strings.ReplaceAll(line.Text, decompilerCase, "case ")

			return DecisionReplace
		case strings.Contains(trim, decompilerGoto):
			// The pseudocode has no terminator and is always last on its line.
			line.Text = strings.ReplaceAll(line.Text, decompilerGoto, "break ") + ";"

			return DecisionReplace
		case strings.HasPrefix(trim, decompilerMarker):
			return DecisionCommentOut
		}

		return DecisionNone
	},
}

// ----------------------------------------------------------------------------
// Strategy: terminator
// ----------------------------------------------------------------------------

// TerminatorStrategy appends a missing ";" to a dangling expression.
//
// The parser does not ask for the terminator directly; it reports that the
// expression could have continued with an assignment operator.
var TerminatorStrategy = &Strategy{
	Name: salvage.StrategyTerminator,
	Doc:  "Appends a statement terminator to a line whose expression ends early.",
	Apply: func(line *Line, idx *Index) Decision {
		problems := idx.ProblemsOn(line.Number)
		if len(problems) != 1 || !idx.Vocab.isIncompleteExpression(problems[0].Message) {
			return DecisionNone
		}

		trim := strings.TrimSpace(line.Text)
		if trim == "" || strings.HasSuffix(trim, ";") {
			return DecisionNone
		}

		line.Text += ";"

		return DecisionReplace
	},
}

// ----------------------------------------------------------------------------
// Strategy: quote
// ----------------------------------------------------------------------------

// QuoteStrategy closes a string literal that ran into the end of its line.
//
// The literal body is replaced by filler sized so the line keeps its length.
var QuoteStrategy = &Strategy{
	Name: salvage.StrategyQuote,
	Doc:  "Closes an unterminated string literal with a length-preserving placeholder.",
	Apply: func(line *Line, idx *Index) Decision {
		failures := idx.LexicalOn(line.Number)
		if len(failures) != 1 {
			return DecisionNone
		}

		msg := failures[0].Message()
		if !idx.Vocab.isUnterminatedString(msg) {
			return DecisionNone
		}

		fragment, ok := idx.Vocab.offendingFragment(msg)
		if !ok {
			return DecisionNone
		}

		byteStart := strings.Index(line.Text, fragment)
		if byteStart < 0 {
			return DecisionNone
		}

		text := []rune(line.Text)
		start := utf8.RuneCountInString(line.Text[:byteStart])

		// The literal most likely ends before a ')' or ';'.
		suffix := text[start+1:]

		end := slices.Index(suffix, ')')
		if end < 0 {
			end = slices.Index(suffix, ';')
		}

		if end > 0 {
			suffix = suffix[end:]
		}

		bodyLen := max(1, len(text)-start-len(suffix)-2)

		var b strings.Builder

		b.WriteString(string(text[:start]))
		b.WriteByte('"')
		b.WriteString(strings.Repeat(Filler, bodyLen))
		b.WriteByte('"')
		b.WriteString(string(suffix))

		line.Text = b.String()

		return DecisionReplace
	},
}

// ----------------------------------------------------------------------------
// Strategy: braces
// ----------------------------------------------------------------------------

// BraceStrategy comments out lines caught in a brace mismatch.
var BraceStrategy = &Strategy{
	Name: salvage.StrategyBraces,
	Doc:  "Comments out lines with unexplained problems or next to a brace mismatch.",
	Apply: func(line *Line, idx *Index) Decision {
		// Problems on this line that are not about braces.
		current := idx.ProblemsOn(line.Number)
		if len(current) > 0 && !slices.ContainsFunc(current, func(d salvage.Diagnostic) bool {
			return idx.Vocab.mentionsBrace(d.Message)
		}) {
			return DecisionCommentOut
		}

		// The previous line wanted a closing brace.
		if slices.ContainsFunc(idx.ProblemsOn(line.Number-1), func(d salvage.Diagnostic) bool {
			return strings.Contains(d.Message, idx.Vocab.ExpectedCloseBrace)
		}) {
			return DecisionCommentOut
		}

		// The next line wanted an opening brace.
		if slices.ContainsFunc(idx.ProblemsOn(line.Number+1), func(d salvage.Diagnostic) bool {
			return strings.Contains(d.Message, idx.Vocab.ExpectedOpenBrace)
		}) {
			return DecisionCommentOut
		}

		return DecisionNone
	},
}
