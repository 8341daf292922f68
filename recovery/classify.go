package recovery

import (
	"strconv"
	"strings"

	"github.com/rlch/salvage"
)

// LexicalFailure is a diagnostic without a span whose message embeds the
// position where the lexer gave up.
type LexicalFailure struct {
	Diagnostic salvage.Diagnostic
	Line       int
	Column     int
}

// Message returns the underlying diagnostic message.
func (f LexicalFailure) Message() string {
	return f.Diagnostic.Message
}

// ProblemsByLine maps a 1-based line to the spanned diagnostics beginning on
// it, in report order.
type ProblemsByLine map[int][]salvage.Diagnostic

// LexicalFailuresByLine maps a 1-based line to its lexical failures, in report
// order.
type LexicalFailuresByLine map[int][]LexicalFailure

// Index is the classified view of one parse attempt's diagnostics.
type Index struct {
	Problems ProblemsByLine
	Lexical  LexicalFailuresByLine
	Vocab    *Vocabulary
}

// Classify splits diagnostics into structural problems and lexical failures.
//
// Diagnostics that cannot be localized are dropped; this never fails.
func Classify(diagnostics []salvage.Diagnostic, vocab *Vocabulary) *Index {
	if vocab == nil {
		vocab = JavaParser
	}

	idx := &Index{
		Problems: make(ProblemsByLine),
		Lexical:  make(LexicalFailuresByLine),
		Vocab:    vocab,
	}

	lineGroup := vocab.Location.SubexpIndex("line")
	columnGroup := vocab.Location.SubexpIndex("column")
	canLocate := lineGroup >= 0 && columnGroup >= 0

	for _, d := range diagnostics {
		if d.Span.Resolvable() {
			line := d.Span.Start.Line
			idx.Problems[line] = append(idx.Problems[line], d)

			continue
		}

		// A non-nil span that does not resolve is neither bucket.
		if !canLocate || d.Span != nil || !strings.Contains(d.Message, vocab.LocationHint) {
			continue
		}

		m := vocab.Location.FindStringSubmatch(d.Message)
		if m == nil {
			continue
		}

		line, err := strconv.Atoi(m[lineGroup])
		if err != nil {
			continue
		}

		column, err := strconv.Atoi(m[columnGroup])
		if err != nil {
			continue
		}

		idx.Lexical[line] = append(idx.Lexical[line], LexicalFailure{
			Diagnostic: d,
			Line:       line,
			Column:     column,
		})
	}

	return idx
}

// ProblemsOn returns the structural problems beginning on line.
func (idx *Index) ProblemsOn(line int) []salvage.Diagnostic {
	return idx.Problems[line]
}

// LexicalOn returns the lexical failures reported on line.
func (idx *Index) LexicalOn(line int) []LexicalFailure {
	return idx.Lexical[line]
}
