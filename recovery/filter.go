package recovery

import (
	"fmt"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/rlch/salvage"
)

// Filter drops diagnostics matching any of a set of expr predicates before
// they are classified.
//
// Predicates see message, line, column and spanned. For lexical failures
// line and column come from the message text.
type Filter struct {
	sources  []string
	programs []*vm.Program
}

// filterEnv is the environment each predicate is evaluated against.
type filterEnv struct {
	Message string `expr:"message"`
	Line    int    `expr:"line"`
	Column  int    `expr:"column"`
	Spanned bool   `expr:"spanned"`
}

// NewFilter compiles predicates. An empty list yields a filter that keeps
// everything.
func NewFilter(predicates []string) (*Filter, error) {
	f := &Filter{sources: predicates}

	for _, src := range predicates {
		program, err := expr.Compile(src, expr.Env(filterEnv{}), expr.AsBool())
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %w", ErrInvalidFilter, src, err)
		}

		f.programs = append(f.programs, program)
	}

	return f, nil
}

// Apply returns the diagnostics no predicate matches, in their original order.
func (f *Filter) Apply(diagnostics []salvage.Diagnostic, vocab *Vocabulary) ([]salvage.Diagnostic, error) {
	if f == nil || len(f.programs) == 0 {
		return diagnostics, nil
	}

	if vocab == nil {
		vocab = JavaParser
	}

	kept := make([]salvage.Diagnostic, 0, len(diagnostics))

	for _, d := range diagnostics {
		skip, err := f.matches(envFor(d, vocab))
		if err != nil {
			return nil, err
		}

		if !skip {
			kept = append(kept, d)
		}
	}

	return kept, nil
}

func (f *Filter) matches(env filterEnv) (bool, error) {
	for i, program := range f.programs {
		out, err := expr.Run(program, env)
		if err != nil {
			return false, fmt.Errorf("%w: %q: %w", ErrInvalidFilter, f.sources[i], err)
		}

		if b, ok := out.(bool); ok && b {
			return true, nil
		}
	}

	return false, nil
}

func envFor(d salvage.Diagnostic, vocab *Vocabulary) filterEnv {
	env := filterEnv{Message: d.Message}

	if d.Span.Resolvable() {
		env.Spanned = true
		env.Line = d.Span.Start.Line
		env.Column = d.Span.Start.Column

		return env
	}

	// Reuse the classifier so predicates see the same position it would.
	idx := Classify([]salvage.Diagnostic{d}, vocab)
	for _, failures := range idx.Lexical {
		env.Line = failures[0].Line
		env.Column = failures[0].Column
	}

	return env
}
