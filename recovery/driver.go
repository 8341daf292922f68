package recovery

import (
	"go.uber.org/zap"

	"github.com/rlch/salvage"
)

// Outcome is the result of recovering one document.
type Outcome struct {
	// Patched is the text that was handed back to the parser.
	Patched string

	// Patches lists every line change, across all rounds, in the order made.
	Patches []Patch

	// Result is the parse of Patched.
	Result *salvage.Result

	// Rounds is the number of passes performed.
	Rounds int
}

// Driver runs recovery passes against a parser.
type Driver struct {
	parser     salvage.Parser
	strategies []*Strategy
	filter     *Filter
	vocab      *Vocabulary
	logger     *zap.Logger
}

// Option configures a Driver.
type Option func(*Driver)

// WithLogger sets the logger used by the driver and its rewriter.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Driver) {
		d.logger = logger
	}
}

// WithStrategies replaces the default strategy pipeline.
func WithStrategies(strategies ...*Strategy) Option {
	return func(d *Driver) {
		d.strategies = strategies
	}
}

// WithFilter sets the predicate filter applied before classification.
func WithFilter(f *Filter) Option {
	return func(d *Driver) {
		d.filter = f
	}
}

// WithVocabulary retargets the driver at a parser with different phrasing.
func WithVocabulary(v *Vocabulary) Option {
	return func(d *Driver) {
		d.vocab = v
	}
}

// NewDriver creates a Driver that reparses with p.
func NewDriver(p salvage.Parser, opts ...Option) *Driver {
	d := &Driver{
		parser: p,
		vocab:  JavaParser,
	}

	for _, opt := range opts {
		opt(d)
	}

	if d.logger == nil {
		d.logger = zap.NewNop()
	}

	return d
}

// NewDriverFromConfig creates a Driver for cfg's parser, strategies and skip
// predicates.
func NewDriverFromConfig(cfg *salvage.Config, logger *zap.Logger) (*Driver, error) {
	p, err := salvage.NewParser(cfg.Parser)
	if err != nil {
		return nil, err
	}

	strategies, err := StrategiesByName(cfg.Recovery.Strategies)
	if err != nil {
		return nil, err
	}

	filter, err := NewFilter(cfg.Recovery.Skip)
	if err != nil {
		return nil, err
	}

	return NewDriver(p,
		WithLogger(logger),
		WithStrategies(strategies...),
		WithFilter(filter),
	), nil
}

// Parser returns the parser the driver reparses with.
func (d *Driver) Parser() salvage.Parser {
	return d.parser
}

// Recover performs exactly one pass: classify diagnostics, rewrite source,
// and parse the rewritten text once.
func (d *Driver) Recover(filename, source string, diagnostics []salvage.Diagnostic) (*Outcome, error) {
	kept, err := d.filter.Apply(diagnostics, d.vocab)
	if err != nil {
		return nil, err
	}

	idx := Classify(kept, d.vocab)

	patched, patches, err := NewRewriter(d.logger, d.strategies...).Rewrite(source, idx)
	if err != nil {
		return nil, err
	}

	d.logger.Debug("recovery pass",
		zap.String("file", filename),
		zap.Int("diagnostics", len(kept)),
		zap.Int("patches", len(patches)))

	return &Outcome{
		Patched: patched,
		Patches: patches,
		Result:  d.parser.Parse(filename, patched),
		Rounds:  1,
	}, nil
}

// RecoverRounds calls Recover up to n times, feeding each pass the previous
// pass's text and diagnostics. It stops early once a pass parses cleanly or
// patches nothing.
func (d *Driver) RecoverRounds(filename, source string, diagnostics []salvage.Diagnostic, n int) (*Outcome, error) {
	n = max(n, 1)

	var (
		final   *Outcome
		patches []Patch
	)

	for round := 1; round <= n; round++ {
		outcome, err := d.Recover(filename, source, diagnostics)
		if err != nil {
			return nil, err
		}

		patches = append(patches, outcome.Patches...)
		final = outcome
		final.Rounds = round

		if outcome.Result.OK() || len(outcome.Patches) == 0 {
			break
		}

		source = outcome.Patched
		diagnostics = outcome.Result.Diagnostics
	}

	final.Patches = patches

	return final, nil
}
