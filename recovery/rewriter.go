package recovery

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/rlch/salvage"
)

// Rewriter applies strategies line by line while keeping each line's length.
type Rewriter struct {
	// Strategies run in order; the first decision other than DecisionNone wins.
	Strategies []*Strategy

	logger *zap.Logger
}

// NewRewriter creates a rewriter. With no strategies, DefaultStrategies is used.
func NewRewriter(logger *zap.Logger, strategies ...*Strategy) *Rewriter {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}

	return &Rewriter{
		Strategies: strategies,
		logger:     logger,
	}
}

// Rewrite returns source with every line patched by at most one strategy.
//
// Lines end at "\n" and lose a trailing "\r", matching how parsers count
// lines. They are joined with "\n", including after the last line.
func (r *Rewriter) Rewrite(source string, idx *Index) (string, []Patch, error) {
	return r.RewriteFrom(strings.NewReader(source), idx)
}

// RewriteFrom is Rewrite over a stream. A read failure is wrapped in
// salvage.ErrLineStream.
func (r *Rewriter) RewriteFrom(src io.Reader, idx *Index) (string, []Patch, error) {
	rd := bufio.NewReader(src)

	var (
		b       strings.Builder
		patches []Patch
		number  int
	)

	for {
		text, err := rd.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", nil, fmt.Errorf("%w: line %d: %w", salvage.ErrLineStream, number+1, err)
		}

		if text == "" && err != nil {
			break
		}

		number++

		text = strings.TrimSuffix(strings.TrimSuffix(text, "\n"), "\r")

		line := &Line{Number: number, Text: text}
		if patch, ok := r.patchLine(line, idx); ok {
			patches = append(patches, patch)
		}

		b.WriteString(line.Text)
		b.WriteByte('\n')

		if err != nil {
			break
		}
	}

	return b.String(), patches, nil
}

// patchLine runs the pipeline on one line and repairs its length.
func (r *Rewriter) patchLine(line *Line, idx *Index) (Patch, bool) {
	before := line.Text

	decision, strategy := r.decide(line, idx)

	patch := Patch{
		Line:     line.Number,
		Strategy: strategy,
		Decision: decision,
		Before:   before,
	}

	switch decision {
	case DecisionCommentOut:
		text := []rune(line.Text)
		if len(text) < len(LineComment) {
			return Patch{}, false
		}

		// Swap the first characters for the marker so nothing after them moves.
		line.Text = LineComment + string(text[len(LineComment):])

	case DecisionReplace:
		patch.Drift = r.fitLength(line, before, strategy)

	case DecisionNone:
		return Patch{}, false
	}

	patch.After = line.Text

	r.logger.Debug("patched line",
		zap.Int("line", line.Number),
		zap.String("strategy", strategy),
		zap.Stringer("decision", decision),
		zap.Int("drift", patch.Drift))

	return patch, true
}

// decide returns the first decision other than DecisionNone and the name of
// the strategy that made it. Later strategies are not consulted.
func (r *Rewriter) decide(line *Line, idx *Index) (Decision, string) {
	for _, s := range r.Strategies {
		decision := s.Apply(line, idx)
		if decision != DecisionNone {
			return decision, s.Name
		}
	}

	return DecisionNone, ""
}

// fitLength pads or trims line.Text back to the length of before. It returns
// the number of characters it could not remove.
func (r *Rewriter) fitLength(line *Line, before, strategy string) int {
	sizeDiff := utf8.RuneCountInString(before) - utf8.RuneCountInString(line.Text)

	switch {
	case sizeDiff < 0:
		text := []rune(line.Text)
		excess := -sizeDiff

		if strings.TrimSpace(string(text[:excess])) != "" {
			r.logger.Debug("could not accommodate inserted patch text",
				zap.Int("line", line.Number),
				zap.String("strategy", strategy),
				zap.Int("sizeDiff", sizeDiff))

			return excess
		}

		line.Text = string(text[excess:])

	case sizeDiff > 0:
		line.Text = strings.Repeat(" ", sizeDiff) + line.Text
	}

	return 0
}
