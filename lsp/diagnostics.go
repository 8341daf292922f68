package lsp

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"fortio.org/safecast"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/salvage"
	"github.com/rlch/salvage/recovery"
)

// diagnosticSource is the Source of every published diagnostic.
const diagnosticSource = "salvage"

// publishDiagnostics publishes what is still wrong with doc after recovery,
// plus one note per patched line.
func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	diagnostics := documentDiagnostics(doc)

	version, err := safecast.Conv[uint32](doc.Version)
	if err != nil {
		version = 0
	}

	s.logger.Debug("publishDiagnostics",
		zap.String("uri", string(doc.URI)),
		zap.Uint32("version", version),
		zap.Int("count", len(diagnostics)))

	err = s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     version,
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Error("publishDiagnostics: RPC failed", zap.Error(err))
	}
}

// documentDiagnostics lists the remaining errors of the last parse attempt and
// an Information diagnostic per patch.
func documentDiagnostics(doc *Document) []protocol.Diagnostic {
	diagnostics := []protocol.Diagnostic{}

	if doc.Result == nil || doc.Result.OK() {
		return diagnostics
	}

	// Without an outcome the original diagnostics are all we have.
	if doc.Outcome == nil {
		return append(diagnostics, convertDiagnostics(doc.Content, doc.Result.Diagnostics)...)
	}

	// The final attempt was made against the patched text.
	diagnostics = append(diagnostics, convertDiagnostics(doc.Outcome.Patched, doc.Outcome.Result.Diagnostics)...)

	for _, p := range doc.Outcome.Patches {
		diagnostics = append(diagnostics, patchDiagnostic(p))
	}

	return diagnostics
}

// convertDiagnostics converts parser diagnostics reported against text to LSP
// errors. Lexical failures are placed at the position their message names.
func convertDiagnostics(text string, diags []salvage.Diagnostic) []protocol.Diagnostic {
	lines := splitLines(text)

	idx := recovery.Classify(diags, nil)

	lexical := make(map[string]recovery.LexicalFailure)
	for _, failures := range idx.Lexical {
		for _, f := range failures {
			lexical[f.Message()] = f
		}
	}

	out := make([]protocol.Diagnostic, 0, len(diags))

	for _, d := range diags {
		var rng protocol.Range

		if d.Span.Resolvable() {
			rng = lines.spanToRange(d.Span)
		} else if f, ok := lexical[d.Message]; ok {
			pos := lines.position(f.Line, f.Column)
			rng = protocol.Range{Start: pos, End: pos}
		}

		out = append(out, protocol.Diagnostic{
			Range:    rng,
			Severity: protocol.DiagnosticSeverityError,
			Source:   diagnosticSource,
			Message:  d.Message,
		})
	}

	return out
}

// patchDiagnostic notes that recovery rewrote a line.
func patchDiagnostic(p recovery.Patch) protocol.Diagnostic {
	msg := fmt.Sprintf("recovered by %s (%s)", p.Strategy, p.Decision)
	if p.Drift > 0 {
		msg += fmt.Sprintf("; later columns shift by %d", p.Drift)
	}

	return protocol.Diagnostic{
		Range:    lineRange(p.Line, p.Before),
		Severity: protocol.DiagnosticSeverityInformation,
		Code:     p.Strategy,
		Source:   diagnosticSource,
		Message:  msg,
	}
}

// sourceLines holds a document's lines for column conversion.
type sourceLines []string

func splitLines(text string) sourceLines {
	return strings.Split(text, "\n")
}

func (l sourceLines) text(line int) string {
	if line < 1 || line > len(l) {
		return ""
	}

	return strings.TrimSuffix(l[line-1], "\r")
}

// position converts a 1-based line and rune column to an LSP position.
func (l sourceLines) position(line, column int) protocol.Position {
	return position(line, utf16Column(l.text(line), column))
}

// spanToRange converts a 1-based span to a 0-based LSP range.
func (l sourceLines) spanToRange(span *salvage.Span) protocol.Range {
	start := l.position(span.Start.Line, span.Start.Column)

	end := start
	if span.End.Line > span.Start.Line || (span.End.Line == span.Start.Line && span.End.Column > span.Start.Column) {
		end = l.position(span.End.Line, span.End.Column)
	}

	return protocol.Range{Start: start, End: end}
}

// lineRange covers the whole of a 1-based line holding text.
func lineRange(line int, text string) protocol.Range {
	return protocol.Range{
		Start: position(line, 1),
		End:   position(line, utf16Column(text, utf8.RuneCountInString(text)+1)),
	}
}

// utf16Column converts a 1-based rune column on text to the 1-based UTF-16
// column LSP clients expect. Columns past the end count one unit per rune.
func utf16Column(text string, column int) int {
	units := 1

	for _, r := range text {
		if column <= 1 {
			return units
		}

		units += utf16.RuneLen(r)
		column--
	}

	return units + max(column-1, 0)
}

// position converts a 1-based line and UTF-16 column to an LSP position.
// Values that do not fit are clamped to zero.
func position(line, column int) protocol.Position {
	l, err := safecast.Conv[uint32](line - 1)
	if err != nil {
		l = 0
	}

	c, err := safecast.Conv[uint32](column - 1)
	if err != nil {
		c = 0
	}

	return protocol.Position{Line: l, Character: c}
}
