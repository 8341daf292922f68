package lsp

import (
	"context"
	"fmt"
	"strings"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/rlch/salvage/recovery"
)

// CodeAction offers each recovery patch within the requested range as a
// quick fix that replaces the line with its patched text.
func (s *Server) CodeAction(_ context.Context, params *protocol.CodeActionParams) ([]protocol.CodeAction, error) {
	doc, ok := s.getDocument(params.TextDocument.URI)
	if !ok || doc.Outcome == nil {
		return nil, nil
	}

	var actions []protocol.CodeAction

	for _, p := range doc.Outcome.Patches {
		// Patches from later rounds describe text the user never saw.
		if !sameLine(doc.Content, p) {
			continue
		}

		rng := lineRange(p.Line, p.Before)
		if !overlaps(rng, params.Range) {
			continue
		}

		actions = append(actions, protocol.CodeAction{
			Title:       fmt.Sprintf("Apply %s recovery", p.Strategy),
			Kind:        protocol.QuickFix,
			Diagnostics: []protocol.Diagnostic{patchDiagnostic(p)},
			Edit: &protocol.WorkspaceEdit{
				Changes: map[protocol.DocumentURI][]protocol.TextEdit{
					doc.URI: {{Range: rng, NewText: p.After}},
				},
			},
		})
	}

	s.logger.Debug("CodeAction",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int("actions", len(actions)))

	return actions, nil
}

// sameLine reports whether p.Before is still the text of line p.Line.
func sameLine(content string, p recovery.Patch) bool {
	lines := strings.Split(content, "\n")
	if p.Line < 1 || p.Line > len(lines) {
		return false
	}

	return strings.TrimSuffix(lines[p.Line-1], "\r") == p.Before
}

func overlaps(a, b protocol.Range) bool {
	return !before(a.End, b.Start) && !before(b.End, a.Start)
}

func before(a, b protocol.Position) bool {
	return a.Line < b.Line || (a.Line == b.Line && a.Character < b.Character)
}
