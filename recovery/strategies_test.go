package recovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rlch/salvage"
)

const incompleteExpr = `Parse error. Found "<EOF>", expected one of "," ";" "=" ">>>=" "||"`

func TestDecompilerStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		decision Decision
		want     string
	}{
		{name: "goto", text: "  ** GOTO label1", decision: DecisionReplace, want: "  break label1;"},
		{name: "continue", text: "    ** continue;", decision: DecisionReplace, want: "    continue;"},
		{name: "case", text: "  ** case 3:", decision: DecisionReplace, want: "  case 3:"},
		{name: "pseudocode", text: "  ** MONITORENTER : this", decision: DecisionCommentOut, want: "  ** MONITORENTER : this"},
		{name: "plain", text: "int a = 2 ** 3;", decision: DecisionNone, want: "int a = 2 ** 3;"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line := &Line{Number: 1, Text: tt.text}
			got := DecompilerStrategy.Apply(line, Classify(nil, nil))

			assert.Equal(t, tt.decision, got)
			assert.Equal(t, tt.want, line.Text)
		})
	}
}

func TestTerminatorStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		diags    []salvage.Diagnostic
		decision Decision
		want     string
	}{
		{
			name:     "missing terminator",
			text:     "int x = 5",
			diags:    []salvage.Diagnostic{at(1, 9, incompleteExpr)},
			decision: DecisionReplace,
			want:     "int x = 5;",
		},
		{
			name:     "already terminated",
			text:     "int x = 5;  ",
			diags:    []salvage.Diagnostic{at(1, 9, incompleteExpr)},
			decision: DecisionNone,
			want:     "int x = 5;  ",
		},
		{
			name:     "blank",
			text:     "   ",
			diags:    []salvage.Diagnostic{at(1, 1, incompleteExpr)},
			decision: DecisionNone,
			want:     "   ",
		},
		{
			name:     "two problems",
			text:     "int x = 5",
			diags:    []salvage.Diagnostic{at(1, 9, incompleteExpr), at(1, 2, incompleteExpr)},
			decision: DecisionNone,
			want:     "int x = 5",
		},
		{
			name:     "other message",
			text:     "int x = 5",
			diags:    []salvage.Diagnostic{at(1, 9, `Parse error. Found "x", expected "("`)},
			decision: DecisionNone,
			want:     "int x = 5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line := &Line{Number: 1, Text: tt.text}
			got := TerminatorStrategy.Apply(line, Classify(tt.diags, nil))

			assert.Equal(t, tt.decision, got)
			assert.Equal(t, tt.want, line.Text)
		})
	}
}

func TestQuoteStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		text     string
		msg      string
		decision Decision
		want     string
	}{
		{
			name:     "closing paren",
			text:     `foo("bar);`,
			msg:      unterminatedBar,
			decision: DecisionReplace,
			want:     `foo("??");`,
		},
		{
			name:     "semicolon only",
			text:     `s = "abc;`,
			msg:      `Lexical error at line 1, column 10.  Encountered: "\n" (10), after : "\"abc;"`,
			decision: DecisionReplace,
			want:     `s = "??";`,
		},
		{
			name:     "no delimiter keeps tail",
			text:     `s = "abcd`,
			msg:      `Lexical error at line 1, column 10.  Encountered: "\n" (10), after : "\"abcd"`,
			decision: DecisionReplace,
			want:     `s = "?"abcd`,
		},
		{
			name:     "fragment not on line",
			text:     `s = 1;`,
			msg:      unterminatedBar,
			decision: DecisionNone,
			want:     `s = 1;`,
		},
		{
			name:     "empty fragment on empty line",
			text:     "",
			msg:      `Lexical error at line 1, column 1.  Encountered: "\n" (10), after : "\"`,
			decision: DecisionNone,
			want:     "",
		},
		{
			name:     "not a string",
			text:     `x # y`,
			msg:      `Lexical error at line 1, column 3.  Encountered: "#" (35), after : ""`,
			decision: DecisionNone,
			want:     `x # y`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line := &Line{Number: 1, Text: tt.text}
			got := QuoteStrategy.Apply(line, Classify([]salvage.Diagnostic{salvage.Unlocated(tt.msg)}, nil))

			assert.Equal(t, tt.decision, got)
			assert.Equal(t, tt.want, line.Text)
		})
	}
}

func TestBraceStrategy(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		diags    []salvage.Diagnostic
		decision Decision
	}{
		{name: "unexplained problem", diags: []salvage.Diagnostic{at(2, 1, `Parse error. Found "@", expected "("`)}, decision: DecisionCommentOut},
		{name: "brace problem here", diags: []salvage.Diagnostic{at(2, 1, `Parse error. Found "int", expected "}"`)}, decision: DecisionNone},
		{name: "previous wants close", diags: []salvage.Diagnostic{at(1, 4, `Parse error. Found "int", expected "}"`)}, decision: DecisionCommentOut},
		{name: "next wants open", diags: []salvage.Diagnostic{at(3, 1, `Parse error. Found "int", expected "{"`)}, decision: DecisionCommentOut},
		{name: "previous wants open", diags: []salvage.Diagnostic{at(1, 1, `Parse error. Found "int", expected "{"`)}, decision: DecisionNone},
		{name: "nothing", decision: DecisionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			line := &Line{Number: 2, Text: "  int y;"}
			got := BraceStrategy.Apply(line, Classify(tt.diags, nil))

			assert.Equal(t, tt.decision, got)
			assert.Equal(t, "  int y;", line.Text)
		})
	}
}

func TestStrategiesByName(t *testing.T) {
	t.Parallel()

	got, err := StrategiesByName([]string{salvage.StrategyBraces, salvage.StrategyDecompiler})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, salvage.StrategyDecompiler, got[0].Name)
	assert.Equal(t, salvage.StrategyBraces, got[1].Name)

	_, err = StrategiesByName([]string{"semicolons"})
	require.ErrorIs(t, err, ErrUnknownStrategy)
}

func TestDefaultStrategies_MatchNames(t *testing.T) {
	t.Parallel()

	var names []string
	for _, s := range DefaultStrategies() {
		names = append(names, s.Name)
	}

	assert.Equal(t, salvage.DefaultStrategyNames, names)
}
