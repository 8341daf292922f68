package recovery

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"

	"github.com/rlch/salvage"
)

const unterminatedBar = `Lexical error at line 1, column 11.  Encountered: "\n" (10), after : "\"bar);"`

func at(line, column int, msg string) salvage.Diagnostic {
	return salvage.At(lexer.Position{Line: line, Column: column}, msg)
}

func TestClassify(t *testing.T) {
	t.Parallel()

	spanned := at(3, 5, `Parse error. Found "}", expected ";"`)
	lexical := salvage.Unlocated(unterminatedBar)
	noHint := salvage.Unlocated("line 4, column 2 without the marker")
	internal := salvage.Unlocated("some internal error")
	dangling := salvage.Diagnostic{Message: "at line 9, column 1", Span: &salvage.Span{}}

	idx := Classify([]salvage.Diagnostic{spanned, lexical, noHint, internal, dangling}, nil)

	if diff := cmp.Diff(ProblemsByLine{3: {spanned}}, idx.Problems); diff != "" {
		t.Errorf("problems mismatch (-want +got):\n%s", diff)
	}

	want := LexicalFailuresByLine{1: {{Diagnostic: lexical, Line: 1, Column: 11}}}
	if diff := cmp.Diff(want, idx.Lexical); diff != "" {
		t.Errorf("lexical mismatch (-want +got):\n%s", diff)
	}

	assert.Same(t, JavaParser, idx.Vocab)
}

func TestClassify_Unlocalizable(t *testing.T) {
	t.Parallel()

	idx := Classify([]salvage.Diagnostic{salvage.Unlocated("some internal error")}, JavaParser)

	assert.Empty(t, idx.Problems)
	assert.Empty(t, idx.Lexical)
}

func TestClassify_KeepsReportOrder(t *testing.T) {
	t.Parallel()

	first := at(2, 1, "first")
	second := at(2, 7, "second")

	idx := Classify([]salvage.Diagnostic{first, second}, nil)

	assert.Equal(t, []salvage.Diagnostic{first, second}, idx.ProblemsOn(2))
	assert.Nil(t, idx.ProblemsOn(1))
	assert.Nil(t, idx.LexicalOn(2))
}

func TestVocabulary_OffendingFragment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  string
		want string
		ok   bool
	}{
		{name: "string", msg: unterminatedBar, want: `"bar);`, ok: true},
		{name: "no marker", msg: "Lexical error at line 1, column 1.", ok: false},
		{name: "marker at end", msg: `after : "\`, ok: false},
		{name: "empty fragment", msg: `Lexical error at line 2, column 1.  Encountered: "\n" (10), after : "\"`, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := JavaParser.offendingFragment(tt.msg)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestVocabulary_Predicates(t *testing.T) {
	t.Parallel()

	incomplete := `Parse error. Found "<EOF>", expected one of "," ";" "=" ">>>=" "||"`

	assert.True(t, JavaParser.isIncompleteExpression(incomplete))
	assert.False(t, JavaParser.isIncompleteExpression(`Parse error. Found "<EOF>", expected ";"`))

	assert.True(t, JavaParser.isUnterminatedString(unterminatedBar))
	assert.False(t, JavaParser.isUnterminatedString(`Lexical error at line 1, column 4.  Encountered: "#" (35), after : ""`))

	assert.True(t, JavaParser.mentionsBrace(`Parse error. Found "int", expected "}"`))
	assert.False(t, JavaParser.mentionsBrace(incomplete))
}
