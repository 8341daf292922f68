package salvage

import (
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubParser struct{}

func (stubParser) Name() string { return "stub" }

func (stubParser) Parse(_, _ string) *Result { return &Result{} }

func TestParserRegistry(t *testing.T) {
	RegisterParser("stub", func() Parser { return stubParser{} })

	p, err := NewParser("stub")
	require.NoError(t, err)
	assert.Equal(t, "stub", p.Name())
	assert.True(t, p.Parse("x", "").OK())

	assert.Contains(t, RegisteredParsers(), "stub")

	_, err = NewParser("missing")
	require.ErrorIs(t, err, ErrUnknownParser)
}

func TestResult_OK(t *testing.T) {
	t.Parallel()

	var nilResult *Result

	assert.False(t, nilResult.OK())
	assert.True(t, (&Result{}).OK())
	assert.False(t, (&Result{Diagnostics: []Diagnostic{Unlocated("x")}}).OK())
}

func TestDiagnostic_Line(t *testing.T) {
	t.Parallel()

	d := At(lexer.Position{Line: 4, Column: 2}, "boom")
	assert.Equal(t, 4, d.Line())
	assert.Equal(t, "4:2: boom", d.String())

	u := Unlocated("Lexical error at line 1, column 3.")
	assert.Zero(t, u.Line())
	assert.Equal(t, u.Message, u.String())

	zero := Diagnostic{Message: "zero", Span: &Span{}}
	assert.False(t, zero.Span.Resolvable())
	assert.Zero(t, zero.Line())
}
