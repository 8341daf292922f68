package javalite

import (
	"errors"
	"testing"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tok struct {
	Type  lexer.TokenType
	Value string
}

func simplify(tokens []lexer.Token) []tok {
	out := make([]tok, len(tokens))
	for i, t := range tokens {
		out[i] = tok{Type: t.Type, Value: t.Value}
	}

	return out
}

func TestTokenize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  []tok
	}{
		{
			name:  "declaration",
			input: "int x = a >>= 2; // trailing",
			want: []tok{
				{tKeyword, "int"}, {tIdent, "x"}, {tOp, "="}, {tIdent, "a"},
				{tOp, ">"}, {tOp, ">"}, {tOp, "="}, {tNumber, "2"}, {tPunct, ";"}, {tEOF, ""},
			},
		},
		{
			name:  "generics",
			input: "Map<String, List<Integer>> m",
			want: []tok{
				{tIdent, "Map"}, {tOp, "<"}, {tIdent, "String"}, {tPunct, ","}, {tIdent, "List"},
				{tOp, "<"}, {tIdent, "Integer"}, {tOp, ">"}, {tOp, ">"}, {tIdent, "m"}, {tEOF, ""},
			},
		},
		{
			name:  "literals",
			input: `"a\"b" 'c' '\n' 0xFFL 1_000 1.5e3 .5f null`,
			want: []tok{
				{tString, `"a\"b"`}, {tChar, "'c'"}, {tChar, `'\n'`}, {tNumber, "0xFFL"}, {tNumber, "1_000"},
				{tNumber, "1.5e3"}, {tNumber, ".5f"}, {tKeyword, "null"}, {tEOF, ""},
			},
		},
		{
			name:  "operators",
			input: "a::b -> c++ <<= ... @ /* block */ x",
			want: []tok{
				{tIdent, "a"}, {tOp, "::"}, {tIdent, "b"}, {tOp, "->"}, {tIdent, "c"}, {tOp, "++"},
				{tOp, "<<="}, {tPunct, "..."}, {tPunct, "@"}, {tIdent, "x"}, {tEOF, ""},
			},
		},
		{
			name:  "decompiler marker",
			input: "** GOTO label1",
			want: []tok{
				{tOp, "*"}, {tOp, "*"}, {tIdent, "GOTO"}, {tIdent, "label1"}, {tEOF, ""},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tokens, err := Tokenize("", tt.input)
			require.NoError(t, err)

			if diff := cmp.Diff(tt.want, simplify(tokens)); diff != "" {
				t.Errorf("tokens mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestTokenize_Positions(t *testing.T) {
	t.Parallel()

	tokens, err := Tokenize("A.java", "a\n  bc")
	require.NoError(t, err)
	require.Len(t, tokens, 3)

	assert.Equal(t, lexer.Position{Filename: "A.java", Offset: 4, Line: 2, Column: 3}, tokens[1].Pos)
}

func TestTokenize_LexicalErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "string at newline",
			input: "foo(\"bar);\nx",
			want:  `Lexical error at line 1, column 11.  Encountered: "\n" (10), after : "\"bar);"`,
		},
		{
			name:  "string at eof",
			input: `s = "abc`,
			want:  `Lexical error at line 1, column 9.  Encountered: <EOF> after : "\"abc"`,
		},
		{
			name:  "char at newline",
			input: "c = 'x\n",
			want:  `Lexical error at line 1, column 7.  Encountered: "\n" (10), after : "\'x"`,
		},
		{
			name:  "unexpected character",
			input: "x # y",
			want:  `Lexical error at line 1, column 3.  Encountered: "#" (35), after : ""`,
		},
		{
			name:  "open block comment",
			input: "/* never closed",
			want:  `Lexical error at line 1, column 16.  Encountered: <EOF> after : "/* never closed"`,
		},
		{
			name:  "escaped backslash",
			input: "s = \"a\\\\\n",
			want:  `Lexical error at line 1, column 9.  Encountered: "\n" (10), after : "\"a\\\\"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Tokenize("", tt.input)

			var lexErr *LexerError
			require.True(t, errors.As(err, &lexErr), "got %v", err)
			assert.Equal(t, tt.want, lexErr.Message())
		})
	}
}

func TestEscape(t *testing.T) {
	t.Parallel()

	assert.Equal(t, `\"\'\\\t\n`, escape("\"'\\\t\n"))
	assert.Equal(t, `caf\u00e9`, escape("café"))
}
