package javalite

import (
	"errors"

	"github.com/alecthomas/participle/v2"

	"github.com/rlch/salvage"
)

// Statement alternatives share long prefixes (a local variable and an
// expression statement both start with a dotted name), so backtracking has to
// reach past them.
const lookahead = 256

var grammar = participle.MustBuild[CompilationUnit](
	participle.Lexer(newJavaLexer()),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(lookahead),
)

func init() {
	salvage.RegisterParser(salvage.ParserJava, func() salvage.Parser { return New() })
}

// Parser parses Java source into a CompilationUnit.
type Parser struct{}

// New creates a Java parser.
func New() *Parser {
	return &Parser{}
}

// Name returns the parser identifier.
func (*Parser) Name() string {
	return salvage.ParserJava
}

// Parse parses source. It stops at the first lexical or syntax error; a
// successful parse may still report missing statement terminators.
func (*Parser) Parse(filename, source string) *salvage.Result {
	tokens, err := Tokenize(filename, source)
	if err != nil {
		var lexErr *LexerError
		if errors.As(err, &lexErr) {
			return &salvage.Result{Diagnostics: []salvage.Diagnostic{salvage.Unlocated(lexErr.Message())}}
		}

		return &salvage.Result{Diagnostics: []salvage.Diagnostic{salvage.Unlocated(err.Error())}}
	}

	unit, err := grammar.ParseString(filename, source)
	if err != nil {
		return &salvage.Result{
			Tree:        unit,
			Diagnostics: []salvage.Diagnostic{syntaxError(err, tokens)},
		}
	}

	return &salvage.Result{
		Tree:        unit,
		Diagnostics: missingTerminators(unit, tokens),
	}
}

// Parse parses source with a fresh Parser.
func Parse(filename, source string) *salvage.Result {
	return New().Parse(filename, source)
}
