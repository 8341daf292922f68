package javalite

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2/lexer"
)

// Token type constants - negative values as per participle convention.
const (
	tEOF        lexer.TokenType = lexer.EOF
	tComment    lexer.TokenType = -(iota + 2) //nolint:mnd // participle convention
	tWhitespace                               // spaces, tabs, newlines
	tKeyword                                  // reserved words and literals true/false/null
	tIdent                                    // identifiers
	tNumber                                   // integer and floating point literals
	tString                                   // "..."
	tChar                                     // '...'
	tOp                                       // operators
	tPunct                                    // separators
)

// keywords are lexed as tKeyword so @Ident never captures them.
var keywords = map[string]bool{
	"abstract": true, "assert": true, "boolean": true, "break": true, "byte": true,
	"case": true, "catch": true, "char": true, "class": true, "const": true,
	"continue": true, "default": true, "do": true, "double": true, "else": true,
	"enum": true, "extends": true, "final": true, "finally": true, "float": true,
	"for": true, "goto": true, "if": true, "implements": true, "import": true,
	"instanceof": true, "int": true, "interface": true, "long": true, "native": true,
	"new": true, "package": true, "private": true, "protected": true, "public": true,
	"return": true, "short": true, "static": true, "strictfp": true, "super": true,
	"switch": true, "synchronized": true, "this": true, "throw": true, "throws": true,
	"transient": true, "try": true, "void": true, "volatile": true, "while": true,
	"true": true, "false": true, "null": true,
}

// multiOps are matched longest first. ">" is always a single token so nested
// type arguments close one at a time; the grammar reassembles ">>", ">=" etc.
var multiOps = []string{
	"<<=", "...",
	"->", "::", "++", "--", "&&", "||", "==", "!=", "<=", "<<",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}

// LexerError is a lexical failure, phrased like a JavaCC token manager error.
type LexerError struct {
	Pos lexer.Position

	// Encountered is the character the lexer stopped at; zero at end of input.
	Encountered rune
	EOF         bool

	// After is the text of the token that was being scanned.
	After string
}

func (e *LexerError) Error() string {
	return e.Message()
}

// Message renders the error the way JavaParser reports lexical problems.
func (e *LexerError) Message() string {
	var encountered string
	if e.EOF {
		encountered = "<EOF> "
	} else {
		encountered = fmt.Sprintf(`"%s" (%d), `, escape(string(e.Encountered)), e.Encountered)
	}

	return fmt.Sprintf("Lexical error at line %d, column %d.  Encountered: %safter : \"%s\"",
		e.Pos.Line, e.Pos.Column, encountered, escape(e.After))
}

// escape mirrors JavaCC's addEscapes.
func escape(s string) string {
	var b strings.Builder

	for _, r := range s {
		switch r {
		case '\b':
			b.WriteString(`\b`)
		case '\t':
			b.WriteString(`\t`)
		case '\n':
			b.WriteString(`\n`)
		case '\f':
			b.WriteString(`\f`)
		case '\r':
			b.WriteString(`\r`)
		case '"':
			b.WriteString(`\"`)
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		default:
			if r < 0x20 || r > 0x7e {
				fmt.Fprintf(&b, `\u%04x`, r)

				continue
			}

			b.WriteRune(r)
		}
	}

	return b.String()
}

// javaDefinition implements lexer.Definition for Java source.
type javaDefinition struct {
	symbols map[string]lexer.TokenType
}

func newJavaLexer() *javaDefinition {
	return &javaDefinition{
		symbols: map[string]lexer.TokenType{
			"EOF":        tEOF,
			"Comment":    tComment,
			"Whitespace": tWhitespace,
			"Keyword":    tKeyword,
			"Ident":      tIdent,
			"Number":     tNumber,
			"String":     tString,
			"Char":       tChar,
			"Op":         tOp,
			"Punct":      tPunct,
		},
	}
}

// Symbols returns the mapping of symbol names to token types.
func (d *javaDefinition) Symbols() map[string]lexer.TokenType {
	return d.symbols
}

// Lex creates a new Lexer for the given reader.
//
//nolint:ireturn // Required by participle's lexer.Definition interface.
func (d *javaDefinition) Lex(filename string, r io.Reader) (lexer.Lexer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return d.LexString(filename, string(data))
}

// LexString implements lexer.StringDefinition.
//
//nolint:ireturn // Required by participle's lexer.StringDefinition interface.
func (d *javaDefinition) LexString(filename string, input string) (lexer.Lexer, error) {
	return newLexerState(filename, input), nil
}

// Tokenize returns the significant tokens of input, ending with EOF.
// Whitespace and comments are dropped.
func Tokenize(filename, input string) ([]lexer.Token, error) {
	l := newLexerState(filename, input)

	var tokens []lexer.Token

	for {
		tok, err := l.Next()
		if err != nil {
			return tokens, err
		}

		if tok.Type == tWhitespace || tok.Type == tComment {
			continue
		}

		tokens = append(tokens, tok)

		if tok.EOF() {
			return tokens, nil
		}
	}
}

type lexerState struct {
	filename string
	input    string
	offset   int
	line     int
	col      int
}

func newLexerState(filename, input string) *lexerState {
	return &lexerState{
		filename: filename,
		input:    input,
		line:     1,
		col:      1,
	}
}

// Next returns the next token.
func (l *lexerState) Next() (lexer.Token, error) {
	if l.eof() {
		return lexer.EOFToken(l.pos()), nil
	}

	start := l.pos()
	r := l.peek()

	switch {
	case isSpace(r):
		for !l.eof() && isSpace(l.peek()) {
			l.advance()
		}

		return l.token(tWhitespace, start), nil

	case l.match("//"):
		for !l.eof() && l.peek() != '\n' {
			l.advance()
		}

		return l.token(tComment, start), nil

	case l.match("/*"):
		return l.scanBlockComment(start)

	case r == '"':
		return l.scanQuoted(start, '"', tString)

	case r == '\'':
		return l.scanQuoted(start, '\'', tChar)

	case isDigit(r) || (r == '.' && isDigit(l.peekAt(1))):
		return l.scanNumber(start), nil

	case isIdentStart(r):
		for !l.eof() && isIdentContinue(l.peek()) {
			l.advance()
		}

		tok := l.token(tIdent, start)
		if keywords[tok.Value] {
			tok.Type = tKeyword
		}

		return tok, nil
	}

	for _, op := range multiOps {
		if l.match(op) {
			for range utf8.RuneCountInString(op) {
				l.advance()
			}

			if op == "..." {
				return l.token(tPunct, start), nil
			}

			return l.token(tOp, start), nil
		}
	}

	switch {
	case strings.ContainsRune("(){}[];,.@", r):
		l.advance()

		return l.token(tPunct, start), nil
	case strings.ContainsRune("=><!~?:+-*/&|^%", r):
		l.advance()

		return l.token(tOp, start), nil
	}

	return lexer.Token{}, &LexerError{Pos: start, Encountered: r}
}

func (l *lexerState) pos() lexer.Position {
	return lexer.Position{
		Filename: l.filename,
		Offset:   l.offset,
		Line:     l.line,
		Column:   l.col,
	}
}

func (l *lexerState) eof() bool {
	return l.offset >= len(l.input)
}

func (l *lexerState) peek() rune {
	if l.eof() {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[l.offset:])

	return r
}

func (l *lexerState) peekAt(n int) rune {
	off := l.offset + n
	if off >= len(l.input) {
		return 0
	}

	r, _ := utf8.DecodeRuneInString(l.input[off:])

	return r
}

func (l *lexerState) advance() {
	if l.eof() {
		return
	}

	r, size := utf8.DecodeRuneInString(l.input[l.offset:])
	l.offset += size

	if r == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
}

func (l *lexerState) match(s string) bool {
	return strings.HasPrefix(l.input[l.offset:], s)
}

func (l *lexerState) token(typ lexer.TokenType, start lexer.Position) lexer.Token {
	return lexer.Token{
		Type:  typ,
		Value: l.input[start.Offset:l.offset],
		Pos:   start,
	}
}

// fail reports the character at the cursor, with the text scanned since start.
func (l *lexerState) fail(start lexer.Position) *LexerError {
	return &LexerError{
		Pos:         l.pos(),
		Encountered: l.peek(),
		EOF:         l.eof(),
		After:       l.input[start.Offset:l.offset],
	}
}

func (l *lexerState) scanBlockComment(start lexer.Position) (lexer.Token, error) {
	l.advance() // /
	l.advance() // *

	for !l.eof() {
		if l.match("*/") {
			l.advance()
			l.advance()

			return l.token(tComment, start), nil
		}

		l.advance()
	}

	return lexer.Token{}, l.fail(start)
}

// scanQuoted scans a string or char literal. Neither may span lines.
func (l *lexerState) scanQuoted(start lexer.Position, quote rune, typ lexer.TokenType) (lexer.Token, error) {
	l.advance() // opening quote

	for !l.eof() {
		ch := l.peek()

		switch {
		case ch == '\\' && l.peekAt(1) != '\n' && l.peekAt(1) != 0:
			l.advance() // backslash
			l.advance() // escaped char

			continue
		case ch == quote:
			l.advance() // closing quote

			return l.token(typ, start), nil
		case ch == '\n' || ch == '\r':
			return lexer.Token{}, l.fail(start)
		}

		l.advance()
	}

	return lexer.Token{}, l.fail(start)
}

func (l *lexerState) scanNumber(start lexer.Position) lexer.Token {
	if l.peek() == '0' {
		switch l.peekAt(1) {
		case 'x', 'X':
			l.advance() // 0
			l.advance() // x

			for !l.eof() && (isHexDigit(l.peek()) || l.peek() == '_') {
				l.advance()
			}

			l.scanSuffix("lL")

			return l.token(tNumber, start)

		case 'b', 'B':
			l.advance() // 0
			l.advance() // b

			for !l.eof() && (l.peek() == '0' || l.peek() == '1' || l.peek() == '_') {
				l.advance()
			}

			l.scanSuffix("lL")

			return l.token(tNumber, start)
		}
	}

	// Decimal and octal digits
	for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
		l.advance()
	}

	// Fractional part
	if l.peek() == '.' && isDigit(l.peekAt(1)) {
		l.advance() // .

		for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}
	}

	// Exponent
	if (l.peek() == 'e' || l.peek() == 'E') &&
		(isDigit(l.peekAt(1)) || ((l.peekAt(1) == '+' || l.peekAt(1) == '-') && isDigit(l.peekAt(2)))) {
		l.advance() // e/E

		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}

		for !l.eof() && (isDigit(l.peek()) || l.peek() == '_') {
			l.advance()
		}
	}

	l.scanSuffix("lLfFdD")

	return l.token(tNumber, start)
}

func (l *lexerState) scanSuffix(suffixes string) {
	if slices.Contains([]rune(suffixes), l.peek()) {
		l.advance()
	}
}

// Character helpers.

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func isIdentStart(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return r == '$' || r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
