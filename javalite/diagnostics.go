package javalite

import (
	"cmp"
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"slices"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/rlch/salvage"
)

// expressionFollow is every token that may continue an expression statement,
// in the order JavaParser lists them.
const expressionFollow = `"!=" "%" "%=" "&" "&&" "&=" "(" "*" "*=" "+" "++" "+=" "," "-" "--" "-=" "->" ` +
	`"." "/" "/=" "::" ";" "<" "<<=" "<=" "=" "==" ">" ">=" ">>=" ">>>=" "?" "[" "^" "^=" "instanceof" ` +
	`"|" "|=" "||"`

// blockFollow is every token that may start a statement or close a block.
const blockFollow = `"!" "(" "++" "--" ";" "@" "abstract" "assert" "boolean" "break" "byte" "char" "class" ` +
	`"continue" "do" "double" "enum" "final" "float" "for" "if" "int" "interface" "long" "new" "return" ` +
	`"short" "super" "switch" "synchronized" "this" "throw" "try" "while" "{" "}" <IDENTIFIER>`

var expectedPattern = regexp.MustCompile(`\(expected (.+)\)$`)

// terminable is implemented by nodes that embed both Node and Terminator.
type terminable interface {
	tokens() []lexer.Token
	terminated() bool
}

// syntaxError converts a participle error into a diagnostic.
func syntaxError(err error, tokens []lexer.Token) salvage.Diagnostic {
	var unexpected *participle.UnexpectedTokenError
	if errors.As(err, &unexpected) {
		var expect string
		if m := expectedPattern.FindStringSubmatch(unexpected.Message()); m != nil {
			expect = m[1]
		}

		switch {
		case expect == `";"`:
			return incompleteStatement(previous(tokens, unexpected.Unexpected), unexpected.Unexpected)
		case expect == `"}"` && !unexpected.Unexpected.EOF():
			// Nothing in the block could start here, not only "}".
			expect = "one of " + blockFollow
		}

		msg := "Parse error. Found " + found(unexpected.Unexpected)
		if expect != "" {
			msg += ", expected " + expect
		}

		return spanning(unexpected.Unexpected, msg)
	}

	var perr participle.Error
	if errors.As(err, &perr) {
		return salvage.At(perr.Position(), "Parse error. "+perr.Message())
	}

	return salvage.Unlocated(err.Error())
}

// missingTerminators reports every statement that ended without ";".
func missingTerminators(unit *CompilationUnit, tokens []lexer.Token) []salvage.Diagnostic {
	var diags []salvage.Diagnostic

	walk(reflect.ValueOf(unit), func(t terminable) {
		if t.terminated() {
			return
		}

		last, ok := lastSignificant(t.tokens())
		if !ok {
			return
		}

		diags = append(diags, incompleteStatement(last, next(tokens, last)))
	})

	slices.SortStableFunc(diags, func(a, b salvage.Diagnostic) int {
		return cmp.Compare(a.Span.Start.Offset, b.Span.Start.Offset)
	})

	return diags
}

// incompleteStatement reports that the statement ending at last could have
// continued with any expression operator, or with ";".
func incompleteStatement(last, following lexer.Token) salvage.Diagnostic {
	return spanning(last, fmt.Sprintf("Parse error. Found %s, expected one of %s", found(following), expressionFollow))
}

func found(tok lexer.Token) string {
	if tok.EOF() {
		return `"<EOF>"`
	}

	return fmt.Sprintf("%q", tok.Value)
}

// spanning returns a diagnostic covering tok.
func spanning(tok lexer.Token, msg string) salvage.Diagnostic {
	end := tok.Pos

	for _, r := range tok.Value {
		end.Offset += len(string(r))

		if r == '\n' {
			end.Line++
			end.Column = 1
		} else {
			end.Column++
		}
	}

	return salvage.Diagnostic{
		Message: msg,
		Span:    &salvage.Span{Start: tok.Pos, End: end},
	}
}

// indexOf returns the index of the significant token starting at offset.
func indexOf(tokens []lexer.Token, offset int) (int, bool) {
	return slices.BinarySearchFunc(tokens, offset, func(t lexer.Token, off int) int {
		return cmp.Compare(t.Pos.Offset, off)
	})
}

// previous returns the significant token before tok, or tok itself.
func previous(tokens []lexer.Token, tok lexer.Token) lexer.Token {
	i, ok := indexOf(tokens, tok.Pos.Offset)
	if !ok || i == 0 {
		return tok
	}

	return tokens[i-1]
}

// next returns the significant token after tok, or EOF.
func next(tokens []lexer.Token, tok lexer.Token) lexer.Token {
	i, ok := indexOf(tokens, tok.Pos.Offset)
	if !ok || i+1 >= len(tokens) {
		return lexer.EOFToken(tok.Pos)
	}

	return tokens[i+1]
}

func lastSignificant(tokens []lexer.Token) (lexer.Token, bool) {
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Type != tWhitespace && tokens[i].Type != tComment && !tokens[i].EOF() {
			return tokens[i], true
		}
	}

	return lexer.Token{}, false
}

var tokenSliceType = reflect.TypeFor[[]lexer.Token]()

// walk calls visit for every terminable node reachable from v, parents first.
func walk(v reflect.Value, visit func(terminable)) {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return
		}

		if t, ok := v.Interface().(terminable); ok {
			visit(t)
		}

		walk(v.Elem(), visit)

	case reflect.Struct:
		for i := range v.NumField() {
			if v.Type().Field(i).IsExported() {
				walk(v.Field(i), visit)
			}
		}

	case reflect.Slice:
		if v.Type() == tokenSliceType {
			return
		}

		for i := range v.Len() {
			walk(v.Index(i), visit)
		}

	default:
	}
}
