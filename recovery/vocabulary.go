// Package recovery patches source lines so a failed parse has a better chance
// of succeeding on the next attempt.
package recovery

import (
	"regexp"
	"strings"
)

// Vocabulary is the set of message fragments the strategies key off.
//
// The fragments must match the target parser's phrasing exactly; swapping the
// vocabulary retargets the engine without touching the rewriter.
type Vocabulary struct {
	// LocationHint must appear in an unspanned message before Location is tried.
	LocationHint string

	// Location extracts the position from an unspanned message. It must have
	// the named groups "line" and "column".
	Location *regexp.Regexp

	// ParseErrorFound, ExpectedOneOf and IncompleteExpression together mark a
	// statement that ended where an operator or terminator was expected.
	ParseErrorFound      string
	ExpectedOneOf        string
	IncompleteExpression string

	// NewlineEncountered and AfterQuote together mark a string literal that
	// ran into the end of its line.
	NewlineEncountered string
	AfterQuote         string

	// AfterFragment precedes the offending fragment; the fragment runs to the
	// message's final character, which is the closing quote.
	AfterFragment string

	ExpectedOpenBrace  string
	ExpectedCloseBrace string
}

// JavaParser is the vocabulary of JavaParser-style diagnostics.
var JavaParser = &Vocabulary{
	LocationHint:         "at line ",
	Location:             regexp.MustCompile(`line (?P<line>\d+), column (?P<column>\d+)`),
	ParseErrorFound:      `Parse error. Found "`,
	ExpectedOneOf:        "expected one of",
	IncompleteExpression: ">>>=",
	NewlineEncountered:   `Encountered: "\n"`,
	AfterQuote:           `after : "\"`,
	AfterFragment:        `after : "\`,
	ExpectedOpenBrace:    `expected "{"`,
	ExpectedCloseBrace:   `expected "}"`,
}

func (v *Vocabulary) isIncompleteExpression(msg string) bool {
	return strings.Contains(msg, v.ParseErrorFound) &&
		strings.Contains(msg, v.ExpectedOneOf) &&
		strings.Contains(msg, v.IncompleteExpression)
}

func (v *Vocabulary) isUnterminatedString(msg string) bool {
	return strings.Contains(msg, v.NewlineEncountered) && strings.Contains(msg, v.AfterQuote)
}

// offendingFragment returns the text after the last AfterFragment, without
// the message's closing quote. An empty fragment is not reported.
func (v *Vocabulary) offendingFragment(msg string) (string, bool) {
	idx := strings.LastIndex(msg, v.AfterFragment)
	if idx < 0 {
		return "", false
	}

	start := idx + len(v.AfterFragment)
	if start >= len(msg)-1 {
		return "", false
	}

	return msg[start : len(msg)-1], true
}

func (v *Vocabulary) mentionsBrace(msg string) bool {
	return strings.Contains(msg, v.ExpectedCloseBrace) || strings.Contains(msg, v.ExpectedOpenBrace)
}
