// Package javalite parses a practical subset of Java with participle.
//
// It is the reference parser for recovery: its diagnostics are phrased the way
// JavaParser phrases them, so the recovery package's default vocabulary works
// against it unchanged. Lexical failures carry no span and embed their
// position in the message; syntax errors carry a span.
//
// Statement terminators are optional in the grammar. A statement that ends
// without one parses, and is then reported as an incomplete expression
// anchored at its last token, which is the line a terminator belongs on.
package javalite
