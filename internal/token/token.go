// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package token defines sift expression token types and keywords.
package token

// Token represents a sift expression token type.
type Token int

const (
	EOF Token = iota
	ILLEGAL

	// Literals
	NAME
	INT
	FLOAT
	STRING
	FSTRING

	// Punctuation
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	COMMA    // ,
	DOT      // .
	COLON    // :
	ASSIGN   // = (keyword arguments only)

	// Arithmetic
	PLUS    // +
	MINUS   // -
	STAR    // *
	SLASH   // /
	DSLASH  // //
	PERCENT // %
	POW     // **

	// Comparison
	EQ // ==
	NE // !=
	LT // <
	LE // <=
	GT // >
	GE // >=

	// Keywords
	AND
	OR
	NOT
	IN
	IS
	IF
	ELSE
	FOR
	NONE
	TRUE
	FALSE
	LAMBDA
)

var keywords = map[string]Token{
	"and":    AND,
	"or":     OR,
	"not":    NOT,
	"in":     IN,
	"is":     IS,
	"if":     IF,
	"else":   ELSE,
	"for":    FOR,
	"None":   NONE,
	"True":   TRUE,
	"False":  FALSE,
	"lambda": LAMBDA,
}

// Lookup returns the keyword token for ident, or NAME if ident is not a keyword.
func Lookup(ident string) Token {
	if t, ok := keywords[ident]; ok {
		return t
	}
	return NAME
}

var names = [...]string{
	EOF:      "EOF",
	ILLEGAL:  "ILLEGAL",
	NAME:     "NAME",
	INT:      "INT",
	FLOAT:    "FLOAT",
	STRING:   "STRING",
	FSTRING:  "FSTRING",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	COMMA:    ",",
	DOT:      ".",
	COLON:    ":",
	ASSIGN:   "=",
	PLUS:     "+",
	MINUS:    "-",
	STAR:     "*",
	SLASH:    "/",
	DSLASH:   "//",
	PERCENT:  "%",
	POW:      "**",
	EQ:       "==",
	NE:       "!=",
	LT:       "<",
	LE:       "<=",
	GT:       ">",
	GE:       ">=",
	AND:      "and",
	OR:       "or",
	NOT:      "not",
	IN:       "in",
	IS:       "is",
	IF:       "if",
	ELSE:     "else",
	FOR:      "for",
	NONE:     "None",
	TRUE:     "True",
	FALSE:    "False",
	LAMBDA:   "lambda",
}

// String returns the string representation of a token.
func (t Token) String() string {
	if int(t) >= 0 && int(t) < len(names) && names[t] != "" {
		return names[t]
	}
	return "UNKNOWN"
}

// IsComparison returns true for tokens that start a comparison operator.
// NOT only counts when followed by IN, which the parser checks.
func (t Token) IsComparison() bool {
	switch t {
	case EQ, NE, LT, LE, GT, GE, IN, IS:
		return true
	}
	return false
}

// IsLiteral returns true if the token carries a literal value.
func (t Token) IsLiteral() bool {
	switch t {
	case INT, FLOAT, STRING, FSTRING, NONE, TRUE, FALSE:
		return true
	}
	return false
}
