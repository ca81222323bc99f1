// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package scanner provides a Unicode-aware lexer for sift expressions.
package scanner

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"nickandperla.net/sift/internal/token"
)

// Item represents a scanned token with its value.
type Item struct {
	Token token.Token
	Value string
	Pos   int  // Byte offset where this token started
	Raw   bool // STRING/FSTRING carried an r prefix
}

// Error is a lexical error at a byte offset.
type Error struct {
	Pos int
	Msg string
}

func (e *Error) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Pos, e.Msg)
}

// Scanner tokenizes an expression rune-by-rune.
type Scanner struct {
	src    string
	pos    int
	peeked *Item
}

// NewFromString creates a new Scanner over src.
func NewFromString(src string) *Scanner {
	return &Scanner{src: src}
}

// Peek returns the next item without consuming it.
func (s *Scanner) Peek() (*Item, error) {
	if s.peeked != nil {
		return s.peeked, nil
	}
	item, err := s.Next()
	if err != nil {
		return nil, err
	}
	s.peeked = item
	return item, nil
}

// Next returns the next token from the input.
func (s *Scanner) Next() (*Item, error) {
	if s.peeked != nil {
		item := s.peeked
		s.peeked = nil
		return item, nil
	}

	s.skipWhitespace()
	if s.pos >= len(s.src) {
		return &Item{Token: token.EOF, Pos: s.pos}, nil
	}

	start := s.pos
	r, _ := s.peekRune()

	switch {
	case isIdentStart(r):
		name := s.scanIdent()
		if q, ok := s.quoteAfterPrefix(name); ok {
			return s.scanString(start, name, q)
		}
		return &Item{Token: token.Lookup(name), Value: name, Pos: start}, nil
	case r == '\'' || r == '"':
		return s.scanString(start, "", r)
	case isDigit(r) || (r == '.' && isDigit(s.runeAt(s.pos+1))):
		return s.scanNumber(start)
	}

	s.pos++
	tok := token.ILLEGAL
	switch r {
	case '(':
		tok = token.LPAREN
	case ')':
		tok = token.RPAREN
	case '[':
		tok = token.LBRACKET
	case ']':
		tok = token.RBRACKET
	case ',':
		tok = token.COMMA
	case '.':
		tok = token.DOT
	case ':':
		tok = token.COLON
	case '+':
		tok = token.PLUS
	case '-':
		tok = token.MINUS
	case '%':
		tok = token.PERCENT
	case '*':
		tok = s.either('*', token.POW, token.STAR)
	case '/':
		tok = s.either('/', token.DSLASH, token.SLASH)
	case '=':
		tok = s.either('=', token.EQ, token.ASSIGN)
	case '<':
		tok = s.either('=', token.LE, token.LT)
	case '>':
		tok = s.either('=', token.GE, token.GT)
	case '!':
		if s.pos < len(s.src) && s.src[s.pos] == '=' {
			s.pos++
			tok = token.NE
		}
	}
	if tok == token.ILLEGAL {
		r, size := utf8.DecodeRuneInString(s.src[start:])
		s.pos = start + size
		return nil, &Error{Pos: start, Msg: fmt.Sprintf("unexpected character %q", r)}
	}
	return &Item{Token: tok, Value: s.src[start:s.pos], Pos: start}, nil
}

func (s *Scanner) either(next byte, two, one token.Token) token.Token {
	if s.pos < len(s.src) && s.src[s.pos] == next {
		s.pos++
		return two
	}
	return one
}

func (s *Scanner) peekRune() (rune, int) {
	return utf8.DecodeRuneInString(s.src[s.pos:])
}

func (s *Scanner) runeAt(pos int) rune {
	if pos >= len(s.src) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s.src[pos:])
	return r
}

func (s *Scanner) skipWhitespace() {
	for s.pos < len(s.src) {
		r, size := s.peekRune()
		if !unicode.IsSpace(r) {
			return
		}
		s.pos += size
	}
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

// isIdentChar returns true if the rune is valid in an identifier (letter, digit, underscore).
func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func (s *Scanner) scanIdent() string {
	start := s.pos
	for s.pos < len(s.src) {
		r, size := s.peekRune()
		if !isIdentChar(r) {
			break
		}
		s.pos += size
	}
	return s.src[start:s.pos]
}

// quoteAfterPrefix reports whether name is a string prefix (r, f, rf, fr)
// immediately followed by a quote.
func (s *Scanner) quoteAfterPrefix(name string) (rune, bool) {
	switch strings.ToLower(name) {
	case "r", "f", "rf", "fr":
	default:
		return 0, false
	}
	if s.pos >= len(s.src) {
		return 0, false
	}
	q := rune(s.src[s.pos])
	return q, q == '\'' || q == '"'
}

// scanString scans a quoted literal starting at the opening quote.
// Plain strings are returned decoded; f-strings keep their raw body so the
// parser can split literal and replacement fields before decoding.
func (s *Scanner) scanString(start int, prefix string, quote rune) (*Item, error) {
	lower := strings.ToLower(prefix)
	raw := strings.Contains(lower, "r")
	format := strings.Contains(lower, "f")

	s.pos++ // opening quote
	bodyStart := s.pos
	for {
		if s.pos >= len(s.src) {
			return nil, &Error{Pos: start, Msg: "unterminated string literal"}
		}
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		if c == '\n' {
			return nil, &Error{Pos: start, Msg: "unterminated string literal"}
		}
		if rune(c) == quote {
			break
		}
		s.pos++
	}
	body := s.src[bodyStart:s.pos]
	s.pos++ // closing quote

	if format {
		return &Item{Token: token.FSTRING, Value: body, Pos: start, Raw: raw}, nil
	}
	if raw {
		return &Item{Token: token.STRING, Value: body, Pos: start, Raw: true}, nil
	}
	decoded, err := Unescape(body)
	if err != nil {
		return nil, &Error{Pos: start, Msg: err.Error()}
	}
	return &Item{Token: token.STRING, Value: decoded, Pos: start}, nil
}

func (s *Scanner) scanNumber(start int) (*Item, error) {
	if s.src[s.pos] == '0' && s.pos+1 < len(s.src) && strings.ContainsRune("xXoObB", rune(s.src[s.pos+1])) {
		s.pos += 2
		for s.pos < len(s.src) && (isHexDigit(rune(s.src[s.pos])) || s.src[s.pos] == '_') {
			s.pos++
		}
		return &Item{Token: token.INT, Value: s.src[start:s.pos], Pos: start}, nil
	}

	tok := token.INT
	s.digits()
	if s.pos < len(s.src) && s.src[s.pos] == '.' {
		tok = token.FLOAT
		s.pos++
		s.digits()
	}
	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		save := s.pos
		s.pos++
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		if s.pos < len(s.src) && isDigit(rune(s.src[s.pos])) {
			tok = token.FLOAT
			s.digits()
		} else {
			s.pos = save
		}
	}
	if s.pos < len(s.src) && isIdentStart(s.runeAt(s.pos)) {
		return nil, &Error{Pos: start, Msg: "invalid numeric literal"}
	}
	return &Item{Token: tok, Value: s.src[start:s.pos], Pos: start}, nil
}

func (s *Scanner) digits() {
	for s.pos < len(s.src) && (isDigit(rune(s.src[s.pos])) || s.src[s.pos] == '_') {
		s.pos++
	}
}

func isHexDigit(r rune) bool {
	return isDigit(r) || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// Unescape decodes backslash escapes in a string literal body.
// Unknown escapes are kept verbatim, backslash included.
func Unescape(body string) (string, error) {
	if !strings.ContainsRune(body, '\\') {
		return body, nil
	}
	var sb strings.Builder
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'v':
			sb.WriteByte('\v')
		case 'f':
			sb.WriteByte('\f')
		case 'a':
			sb.WriteByte('\a')
		case 'b':
			sb.WriteByte('\b')
		case '0':
			sb.WriteByte(0)
		case '\\', '\'', '"':
			sb.WriteByte(body[i])
		case 'x', 'u', 'U':
			n := map[byte]int{'x': 2, 'u': 4, 'U': 8}[body[i]]
			if i+1+n > len(body) {
				return "", fmt.Errorf("truncated \\%c escape", body[i])
			}
			code, err := strconv.ParseUint(body[i+1:i+1+n], 16, 32)
			if err != nil || code > unicode.MaxRune {
				return "", fmt.Errorf("invalid \\%c escape", body[i])
			}
			sb.WriteRune(rune(code))
			i += n
		default:
			sb.WriteByte('\\')
			sb.WriteByte(body[i])
		}
	}
	return sb.String(), nil
}
