// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"
)

// Repr returns the canonical literal form of v: strings quoted, sequences
// bracketed or parenthesized, None as None.
func Repr(v Value) string {
	var sb strings.Builder
	writeRepr(&sb, v)
	return sb.String()
}

// Display returns the str() form of v. Strings are unquoted; every other
// variant renders as its Repr.
func Display(v Value) string {
	if s, ok := v.(Str); ok {
		return string(s)
	}
	return Repr(v)
}

func writeRepr(sb *strings.Builder, v Value) {
	switch x := v.(type) {
	case Null:
		sb.WriteString("None")
	case Bool:
		if x {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case Int:
		sb.WriteString(strconv.FormatInt(int64(x), 10))
	case Float:
		sb.WriteString(FormatFloat(float64(x)))
	case Str:
		sb.WriteString(QuoteString(string(x)))
	case List:
		sb.WriteByte('[')
		writeElems(sb, x)
		sb.WriteByte(']')
	case Tuple:
		sb.WriteByte('(')
		writeElems(sb, x)
		if len(x) == 1 {
			sb.WriteByte(',')
		}
		sb.WriteByte(')')
	default:
		// Unreachable: Value is sealed.
		panic(fmt.Sprintf("value: unknown variant %T", v))
	}
}

func writeElems(sb *strings.Builder, elems []Value) {
	for i, e := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeRepr(sb, e)
	}
}

// FormatFloat renders f the shortest way that round-trips, switching to
// exponent notation outside [1e-4, 1e16) and always keeping a decimal point
// or exponent so the text reads back as a float.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "inf"
	case math.IsInf(f, -1):
		return "-inf"
	case math.IsNaN(f):
		return "nan"
	case f == 0:
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	exp, _ := strconv.Atoi(e[strings.IndexByte(e, 'e')+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// QuoteString returns s as a single-quoted literal, switching to double
// quotes when s contains a single quote and no double quote.
func QuoteString(s string) string {
	quote := byte('\'')
	if strings.ContainsRune(s, '\'') && !strings.ContainsRune(s, '"') {
		quote = '"'
	}
	var sb strings.Builder
	sb.WriteByte(quote)
	for _, r := range s {
		switch {
		case r == rune(quote) || r == '\\':
			sb.WriteByte('\\')
			sb.WriteRune(r)
		case r == '\n':
			sb.WriteString(`\n`)
		case r == '\r':
			sb.WriteString(`\r`)
		case r == '\t':
			sb.WriteString(`\t`)
		case r < 0x20 || r == 0x7f:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r == unicode.ReplacementChar || unicode.IsPrint(r) || r == ' ':
			sb.WriteRune(r)
		case r <= 0xff:
			fmt.Fprintf(&sb, `\x%02x`, r)
		case r <= 0xffff:
			fmt.Fprintf(&sb, `\u%04x`, r)
		default:
			fmt.Fprintf(&sb, `\U%08x`, r)
		}
	}
	sb.WriteByte(quote)
	return sb.String()
}
