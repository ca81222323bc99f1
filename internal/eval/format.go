// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"nickandperla.net/sift/internal/value"
)

// formatSpec is a parsed [[fill]align][sign][#][0][width][,|_][.precision][type].
type formatSpec struct {
	fill      rune
	align     byte
	sign      byte
	alt       bool
	zero      bool
	width     int
	grouping  byte
	precision int // -1 when absent
	verb      byte
}

func parseFormatSpec(spec string) (formatSpec, error) {
	fs := formatSpec{fill: ' ', precision: -1}
	invalid := func() (formatSpec, error) {
		return formatSpec{}, valueError("Invalid format specifier '%s'", spec)
	}
	rest := spec
	isAlign := func(c byte) bool { return c == '<' || c == '>' || c == '^' || c == '=' }

	if r, size := utf8.DecodeRuneInString(rest); size > 0 && size < len(rest) && isAlign(rest[size]) {
		fs.fill, fs.align = r, rest[size]
		rest = rest[size+1:]
	} else if rest != "" && isAlign(rest[0]) {
		fs.align = rest[0]
		rest = rest[1:]
	}
	if rest != "" && (rest[0] == '+' || rest[0] == '-' || rest[0] == ' ') {
		fs.sign = rest[0]
		rest = rest[1:]
	}
	if rest != "" && rest[0] == '#' {
		fs.alt = true
		rest = rest[1:]
	}
	if rest != "" && rest[0] == '0' {
		fs.zero = fs.align == 0
		rest = rest[1:]
	}
	n := 0
	for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
		n++
	}
	if n > 0 {
		w, err := strconv.Atoi(rest[:n])
		if err != nil || w > maxElems {
			return invalid()
		}
		fs.width = w
		rest = rest[n:]
	}
	if rest != "" && (rest[0] == ',' || rest[0] == '_') {
		fs.grouping = rest[0]
		rest = rest[1:]
	}
	if rest != "" && rest[0] == '.' {
		rest = rest[1:]
		n = 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		if n == 0 {
			return invalid()
		}
		p, err := strconv.Atoi(rest[:n])
		if err != nil || p > 100 {
			return invalid()
		}
		fs.precision = p
		rest = rest[n:]
	}
	if len(rest) > 1 {
		return invalid()
	}
	if rest != "" {
		fs.verb = rest[0]
	}
	return fs, nil
}

// formatValue renders v under an f-string format spec.
func formatValue(v value.Value, spec string) (string, error) {
	if spec == "" {
		return value.Display(v), nil
	}
	fs, err := parseFormatSpec(spec)
	if err != nil {
		return "", err
	}

	switch x := v.(type) {
	case value.Str:
		if fs.verb != 0 && fs.verb != 's' {
			return "", valueError("Unknown format code '%c' for object of type 'str'", fs.verb)
		}
		if fs.sign != 0 || fs.align == '=' || fs.grouping != 0 {
			return "", valueError("Invalid format specifier '%s' for object of type 'str'", spec)
		}
		s := string(x)
		if fs.precision >= 0 && utf8.RuneCountInString(s) > fs.precision {
			s = string([]rune(s)[:fs.precision])
		}
		return pad(s, "", fs, '<'), nil
	case value.Bool, value.Int:
		n, _ := value.AsInt(x)
		if _, isBool := x.(value.Bool); isBool && fs.verb == 0 {
			return pad(value.Display(x), "", fs, '<'), nil
		}
		return formatInt(n, fs, spec)
	case value.Float:
		return formatFloat(float64(x), fs)
	}
	return "", typeError("unsupported format string passed to %s.__format__", value.TypeName(v))
}

func formatInt(n int64, fs formatSpec, spec string) (string, error) {
	switch fs.verb {
	case 'e', 'E', 'f', 'F', 'g', 'G', '%':
		return formatFloat(float64(n), fs)
	case 0, 'd', 'n', 'x', 'X', 'o', 'b', 'c':
	default:
		return "", valueError("Unknown format code '%c' for object of type 'int'", fs.verb)
	}
	if fs.precision >= 0 {
		return "", valueError("Precision not allowed in integer format specifier")
	}
	if fs.verb == 'c' {
		if n < 0 || n > 0x10ffff {
			return "", overflowError("%%c arg not in range(0x110000)")
		}
		return pad(string(rune(n)), "", fs, '<'), nil
	}
	neg := n < 0
	mag := absU(n)
	var digits, prefix string
	switch fs.verb {
	case 'x', 'X':
		digits, prefix = strconv.FormatUint(mag, 16), "0x"
	case 'o':
		digits, prefix = strconv.FormatUint(mag, 8), "0o"
	case 'b':
		digits, prefix = strconv.FormatUint(mag, 2), "0b"
	default:
		digits = strconv.FormatUint(mag, 10)
	}
	if fs.verb == 'X' {
		digits, prefix = strings.ToUpper(digits), "0X"
	}
	if fs.grouping != 0 {
		every := 3
		if fs.verb != 0 && fs.verb != 'd' && fs.verb != 'n' {
			every = 4
		}
		digits = group(digits, every, fs.grouping)
	}
	head := signOf(neg, fs.sign)
	if fs.alt {
		head += prefix
	}
	return pad(digits, head, fs, '>'), nil
}

func formatFloat(f float64, fs formatSpec) (string, error) {
	neg := math.Signbit(f) && !math.IsNaN(f)
	mag := math.Abs(f)
	prec := fs.precision
	var body string
	switch fs.verb {
	case 'f', 'F':
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(mag, 'f', prec, 64)
	case 'e', 'E':
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(mag, 'e', prec, 64)
	case 'g', 'G':
		if prec < 0 {
			prec = 6
		}
		if prec == 0 {
			prec = 1
		}
		body = strconv.FormatFloat(mag, 'g', prec, 64)
	case '%':
		if prec < 0 {
			prec = 6
		}
		body = strconv.FormatFloat(mag*100, 'f', prec, 64) + "%"
	case 0:
		if prec < 0 {
			body = value.FormatFloat(mag)
		} else {
			if prec == 0 {
				prec = 1
			}
			body = strconv.FormatFloat(mag, 'g', prec, 64)
		}
	default:
		return "", valueError("Unknown format code '%c' for object of type 'float'", fs.verb)
	}
	switch {
	case math.IsInf(mag, 0):
		body = "inf"
	case math.IsNaN(mag):
		body = "nan"
	}
	if fs.verb == 'F' || fs.verb == 'E' || fs.verb == 'G' {
		body = strings.ToUpper(body)
	}
	if fs.grouping != 0 {
		intEnd := strings.IndexAny(body, ".e%")
		if intEnd < 0 {
			intEnd = len(body)
		}
		if !strings.ContainsAny(body[:intEnd], "infa") {
			body = group(body[:intEnd], 3, fs.grouping) + body[intEnd:]
		}
	}
	return pad(body, signOf(neg, fs.sign), fs, '>'), nil
}

func signOf(neg bool, sign byte) string {
	switch {
	case neg:
		return "-"
	case sign == '+':
		return "+"
	case sign == ' ':
		return " "
	}
	return ""
}

func group(digits string, every int, sep byte) string {
	if len(digits) <= every {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % every
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += every {
		if sb.Len() > 0 {
			sb.WriteByte(sep)
		}
		sb.WriteString(digits[i : i+every])
	}
	return sb.String()
}

// pad applies width, fill and alignment. head is a sign or base prefix
// that '=' alignment keeps ahead of the padding.
func pad(body, head string, fs formatSpec, defAlign byte) string {
	n := utf8.RuneCountInString(head) + utf8.RuneCountInString(body)
	if fs.width <= n {
		return head + body
	}
	fillRune, align := fs.fill, fs.align
	if align == 0 {
		align = defAlign
		if fs.zero {
			fillRune = '0'
			if defAlign == '>' {
				align = '='
			}
		}
	}
	fill := strings.Repeat(string(fillRune), fs.width-n)
	switch align {
	case '<':
		return head + body + fill
	case '^':
		half := (fs.width - n) / 2
		left := strings.Repeat(string(fillRune), half)
		right := strings.Repeat(string(fillRune), fs.width-n-half)
		return left + head + body + right
	case '=':
		return head + fill + body
	}
	return fill + head + body
}
