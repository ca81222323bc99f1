// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package parser

import (
	"strings"

	"nickandperla.net/sift/internal/expr"
	"nickandperla.net/sift/internal/scanner"
)

// parseFString splits an f-string body into literal text and replacement
// fields. Field expressions are parsed with positions relative to the
// whole source.
func parseFString(tok *scanner.Item) ([]expr.FPart, error) {
	body := tok.Value
	// Body starts after the prefix and opening quote.
	base := tok.Pos + prefixLen(tok) + 1

	var parts []expr.FPart
	var lit strings.Builder
	flush := func(at int) error {
		if lit.Len() == 0 {
			return nil
		}
		text := lit.String()
		lit.Reset()
		if !tok.Raw {
			decoded, err := scanner.Unescape(text)
			if err != nil {
				return &Error{Pos: at, Msg: err.Error()}
			}
			text = decoded
		}
		parts = append(parts, expr.FPart{Lit: text})
		return nil
	}

	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '{' && i+1 < len(body) && body[i+1] == '{':
			lit.WriteByte('{')
			i++
		case c == '}' && i+1 < len(body) && body[i+1] == '}':
			lit.WriteByte('}')
			i++
		case c == '}':
			return nil, &Error{Pos: base + i, Msg: "single '}' is not allowed in f-string"}
		case c == '{':
			if err := flush(base + i); err != nil {
				return nil, err
			}
			end, err := fieldEnd(body, i+1)
			if err != nil {
				return nil, &Error{Pos: base + i, Msg: err.Error()}
			}
			part, err := parseField(body[i+1:end], base+i+1)
			if err != nil {
				return nil, err
			}
			parts = append(parts, part)
			i = end
		case c == '\\' && i+1 < len(body):
			lit.WriteByte(c)
			lit.WriteByte(body[i+1])
			i++
		default:
			lit.WriteByte(c)
		}
	}
	if err := flush(base + len(body)); err != nil {
		return nil, err
	}
	return parts, nil
}

func prefixLen(tok *scanner.Item) int {
	if tok.Raw {
		return 2
	}
	return 1
}

type fieldError string

func (e fieldError) Error() string { return string(e) }

// fieldEnd returns the index of the '}' closing the field opened before
// start, skipping nested brackets and quoted strings.
func fieldEnd(body string, start int) (int, error) {
	depth := 0
	var quote byte
	for i := start; i < len(body); i++ {
		c := body[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				return i, nil
			}
			depth--
		}
	}
	return 0, fieldError("unterminated replacement field in f-string")
}

// parseField parses "expr[!conv][:spec]".
func parseField(field string, base int) (expr.FPart, error) {
	src, conv, spec := splitField(field)
	if strings.TrimSpace(src) == "" {
		return expr.FPart{}, &Error{Pos: base, Msg: "empty expression in f-string"}
	}
	switch conv {
	case "", "r", "s":
	default:
		return expr.FPart{}, &Error{Pos: base + len(src), Msg: "f-string conversion must be !r or !s"}
	}
	if strings.ContainsAny(spec, "{}") {
		return expr.FPart{}, &Error{Pos: base, Msg: "nested replacement fields in a format spec are not supported"}
	}
	e, err := parseAt(src, base)
	if err != nil {
		return expr.FPart{}, err
	}
	part := expr.FPart{Expr: e, Spec: spec}
	if conv != "" {
		part.Conv = conv[0]
	}
	return part, nil
}

// splitField separates the expression from a trailing !conv and :spec at
// bracket depth zero, outside string literals.
func splitField(field string) (src, conv, spec string) {
	depth := 0
	var quote byte
	end := len(field)
	for i := 0; i < len(field); i++ {
		c := field[i]
		if quote != 0 {
			if c == '\\' {
				i++
			} else if c == quote {
				quote = 0
			}
			continue
		}
		switch c {
		case '\'', '"':
			quote = c
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			depth--
		case '!':
			if depth == 0 && (i+1 >= len(field) || field[i+1] != '=') {
				end = i
				rest := field[i+1:]
				if j := strings.IndexByte(rest, ':'); j >= 0 {
					return field[:end], rest[:j], rest[j+1:]
				}
				return field[:end], rest, ""
			}
		case ':':
			if depth == 0 {
				return field[:i], "", field[i+1:]
			}
		}
	}
	return field[:end], "", ""
}
