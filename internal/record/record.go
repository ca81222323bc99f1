// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package record builds the records an expression is evaluated against.
package record

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Mode selects how input is segmented and how results are rendered.
type Mode int

const (
	// Line evaluates once per input line.
	Line Mode = iota
	// All evaluates once over the whole input.
	All
	// Grep evaluates once per line and prints lines whose result is truthy.
	Grep
)

// String returns the flag-style name of the mode.
func (m Mode) String() string {
	switch m {
	case Line:
		return "line"
	case All:
		return "all"
	case Grep:
		return "grep"
	}
	return "unknown"
}

// Record is one unit of evaluation. It is immutable once built; Fields is
// computed on first use and cached.
type Record struct {
	Index  int
	Text   string
	fields []string
	split  bool
}

// New creates a record.
func New(index int, text string) *Record {
	return &Record{Index: index, Text: text}
}

// Fields returns Text split on runs of whitespace, as str.split() does.
func (r *Record) Fields() []string {
	if !r.split {
		r.fields = strings.FieldsFunc(r.Text, IsSpace)
		r.split = true
	}
	return r.fields
}

// IsSpace reports whether r is whitespace for field and str.split()
// purposes: Unicode spaces plus the \x1c-\x1f separators.
func IsSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= '\x1c' && r <= '\x1f')
}

// Segment splits raw into records for mode. Grep segments like Line.
func Segment(raw string, mode Mode) []*Record {
	if mode == All {
		return []*Record{New(0, raw)}
	}
	lines := SplitLines(raw)
	records := make([]*Record, len(lines))
	for i, line := range lines {
		records[i] = New(i, line)
	}
	return records
}

// SplitLines splits s at universal line boundaries, dropping the
// terminators. A final terminator does not start an extra empty line, and
// the empty string has no lines.
func SplitLines(s string) []string {
	return splitLines(s, false)
}

// SplitLinesKeepEnds is SplitLines with each terminator left on its line.
func SplitLinesKeepEnds(s string) []string {
	return splitLines(s, true)
}

func splitLines(s string, keep bool) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if !isLineBreak(r) {
			i += size
			continue
		}
		end := i
		i += size
		if r == '\r' && i < len(s) && s[i] == '\n' {
			i++
		}
		if keep {
			end = i
		}
		lines = append(lines, s[start:end])
		start = i
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func isLineBreak(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}
