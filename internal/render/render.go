// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package render turns one evaluation outcome into at most one output line.
package render

import (
	"io"

	"nickandperla.net/sift/internal/record"
	"nickandperla.net/sift/internal/value"
)

// Flags adjust transform-mode printing. Grep mode ignores them.
type Flags struct {
	Quiet       bool // skip None results
	NoAutoPrint bool // never print the result
}

// Renderer writes rendered lines to w in the order Render is called.
type Renderer struct {
	w     io.Writer
	mode  record.Mode
	flags Flags
}

// New creates a Renderer for mode.
func New(w io.Writer, mode record.Mode, flags Flags) *Renderer {
	return &Renderer{w: w, mode: mode, flags: flags}
}

// Render prints the line for rec and its outcome, if any.
//
// In grep mode the record text is printed when the outcome is truthy. In
// transform mode the outcome itself is printed: strings as their raw text,
// everything else in literal form.
func (r *Renderer) Render(rec *record.Record, outcome value.Value) error {
	line, ok := r.Line(rec, outcome)
	if !ok {
		return nil
	}
	_, err := io.WriteString(r.w, line)
	return err
}

// Line returns the text Render would write, including the terminator.
func (r *Renderer) Line(rec *record.Record, outcome value.Value) (string, bool) {
	if r.mode == record.Grep {
		if value.Truthy(outcome) {
			return rec.Text + "\n", true
		}
		return "", false
	}
	if r.flags.NoAutoPrint {
		return "", false
	}
	if r.flags.Quiet && value.IsNull(outcome) {
		return "", false
	}
	return value.Display(outcome) + "\n", true
}
