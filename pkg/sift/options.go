// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package sift

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"nickandperla.net/sift/internal/provider"
	"nickandperla.net/sift/internal/record"
	"nickandperla.net/sift/internal/synth"
)

// Mode selects how input is split into records and how results print.
type Mode = record.Mode

const (
	// Line evaluates once per line and prints each result.
	Line = record.Line
	// All evaluates once over the whole input.
	All = record.All
	// Grep evaluates once per line and prints the lines whose result is truthy.
	Grep = record.Grep
)

// ParseMode parses "line", "all" or "grep".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "line", "":
		return Line, nil
	case "all":
		return All, nil
	case "grep":
		return Grep, nil
	}
	return Line, fmt.Errorf("%w: unknown mode %q (use line, all or grep)", ErrArgument, s)
}

// Provider generates expressions from descriptions.
type Provider = provider.Provider

// Confirmer approves a generated expression before it runs.
type Confirmer = synth.Confirmer

// Option configures a Runtime.
type Option func(*Runtime)

// WithMode sets the mode. The default is Line.
func WithMode(m Mode) Option {
	return func(r *Runtime) { r.mode = m }
}

// WithQuiet suppresses lines for None results.
func WithQuiet(quiet bool) Option {
	return func(r *Runtime) { r.flags.Quiet = quiet }
}

// WithNoAutoPrint suppresses printing results; print() still writes.
func WithNoAutoPrint(off bool) Option {
	return func(r *Runtime) { r.flags.NoAutoPrint = off }
}

// WithOutput sets the io.Writer for output. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runtime) { r.out = w }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(r *Runtime) { r.logger = l }
}

// WithProvider sets the provider used by RunPrompt.
func WithProvider(p Provider) Option {
	return func(r *Runtime) { r.provider = p }
}

// WithShow prints synthesized expressions to w before they run.
func WithShow(w io.Writer) Option {
	return func(r *Runtime) { r.show = w }
}

// WithConfirm requires c to approve synthesized expressions.
func WithConfirm(c Confirmer) Option {
	return func(r *Runtime) { r.confirmer = c }
}
