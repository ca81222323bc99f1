// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package synth turns a natural-language description into a compiled
// expression, optionally showing it and asking for confirmation before it
// is allowed to run.
package synth

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"nickandperla.net/sift/internal/eval"
	"nickandperla.net/sift/internal/provider"
	"nickandperla.net/sift/internal/record"
)

var (
	// ErrCredential means the provider credential is missing or rejected.
	ErrCredential = errors.New("credential error")
	// ErrSynthesis means the provider produced no usable expression.
	ErrSynthesis = errors.New("synthesis failed")
	// ErrDeclined means the user did not confirm the generated expression.
	ErrDeclined = errors.New("declined by user")
	// ErrNoTerminal means confirmation was requested without a terminal.
	ErrNoTerminal = errors.New("no terminal available for confirmation")
)

// State is a step of the gate.
type State int

const (
	Idle State = iota
	Synthesizing
	Failed
	Ready
	Displaying
	Confirming
	Accepted
	Declined
)

var stateNames = [...]string{"idle", "synthesizing", "failed", "ready", "displaying", "confirming", "accepted", "declined"}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// GeneratedExpression is the gate's product. Program is set once the
// source compiles; Accepted only once the gate lets it through.
type GeneratedExpression struct {
	Source   string
	Program  *eval.Program
	Accepted bool
}

// Gate drives one synthesis: Idle, Synthesizing, then Failed or Ready,
// optionally Displaying and Confirming, and finally Accepted or Declined.
// A Gate is single use.
type Gate struct {
	provider  provider.Provider
	mode      record.Mode
	display   io.Writer
	confirmer Confirmer
	logger    *zap.Logger
	state     State
	onState   func(from, to State)
}

// Option configures a Gate.
type Option func(*Gate)

// WithShow prints the generated expression to w before it runs.
func WithShow(w io.Writer) Option {
	return func(g *Gate) { g.display = w }
}

// WithConfirm requires c to approve the expression before it runs.
func WithConfirm(c Confirmer) Option {
	return func(g *Gate) { g.confirmer = c }
}

// WithMode tells the provider how the expression will be used.
func WithMode(m record.Mode) Option {
	return func(g *Gate) { g.mode = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(g *Gate) { g.logger = l }
}

// WithStateHook calls fn on every transition.
func WithStateHook(fn func(from, to State)) Option {
	return func(g *Gate) { g.onState = fn }
}

// New creates a Gate that asks p for expressions.
func New(p provider.Provider, opts ...Option) *Gate {
	g := &Gate{provider: p, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// State returns the current state.
func (g *Gate) State() State { return g.state }

func (g *Gate) to(s State) {
	g.logger.Debug("Synthesis state",
		zap.Stringer("from", g.state),
		zap.Stringer("to", s))
	if g.onState != nil {
		g.onState(g.state, s)
	}
	g.state = s
}

// Run synthesizes an expression for description.
//
// It returns the accepted expression, or an error wrapping ErrCredential
// or ErrSynthesis when synthesis fails. When the user declines, it returns
// the unaccepted expression along with ErrDeclined.
func (g *Gate) Run(ctx context.Context, description string) (*GeneratedExpression, error) {
	if g.state != Idle {
		return nil, fmt.Errorf("synthesis gate already used (state %s)", g.state)
	}
	g.to(Synthesizing)

	response, err := g.provider.Prompt(ctx, SystemPrompt(), UserPrompt(description, g.mode))
	if err != nil {
		g.to(Failed)
		if provider.IsCredential(err) {
			return nil, fmt.Errorf("%w: %w", ErrCredential, err)
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrSynthesis, g.provider.Name(), err)
	}

	source := Clean(response)
	if source == "" {
		g.to(Failed)
		return nil, fmt.Errorf("%w: %s returned no expression", ErrSynthesis, g.provider.Name())
	}
	prog, err := eval.Compile(source)
	if err != nil {
		g.to(Failed)
		return nil, fmt.Errorf("%w: generated expression %q: %w", ErrSynthesis, source, err)
	}
	gen := &GeneratedExpression{Source: source, Program: prog}
	g.to(Ready)
	g.logger.Info("Synthesized expression",
		zap.String("provider", g.provider.Name()),
		zap.String("expression", source))

	if g.display != nil {
		g.to(Displaying)
		if _, err := fmt.Fprintln(g.display, source); err != nil {
			g.to(Failed)
			return nil, err
		}
	}

	if g.confirmer != nil {
		g.to(Confirming)
		ok, err := g.confirmer.Confirm(fmt.Sprintf("Run %s ? [y/N] ", source))
		if err != nil {
			g.to(Failed)
			return nil, err
		}
		if !ok {
			g.to(Declined)
			return gen, ErrDeclined
		}
	}

	g.to(Accepted)
	gen.Accepted = true
	return gen, nil
}
