// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package sift provides the public API for evaluating an expression
// against every record of a text stream.
package sift

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"nickandperla.net/sift/internal/eval"
	"nickandperla.net/sift/internal/record"
	"nickandperla.net/sift/internal/render"
	"nickandperla.net/sift/internal/synth"
)

// Runtime runs expressions over input. It holds configuration only; each
// call owns its own records, program and output buffer.
type Runtime struct {
	mode      Mode
	flags     render.Flags
	out       io.Writer
	logger    *zap.Logger
	provider  Provider
	show      io.Writer
	confirmer Confirmer
}

// New creates a Runtime with the given options.
func New(opts ...Option) *Runtime {
	r := &Runtime{
		mode:   Line,
		out:    os.Stdout,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Compile checks src without reading any input.
func (r *Runtime) Compile(src string) (*eval.Program, error) {
	p, err := eval.Compile(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompile, err)
	}
	return p, nil
}

// Run compiles src and evaluates it against every record of in.
//
// A compile error is returned before in is read. A runtime error stops the
// run at the failing record; output already written for earlier records
// is kept.
func (r *Runtime) Run(src string, in io.Reader) error {
	p, err := r.Compile(src)
	if err != nil {
		return err
	}
	return r.RunProgram(p, in)
}

// RunProgram evaluates a compiled program against every record of in.
func (r *Runtime) RunProgram(p *eval.Program, in io.Reader) error {
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("%w: read input: %w", ErrIO, err)
	}
	records := record.Segment(string(raw), r.mode)
	r.logger.Debug("Running expression",
		zap.String("expression", p.Source),
		zap.Stringer("mode", r.mode),
		zap.Int("records", len(records)))

	// print() and the renderer share one buffer so their lines interleave
	// in program order.
	w := bufio.NewWriter(r.out)
	ev := eval.New(
		eval.WithOutputWriter(func(text string) error {
			_, err := w.WriteString(text)
			return err
		}),
		eval.WithLogger(r.logger),
	)
	rd := render.New(w, r.mode, r.flags)

	// The buffer is flushed after every record so output never waits on
	// later records.
	for _, rec := range records {
		v, err := ev.Eval(p, eval.Bind(rec))
		if err == nil {
			err = rd.Render(rec, v)
		}
		flushErr := w.Flush()
		if err != nil {
			var re *eval.RuntimeError
			if errors.As(err, &re) {
				r.logger.Debug("Stopped at failing record", zap.Int("record", re.Index))
				if flushErr != nil {
					return fmt.Errorf("%w: %w (%w: write output: %w)", ErrRuntime, err, ErrIO, flushErr)
				}
				return fmt.Errorf("%w: %w", ErrRuntime, err)
			}
			return fmt.Errorf("%w: write output: %w", ErrIO, errors.Join(err, flushErr))
		}
		if flushErr != nil {
			return fmt.Errorf("%w: write output: %w", ErrIO, flushErr)
		}
	}
	return nil
}

// RunPrompt synthesizes an expression from description with the configured
// provider, passes it through the show and confirm steps, and runs it
// against in. Input is read only once the expression is accepted. A
// declined confirmation returns an error wrapping ErrUserAbort.
func (r *Runtime) RunPrompt(ctx context.Context, description string, in io.Reader) error {
	if r.provider == nil {
		return fmt.Errorf("%w: no provider configured", ErrArgument)
	}
	opts := []synth.Option{synth.WithMode(r.mode), synth.WithLogger(r.logger)}
	if r.show != nil {
		opts = append(opts, synth.WithShow(r.show))
	}
	if r.confirmer != nil {
		opts = append(opts, synth.WithConfirm(r.confirmer))
	}

	gen, err := synth.New(r.provider, opts...).Run(ctx, description)
	if err != nil {
		return err
	}
	return r.RunProgram(gen.Program, in)
}
