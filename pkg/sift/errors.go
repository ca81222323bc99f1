// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package sift

import (
	"errors"

	"nickandperla.net/sift/internal/synth"
)

// Error taxonomy. Every error returned by a Runtime wraps exactly one.
var (
	// ErrArgument is an invalid mode or flag combination.
	ErrArgument = errors.New("invalid arguments")
	// ErrCompile is an expression that does not parse or leaves the whitelist.
	ErrCompile = errors.New("invalid expression")
	// ErrRuntime is an expression that raised while evaluating a record.
	ErrRuntime = errors.New("evaluation failed")
	// ErrIO is a failure reading input or writing output.
	ErrIO = errors.New("i/o error")
	// ErrCredential is a missing or rejected provider credential.
	ErrCredential = synth.ErrCredential
	// ErrSynthesis is a provider that produced no usable expression.
	ErrSynthesis = synth.ErrSynthesis
	// ErrUserAbort is a declined confirmation. It is not a failure.
	ErrUserAbort = synth.ErrDeclined
)

// Code is an error class.
type Code int

const (
	CodeOK Code = iota
	CodeIO
	CodeArgument
	CodeCompile
	CodeRuntime
	CodeCredential
	CodeSynthesis
	CodeUserAbort
)

var codeNames = [...]string{"ok", "io", "argument", "compile", "runtime", "credential", "synthesis", "user_abort"}

func (c Code) String() string {
	if c >= 0 && int(c) < len(codeNames) {
		return codeNames[c]
	}
	return "unknown"
}

// Classify maps err to its class. Unrecognized errors count as I/O.
func Classify(err error) Code {
	switch {
	case err == nil:
		return CodeOK
	case errors.Is(err, ErrUserAbort):
		return CodeUserAbort
	case errors.Is(err, ErrArgument), errors.Is(err, synth.ErrNoTerminal):
		return CodeArgument
	case errors.Is(err, ErrCompile):
		return CodeCompile
	case errors.Is(err, ErrRuntime):
		return CodeRuntime
	case errors.Is(err, ErrCredential):
		return CodeCredential
	case errors.Is(err, ErrSynthesis):
		return CodeSynthesis
	}
	return CodeIO
}

// ExitCode maps err to a process exit status: 0 for success or a declined
// confirmation, otherwise 1 (I/O), 2 (argument), 3 (compile), 4 (runtime),
// 5 (credential) or 6 (synthesis).
func ExitCode(err error) int {
	switch Classify(err) {
	case CodeOK, CodeUserAbort:
		return 0
	case CodeArgument:
		return 2
	case CodeCompile:
		return 3
	case CodeRuntime:
		return 4
	case CodeCredential:
		return 5
	case CodeSynthesis:
		return 6
	}
	return 1
}
