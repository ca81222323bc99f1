// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package eval

import "fmt"

// CompileError reports an expression that cannot be parsed or refers to
// something outside the whitelist.
type CompileError struct {
	Pos    int // byte offset into Source
	Msg    string
	Source string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("invalid expression at offset %d: %s", e.Pos, e.Msg)
}

// RuntimeError reports an expression that raised while evaluating one
// record. Kind names the error class (TypeError, ValueError, ...).
type RuntimeError struct {
	Index int
	Kind  string
	Msg   string
}

func (e *RuntimeError) Error() string {
	return fmt.Sprintf("record %d: %s: %s", e.Index, e.Kind, e.Msg)
}

// raised is the in-flight form of a RuntimeError before the record index
// is attached.
type raised struct {
	kind string
	msg  string
}

func (r *raised) Error() string { return r.kind + ": " + r.msg }

func typeError(format string, args ...any) error {
	return &raised{kind: "TypeError", msg: fmt.Sprintf(format, args...)}
}

func valueError(format string, args ...any) error {
	return &raised{kind: "ValueError", msg: fmt.Sprintf(format, args...)}
}

func indexError(format string, args ...any) error {
	return &raised{kind: "IndexError", msg: fmt.Sprintf(format, args...)}
}

func zeroDivision(msg string) error {
	return &raised{kind: "ZeroDivisionError", msg: msg}
}

func overflowError(format string, args ...any) error {
	return &raised{kind: "OverflowError", msg: fmt.Sprintf(format, args...)}
}

func attributeError(format string, args ...any) error {
	return &raised{kind: "AttributeError", msg: fmt.Sprintf(format, args...)}
}

func memoryError(format string, args ...any) error {
	return &raised{kind: "MemoryError", msg: fmt.Sprintf(format, args...)}
}

// ioError wraps a failed write from the print builtin so it surfaces as an
// I/O failure rather than an expression error.
type ioError struct {
	err error
}

func (e *ioError) Error() string { return "write output: " + e.err.Error() }
func (e *ioError) Unwrap() error { return e.err }
