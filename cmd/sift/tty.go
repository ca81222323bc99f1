// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package main

import (
	"os"

	"golang.org/x/term"

	"nickandperla.net/sift/internal/synth"
)

// ttyConfirmer asks on the controlling terminal, so the question works
// while stdin carries the input stream.
type ttyConfirmer struct{}

func (ttyConfirmer) Confirm(question string) (bool, error) {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return false, synth.ErrNoTerminal
	}
	defer tty.Close()

	if !term.IsTerminal(int(tty.Fd())) {
		return false, synth.ErrNoTerminal
	}
	return synth.LineConfirmer{In: tty, Out: tty}.Confirm(question)
}
