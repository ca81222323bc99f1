// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package synth

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Confirmer asks the user a yes/no question.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(question string) (bool, error)

// Confirm calls f.
func (f ConfirmFunc) Confirm(question string) (bool, error) { return f(question) }

// LineConfirmer writes the question to Out and reads one line from In.
// "y" and "yes" in any case accept; anything else, including end of
// input, declines.
type LineConfirmer struct {
	In  io.Reader
	Out io.Writer
}

// Confirm asks question and waits for a reply.
func (c LineConfirmer) Confirm(question string) (bool, error) {
	if _, err := fmt.Fprint(c.Out, question); err != nil {
		return false, err
	}
	line, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
