// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package synth

import (
	_ "embed"
	"fmt"
	"strings"

	"nickandperla.net/sift/internal/eval"
	"nickandperla.net/sift/internal/record"
)

//go:embed prompt.md
var promptTemplate string

// SystemPrompt returns the instructions sent with every synthesis request.
func SystemPrompt() string {
	return strings.Replace(promptTemplate, "{{WHITELIST}}", eval.Whitelist(), 1)
}

// UserPrompt wraps the description with the mode the expression will run in.
func UserPrompt(description string, mode record.Mode) string {
	var hint string
	switch mode {
	case record.Grep:
		hint = "The expression is a filter: records where it is truthy are printed unchanged."
	case record.All:
		hint = "The whole input is a single record: s holds all of it, line terminators included, and i is 0."
	default:
		hint = "Each line is one record and the expression's value is printed for it."
	}
	return fmt.Sprintf("%s\n\nDescription: %s", hint, strings.TrimSpace(description))
}
