// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package synth

import "strings"

// noisePrefixes are leaders models put in front of an expression.
var noisePrefixes = []string{">>> ", "$ ", "expression:", "expr:"}

// Clean extracts the expression from a model response: it drops code
// fences, surrounding backticks, prompt markers and blank lines, and keeps
// the first remaining line.
func Clean(response string) string {
	text := strings.TrimSpace(response)

	if start := strings.Index(text, "```"); start >= 0 {
		body := text[start+3:]
		if end := strings.Index(body, "```"); end >= 0 {
			body = body[:end]
		}
		// Drop a language tag on the fence line.
		if nl := strings.IndexByte(body, '\n'); nl >= 0 {
			tag := strings.TrimSpace(body[:nl])
			if tag != "" && !strings.ContainsAny(tag, " ()[]'\".") && strings.TrimSpace(body[nl+1:]) != "" {
				body = body[nl+1:]
			}
		}
		text = strings.TrimSpace(body)
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		for _, p := range noisePrefixes {
			if len(line) >= len(p) && strings.EqualFold(line[:len(p)], p) {
				line = strings.TrimSpace(line[len(p):])
			}
		}
		if len(line) >= 2 && line[0] == '`' && line[len(line)-1] == '`' {
			line = strings.TrimSpace(strings.Trim(line, "`"))
		}
		if line != "" {
			return line
		}
	}
	return ""
}
