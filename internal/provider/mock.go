// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package provider

import "context"

// Mock is a mock provider for testing.
type Mock struct {
	Response string
	Handler  func(system, user string) string
	Err      error
	Calls    int
}

// NewMock creates a new mock provider with a fixed response.
func NewMock(response string) *Mock {
	return &Mock{Response: response}
}

// NewMockHandler creates a mock provider with a custom handler.
func NewMockHandler(handler func(system, user string) string) *Mock {
	return &Mock{Handler: handler}
}

// NewMockError creates a mock provider that always fails with err.
func NewMockError(err error) *Mock {
	return &Mock{Err: err}
}

// Name returns "mock".
func (m *Mock) Name() string { return "mock" }

// Prompt returns the mock response or calls the handler.
func (m *Mock) Prompt(ctx context.Context, system, user string) (string, error) {
	m.Calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Err != nil {
		return "", m.Err
	}
	if m.Handler != nil {
		return m.Handler(system, user), nil
	}
	return m.Response, nil
}
