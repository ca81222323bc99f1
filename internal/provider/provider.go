// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package provider defines LLM provider interfaces and implementations.
package provider

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Provider is the interface for LLM providers.
type Provider interface {
	// Name identifies the provider in logs and errors.
	Name() string
	// Prompt sends a prompt to the LLM and returns the response.
	Prompt(ctx context.Context, system, user string) (string, error)
}

// CredentialError reports a missing or rejected credential. Name is the
// environment variable the credential is read from.
type CredentialError struct {
	Provider string
	Name     string
	Err      error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: credential %s rejected: %v", e.Provider, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: credential %s not set", e.Provider, e.Name)
}

func (e *CredentialError) Unwrap() error { return e.Err }

// IsCredential reports whether err is, or wraps, a CredentialError.
func IsCredential(err error) bool {
	var ce *CredentialError
	return errors.As(err, &ce)
}

// Settings carry the provider-independent knobs from configuration.
type Settings struct {
	Model     string
	Timeout   time.Duration
	MaxTokens int
	OllamaURL string
}

// Names lists the providers New understands.
var Names = []string{"anthropic", "gemini", "ollama"}

// New builds the named provider. Credentials are read from the
// environment; a missing one is reported when Prompt is called.
func New(name string, s Settings) (Provider, error) {
	switch strings.ToLower(name) {
	case "anthropic", "":
		opts := []AnthropicOption{}
		if s.Model != "" {
			opts = append(opts, WithAnthropicModel(s.Model))
		}
		if s.Timeout > 0 {
			opts = append(opts, WithAnthropicTimeout(s.Timeout))
		}
		if s.MaxTokens > 0 {
			opts = append(opts, WithAnthropicMaxTokens(s.MaxTokens))
		}
		return NewAnthropic(opts...), nil
	case "gemini":
		opts := []GeminiOption{}
		if s.Model != "" {
			opts = append(opts, WithGeminiModel(s.Model))
		}
		if s.Timeout > 0 {
			opts = append(opts, WithGeminiTimeout(s.Timeout))
		}
		if s.MaxTokens > 0 {
			opts = append(opts, WithGeminiMaxTokens(s.MaxTokens))
		}
		return NewGemini(opts...), nil
	case "ollama":
		opts := []OllamaOption{}
		if s.OllamaURL != "" {
			opts = append(opts, WithOllamaURL(s.OllamaURL))
		}
		if s.Model != "" {
			opts = append(opts, WithOllamaModel(s.Model))
		}
		if s.Timeout > 0 {
			opts = append(opts, WithOllamaTimeout(s.Timeout))
		}
		return NewOllama(opts...), nil
	}
	return nil, fmt.Errorf("unknown provider %q (use %s)", name, strings.Join(Names, ", "))
}

// statusError turns a non-200 response into an error, mapping 401 and 403
// to a CredentialError for the given variable.
func statusError(provider, credential string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	err := fmt.Errorf("%s error (%d): %s", provider, resp.StatusCode, strings.TrimSpace(string(body)))
	if credential != "" && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return &CredentialError{Provider: provider, Name: credential, Err: err}
	}
	return err
}
