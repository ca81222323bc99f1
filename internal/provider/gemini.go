// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"google.golang.org/genai"
)

// Gemini credentials, in lookup order.
const (
	GeminiKeyEnv = "GEMINI_API_KEY"
	GoogleKeyEnv = "GOOGLE_API_KEY"
)

// Gemini is a provider for Google's Gemini API.
type Gemini struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// GeminiOption configures the Gemini provider.
type GeminiOption func(*Gemini)

// WithGeminiAPIKey sets the API key.
func WithGeminiAPIKey(key string) GeminiOption {
	return func(g *Gemini) { g.APIKey = key }
}

// WithGeminiModel sets the model name.
func WithGeminiModel(model string) GeminiOption {
	return func(g *Gemini) { g.Model = model }
}

// WithGeminiBaseURL points the client at a different API host.
func WithGeminiBaseURL(url string) GeminiOption {
	return func(g *Gemini) { g.BaseURL = url }
}

// WithGeminiMaxTokens caps the response length.
func WithGeminiMaxTokens(n int) GeminiOption {
	return func(g *Gemini) { g.MaxTokens = n }
}

// WithGeminiTimeout sets the request timeout.
func WithGeminiTimeout(timeout time.Duration) GeminiOption {
	return func(g *Gemini) { g.Timeout = timeout }
}

// NewGemini creates a new Gemini provider.
func NewGemini(opts ...GeminiOption) *Gemini {
	key := os.Getenv(GeminiKeyEnv)
	if key == "" {
		key = os.Getenv(GoogleKeyEnv)
	}
	g := &Gemini{
		APIKey:    key,
		Model:     "gemini-2.5-flash",
		MaxTokens: 1024,
		Timeout:   time.Minute,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns "gemini".
func (g *Gemini) Name() string { return "gemini" }

// Prompt sends a prompt to Gemini and returns the response text.
func (g *Gemini) Prompt(ctx context.Context, system, user string) (string, error) {
	if g.APIKey == "" {
		return "", &CredentialError{Provider: g.Name(), Name: GeminiKeyEnv}
	}

	cfg := &genai.ClientConfig{
		APIKey:     g.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: g.Timeout},
	}
	if g.BaseURL != "" {
		cfg.HTTPOptions = genai.HTTPOptions{BaseURL: g.BaseURL}
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return "", fmt.Errorf("gemini: create client: %w", err)
	}

	genCfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(g.MaxTokens),
	}
	if system != "" {
		genCfg.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	resp, err := client.Models.GenerateContent(ctx, g.Model, genai.Text(user), genCfg)
	if err != nil {
		if code := apiErrorCode(err); code == http.StatusUnauthorized || code == http.StatusForbidden {
			return "", &CredentialError{Provider: g.Name(), Name: GeminiKeyEnv, Err: err}
		}
		return "", fmt.Errorf("gemini: generate: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("gemini: no content in response")
	}
	return text, nil
}

// apiErrorCode extracts the HTTP status from a genai error, or 0.
func apiErrorCode(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code
	}
	return 0
}
