// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

// AnthropicKeyEnv holds the Anthropic API key.
const AnthropicKeyEnv = "ANTHROPIC_API_KEY"

// Anthropic is a provider for Anthropic's Claude API.
type Anthropic struct {
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Timeout   time.Duration
}

// AnthropicOption configures the Anthropic provider.
type AnthropicOption func(*Anthropic)

// WithAnthropicAPIKey sets the API key.
func WithAnthropicAPIKey(key string) AnthropicOption {
	return func(a *Anthropic) { a.APIKey = key }
}

// WithAnthropicModel sets the model name.
func WithAnthropicModel(model string) AnthropicOption {
	return func(a *Anthropic) { a.Model = model }
}

// WithAnthropicBaseURL points the provider at a different API host.
func WithAnthropicBaseURL(url string) AnthropicOption {
	return func(a *Anthropic) { a.BaseURL = strings.TrimRight(url, "/") }
}

// WithAnthropicMaxTokens caps the response length.
func WithAnthropicMaxTokens(n int) AnthropicOption {
	return func(a *Anthropic) { a.MaxTokens = n }
}

// WithAnthropicTimeout sets the request timeout.
func WithAnthropicTimeout(timeout time.Duration) AnthropicOption {
	return func(a *Anthropic) { a.Timeout = timeout }
}

// NewAnthropic creates a new Anthropic provider.
func NewAnthropic(opts ...AnthropicOption) *Anthropic {
	a := &Anthropic{
		APIKey:    os.Getenv(AnthropicKeyEnv),
		Model:     "claude-sonnet-4-20250514",
		BaseURL:   "https://api.anthropic.com",
		MaxTokens: 1024,
		Timeout:   time.Minute,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Name returns "anthropic".
func (a *Anthropic) Name() string { return "anthropic" }

// Prompt sends a prompt to Anthropic and returns the response.
func (a *Anthropic) Prompt(ctx context.Context, system, user string) (string, error) {
	if a.APIKey == "" {
		return "", &CredentialError{Provider: a.Name(), Name: AnthropicKeyEnv}
	}

	reqBody := anthropicRequest{
		Model:     a.Model,
		MaxTokens: a.MaxTokens,
		System:    system,
		Messages:  []anthropicMessage{{Role: "user", Content: user}},
	}
	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+"/v1/messages", bytes.NewReader(jsonBody))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", a.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := &http.Client{Timeout: a.Timeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", statusError(a.Name(), AnthropicKeyEnv, resp)
	}

	var result anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}
	if result.Error != nil {
		return "", fmt.Errorf("anthropic error: %s", result.Error.Message)
	}
	if len(result.Content) == 0 {
		return "", fmt.Errorf("anthropic: no content in response")
	}

	// Concatenate all text content blocks
	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
