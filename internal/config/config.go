// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2023-2026 Nicholas R. Perez

// Package config loads sift's optional YAML configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"nickandperla.net/sift/internal/provider"
)

// Config holds synthesis settings. Credentials never live here; providers
// read them from the environment.
type Config struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model"`
	Timeout   string `yaml:"timeout"`
	MaxTokens int    `yaml:"max_tokens"`
	OllamaURL string `yaml:"ollama_url"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Provider:  "anthropic",
		Timeout:   "60s",
		MaxTokens: 1024,
		OllamaURL: "http://localhost:11434",
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/sift/config.yaml, falling back to
// ~/.config/sift/config.yaml. It returns "" when neither can be determined.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "sift", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "sift", "config.yaml")
}

// Load reads configuration from path. A missing file yields the defaults.
// Environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("SIFT_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("SIFT_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("SIFT_TIMEOUT"); v != "" {
		c.Timeout = v
	}
	if v := os.Getenv("SIFT_OLLAMA_URL"); v != "" {
		c.OllamaURL = v
	}
}

// Validate checks the provider name and timeout.
func (c *Config) Validate() error {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.Provider == "" {
		c.Provider = "anthropic"
	}
	if !slices.Contains(provider.Names, c.Provider) {
		return fmt.Errorf("invalid provider: %s (valid: %s)", c.Provider, strings.Join(provider.Names, ", "))
	}
	if c.Timeout != "" {
		d, err := time.ParseDuration(c.Timeout)
		if err != nil || d <= 0 {
			return fmt.Errorf("invalid timeout %q: must be a positive duration such as 30s", c.Timeout)
		}
	}
	if c.MaxTokens < 0 {
		return fmt.Errorf("invalid max_tokens %d", c.MaxTokens)
	}
	return nil
}

// GetTimeout returns the request timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 60 * time.Second
	}
	return d
}

// Settings converts the config into provider settings.
func (c *Config) Settings() provider.Settings {
	return provider.Settings{
		Model:     c.Model,
		Timeout:   c.GetTimeout(),
		MaxTokens: c.MaxTokens,
		OllamaURL: c.OllamaURL,
	}
}
