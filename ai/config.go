// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"errors"
	"strings"
)

// Config holds configuration for AI service providers.
type Config struct {
	// ServerURL is the base URL of the Ollama-compatible server.
	// Example: "http://localhost:11434"
	ServerURL string

	// Model is the model identifier used for answer generation.
	// Example: "phi3:3.8b"
	Model string

	// EmbeddingModel is the model identifier used for text embeddings.
	// Example: "nomic-embed-text"
	EmbeddingModel string

	// Temperature is the service-level default sampling temperature applied
	// when a call does not supply its own.
	// Default: 0.4
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithServerURL sets the model server base URL.
func WithServerURL(url string) ConfigOption {
	return func(c *Config) {
		c.ServerURL = url
	}
}

// WithModel sets the generation model identifier.
func WithModel(model string) ConfigOption {
	return func(c *Config) {
		c.Model = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTemperature sets the default sampling temperature.
func WithTemperature(temperature float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = temperature
	}
}

// DefaultConfig returns a Config with sensible defaults for a local Ollama
// server.
func DefaultConfig() *Config {
	return &Config{
		ServerURL:      "http://localhost:11434",
		Model:          "phi3:3.8b",
		EmbeddingModel: "nomic-embed-text",
		Temperature:    0.4,
	}
}

// NewConfig creates a Config with default values and applies the provided
// options.
//
// Example:
//
//	cfg := ai.NewConfig(
//	    ai.WithServerURL("http://localhost:11434"),
//	    ai.WithModel("llama3.2"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form. The Ollama
// client expects the server URL without a trailing slash or /v1 suffix.
func (c *Config) Normalize() {
	c.ServerURL = strings.TrimSuffix(c.ServerURL, "/")
	c.ServerURL = strings.TrimSuffix(c.ServerURL, "/v1")
}

// Validate checks that the configuration is valid and complete. It
// normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.ServerURL == "" {
		return errors.New("ai config: ServerURL is required")
	}
	if c.Model == "" {
		return errors.New("ai config: Model is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	return nil
}
