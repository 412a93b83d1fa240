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

const (
	// DefaultEmbeddingHost is the OpenAI API endpoint.
	DefaultEmbeddingHost = "https://api.openai.com/v1"

	// DefaultEmbeddingModel produces 1536-dimensional vectors.
	DefaultEmbeddingModel = "text-embedding-ada-002"
)

// Config holds configuration for the embedding service.
type Config struct {
	// EmbeddingHost is the base URL of an OpenAI-compatible API.
	// Example: "http://localhost:11434/v1" for a local server
	EmbeddingHost string

	// EmbeddingModel is the model identifier used for embeddings.
	// Example: "text-embedding-ada-002", "nomic-embed-text"
	EmbeddingModel string

	// APIToken is sent as the bearer token. Local servers that do not
	// authenticate accept any value; empty is sent as "none".
	APIToken string
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithAPIToken sets the API token.
func WithAPIToken(token string) ConfigOption {
	return func(c *Config) {
		c.APIToken = token
	}
}

// DefaultConfig returns a Config pointing at the OpenAI API.
func DefaultConfig() *Config {
	return &Config{
		EmbeddingHost:  DefaultEmbeddingHost,
		EmbeddingModel: DefaultEmbeddingModel,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithEmbeddingHost("http://localhost:11434"),
//	    WithEmbeddingModel("nomic-embed-text"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize adds the /v1 suffix to the host if missing, which
// OpenAI-compatible servers (Ollama, LocalAI, vLLM) expect.
func (c *Config) Normalize() {
	if c.EmbeddingHost != "" && !strings.HasSuffix(c.EmbeddingHost, "/v1") {
		c.EmbeddingHost = strings.TrimSuffix(c.EmbeddingHost, "/") + "/v1"
	}
}

// Token returns the API token to send, "none" when unset.
func (c *Config) Token() string {
	if c.APIToken == "" {
		return "none"
	}
	return c.APIToken
}

// Validate normalizes the configuration and checks it is complete.
func (c *Config) Validate() error {
	c.Normalize()

	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	return nil
}
