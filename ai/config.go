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

// EmbeddingBackend selects which embedder a provider builds.
type EmbeddingBackend string

const (
	// EmbeddingHashing is the local hashing embedder. It needs no service.
	EmbeddingHashing EmbeddingBackend = "hashing"
	// EmbeddingRemote is an OpenAI-compatible embedding service.
	EmbeddingRemote EmbeddingBackend = "remote"
)

// Config holds configuration for AI service providers.
type Config struct {
	// ChatHost is the base URL of the OpenAI-compatible chat completion API.
	// Example: "https://openrouter.ai/api/v1"
	ChatHost string

	// ChatModel is the model identifier used for chat and topic extraction.
	// Example: "x-ai/grok-4-fast", "gpt-4o-mini"
	ChatModel string

	// APIKey authenticates against ChatHost. When empty the provider works
	// offline: topics come from keyword frequency and chat answers are stubs.
	APIKey string

	// EmbeddingBackend selects the embedder. Default: hashing.
	EmbeddingBackend EmbeddingBackend

	// EmbeddingHost is the base URL for the remote embedding service.
	EmbeddingHost string

	// EmbeddingModel is the remote embedding model identifier.
	EmbeddingModel string

	// EmbedDim is the hashing embedder dimension. Default: 512
	EmbedDim int

	// Temperature is the sampling temperature for chat. Default: 0.2
	Temperature float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithChatHost sets the chat service host URL.
func WithChatHost(host string) ConfigOption {
	return func(c *Config) {
		c.ChatHost = host
	}
}

// WithChatModel sets the chat model identifier.
func WithChatModel(model string) ConfigOption {
	return func(c *Config) {
		c.ChatModel = model
	}
}

// WithAPIKey sets the chat service API key.
func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

// WithEmbeddingBackend selects the embedder implementation.
func WithEmbeddingBackend(backend EmbeddingBackend) ConfigOption {
	return func(c *Config) {
		c.EmbeddingBackend = backend
	}
}

// WithEmbeddingHost sets the remote embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithEmbeddingModel sets the remote embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithEmbedDim sets the hashing embedder dimension.
func WithEmbedDim(dim int) ConfigOption {
	return func(c *Config) {
		c.EmbedDim = dim
	}
}

// WithTemperature sets the chat sampling temperature.
func WithTemperature(t float64) ConfigOption {
	return func(c *Config) {
		c.Temperature = t
	}
}

// DefaultConfig returns a Config that runs fully offline with the hashing embedder.
func DefaultConfig() *Config {
	return &Config{
		ChatHost:         "https://openrouter.ai/api/v1",
		ChatModel:        "x-ai/grok-4-fast",
		EmbeddingBackend: EmbeddingHashing,
		EmbeddingHost:    "http://localhost:11434/v1",
		EmbeddingModel:   "embeddinggemma",
		EmbedDim:         512,
		Temperature:      0.2,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithAPIKey(os.Getenv("OPENROUTER_API_KEY")),
//	    WithEmbedDim(256),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Offline reports whether no chat service is configured.
func (c *Config) Offline() bool {
	return c.APIKey == ""
}

// Normalize ensures the configuration is in a canonical form.
// It adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs.
func (c *Config) Normalize() {
	c.ChatHost = withV1(c.ChatHost)
	c.EmbeddingHost = withV1(c.EmbeddingHost)
	if c.EmbeddingBackend == "" {
		c.EmbeddingBackend = EmbeddingHashing
	}
}

func withV1(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if !c.Offline() {
		if c.ChatHost == "" {
			return errors.New("ai config: ChatHost is required")
		}
		if c.ChatModel == "" {
			return errors.New("ai config: ChatModel is required")
		}
	}
	switch c.EmbeddingBackend {
	case EmbeddingHashing:
		if c.EmbedDim <= 0 {
			return errors.New("ai config: EmbedDim must be positive")
		}
	case EmbeddingRemote:
		if c.EmbeddingHost == "" {
			return errors.New("ai config: EmbeddingHost is required")
		}
		if c.EmbeddingModel == "" {
			return errors.New("ai config: EmbeddingModel is required")
		}
	default:
		return errors.New("ai config: unknown EmbeddingBackend " + string(c.EmbeddingBackend))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return errors.New("ai config: Temperature must be between 0 and 2")
	}
	return nil
}
