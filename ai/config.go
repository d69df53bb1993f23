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
	// SpotterHost is the base URL for the multimodal entity-spotting API.
	// Example: "http://localhost:11434/v1" for a local OpenAI-compatible server
	SpotterHost string

	// SynthHost is the base URL for the explanation-synthesis API.
	SynthHost string

	// EmbeddingHost is the base URL for the embedding service API.
	EmbeddingHost string

	// SpotterModel is the model identifier for entity spotting.
	// Example: "gpt-4o", "qwen2.5:3b"
	SpotterModel string

	// SynthModel is the model identifier for explanation synthesis.
	// Example: "gpt-4o-mini", "deepseek-v3"
	SynthModel string

	// EmbeddingModel is the model identifier for text embeddings.
	// Example: "embeddinggemma", "text-embedding-3-small"
	EmbeddingModel string

	// TTSModel is the model identifier for speech synthesis.
	// Empty disables audio asset generation.
	TTSModel string

	// MinConfidence is the minimum spotter confidence (0-1) for an entity
	// to become a mention. Entities below the threshold are filtered out.
	// Default: 0.5
	MinConfidence float64
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithHost sets spotter, synthesis and embedding hosts to the same URL.
func WithHost(host string) ConfigOption {
	return func(c *Config) {
		c.SpotterHost = host
		c.SynthHost = host
		c.EmbeddingHost = host
	}
}

// WithSpotterHost sets the entity-spotting service host URL.
func WithSpotterHost(host string) ConfigOption {
	return func(c *Config) {
		c.SpotterHost = host
	}
}

// WithSynthHost sets the explanation-synthesis service host URL.
func WithSynthHost(host string) ConfigOption {
	return func(c *Config) {
		c.SynthHost = host
	}
}

// WithEmbeddingHost sets the embedding service host URL.
func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

// WithSpotterModel sets the entity-spotting model identifier.
func WithSpotterModel(model string) ConfigOption {
	return func(c *Config) {
		c.SpotterModel = model
	}
}

// WithSynthModel sets the explanation-synthesis model identifier.
func WithSynthModel(model string) ConfigOption {
	return func(c *Config) {
		c.SynthModel = model
	}
}

// WithEmbeddingModel sets the embedding model identifier.
func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

// WithTTSModel sets the speech synthesis model identifier.
func WithTTSModel(model string) ConfigOption {
	return func(c *Config) {
		c.TTSModel = model
	}
}

// WithMinConfidence sets the minimum spotter confidence threshold.
func WithMinConfidence(min float64) ConfigOption {
	return func(c *Config) {
		c.MinConfidence = min
	}
}

// DefaultConfig returns a Config with sensible defaults for local
// OpenAI-compatible services.
func DefaultConfig() *Config {
	defaultHost := "http://localhost:11434/v1"
	return &Config{
		SpotterHost:    defaultHost,
		SynthHost:      defaultHost,
		EmbeddingHost:  defaultHost,
		SpotterModel:   "qwen2.5:3b",
		SynthModel:     "qwen2.5:3b",
		EmbeddingModel: "embeddinggemma",
		MinConfidence:  0.5,
	}
}

// NewConfig creates a Config with the default values and applies the provided
// options. This is the recommended way to create a Config with custom settings.
//
// Example:
//
//	cfg := NewConfig(
//	    WithHost("http://localhost:11434/v1"),
//	    WithSpotterModel("gpt-4o"),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Normalize ensures the configuration is in a canonical form.
// It automatically adds the /v1 suffix to hosts if missing, which is required
// by most OpenAI-compatible APIs (Ollama, LocalAI, vLLM, etc).
func (c *Config) Normalize() {
	c.SpotterHost = normalizeHost(c.SpotterHost)
	c.SynthHost = normalizeHost(c.SynthHost)
	c.EmbeddingHost = normalizeHost(c.EmbeddingHost)
}

func normalizeHost(host string) string {
	if host == "" || strings.HasSuffix(host, "/v1") {
		return host
	}
	return strings.TrimSuffix(host, "/") + "/v1"
}

// Validate checks that the configuration is valid and complete.
// It automatically normalizes the configuration before validation.
func (c *Config) Validate() error {
	c.Normalize()

	if c.SpotterHost == "" {
		return errors.New("ai config: SpotterHost is required")
	}
	if c.SynthHost == "" {
		return errors.New("ai config: SynthHost is required")
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.SpotterModel == "" {
		return errors.New("ai config: SpotterModel is required")
	}
	if c.SynthModel == "" {
		return errors.New("ai config: SynthModel is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.MinConfidence < 0 || c.MinConfidence > 1 {
		return errors.New("ai config: MinConfidence must be between 0 and 1")
	}
	return nil
}
