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


package openai

import (
	"log/slog"

	"github.com/poiesic/lecturegraph/ai"
)

// Provider implements ai.Provider using OpenAI-compatible services.
// It manages the spotter, synthesizer, normalizer, embedder and optional
// speech instances.
type Provider struct {
	config      *ai.Config
	spotter     *Spotter
	synthesizer *Synthesizer
	normalizer  *Normalizer
	embedder    *Embedder
	speech      *Speech
	logger      *slog.Logger
}

// Option configures a Provider.
type Option func(*Provider) error

// WithAssetDir enables speech synthesis, writing audio assets under dir.
// Requires config.TTSModel to be set.
func WithAssetDir(dir string) Option {
	return func(p *Provider) error {
		speech, err := newSpeech(p.config, dir)
		if err != nil {
			return err
		}
		p.speech = speech
		return nil
	}
}

// NewProvider creates a new AI provider with OpenAI-compatible services.
// The config is validated and normalized before use.
//
// Returns ai.Provider interface (not *Provider) to enforce abstraction
// and prevent coupling to OpenAI-specific implementation details.
func NewProvider(config *ai.Config, opts ...Option) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	spotter, err := newSpotter(config)
	if err != nil {
		return nil, err
	}

	synthesizer, err := newSynthesizer(config)
	if err != nil {
		return nil, err
	}

	normalizer, err := newNormalizer(config)
	if err != nil {
		return nil, err
	}

	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	p := &Provider{
		config:      config,
		spotter:     spotter,
		synthesizer: synthesizer,
		normalizer:  normalizer,
		embedder:    embedder,
		logger:      slog.Default().With("component", "openai-provider"),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// Spotter returns the entity spotting service.
func (p *Provider) Spotter() ai.EntitySpotter {
	return p.spotter
}

// Synthesizer returns the explanation synthesis service.
func (p *Provider) Synthesizer() ai.ExplanationSynthesizer {
	return p.synthesizer
}

// Normalizer returns the translation/normalization service.
func (p *Provider) Normalizer() ai.Normalizer {
	return p.normalizer
}

// Embedder returns the text embedding service.
func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

// Speech returns the speech synthesis service, or nil when not configured.
func (p *Provider) Speech() ai.SpeechSynthesizer {
	if p.speech == nil {
		return nil
	}
	return p.speech
}

// Close releases resources held by the provider.
// Currently a no-op as the underlying clients don't require explicit cleanup.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
