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


package mock

import "github.com/poiesic/lecturegraph/ai"

// MockProvider is a test double for ai.Provider.
// It aggregates mock collaborator instances.
type MockProvider struct {
	spotter     *MockSpotter
	synthesizer *MockSynthesizer
	normalizer  *MockNormalizer
	embedder    *MockEmbedder
	speech      *MockSpeech
}

// NewMockProvider creates a new mock provider with default mock services.
//
// Returns ai.Provider interface for consistency with production constructors.
// Use the GetMockXxx accessors to reach concrete types for test assertions.
func NewMockProvider() ai.Provider {
	return &MockProvider{
		spotter:     NewMockSpotter(),
		synthesizer: NewMockSynthesizer(),
		normalizer:  NewMockNormalizer(),
		embedder:    NewMockEmbedder(),
		speech:      NewMockSpeech(),
	}
}

// Spotter returns the mock entity spotter.
func (p *MockProvider) Spotter() ai.EntitySpotter {
	return p.spotter
}

// Synthesizer returns the mock explanation synthesizer.
func (p *MockProvider) Synthesizer() ai.ExplanationSynthesizer {
	return p.synthesizer
}

// Normalizer returns the mock normalizer.
func (p *MockProvider) Normalizer() ai.Normalizer {
	return p.normalizer
}

// Embedder returns the mock embedder.
func (p *MockProvider) Embedder() ai.Embedder {
	return p.embedder
}

// Speech returns the mock speech synthesizer.
func (p *MockProvider) Speech() ai.SpeechSynthesizer {
	return p.speech
}

// Close is a no-op for mock provider.
func (p *MockProvider) Close() error {
	return nil
}

// GetMockSpotter returns the underlying mock spotter for test assertions.
func (p *MockProvider) GetMockSpotter() *MockSpotter {
	return p.spotter
}

// GetMockSynthesizer returns the underlying mock synthesizer for test assertions.
func (p *MockProvider) GetMockSynthesizer() *MockSynthesizer {
	return p.synthesizer
}

// GetMockNormalizer returns the underlying mock normalizer for test assertions.
func (p *MockProvider) GetMockNormalizer() *MockNormalizer {
	return p.normalizer
}

// GetMockEmbedder returns the underlying mock embedder for test assertions.
func (p *MockProvider) GetMockEmbedder() *MockEmbedder {
	return p.embedder
}

// GetMockSpeech returns the underlying mock speech synthesizer for test assertions.
func (p *MockProvider) GetMockSpeech() *MockSpeech {
	return p.speech
}
