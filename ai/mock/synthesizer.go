package mock

import (
	"context"
	"strings"
)

// MockSynthesizer is a test double for ai.ExplanationSynthesizer.
// It allows custom behavior injection via function fields.
type MockSynthesizer struct {
	// SynthesizeFunc is called by Synthesize if set.
	// If nil, uses default stub synthesis.
	SynthesizeFunc func(ctx context.Context, label string, definitions []string, language string) (string, error)

	callCount int
}

// NewMockSynthesizer creates a mock synthesizer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// Synthesize produces a deterministic stub explanation.
// Default behavior: "label: " followed by the joined definitions, or a
// fixed sentence when no definitions are given.
func (m *MockSynthesizer) Synthesize(ctx context.Context, label string, definitions []string, language string) (string, error) {
	m.callCount++

	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, label, definitions, language)
	}

	if len(definitions) == 0 {
		return label + " is a concept covered in this lecture.", nil
	}
	return label + ": " + strings.Join(definitions, " "), nil
}

// CallCount returns the number of times Synthesize was called.
func (m *MockSynthesizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockSynthesizer) Reset() {
	m.callCount = 0
	m.SynthesizeFunc = nil
}
