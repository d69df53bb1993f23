package mock

import (
	"context"
	"strings"
)

// MockNormalizer is a test double for ai.Normalizer.
// It allows custom behavior injection via function fields.
type MockNormalizer struct {
	// NormalizeFunc is called by Normalize if set.
	// If nil, lowercases and trims the input.
	NormalizeFunc func(ctx context.Context, text, language string) (string, error)

	callCount int
}

// NewMockNormalizer creates a mock normalizer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockNormalizer() *MockNormalizer {
	return &MockNormalizer{}
}

// Normalize lowercases and trims the input by default. Deterministic, as the
// registry requires.
func (m *MockNormalizer) Normalize(ctx context.Context, text, language string) (string, error) {
	m.callCount++

	if m.NormalizeFunc != nil {
		return m.NormalizeFunc(ctx, text, language)
	}

	return strings.ToLower(strings.TrimSpace(text)), nil
}

// CallCount returns the number of times Normalize was called.
func (m *MockNormalizer) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockNormalizer) Reset() {
	m.callCount = 0
	m.NormalizeFunc = nil
}
