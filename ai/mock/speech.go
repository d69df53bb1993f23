package mock

import (
	"context"
	"fmt"
	"hash/fnv"
)

// MockSpeech is a test double for ai.SpeechSynthesizer.
// It allows custom behavior injection via function fields.
type MockSpeech struct {
	// SynthesizeAudioFunc is called by SynthesizeAudio if set.
	// If nil, returns a fake asset reference derived from the text.
	SynthesizeAudioFunc func(ctx context.Context, text, language string) (string, error)

	callCount int
}

// NewMockSpeech creates a mock speech synthesizer with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSpeech() *MockSpeech {
	return &MockSpeech{}
}

// SynthesizeAudio returns a deterministic fake asset reference.
func (m *MockSpeech) SynthesizeAudio(ctx context.Context, text, language string) (string, error) {
	m.callCount++

	if m.SynthesizeAudioFunc != nil {
		return m.SynthesizeAudioFunc(ctx, text, language)
	}

	h := fnv.New64a()
	h.Write([]byte(text))
	h.Write([]byte(language))
	return fmt.Sprintf("mock://audio/%x.mp3", h.Sum64()), nil
}

// CallCount returns the number of times SynthesizeAudio was called.
func (m *MockSpeech) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockSpeech) Reset() {
	m.callCount = 0
	m.SynthesizeAudioFunc = nil
}
