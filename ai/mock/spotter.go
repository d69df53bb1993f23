package mock

import (
	"context"
	"strings"

	"github.com/poiesic/lecturegraph/ai"
)

// MockSpotter is a test double for ai.EntitySpotter.
// It allows custom behavior injection via function fields.
type MockSpotter struct {
	// SpotFunc is called by Spot if set.
	// If nil, uses default simple word spotting.
	SpotFunc func(ctx context.Context, payload ai.SegmentPayload) ([]ai.SpottedEntity, error)

	callCount int
}

// NewMockSpotter creates a mock spotter with default behavior.
// Note: Returns concrete type to allow test assertions.
func NewMockSpotter() *MockSpotter {
	return &MockSpotter{}
}

// Spot extracts simple mock entities from the payload.
// Default behavior: splits text payloads by spaces and spots up to 5 words;
// image payloads yield a single entity derived from the image reference.
func (m *MockSpotter) Spot(ctx context.Context, payload ai.SegmentPayload) ([]ai.SpottedEntity, error) {
	m.callCount++

	if m.SpotFunc != nil {
		return m.SpotFunc(ctx, payload)
	}

	if payload.Kind == ai.PayloadImage {
		if payload.ImageRef == "" {
			return []ai.SpottedEntity{}, nil
		}
		return []ai.SpottedEntity{
			{Surface: "figure", Confidence: 0.8},
		}, nil
	}

	words := strings.Fields(strings.ToLower(payload.Text))
	entities := make([]ai.SpottedEntity, 0, len(words))
	confidence := 0.95
	offset := 0.0
	for i, word := range words {
		if i >= 5 { // Limit to 5 entities
			break
		}

		word = strings.Trim(word, ".,!?;:\"'()[]{}")
		if word == "" {
			continue
		}

		entities = append(entities, ai.SpottedEntity{
			Surface:    word,
			SpanStart:  offset,
			SpanEnd:    offset + float64(len(word)),
			Confidence: confidence,
		})

		offset += float64(len(word)) + 1
		if confidence > 0.2 {
			confidence -= 0.1
		}
	}

	return entities, nil
}

// CallCount returns the number of times Spot was called.
func (m *MockSpotter) CallCount() int {
	return m.callCount
}

// Reset clears the call count and custom functions.
func (m *MockSpotter) Reset() {
	m.callCount = 0
	m.SpotFunc = nil
}
