// Package mock provides test double implementations of the AI collaborator interfaces.
//
// This package contains mock implementations of ai.EntitySpotter,
// ai.ExplanationSynthesizer, ai.Normalizer, ai.Embedder, ai.SpeechSynthesizer
// and ai.Provider for use in unit tests. The mocks allow tests to run without
// external AI service dependencies and enable controlled, deterministic behavior.
//
// # Usage in Tests
//
//	// Basic usage with default behavior
//	mockProvider := mock.NewMockProvider()
//	entities, err := mockProvider.Spotter().Spot(ctx, payload)
//
//	// Custom behavior injection
//	mockSpotter := mock.NewMockSpotter()
//	mockSpotter.SpotFunc = func(ctx context.Context, p ai.SegmentPayload) ([]ai.SpottedEntity, error) {
//	    return []ai.SpottedEntity{{Surface: "photosynthesis", Confidence: 0.9}}, nil
//	}
//
//	// Check call counts
//	count := mockSpotter.CallCount()
//
// # Default Behavior
//
// The mock implementations provide sensible defaults:
//
//   - MockSpotter: spots the words of text payloads as entities
//   - MockSynthesizer: concatenates definitions into a stub explanation
//   - MockNormalizer: lowercases and trims the input
//   - MockEmbedder: returns deterministic vectors based on text hash
//   - MockSpeech: returns a fake asset reference derived from the text
package mock
