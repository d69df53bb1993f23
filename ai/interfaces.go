package ai

import "context"

// EntitySpotter identifies candidate concept occurrences in a segment payload.
// Implementations delegate to a multimodal LLM or NER service and must be
// thread-safe for concurrent use. Calls are non-deterministic and rate-limited;
// the pipeline wraps them in retry and treats failures as degradable.
type EntitySpotter interface {
	// Spot analyzes a segment payload and returns the concept-like surface
	// forms it contains, each with span offsets and a confidence score.
	// Returns an empty slice if no entities are found.
	// Returns an error if the external call fails.
	Spot(ctx context.Context, payload SegmentPayload) ([]SpottedEntity, error)
}

// ExplanationSynthesizer produces a learner-facing explanation for a concept
// from candidate definitions. Implementations must be thread-safe.
type ExplanationSynthesizer interface {
	// Synthesize combines the candidate definitions into one explanation in
	// the requested language. Definitions may be empty, in which case the
	// synthesizer explains the concept from the label alone.
	Synthesize(ctx context.Context, label string, definitions []string, language string) (string, error)
}

// Normalizer is the translation collaborator used during canonicalization.
// It maps a surface form to a canonical form in the registry's language,
// applying translation and language-aware stemming as needed.
type Normalizer interface {
	// Normalize returns the canonical form of text for the given language.
	// Must be deterministic: the same input always yields the same output.
	Normalize(ctx context.Context, text, language string) (string, error)
}

// Embedder generates vector embeddings from text for semantic similarity.
// Implementations must be thread-safe for concurrent use.
type Embedder interface {
	// EmbedText generates a vector embedding for a single text string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts generates vector embeddings for multiple text strings in a
	// batch. The returned slice contains embeddings in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// SpeechSynthesizer generates an audio asset for an explanation.
type SpeechSynthesizer interface {
	// SynthesizeAudio renders the text to speech and returns an opaque asset
	// reference. The pipeline stores the reference; it never inspects the asset.
	SynthesizeAudio(ctx context.Context, text, language string) (string, error)
}

// Provider aggregates the AI collaborators for convenient initialization and
// lifecycle management. Services returned by a provider share configuration
// and are safe for concurrent use.
type Provider interface {
	// Spotter returns the entity spotting service.
	Spotter() EntitySpotter

	// Synthesizer returns the explanation synthesis service.
	Synthesizer() ExplanationSynthesizer

	// Normalizer returns the translation/normalization service.
	Normalizer() Normalizer

	// Embedder returns the text embedding service.
	Embedder() Embedder

	// Speech returns the speech synthesis service, or nil when no TTS
	// backend is configured.
	Speech() SpeechSynthesizer

	// Close releases resources held by the provider and its services.
	Close() error
}
