package openai

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Normalizer implements ai.Normalizer using OpenAI-compatible chat APIs.
// Temperature is pinned to zero; the registry depends on normalization being
// deterministic for a given input.
type Normalizer struct {
	client llms.Model
	logger *slog.Logger
}

// newNormalizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newNormalizer(config *ai.Config) (*Normalizer, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.SynthHost),
		openai.WithToken("none"),
		openai.WithModel(config.SynthModel),
	)
	if err != nil {
		return nil, err
	}

	return &Normalizer{
		client: client,
		logger: slog.Default().With("component", "openai-normalizer"),
	}, nil
}

// NewNormalizer creates a new term normalizer using the provided configuration.
//
// Returns ai.Normalizer interface to enforce abstraction.
func NewNormalizer(config *ai.Config) (ai.Normalizer, error) {
	return newNormalizer(config)
}

// Normalize maps a surface form to its canonical form in the given language.
func (n *Normalizer) Normalize(ctx context.Context, text, language string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ai.ErrEmptyInput
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildNormalizePrompt(language)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(text),
			},
		},
	}

	response, err := n.client.GenerateContent(ctx, content, llms.WithTemperature(0.0))
	if err != nil {
		n.logger.Error("failed to normalize term", "text", text, "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
	}

	if len(response.Choices) < 1 {
		return "", fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
	}

	normalized := strings.ToLower(strings.TrimSpace(response.Choices[0].Content))
	if normalized == "" {
		return "", fmt.Errorf("%w: empty normalization", ai.ErrMalformedResponse)
	}

	return normalized, nil
}
