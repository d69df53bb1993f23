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
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Synthesizer implements ai.ExplanationSynthesizer using OpenAI-compatible chat APIs.
type Synthesizer struct {
	client llms.Model
	logger *slog.Logger
}

// newSynthesizer is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSynthesizer(config *ai.Config) (*Synthesizer, error) {
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

	return &Synthesizer{
		client: client,
		logger: slog.Default().With("component", "openai-synthesizer"),
	}, nil
}

// NewSynthesizer creates a new explanation synthesizer using the provided
// configuration.
//
// Returns ai.ExplanationSynthesizer interface to enforce abstraction.
func NewSynthesizer(config *ai.Config) (ai.ExplanationSynthesizer, error) {
	return newSynthesizer(config)
}

// Synthesize combines candidate definitions into one explanation.
func (s *Synthesizer) Synthesize(ctx context.Context, label string, definitions []string, language string) (string, error) {
	if strings.TrimSpace(label) == "" {
		return "", ai.ErrEmptyInput
	}

	var input strings.Builder
	if len(definitions) == 0 {
		input.WriteString("No candidate definitions were found. Explain the concept from the label alone.")
	} else {
		input.WriteString("Candidate definitions:\n")
		for i, def := range definitions {
			fmt.Fprintf(&input, "%d. %s\n", i+1, def)
		}
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSynthesisPrompt(label, language)),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(input.String()),
			},
		},
	}

	response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.2))
	if err != nil {
		s.logger.Error("failed to synthesize explanation", "label", label, "err", err)
		return "", fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
	}

	if len(response.Choices) < 1 {
		return "", fmt.Errorf("%w: no choices returned", ai.ErrMalformedResponse)
	}

	explanation := strings.TrimSpace(response.Choices[0].Content)
	if explanation == "" {
		return "", fmt.Errorf("%w: empty explanation", ai.ErrMalformedResponse)
	}

	s.logger.Debug("synthesized explanation", "label", label, "length", len(explanation))
	return explanation, nil
}
