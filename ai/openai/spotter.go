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
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Spotter implements ai.EntitySpotter using OpenAI-compatible multimodal chat APIs.
type Spotter struct {
	client        llms.Model
	minConfidence float64
	logger        *slog.Logger
}

// entity is an internal type used for JSON unmarshaling.
// It matches the structure expected from the LLM.
type entity struct {
	Surface    string  `json:"surface"`
	SpanStart  float64 `json:"span_start"`
	SpanEnd    float64 `json:"span_end"`
	Confidence float64 `json:"confidence"`
}

// spotting is the wrapper structure for the LLM's JSON response.
type spotting struct {
	Entities []entity `json:"entities"`
}

// newSpotter is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newSpotter(config *ai.Config) (*Spotter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	// Use "none" as token for local OpenAI-compatible services that don't require authentication
	client, err := openai.New(
		openai.WithBaseURL(config.SpotterHost),
		openai.WithToken("none"),
		openai.WithModel(config.SpotterModel),
	)
	if err != nil {
		return nil, err
	}

	return &Spotter{
		client:        client,
		minConfidence: config.MinConfidence,
		logger:        slog.Default().With("component", "openai-spotter"),
	}, nil
}

// NewSpotter creates a new entity spotter using the provided configuration.
//
// Returns ai.EntitySpotter interface to enforce abstraction.
func NewSpotter(config *ai.Config) (ai.EntitySpotter, error) {
	return newSpotter(config)
}

// Spot identifies concept-like entities in a segment payload using a
// multimodal LLM. It applies confidence filtering and returns only entities
// at or above the configured minimum.
func (s *Spotter) Spot(ctx context.Context, payload ai.SegmentPayload) ([]ai.SpottedEntity, error) {
	userParts, err := payloadParts(payload)
	if err != nil {
		return nil, err
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSpottingPrompt()),
			},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: userParts,
		},
	}

	// Try up to 3 times in case of malformed JSON
	var result spotting
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := s.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			s.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, fmt.Errorf("%w: %w", ai.ErrUnavailable, err)
		}

		if len(response.Choices) < 1 {
			s.logger.Debug("no choices returned from model")
			return []ai.SpottedEntity{}, nil
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			s.logger.Warn("error parsing spotter response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		// Success
		lastErr = nil
		break
	}

	if lastErr != nil {
		s.logger.Error("failed to parse spotter response after retries", "err", lastErr)
		return nil, fmt.Errorf("%w: %w", ai.ErrMalformedResponse, lastErr)
	}

	// Filter by confidence and convert to ai.SpottedEntity
	spotted := make([]ai.SpottedEntity, 0, len(result.Entities))
	for _, e := range result.Entities {
		if e.Surface == "" || e.Confidence < s.minConfidence {
			continue
		}
		spotted = append(spotted, ai.SpottedEntity{
			Surface:    strings.ToLower(scrubString(e.Surface)),
			SpanStart:  e.SpanStart,
			SpanEnd:    e.SpanEnd,
			Confidence: e.Confidence,
		})
	}

	// Sort by confidence (descending) for stable downstream ordering
	slices.SortFunc(spotted, func(a, b ai.SpottedEntity) int {
		switch {
		case a.Confidence > b.Confidence:
			return -1
		case a.Confidence < b.Confidence:
			return 1
		default:
			return strings.Compare(a.Surface, b.Surface)
		}
	})

	s.logger.Debug("spotted entities",
		"total", len(result.Entities),
		"filtered", len(spotted))

	return spotted, nil
}

// payloadParts converts a segment payload to langchaingo content parts.
func payloadParts(payload ai.SegmentPayload) ([]llms.ContentPart, error) {
	switch payload.Kind {
	case ai.PayloadText:
		if strings.TrimSpace(payload.Text) == "" {
			return nil, ai.ErrEmptyInput
		}
		return []llms.ContentPart{llms.TextPart(payload.Text)}, nil
	case ai.PayloadImage:
		if payload.ImageRef == "" {
			return nil, ai.ErrEmptyInput
		}
		return []llms.ContentPart{
			llms.TextPart("Identify the educational concepts shown in this slide image."),
			llms.ImageURLPart(payload.ImageRef),
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown payload kind %q", ai.ErrEmptyInput, payload.Kind)
	}
}
