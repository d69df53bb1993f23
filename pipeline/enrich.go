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


package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/lookup"
	"github.com/poiesic/lecturegraph/registry"
)

const stageEnrichment = "enrichment"

// EnrichmentCoordinator enriches concepts with explanations and optional
// speech assets. Enrichment runs at most once per concept per corpus run,
// even when many lectures share the concept and run concurrently; a concept
// whose stored enrichment is already complete is skipped entirely.
//
// Partial failures never block the pipeline: whatever was obtained is stored
// with Complete=false, and a later run fills the gap.
type EnrichmentCoordinator struct {
	registry    *registry.Registry
	lookups     *lookup.Chain
	synthesizer ai.ExplanationSynthesizer
	speech      ai.SpeechSynthesizer // nil when no TTS backend is configured
	maxAttempts int
	baseDelay   time.Duration
	flights     sync.Map // core.ID -> *flight
	logger      *slog.Logger
}

type flight struct {
	once sync.Once
	err  error
}

// NewEnrichmentCoordinator creates an EnrichmentCoordinator.
func NewEnrichmentCoordinator(reg *registry.Registry, lookups *lookup.Chain, synthesizer ai.ExplanationSynthesizer, speech ai.SpeechSynthesizer, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *EnrichmentCoordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentCoordinator{
		registry:    reg,
		lookups:     lookups,
		synthesizer: synthesizer,
		speech:      speech,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

// Enrich enriches one concept. Concurrent calls for the same concept from
// different lectures collapse into one execution; followers share its result.
func (c *EnrichmentCoordinator) Enrich(ctx context.Context, id core.ID) error {
	value, _ := c.flights.LoadOrStore(id, &flight{})
	f := value.(*flight)
	f.once.Do(func() {
		f.err = c.enrich(ctx, id)
	})
	return f.err
}

func (c *EnrichmentCoordinator) enrich(ctx context.Context, id core.ID) error {
	concept, err := c.registry.Get(ctx, id)
	if err != nil {
		return Structural(stageEnrichment, id, err)
	}

	if concept.Enrichment.Complete {
		c.logger.Debug("concept already enriched", "concept", concept.CanonicalKey)
		return nil
	}

	complete := true

	var definitions []lookup.Definition
	err = RetryWithBackoff(ctx, func() error {
		var lookupErr error
		definitions, lookupErr = c.lookups.LookupAll(ctx, concept.Label, concept.Language)
		return lookupErr
	}, c.maxAttempts, c.baseDelay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// A source outage degrades the explanation's grounding, not the run.
		c.logger.Warn("definition lookup degraded", "concept", concept.CanonicalKey, "error", err)
		complete = false
	}

	sources := make([]string, 0, len(definitions)+1)
	texts := make([]string, 0, len(definitions))
	for _, definition := range definitions {
		texts = append(texts, definition.Text)
		sources = appendUnique(sources, definition.Source)
	}

	var explanation string
	err = RetryWithBackoff(ctx, func() error {
		var synthErr error
		explanation, synthErr = c.synthesizer.Synthesize(ctx, concept.Label, texts, concept.Language)
		return synthErr
	}, c.maxAttempts, c.baseDelay)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		c.logger.Warn("explanation synthesis degraded", "concept", concept.CanonicalKey, "error", err)
		complete = false
	} else {
		sources = appendUnique(sources, "llm")
	}

	if c.speech != nil && explanation != "" {
		var assetRef string
		err = RetryWithBackoff(ctx, func() error {
			var speechErr error
			assetRef, speechErr = c.speech.SynthesizeAudio(ctx, explanation, concept.Language)
			return speechErr
		}, c.maxAttempts, c.baseDelay)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Warn("speech synthesis degraded", "concept", concept.CanonicalKey, "error", err)
			complete = false
		} else if err := c.registry.AttachAsset(ctx, id, assetRef); err != nil {
			return Structural(stageEnrichment, id, err)
		}
	}

	enrichment := core.Enrichment{
		Explanation: explanation,
		Sources:     sources,
		Complete:    complete,
		EnrichedAt:  time.Now().UTC(),
	}
	if err := c.registry.SetEnrichment(ctx, id, enrichment); err != nil {
		return Structural(stageEnrichment, id, err)
	}

	c.logger.Debug("concept enriched", "concept", concept.CanonicalKey, "complete", complete)
	return nil
}

func appendUnique(list []string, value string) []string {
	for _, existing := range list {
		if existing == value {
			return list
		}
	}
	return append(list, value)
}
