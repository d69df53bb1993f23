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
	"time"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/poiesic/lecturegraph/core"
)

const stageMentionExtraction = "mention-extraction"

// SegmentProcessor extracts candidate mentions from one segment via the
// entity spotter. Spotter calls are retried with backoff; exhaustion degrades
// the segment to zero mentions instead of failing the lecture.
type SegmentProcessor struct {
	spotter     ai.EntitySpotter
	resolver    PayloadResolver
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

// NewSegmentProcessor creates a SegmentProcessor.
func NewSegmentProcessor(spotter ai.EntitySpotter, resolver PayloadResolver, maxAttempts int, baseDelay time.Duration, logger *slog.Logger) *SegmentProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &SegmentProcessor{
		spotter:     spotter,
		resolver:    resolver,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
		logger:      logger,
	}
}

// Process extracts mentions from the segment. A payload or spotter failure
// returns a DegradableError; the caller records a warning and continues with
// the other segments. Context cancellation is returned as-is.
func (p *SegmentProcessor) Process(ctx context.Context, lecture *core.Lecture, segment *core.Segment) ([]core.Mention, error) {
	payload, err := p.resolver.ResolvePayload(ctx, lecture, segment)
	if err != nil {
		return nil, Degradable(stageMentionExtraction, segment.Id, err)
	}

	var entities []ai.SpottedEntity
	err = RetryWithBackoff(ctx, func() error {
		var spotErr error
		entities, spotErr = p.spotter.Spot(ctx, payload)
		return spotErr
	}, p.maxAttempts, p.baseDelay)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, Degradable(stageMentionExtraction, segment.Id, err)
	}

	mentions := make([]core.Mention, 0, len(entities))
	for _, entity := range entities {
		mention := core.Mention{
			SegmentId:  segment.Id,
			LectureId:  segment.LectureId,
			Surface:    entity.Surface,
			Modality:   segment.Modality,
			Confidence: entity.Confidence,
			SpanStart:  entity.SpanStart,
			SpanEnd:    entity.SpanEnd,
		}
		if err := core.ValidateMention(&mention); err != nil {
			p.logger.Debug("dropping invalid spotted entity",
				"segment", segment.Id, "surface", entity.Surface, "error", err)
			continue
		}
		mentions = append(mentions, mention)
	}

	p.logger.Debug("segment processed", "segment", segment.Id, "mentions", len(mentions))
	return mentions, nil
}
