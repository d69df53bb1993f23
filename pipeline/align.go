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
	"errors"
	"log/slog"
	"slices"
	"strings"

	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/registry"
)

const stageAlignment = "alignment"

// AlignConfig tunes cross-modal proximity pairing. None of these values come
// from the source material; they are deployment knobs.
type AlignConfig struct {
	// TimeProximity is the pairing window in seconds for segment pairs whose
	// modalities are both time-based.
	TimeProximity float64

	// PageProximity is the pairing window in pages when either segment is
	// page-based.
	PageProximity float64

	// CandidateThreshold is the Jaro-Winkler floor for considering an
	// existing concept a pairing candidate. Deliberately lower than the
	// registry's merge threshold: pairing requires lecture evidence on top.
	CandidateThreshold float64

	// Pairs lists the allowed cross-modality evidence pairings. Same-modality
	// pairing is always allowed.
	Pairs []ModalityPair
}

// ModalityPair is an unordered cross-modality pairing rule.
type ModalityPair struct {
	A, B core.Modality
}

// DefaultAlignConfig returns the default pairing rules: images pair with any
// text-bearing modality, video timestamps pair with transcript text.
func DefaultAlignConfig() AlignConfig {
	return AlignConfig{
		TimeProximity:      30,
		PageProximity:      1,
		CandidateThreshold: 0.85,
		Pairs: []ModalityPair{
			{core.ModalityImage, core.ModalityText},
			{core.ModalityImage, core.ModalityAudioText},
			{core.ModalityText, core.ModalityAudioText},
			{core.ModalityVideoTimestamp, core.ModalityText},
			{core.ModalityVideoTimestamp, core.ModalityAudioText},
		},
	}
}

func (c AlignConfig) pairAllowed(a, b core.Modality) bool {
	if a == b {
		return true
	}
	for _, pair := range c.Pairs {
		if (pair.A == a && pair.B == b) || (pair.A == b && pair.B == a) {
			return true
		}
	}
	return false
}

// AlignmentEngine resolves mentions to concepts and groups them into
// per-concept alignments. Resolution prefers pairing with concepts already
// evidenced nearby in the lecture over creating new concepts, which is what
// links an image's "photosynthesis diagram" to the transcript's
// "photosynthesis" instead of minting a second node.
type AlignmentEngine struct {
	registry *registry.Registry
	cfg      AlignConfig
	logger   *slog.Logger
}

// NewAlignmentEngine creates an AlignmentEngine.
func NewAlignmentEngine(reg *registry.Registry, cfg AlignConfig, logger *slog.Logger) *AlignmentEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &AlignmentEngine{registry: reg, cfg: cfg, logger: logger}
}

// Align resolves every mention and attaches evidence. Mentions whose surface
// canonicalizes to nothing are dropped with a debug log. The returned
// alignments group the lecture's mentions per concept, in first-resolution
// order after the deterministic mention sort.
func (e *AlignmentEngine) Align(ctx context.Context, lecture *core.Lecture, segments []*core.Segment, mentions []core.Mention) ([]core.Alignment, error) {
	segByID := make(map[core.ID]*core.Segment, len(segments))
	for _, segment := range segments {
		segByID[segment.Id] = segment
	}

	// Deterministic processing order: segment start, then span, then surface.
	// Earlier mentions anchor the pairing decisions of later ones, so the
	// order must not depend on map iteration or goroutine scheduling.
	sorted := slices.Clone(mentions)
	slices.SortFunc(sorted, func(a, b core.Mention) int {
		sa, sb := segByID[a.SegmentId], segByID[b.SegmentId]
		if sa != nil && sb != nil && sa.Start != sb.Start {
			if sa.Start < sb.Start {
				return -1
			}
			return 1
		}
		if a.SpanStart != b.SpanStart {
			if a.SpanStart < b.SpanStart {
				return -1
			}
			return 1
		}
		return strings.Compare(a.Surface, b.Surface)
	})

	groups := make(map[core.ID]*core.Alignment)
	var order []core.ID

	for _, mention := range sorted {
		segment, ok := segByID[mention.SegmentId]
		if !ok {
			return nil, Structural(stageAlignment, mention.SegmentId,
				errors.New("mention references unknown segment"))
		}

		concept, err := e.resolveMention(ctx, lecture, segment, mention, segByID)
		if err != nil {
			if errors.Is(err, registry.ErrEmptyLabel) {
				e.logger.Debug("dropping unresolvable mention", "surface", mention.Surface)
				continue
			}
			return nil, err
		}

		evidence := core.Evidence{
			SegmentId: mention.SegmentId,
			LectureId: mention.LectureId,
			Modality:  mention.Modality,
			SpanStart: mention.SpanStart,
			SpanEnd:   mention.SpanEnd,
		}
		if err := e.registry.AttachEvidence(ctx, concept.Id, evidence); err != nil {
			return nil, err
		}

		group, ok := groups[concept.Id]
		if !ok {
			group = &core.Alignment{ConceptId: concept.Id}
			groups[concept.Id] = group
			order = append(order, concept.Id)
		}
		group.Mentions = append(group.Mentions, mention)
	}

	alignments := make([]core.Alignment, 0, len(order))
	for _, id := range order {
		alignments = append(alignments, *groups[id])
	}
	return alignments, nil
}

// resolveMention maps one mention to a concept.
//
// An exact canonical-key match always wins. Otherwise, registered concepts
// whose keys are string-close are pairing candidates when they already have
// evidence in this lecture — same-modality evidence anywhere in the lecture,
// cross-modality evidence only within the proximity window. Ambiguity breaks
// on lecture evidence count, then creation order, then ID. With no viable
// candidate the mention resolves through the registry, which may create a
// new concept.
func (e *AlignmentEngine) resolveMention(ctx context.Context, lecture *core.Lecture, segment *core.Segment, mention core.Mention, segByID map[core.ID]*core.Segment) (*core.Concept, error) {
	key, err := e.registry.CanonicalKeyFor(ctx, mention.Surface, lecture.Language)
	if err != nil {
		return nil, err
	}

	candidates, err := e.registry.Candidates(ctx, key, lecture.Language, e.cfg.CandidateThreshold)
	if err != nil {
		return nil, err
	}

	if len(candidates) > 0 && candidates[0].Exact {
		concept := candidates[0].Concept
		if err := e.registry.MergeSynonym(ctx, concept.Id, mention.Surface); err != nil {
			return nil, err
		}
		return concept, nil
	}

	var best *core.Concept
	bestCount := 0
	for _, candidate := range candidates {
		if !e.anchored(lecture, segment, mention, candidate.Concept, segByID) {
			continue
		}
		count := candidate.Concept.EvidenceCountForLecture(lecture.Id)
		switch {
		case best == nil,
			count > bestCount,
			count == bestCount && candidate.Concept.CreatedSeq < best.CreatedSeq,
			count == bestCount && candidate.Concept.CreatedSeq == best.CreatedSeq && candidate.Concept.Id < best.Id:
			best = candidate.Concept
			bestCount = count
		}
	}
	if best != nil {
		e.logger.Debug("mention paired with existing concept",
			"surface", mention.Surface, "concept", best.CanonicalKey)
		if err := e.registry.MergeSynonym(ctx, best.Id, mention.Surface); err != nil {
			return nil, err
		}
		return best, nil
	}

	concept, _, err := e.registry.Resolve(ctx, mention.Surface, lecture.Language)
	return concept, err
}

// anchored reports whether the concept has evidence in this lecture that the
// mention may pair with under the modality and proximity rules.
func (e *AlignmentEngine) anchored(lecture *core.Lecture, segment *core.Segment, mention core.Mention, concept *core.Concept, segByID map[core.ID]*core.Segment) bool {
	for _, evidence := range concept.Evidence {
		if evidence.LectureId != lecture.Id {
			continue
		}
		if !e.cfg.pairAllowed(mention.Modality, evidence.Modality) {
			continue
		}
		if evidence.Modality == mention.Modality {
			// Same-modality ambiguity ("cell" against cell_biology) is not
			// a proximity question.
			return true
		}
		// Cross-modal pairing requires the anchor within the window.
		if anchor := segByID[evidence.SegmentId]; anchor != nil {
			if e.withinProximity(segment, anchor) {
				return true
			}
		}
	}
	return false
}

// withinProximity reports whether two segments fall inside the configured
// pairing window for their offset basis.
func (e *AlignmentEngine) withinProximity(a, b *core.Segment) bool {
	window := e.cfg.PageProximity
	if a.Modality.TimeBased() && b.Modality.TimeBased() {
		window = e.cfg.TimeProximity
	}
	lo := a.Start
	if b.Start > lo {
		lo = b.Start
	}
	hi := a.End
	if b.End < hi {
		hi = b.End
	}
	if lo <= hi {
		return true
	}
	return lo-hi <= window
}
