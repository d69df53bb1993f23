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


package graph

import (
	"fmt"
	"slices"

	"github.com/poiesic/lecturegraph/core"
)

const (
	defaultTimeCoWindow = 120 // seconds
	defaultPageCoWindow = 1   // pages
)

// ConceptRef formats a concept node reference for the export.
func ConceptRef(id core.ID) string {
	return fmt.Sprintf("concept:%d", id)
}

// Assembler turns a lecture's concepts and segments into graph triples.
// Assembly is pure and deterministic: sorted inputs in, sorted triples out,
// no external calls. Re-assembling the same state yields byte-identical
// output.
type Assembler struct {
	timeCoWindow float64
	pageCoWindow float64
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler) error

// WithCoOccurrenceWindows overrides the relatedTo co-occurrence windows for
// time-based (seconds) and page-based (pages) segment pairs.
func WithCoOccurrenceWindows(timeWindow, pageWindow float64) AssemblerOption {
	return func(a *Assembler) error {
		if timeWindow < 0 || pageWindow < 0 {
			return fmt.Errorf("co-occurrence windows must be non-negative, got %f/%f", timeWindow, pageWindow)
		}
		a.timeCoWindow = timeWindow
		a.pageCoWindow = pageWindow
		return nil
	}
}

// NewAssembler creates an Assembler.
func NewAssembler(opts ...AssemblerOption) (*Assembler, error) {
	a := &Assembler{
		timeCoWindow: defaultTimeCoWindow,
		pageCoWindow: defaultPageCoWindow,
	}
	for _, opt := range opts {
		if err := opt(a); err != nil {
			return nil, err
		}
	}
	return a, nil
}

// Assemble produces the lecture's triple set from the concepts evidenced in
// it. Every evidence record scoped to the lecture must reference a segment in
// segments; a dangling reference fails the whole assembly.
//
// Emitted per concept, concepts ordered by ID:
//   - appearsIn per distinct evidenced segment
//   - hasExplanation when an explanation exists
//   - hasAsset per asset reference
//
// Then relatedTo once per unordered concept pair co-occurring within the
// window, lower ID as subject.
func (a *Assembler) Assemble(lecture *core.Lecture, concepts []*core.Concept, segments []*core.Segment) ([]core.Triple, error) {
	if lecture == nil {
		return nil, ErrNilLecture
	}

	segByID := make(map[core.ID]*core.Segment, len(segments))
	for _, segment := range segments {
		segByID[segment.Id] = segment
	}

	evidenced := make([]*core.Concept, 0, len(concepts))
	for _, concept := range concepts {
		if concept.EvidenceCountForLecture(lecture.Id) > 0 {
			evidenced = append(evidenced, concept)
		}
	}
	slices.SortFunc(evidenced, func(x, y *core.Concept) int {
		switch {
		case x.Id < y.Id:
			return -1
		case x.Id > y.Id:
			return 1
		}
		return 0
	})

	var triples []core.Triple
	for _, concept := range evidenced {
		segmentIDs, err := a.evidencedSegments(lecture, concept, segByID)
		if err != nil {
			return nil, err
		}
		for _, segmentID := range segmentIDs {
			triples = append(triples, core.Triple{
				Subject:   concept.Id,
				Predicate: AppearsIn,
				ObjectId:  segmentID,
			})
		}

		if concept.Enrichment.Explanation != "" {
			triples = append(triples, core.Triple{
				Subject:   concept.Id,
				Predicate: HasExplanation,
				Literal:   concept.Enrichment.Explanation,
			})
		}

		for _, ref := range concept.AssetRefs {
			triples = append(triples, core.Triple{
				Subject:   concept.Id,
				Predicate: HasAsset,
				Literal:   ref,
			})
		}
	}

	related := a.relatedPairs(lecture, evidenced, segByID)
	triples = append(triples, related...)

	return triples, nil
}

// evidencedSegments returns the distinct, sorted segment IDs the concept has
// evidence in within the lecture. Unknown segments are a hard error: a triple
// pointing at a segment outside the lecture would corrupt the graph.
func (a *Assembler) evidencedSegments(lecture *core.Lecture, concept *core.Concept, segByID map[core.ID]*core.Segment) ([]core.ID, error) {
	seen := make(map[core.ID]bool)
	var ids []core.ID
	for _, evidence := range concept.Evidence {
		if evidence.LectureId != lecture.Id {
			continue
		}
		if _, ok := segByID[evidence.SegmentId]; !ok {
			return nil, fmt.Errorf("%w: concept %d evidences segment %d not in lecture %d",
				ErrDanglingReference, concept.Id, evidence.SegmentId, lecture.Id)
		}
		if !seen[evidence.SegmentId] {
			seen[evidence.SegmentId] = true
			ids = append(ids, evidence.SegmentId)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// relatedPairs emits relatedTo triples for concept pairs with evidence in
// segments within the co-occurrence window. Pairs are unordered; the lower
// concept ID is the subject.
func (a *Assembler) relatedPairs(lecture *core.Lecture, concepts []*core.Concept, segByID map[core.ID]*core.Segment) []core.Triple {
	var triples []core.Triple
	for i := 0; i < len(concepts); i++ {
		for j := i + 1; j < len(concepts); j++ {
			if a.coOccur(lecture, concepts[i], concepts[j], segByID) {
				triples = append(triples, core.Triple{
					Subject:   concepts[i].Id,
					Predicate: RelatedTo,
					ObjectId:  concepts[j].Id,
				})
			}
		}
	}
	return triples
}

func (a *Assembler) coOccur(lecture *core.Lecture, x, y *core.Concept, segByID map[core.ID]*core.Segment) bool {
	for _, ex := range x.Evidence {
		if ex.LectureId != lecture.Id {
			continue
		}
		sx := segByID[ex.SegmentId]
		for _, ey := range y.Evidence {
			if ey.LectureId != lecture.Id {
				continue
			}
			sy := segByID[ey.SegmentId]
			if a.withinWindow(sx, sy) {
				return true
			}
		}
	}
	return false
}

// withinWindow reports whether two segments are close enough to co-occur.
// The window depends on the offset basis: seconds when both modalities are
// time-based, pages otherwise. Segments in one lecture share an offset basis.
func (a *Assembler) withinWindow(x, y *core.Segment) bool {
	if x == nil || y == nil {
		return false
	}
	window := a.pageCoWindow
	if x.Modality.TimeBased() && y.Modality.TimeBased() {
		window = a.timeCoWindow
	}
	return segmentGap(x, y) <= window
}

// segmentGap returns the distance between two segment spans, zero when they
// overlap.
func segmentGap(x, y *core.Segment) float64 {
	lo := x.Start
	if y.Start > lo {
		lo = y.Start
	}
	hi := x.End
	if y.End < hi {
		hi = y.End
	}
	if lo <= hi {
		return 0
	}
	return lo - hi
}
