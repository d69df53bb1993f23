package graph

import (
	"testing"

	"github.com/poiesic/lecturegraph/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLecture() *core.Lecture {
	return &core.Lecture{Id: 1, Title: "Cell Biology", Language: "en", State: core.StateEnriched}
}

func testSegments() []*core.Segment {
	return []*core.Segment{
		{Id: 10, LectureId: 1, Modality: core.ModalityAudioText, Start: 0, End: 60, PayloadRef: "t/1"},
		{Id: 11, LectureId: 1, Modality: core.ModalityAudioText, Start: 60, End: 120, PayloadRef: "t/2"},
		{Id: 12, LectureId: 1, Modality: core.ModalityAudioText, Start: 600, End: 660, PayloadRef: "t/3"},
	}
}

func TestAssembleEmitsPerConceptTriples(t *testing.T) {
	assembler, err := NewAssembler()
	require.NoError(t, err)

	concept := &core.Concept{
		Id:    5,
		Label: "Mitosis",
		Evidence: []core.Evidence{
			{SegmentId: 10, LectureId: 1, Modality: core.ModalityAudioText},
			{SegmentId: 11, LectureId: 1, Modality: core.ModalityAudioText},
			{SegmentId: 11, LectureId: 1, Modality: core.ModalityAudioText, SpanStart: 5},
		},
		Enrichment: core.Enrichment{Explanation: "Mitosis is cell division.", Complete: true},
		AssetRefs:  []string{"audio/mitosis.mp3"},
	}

	triples, err := assembler.Assemble(testLecture(), []*core.Concept{concept}, testSegments())
	require.NoError(t, err)

	// Two distinct appearsIn (segment 11 evidenced twice collapses to one),
	// one hasExplanation, one hasAsset.
	assert.Equal(t, []core.Triple{
		{Subject: 5, Predicate: AppearsIn, ObjectId: 10},
		{Subject: 5, Predicate: AppearsIn, ObjectId: 11},
		{Subject: 5, Predicate: HasExplanation, Literal: "Mitosis is cell division."},
		{Subject: 5, Predicate: HasAsset, Literal: "audio/mitosis.mp3"},
	}, triples)
}

func TestAssembleRelatedTo(t *testing.T) {
	assembler, err := NewAssembler()
	require.NoError(t, err)

	near := &core.Concept{
		Id:       2,
		Label:    "Chloroplast",
		Evidence: []core.Evidence{{SegmentId: 11, LectureId: 1, Modality: core.ModalityAudioText}},
	}
	anchor := &core.Concept{
		Id:       3,
		Label:    "Photosynthesis",
		Evidence: []core.Evidence{{SegmentId: 10, LectureId: 1, Modality: core.ModalityAudioText}},
	}
	far := &core.Concept{
		Id:       4,
		Label:    "Krebs Cycle",
		Evidence: []core.Evidence{{SegmentId: 12, LectureId: 1, Modality: core.ModalityAudioText}},
	}

	triples, err := assembler.Assemble(testLecture(), []*core.Concept{far, anchor, near}, testSegments())
	require.NoError(t, err)

	var related []core.Triple
	for _, triple := range triples {
		if triple.Predicate == RelatedTo {
			related = append(related, triple)
		}
	}

	// Segments 10 and 11 are adjacent (gap 0); segment 12 is 480s away,
	// outside the 120s window. Exactly one pair, lower ID as subject.
	require.Len(t, related, 1)
	assert.Equal(t, core.Triple{Subject: 2, Predicate: RelatedTo, ObjectId: 3}, related[0])
}

func TestAssembleDanglingReferenceFails(t *testing.T) {
	assembler, err := NewAssembler()
	require.NoError(t, err)

	concept := &core.Concept{
		Id:       5,
		Label:    "Osmosis",
		Evidence: []core.Evidence{{SegmentId: 999, LectureId: 1, Modality: core.ModalityAudioText}},
	}

	_, err = assembler.Assemble(testLecture(), []*core.Concept{concept}, testSegments())
	assert.ErrorIs(t, err, ErrDanglingReference)
}

func TestAssembleDeterministic(t *testing.T) {
	assembler, err := NewAssembler()
	require.NoError(t, err)

	a := &core.Concept{Id: 9, Label: "A", Evidence: []core.Evidence{{SegmentId: 10, LectureId: 1, Modality: core.ModalityAudioText}}}
	b := &core.Concept{Id: 2, Label: "B", Evidence: []core.Evidence{{SegmentId: 11, LectureId: 1, Modality: core.ModalityAudioText}}}

	first, err := assembler.Assemble(testLecture(), []*core.Concept{a, b}, testSegments())
	require.NoError(t, err)
	second, err := assembler.Assemble(testLecture(), []*core.Concept{b, a}, testSegments())
	require.NoError(t, err)

	// Input order must not leak into output order.
	assert.Equal(t, first, second)
	assert.Equal(t, core.ID(2), first[0].Subject)
}

func TestAssembleIgnoresOtherLectures(t *testing.T) {
	assembler, err := NewAssembler()
	require.NoError(t, err)

	concept := &core.Concept{
		Id:    5,
		Label: "Diffusion",
		Evidence: []core.Evidence{
			{SegmentId: 10, LectureId: 1, Modality: core.ModalityAudioText},
			// Evidence from another lecture must not produce triples here,
			// and its unknown segment must not trip the dangling check.
			{SegmentId: 777, LectureId: 2, Modality: core.ModalityAudioText},
		},
	}

	triples, err := assembler.Assemble(testLecture(), []*core.Concept{concept}, testSegments())
	require.NoError(t, err)
	require.Len(t, triples, 1)
	assert.Equal(t, core.ID(10), triples[0].ObjectId)
}

func TestAssemblePageBasedWindow(t *testing.T) {
	assembler, err := NewAssembler()
	require.NoError(t, err)

	lecture := &core.Lecture{Id: 7, Title: "Slides", Language: "en", State: core.StateEnriched}
	segments := []*core.Segment{
		{Id: 20, LectureId: 7, Modality: core.ModalityImage, Start: 1, End: 1, PayloadRef: "s/1"},
		{Id: 21, LectureId: 7, Modality: core.ModalityImage, Start: 2, End: 2, PayloadRef: "s/2"},
		{Id: 22, LectureId: 7, Modality: core.ModalityImage, Start: 9, End: 9, PayloadRef: "s/9"},
	}
	a := &core.Concept{Id: 1, Label: "A", Evidence: []core.Evidence{{SegmentId: 20, LectureId: 7, Modality: core.ModalityImage}}}
	b := &core.Concept{Id: 2, Label: "B", Evidence: []core.Evidence{{SegmentId: 21, LectureId: 7, Modality: core.ModalityImage}}}
	c := &core.Concept{Id: 3, Label: "C", Evidence: []core.Evidence{{SegmentId: 22, LectureId: 7, Modality: core.ModalityImage}}}

	triples, err := assembler.Assemble(lecture, []*core.Concept{a, b, c}, segments)
	require.NoError(t, err)

	var related []core.Triple
	for _, triple := range triples {
		if triple.Predicate == RelatedTo {
			related = append(related, triple)
		}
	}

	// Adjacent pages co-occur within the 1-page window; pages 7 apart don't.
	require.Len(t, related, 1)
	assert.Equal(t, core.ID(1), related[0].Subject)
	assert.Equal(t, core.ID(2), related[0].ObjectId)
}
