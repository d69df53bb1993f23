package pipeline

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/registry"
	badgerstore "github.com/poiesic/lecturegraph/storage/badger"
)

func newAlignTest(t *testing.T) (*AlignmentEngine, *registry.Registry) {
	t.Helper()

	lectureRepo, conceptRepo, tripleRepo, backend, err := badgerstore.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		tripleRepo.Close()
		conceptRepo.Close()
		lectureRepo.Close()
		backend.Close()
	})

	reg, err := registry.Open(context.Background(), conceptRepo)
	require.NoError(t, err)
	t.Cleanup(func() { reg.Close() })

	return NewAlignmentEngine(reg, DefaultAlignConfig(), nil), reg
}

func alignLecture() *core.Lecture {
	return &core.Lecture{Id: 1, Title: "Alignment", Language: "en", State: core.StateMentionsExtracted}
}

func textSegment(id core.ID, start, end float64) *core.Segment {
	return &core.Segment{Id: id, LectureId: 1, Modality: core.ModalityAudioText,
		Start: start, End: end, PayloadRef: "t"}
}

func textMention(segmentID core.ID, surface string, span float64) core.Mention {
	return core.Mention{SegmentId: segmentID, LectureId: 1, Surface: surface,
		Modality: core.ModalityAudioText, Confidence: 0.9, SpanStart: span, SpanEnd: span + 1}
}

func TestAlignExactKeyMerges(t *testing.T) {
	engine, reg := newAlignTest(t)
	ctx := context.Background()

	segments := []*core.Segment{textSegment(10, 0, 60), textSegment(11, 60, 120)}
	mentions := []core.Mention{
		textMention(10, "Mitosis", 0),
		textMention(11, "mitosis.", 0),
	}

	alignments, err := engine.Align(ctx, alignLecture(), segments, mentions)
	require.NoError(t, err)

	// Surface variants of one canonical key collapse into one alignment.
	require.Len(t, alignments, 1)
	assert.Len(t, alignments[0].Mentions, 2)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "mitosis", all[0].CanonicalKey)
	assert.Len(t, all[0].Evidence, 2)
}

func TestAlignTokenPrefixPairsWithinLecture(t *testing.T) {
	engine, reg := newAlignTest(t)
	ctx := context.Background()

	// "cell" arrives ten minutes after "cell biology"; same-modality pairing
	// does not require proximity.
	segments := []*core.Segment{textSegment(10, 0, 60), textSegment(11, 600, 660)}
	mentions := []core.Mention{
		textMention(10, "cell biology", 0),
		textMention(11, "cell", 0),
	}

	alignments, err := engine.Align(ctx, alignLecture(), segments, mentions)
	require.NoError(t, err)
	require.Len(t, alignments, 1)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "cell_biology", all[0].CanonicalKey)
	assert.Contains(t, all[0].Synonyms, "cell")
}

func TestAlignTieBreakPrefersMoreEvidence(t *testing.T) {
	engine, reg := newAlignTest(t)
	ctx := context.Background()

	segments := []*core.Segment{
		textSegment(10, 0, 60),
		textSegment(11, 60, 120),
		textSegment(12, 120, 180),
		textSegment(13, 180, 240),
	}
	mentions := []core.Mention{
		textMention(10, "cell biology", 0),
		textMention(11, "cell biology", 0),
		textMention(12, "cell battery", 0),
		textMention(13, "cell", 0),
	}

	_, err := engine.Align(ctx, alignLecture(), segments, mentions)
	require.NoError(t, err)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)

	// Both registered concepts token-prefix match "cell"; the one with more
	// lecture evidence absorbs it.
	byKey := map[string]*core.Concept{}
	for _, concept := range all {
		byKey[concept.CanonicalKey] = concept
	}
	require.Contains(t, byKey, "cell_biology")
	require.Contains(t, byKey, "cell_battery")
	assert.Contains(t, byKey["cell_biology"].Synonyms, "cell")
	assert.Equal(t, 3, byKey["cell_biology"].EvidenceCountForLecture(1))
	assert.Equal(t, 1, byKey["cell_battery"].EvidenceCountForLecture(1))
}

func TestAlignCrossModalWithinWindow(t *testing.T) {
	engine, reg := newAlignTest(t)
	ctx := context.Background()

	imageSegment := &core.Segment{Id: 20, LectureId: 1, Modality: core.ModalityImage,
		Start: 0, End: 1, PayloadRef: "slide1.png"}
	segments := []*core.Segment{textSegment(10, 0, 1), imageSegment}
	mentions := []core.Mention{
		textMention(10, "photosynthesis", 0),
		{SegmentId: 20, LectureId: 1, Surface: "photosynthesis diagram",
			Modality: core.ModalityImage, Confidence: 0.8},
	}

	alignments, err := engine.Align(ctx, alignLecture(), segments, mentions)
	require.NoError(t, err)
	require.Len(t, alignments, 1)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "photosynthesis", all[0].CanonicalKey)
}

func TestAlignCrossModalOutsideWindowCreatesConcept(t *testing.T) {
	engine, reg := newAlignTest(t)
	ctx := context.Background()

	// Eight pages apart, outside the one-page cross-modal window: the image
	// mention mints its own concept.
	imageSegment := &core.Segment{Id: 20, LectureId: 1, Modality: core.ModalityImage,
		Start: 9, End: 9, PayloadRef: "slide9.png"}
	segments := []*core.Segment{textSegment(10, 0, 1), imageSegment}
	mentions := []core.Mention{
		textMention(10, "photosynthesis", 0),
		{SegmentId: 20, LectureId: 1, Surface: "photosynthesis diagram",
			Modality: core.ModalityImage, Confidence: 0.8},
	}

	alignments, err := engine.Align(ctx, alignLecture(), segments, mentions)
	require.NoError(t, err)
	assert.Len(t, alignments, 2)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestAlignDropsUnresolvableSurface(t *testing.T) {
	engine, reg := newAlignTest(t)
	ctx := context.Background()

	segments := []*core.Segment{textSegment(10, 0, 60)}
	mentions := []core.Mention{textMention(10, "!!!", 0)}

	alignments, err := engine.Align(ctx, alignLecture(), segments, mentions)
	require.NoError(t, err)
	assert.Empty(t, alignments)

	all, err := reg.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestAlignUnknownSegmentIsStructural(t *testing.T) {
	engine, _ := newAlignTest(t)

	segments := []*core.Segment{textSegment(10, 0, 60)}
	mentions := []core.Mention{textMention(999, "orphan", 0)}

	_, err := engine.Align(context.Background(), alignLecture(), segments, mentions)
	require.Error(t, err)
	assert.True(t, IsStructural(err))
}
