package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/poiesic/lecturegraph/ai/mock"
	"github.com/poiesic/lecturegraph/core"
)

func testProcessorLecture() *core.Lecture {
	return &core.Lecture{Id: 1, Title: "Test", Language: "en", State: core.StateSegmented}
}

func TestProcessExtractsMentions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seg.txt"), []byte("mitosis"), 0o644))

	spotter := mock.NewMockSpotter()
	processor := NewSegmentProcessor(spotter, NewFileResolver(dir), 2, time.Millisecond, nil)

	segment := &core.Segment{Id: 10, LectureId: 1, Modality: core.ModalityAudioText,
		Start: 0, End: 60, PayloadRef: "seg.txt"}
	mentions, err := processor.Process(context.Background(), testProcessorLecture(), segment)
	require.NoError(t, err)

	require.Len(t, mentions, 1)
	assert.Equal(t, "mitosis", mentions[0].Surface)
	assert.Equal(t, core.ID(10), mentions[0].SegmentId)
	assert.Equal(t, core.ID(1), mentions[0].LectureId)
	assert.Equal(t, core.ModalityAudioText, mentions[0].Modality)
}

func TestProcessDegradesOnPayloadFailure(t *testing.T) {
	processor := NewSegmentProcessor(mock.NewMockSpotter(), NewFileResolver(t.TempDir()), 2, time.Millisecond, nil)

	segment := &core.Segment{Id: 10, LectureId: 1, Modality: core.ModalityAudioText,
		Start: 0, End: 60, PayloadRef: "missing.txt"}
	_, err := processor.Process(context.Background(), testProcessorLecture(), segment)

	require.Error(t, err)
	assert.True(t, IsDegradable(err))
}

func TestProcessDegradesWhenSpotterExhausted(t *testing.T) {
	spotter := mock.NewMockSpotter()
	attempts := 0
	spotter.SpotFunc = func(context.Context, ai.SegmentPayload) ([]ai.SpottedEntity, error) {
		attempts++
		return nil, errors.New("rate limited")
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seg.txt"), []byte("anything"), 0o644))
	processor := NewSegmentProcessor(spotter, NewFileResolver(dir), 3, time.Millisecond, nil)

	segment := &core.Segment{Id: 10, LectureId: 1, Modality: core.ModalityAudioText,
		Start: 0, End: 60, PayloadRef: "seg.txt"}
	_, err := processor.Process(context.Background(), testProcessorLecture(), segment)

	require.Error(t, err)
	assert.True(t, IsDegradable(err))
	assert.Equal(t, 3, attempts)
}

func TestProcessFiltersInvalidEntities(t *testing.T) {
	spotter := mock.NewMockSpotter()
	spotter.SpotFunc = func(context.Context, ai.SegmentPayload) ([]ai.SpottedEntity, error) {
		return []ai.SpottedEntity{
			{Surface: "valid", SpanStart: 0, SpanEnd: 5, Confidence: 0.9},
			{Surface: "", SpanStart: 6, SpanEnd: 10, Confidence: 0.9},
			{Surface: "inverted span", SpanStart: 20, SpanEnd: 10, Confidence: 0.9},
		}, nil
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seg.txt"), []byte("anything"), 0o644))
	processor := NewSegmentProcessor(spotter, NewFileResolver(dir), 2, time.Millisecond, nil)

	segment := &core.Segment{Id: 10, LectureId: 1, Modality: core.ModalityAudioText,
		Start: 0, End: 60, PayloadRef: "seg.txt"}
	mentions, err := processor.Process(context.Background(), testProcessorLecture(), segment)
	require.NoError(t, err)

	require.Len(t, mentions, 1)
	assert.Equal(t, "valid", mentions[0].Surface)
}

func TestProcessCancellationIsNotDegradable(t *testing.T) {
	spotter := mock.NewMockSpotter()
	spotter.SpotFunc = func(ctx context.Context, _ ai.SegmentPayload) ([]ai.SpottedEntity, error) {
		return nil, ctx.Err()
	}

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "seg.txt"), []byte("anything"), 0o644))
	processor := NewSegmentProcessor(spotter, NewFileResolver(dir), 3, time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	segment := &core.Segment{Id: 10, LectureId: 1, Modality: core.ModalityAudioText,
		Start: 0, End: 60, PayloadRef: "seg.txt"}
	_, err := processor.Process(ctx, testProcessorLecture(), segment)

	require.ErrorIs(t, err, context.Canceled)
	assert.False(t, IsDegradable(err))
}

func TestFileResolverImagePassThrough(t *testing.T) {
	resolver := NewFileResolver("/media")

	lecture := &core.Lecture{Id: 1, Title: "T", Language: "de", State: core.StateSegmented}
	segment := &core.Segment{Id: 10, LectureId: 1, Modality: core.ModalityImage,
		Start: 1, End: 1, PayloadRef: "slides/page1.png"}

	payload, err := resolver.ResolvePayload(context.Background(), lecture, segment)
	require.NoError(t, err)
	assert.Equal(t, ai.PayloadImage, payload.Kind)
	assert.Equal(t, filepath.Join("/media", "slides/page1.png"), payload.ImageRef)
	assert.Equal(t, "de", payload.Language)

	// Absolute references pass through untouched.
	segment.PayloadRef = "s3://bucket/page1.png"
	payload, err = resolver.ResolvePayload(context.Background(), lecture, segment)
	require.NoError(t, err)
	assert.Equal(t, "s3://bucket/page1.png", payload.ImageRef)
}
