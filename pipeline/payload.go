package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/poiesic/lecturegraph/core"
)

// PayloadResolver loads a segment's payload from external storage. The
// pipeline never owns raw media; segments carry opaque references.
type PayloadResolver interface {
	// ResolvePayload returns the payload for a segment. Failures are
	// degradable: the segment is skipped, not the lecture.
	ResolvePayload(ctx context.Context, lecture *core.Lecture, segment *core.Segment) (ai.SegmentPayload, error)
}

// FileResolver resolves payload references against a local media root.
// Text-bearing modalities read the referenced file; image segments pass the
// reference through for the multimodal spotter to fetch.
type FileResolver struct {
	root string
}

var _ PayloadResolver = (*FileResolver)(nil)

// NewFileResolver creates a FileResolver rooted at dir.
func NewFileResolver(dir string) *FileResolver {
	return &FileResolver{root: dir}
}

// ResolvePayload loads the segment payload.
func (r *FileResolver) ResolvePayload(ctx context.Context, lecture *core.Lecture, segment *core.Segment) (ai.SegmentPayload, error) {
	switch segment.Modality {
	case core.ModalityImage:
		ref := segment.PayloadRef
		if !strings.Contains(ref, "://") {
			ref = filepath.Join(r.root, ref)
		}
		return ai.SegmentPayload{
			Kind:     ai.PayloadImage,
			ImageRef: ref,
			Language: lecture.Language,
		}, nil
	default:
		data, err := os.ReadFile(filepath.Join(r.root, segment.PayloadRef))
		if err != nil {
			return ai.SegmentPayload{}, fmt.Errorf("reading payload %q: %w", segment.PayloadRef, err)
		}
		return ai.SegmentPayload{
			Kind:     ai.PayloadText,
			Text:     string(data),
			Language: lecture.Language,
		}, nil
	}
}
