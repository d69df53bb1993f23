package core

import (
	"errors"
	"testing"
)

func TestValidateLecture(t *testing.T) {
	tests := []struct {
		name    string
		lecture *Lecture
		wantErr error
	}{
		{
			name:    "valid lecture",
			lecture: &Lecture{Title: "Cell Biology", Language: "en", State: StateIngested},
			wantErr: nil,
		},
		{
			name:    "nil lecture",
			lecture: nil,
			wantErr: ErrInvalidLecture,
		},
		{
			name:    "missing title",
			lecture: &Lecture{Language: "en", State: StateIngested},
			wantErr: ErrEmptyTitle,
		},
		{
			name:    "missing language",
			lecture: &Lecture{Title: "Cell Biology", State: StateIngested},
			wantErr: ErrEmptyLanguage,
		},
		{
			name:    "unknown state",
			lecture: &Lecture{Title: "Cell Biology", Language: "en", State: LectureState(99)},
			wantErr: ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLecture(tt.lecture)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateLecture() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateLecture() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateSegment(t *testing.T) {
	tests := []struct {
		name    string
		segment *Segment
		wantErr error
	}{
		{
			name:    "valid segment",
			segment: &Segment{LectureId: 1, Modality: ModalityAudioText, Start: 0, End: 60, PayloadRef: "t/1"},
			wantErr: nil,
		},
		{
			name:    "zero-length span is valid",
			segment: &Segment{LectureId: 1, Modality: ModalityImage, Start: 3, End: 3, PayloadRef: "s/3"},
			wantErr: nil,
		},
		{
			name:    "missing lecture",
			segment: &Segment{Modality: ModalityText, End: 1, PayloadRef: "t/1"},
			wantErr: ErrInvalidSegment,
		},
		{
			name:    "unknown modality",
			segment: &Segment{LectureId: 1, Modality: Modality(42), End: 1, PayloadRef: "t/1"},
			wantErr: ErrInvalidModality,
		},
		{
			name:    "missing payload",
			segment: &Segment{LectureId: 1, Modality: ModalityText, End: 1},
			wantErr: ErrEmptyPayloadRef,
		},
		{
			name:    "inverted span",
			segment: &Segment{LectureId: 1, Modality: ModalityText, Start: 10, End: 5, PayloadRef: "t/1"},
			wantErr: ErrInvalidSpan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSegment(tt.segment)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateSegment() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateSegment() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateMention(t *testing.T) {
	tests := []struct {
		name    string
		mention *Mention
		wantErr error
	}{
		{
			name:    "valid mention",
			mention: &Mention{SegmentId: 10, Surface: "mitosis", Modality: ModalityText, SpanStart: 0, SpanEnd: 7},
			wantErr: nil,
		},
		{
			name:    "missing segment",
			mention: &Mention{Surface: "mitosis", Modality: ModalityText},
			wantErr: ErrInvalidMention,
		},
		{
			name:    "empty surface",
			mention: &Mention{SegmentId: 10, Modality: ModalityText},
			wantErr: ErrInvalidMention,
		},
		{
			name:    "inverted span",
			mention: &Mention{SegmentId: 10, Surface: "mitosis", Modality: ModalityText, SpanStart: 7, SpanEnd: 0},
			wantErr: ErrInvalidSpan,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMention(tt.mention)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateMention() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateMention() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateConcept(t *testing.T) {
	tests := []struct {
		name    string
		concept *Concept
		wantErr error
	}{
		{
			name:    "valid concept",
			concept: &Concept{CanonicalKey: "mitosis", Label: "mitosis", Language: "en"},
			wantErr: nil,
		},
		{
			name:    "missing key",
			concept: &Concept{Label: "mitosis", Language: "en"},
			wantErr: ErrEmptyCanonicalKey,
		},
		{
			name:    "missing label",
			concept: &Concept{CanonicalKey: "mitosis", Language: "en"},
			wantErr: ErrEmptyLabel,
		},
		{
			name:    "missing language",
			concept: &Concept{CanonicalKey: "mitosis", Label: "mitosis"},
			wantErr: ErrEmptyLanguage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConcept(tt.concept)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidateConcept() unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidateConcept() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    LectureState
		to      LectureState
		wantErr bool
	}{
		{"linear advance", StateIngested, StateSegmented, false},
		{"aligned to enriched", StateAligned, StateEnriched, false},
		{"assembled to exported", StateAssembled, StateExported, false},
		{"re-ingestion", StateExported, StateIngested, false},
		{"fail from any stage", StateMentionsExtracted, StateFailed, false},
		{"cancel from any stage", StateEnriched, StateCancelled, false},
		{"skip ahead", StateIngested, StateAligned, true},
		{"backwards", StateEnriched, StateSegmented, true},
		{"failed is absorbing", StateFailed, StateIngested, true},
		{"cancelled is absorbing", StateCancelled, StateSegmented, true},
		{"cancelled cannot fail", StateCancelled, StateFailed, true},
		{"unknown from", LectureState(0), StateIngested, true},
		{"unknown to", StateIngested, LectureState(99), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTransition(tt.from, tt.to)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateTransition(%s, %s) expected error", tt.from, tt.to)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateTransition(%s, %s) unexpected error: %v", tt.from, tt.to, err)
			}
		})
	}
}
