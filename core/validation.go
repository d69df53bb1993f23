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


package core

import "fmt"

// ValidateLecture validates a Lecture according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Language must not be empty
//   - State must be a known state
//
// NOT validated (populated by the pipeline):
//   - SegmentIds (empty until segmentation runs)
//   - Warnings (accumulated during the run)
func ValidateLecture(lecture *Lecture) error {
	if lecture == nil {
		return fmt.Errorf("%w: lecture is nil", ErrInvalidLecture)
	}

	if lecture.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLecture, ErrEmptyTitle)
	}

	if lecture.Language == "" {
		return fmt.Errorf("%w: %w", ErrInvalidLecture, ErrEmptyLanguage)
	}

	if err := ValidateLectureState(lecture.State); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidLecture, err)
	}

	return nil
}

// ValidateSegment validates a Segment according to domain rules.
//
// Validation rules:
//   - LectureId must be set
//   - Modality must be a known modality
//   - PayloadRef must not be empty
//   - End must not precede Start
func ValidateSegment(segment *Segment) error {
	if segment == nil {
		return fmt.Errorf("%w: segment is nil", ErrInvalidSegment)
	}

	if segment.LectureId == 0 {
		return fmt.Errorf("%w: lecture id is required", ErrInvalidSegment)
	}

	if err := ValidateModality(segment.Modality); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, err)
	}

	if segment.PayloadRef == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, ErrEmptyPayloadRef)
	}

	if segment.End < segment.Start {
		return fmt.Errorf("%w: %w", ErrInvalidSegment, ErrInvalidSpan)
	}

	return nil
}

// ValidateMention validates a Mention according to domain rules.
//
// Validation rules:
//   - SegmentId must be set
//   - Surface must not be empty
//   - Modality must be a known modality
//   - SpanEnd must not precede SpanStart
func ValidateMention(mention *Mention) error {
	if mention == nil {
		return fmt.Errorf("%w: mention is nil", ErrInvalidMention)
	}

	if mention.SegmentId == 0 {
		return fmt.Errorf("%w: segment id is required", ErrInvalidMention)
	}

	if mention.Surface == "" {
		return fmt.Errorf("%w: surface text is required", ErrInvalidMention)
	}

	if err := ValidateModality(mention.Modality); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidMention, err)
	}

	if mention.SpanEnd < mention.SpanStart {
		return fmt.Errorf("%w: %w", ErrInvalidMention, ErrInvalidSpan)
	}

	return nil
}

// ValidateConcept validates a Concept according to domain rules.
//
// Validation rules:
//   - CanonicalKey must not be empty
//   - Label must not be empty
//   - Language must not be empty
//
// NOT validated (appended by the pipeline):
//   - Evidence, Synonyms, Enrichment, AssetRefs
func ValidateConcept(concept *Concept) error {
	if concept == nil {
		return fmt.Errorf("%w: concept is nil", ErrInvalidConcept)
	}

	if concept.CanonicalKey == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyCanonicalKey)
	}

	if concept.Label == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyLabel)
	}

	if concept.Language == "" {
		return fmt.Errorf("%w: %w", ErrInvalidConcept, ErrEmptyLanguage)
	}

	return nil
}

// ValidateModality validates that a Modality has a known value.
func ValidateModality(m Modality) error {
	switch m {
	case ModalityText, ModalityImage, ModalityAudioText, ModalityVideoTimestamp:
		return nil
	default:
		return fmt.Errorf("%w: value %d", ErrInvalidModality, m)
	}
}

// ValidateLectureState validates that a LectureState has a known value.
func ValidateLectureState(s LectureState) error {
	if s < StateIngested || s > StateCancelled {
		return fmt.Errorf("%w: value %d", ErrInvalidState, s)
	}
	return nil
}

// ValidateTransition checks that a lecture may move from one state to the next.
// The pipeline is linear: each non-terminal state advances to its successor.
// Any non-terminal state may move to Failed or Cancelled. A lecture in
// Exported may be re-ingested (back to Ingested); all stages are idempotent.
func ValidateTransition(from, to LectureState) error {
	if err := ValidateLectureState(from); err != nil {
		return err
	}
	if err := ValidateLectureState(to); err != nil {
		return err
	}

	if from.Terminal() {
		return fmt.Errorf("%w: %s is absorbing", ErrInvalidTransition, from)
	}

	if to == StateFailed || to == StateCancelled {
		return nil
	}

	if from == StateExported && to == StateIngested {
		return nil // re-ingestion
	}

	if to == from+1 && to <= StateExported {
		return nil
	}

	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
