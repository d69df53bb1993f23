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

import "errors"

// Domain validation errors
var (
	// ErrInvalidLecture indicates a Lecture failed validation.
	ErrInvalidLecture = errors.New("invalid lecture")

	// ErrInvalidSegment indicates a Segment failed validation.
	ErrInvalidSegment = errors.New("invalid segment")

	// ErrInvalidMention indicates a Mention failed validation.
	ErrInvalidMention = errors.New("invalid mention")

	// ErrInvalidConcept indicates a Concept failed validation.
	ErrInvalidConcept = errors.New("invalid concept")

	// ErrInvalidModality indicates an unknown Modality value.
	ErrInvalidModality = errors.New("invalid modality")

	// ErrInvalidState indicates an unknown LectureState value.
	ErrInvalidState = errors.New("invalid lecture state")

	// ErrInvalidTransition indicates a state transition that is not allowed.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrEmptyTitle indicates the lecture Title field is empty.
	ErrEmptyTitle = errors.New("lecture title cannot be empty")

	// ErrEmptyCanonicalKey indicates canonicalization produced an empty key.
	// This is always a structural failure, never silently dropped.
	ErrEmptyCanonicalKey = errors.New("canonical key cannot be empty")

	// ErrEmptyLabel indicates the concept Label field is empty.
	ErrEmptyLabel = errors.New("concept label cannot be empty")

	// ErrEmptyLanguage indicates the Language field is empty.
	ErrEmptyLanguage = errors.New("language cannot be empty")

	// ErrEmptyPayloadRef indicates the segment payload reference is empty.
	ErrEmptyPayloadRef = errors.New("segment payload reference cannot be empty")

	// ErrInvalidSpan indicates a span whose end precedes its start.
	ErrInvalidSpan = errors.New("span end cannot precede span start")
)
