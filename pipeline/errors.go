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
	"errors"
	"fmt"

	"github.com/poiesic/lecturegraph/core"
)

var (
	// ErrLectureRepositoryRequired is returned when a lecture repository is not provided.
	ErrLectureRepositoryRequired = errors.New("lecture repository required")

	// ErrTripleRepositoryRequired is returned when a triple repository is not provided.
	ErrTripleRepositoryRequired = errors.New("triple repository required")

	// ErrRegistryRequired is returned when a concept registry is not provided.
	ErrRegistryRequired = errors.New("concept registry required")

	// ErrAIProviderRequired is returned when an AI provider is not provided.
	ErrAIProviderRequired = errors.New("AI provider required")

	// ErrInvalidMaxAttempts is returned when retry is configured with a
	// non-positive attempt count.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
)

// DegradableError marks a failure that costs data quality but not the run:
// the affected unit is skipped, a warning is recorded on the lecture, and
// the pipeline continues.
type DegradableError struct {
	Stage string
	Unit  core.ID // segment or concept the failure is scoped to
	Err   error
}

func (e *DegradableError) Error() string {
	return fmt.Sprintf("%s degraded on %d: %v", e.Stage, e.Unit, e.Err)
}

func (e *DegradableError) Unwrap() error { return e.Err }

// Degradable wraps an error as degradable.
func Degradable(stage string, unit core.ID, err error) error {
	return &DegradableError{Stage: stage, Unit: unit, Err: err}
}

// IsDegradable reports whether the error is degradable.
func IsDegradable(err error) bool {
	var de *DegradableError
	return errors.As(err, &de)
}

// StructuralError marks an internal inconsistency (dangling reference,
// impossible state transition, corrupted record). The lecture's run stops
// and the lecture is marked failed; other lectures are unaffected.
type StructuralError struct {
	Stage string
	Unit  core.ID
	Err   error
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("%s structural failure on %d: %v", e.Stage, e.Unit, e.Err)
}

func (e *StructuralError) Unwrap() error { return e.Err }

// Structural wraps an error as structural.
func Structural(stage string, unit core.ID, err error) error {
	return &StructuralError{Stage: stage, Unit: unit, Err: err}
}

// IsStructural reports whether the error is structural.
func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
