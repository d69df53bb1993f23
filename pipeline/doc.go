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

// Package pipeline orchestrates lectures through mention extraction,
// alignment, enrichment, and graph assembly.
//
// # Architecture
//
// The Orchestrator is the entry point. Each lecture advances through a
// linear state machine persisted in storage, so an interrupted run resumes
// from the last completed stage. Stages within a lecture are separated by
// barriers; lectures themselves run in parallel on a bounded pool.
//
// The stage components are independently usable:
//
//   - SegmentProcessor: payload resolution and entity spotting per segment
//   - AlignmentEngine: mention-to-concept resolution with cross-modal pairing
//   - EnrichmentCoordinator: once-per-concept definition lookup, explanation
//     synthesis, and optional speech assets
//
// Assembly itself is delegated to the graph package.
//
// # Failure Policy
//
// Two error classes, distinguished with errors.As:
//
//   - DegradableError: an external service failed for one unit after
//     retries. The unit is skipped, the lecture gets a warning, the run
//     continues. The graph loses data, never gains wrong data.
//   - StructuralError: an internal inconsistency. The lecture is marked
//     FAILED with the stage and entity in the reason; other lectures are
//     unaffected.
//
// Cancellation is neither: the lecture is marked CANCELLED and state writes
// are flushed on a detached context.
package pipeline
