package storage

import (
	"context"

	"github.com/poiesic/lecturegraph/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// LectureRepository provides operations for managing lectures and their segments.
type LectureRepository interface {
	Repository

	// AddLecture adds a lecture to storage. The ID is derived from the
	// lecture's content identity when zero. Adding an already-present
	// lecture returns the stored record unchanged (idempotent re-ingestion
	// resets its state separately via SetLectureState).
	AddLecture(ctx context.Context, lecture *core.Lecture) (*core.Lecture, error)

	// UpdateLecture replaces an existing lecture record.
	// Returns ErrNotFound if the lecture doesn't exist.
	UpdateLecture(ctx context.Context, lecture *core.Lecture) (*core.Lecture, error)

	// GetLecture retrieves a single lecture by ID.
	// Returns ErrNotFound if the lecture doesn't exist.
	GetLecture(ctx context.Context, id core.ID) (*core.Lecture, error)

	// ListLectures retrieves all lectures, ordered by ID.
	ListLectures(ctx context.Context) ([]*core.Lecture, error)

	// SetLectureState transitions a lecture to a new state, validating the
	// transition against the pipeline's state machine. The reason is stored
	// for terminal states.
	SetLectureState(ctx context.Context, id core.ID, state core.LectureState, reason string) error

	// AppendWarning records a degradable failure against the lecture.
	AppendWarning(ctx context.Context, id core.ID, warning string) error

	// AddSegments adds segments to storage and records their IDs on the
	// owning lecture. Segment IDs are derived from content identity when
	// zero; re-adding an existing segment is a no-op.
	AddSegments(ctx context.Context, segments ...*core.Segment) ([]*core.Segment, error)

	// GetSegment retrieves a single segment by ID.
	// Returns ErrNotFound if the segment doesn't exist.
	GetSegment(ctx context.Context, id core.ID) (*core.Segment, error)

	// GetSegmentsByLecture retrieves all segments of a lecture, ordered by
	// start offset.
	GetSegmentsByLecture(ctx context.Context, lectureID core.ID) ([]*core.Segment, error)
}

// ConceptRepository provides operations for managing concepts.
// All writes funnel through the registry, which serializes them; the
// repository itself only guarantees transactional consistency.
type ConceptRepository interface {
	Repository

	// AddConcepts adds one or more concepts to storage.
	// Uses content-based IDs (IDFromContent of the canonical key) when the
	// ID is zero. Sets InsertedAt if not already set.
	AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// UpdateConcepts updates existing concepts.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any concept doesn't exist.
	UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error)

	// GetConcept retrieves a single concept by ID.
	// Returns ErrNotFound if the concept doesn't exist.
	GetConcept(ctx context.Context, id core.ID) (*core.Concept, error)

	// GetConcepts retrieves multiple concepts by their IDs.
	// Returns only the concepts that exist (no error for missing concepts).
	GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error)

	// GetConceptByKey finds a concept by its canonical key.
	// Returns ErrNotFound if no concept has the key.
	GetConceptByKey(ctx context.Context, canonicalKey string) (*core.Concept, error)

	// AllConcepts retrieves every stored concept, ordered by ID.
	// Used by the registry to build its key index at open.
	AllConcepts(ctx context.Context) ([]*core.Concept, error)

	// NextCreationSeq returns the next value of the monotonic concept
	// creation sequence.
	NextCreationSeq() (uint64, error)
}

// TripleRepository provides operations for persisting assembled graphs.
type TripleRepository interface {
	Repository

	// ReplaceForLecture atomically replaces the lecture's triple set.
	// Assembly is deterministic, so replacement keeps re-runs idempotent.
	ReplaceForLecture(ctx context.Context, lectureID core.ID, triples []core.Triple) error

	// GetByLecture retrieves the lecture's triple set in stored order.
	// Returns an empty slice when the lecture has no assembled graph.
	GetByLecture(ctx context.Context, lectureID core.ID) ([]core.Triple, error)
}
