package badger

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/storage"
)

// LectureRepository implements storage.LectureRepository for BadgerDB.
type LectureRepository struct {
	backend *Backend
}

var _ storage.LectureRepository = (*LectureRepository)(nil)

// NewLectureRepository creates a new LectureRepository.
func NewLectureRepository(backend *Backend) (*LectureRepository, error) {
	return &LectureRepository{
		backend: backend,
	}, nil
}

// Close releases resources. LectureRepository has no resources to release.
func (r *LectureRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *LectureRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddLecture adds a lecture to storage. If a lecture with the same identity
// already exists, the stored record is returned unchanged so re-ingestion
// stays idempotent.
func (r *LectureRepository) AddLecture(ctx context.Context, lecture *core.Lecture) (*core.Lecture, error) {
	if lecture != nil && lecture.State == 0 {
		lecture.State = core.StateIngested
	}
	if err := core.ValidateLecture(lecture); err != nil {
		return nil, err
	}

	var result *core.Lecture
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if lecture.Id == 0 {
			lecture.Id = core.IDFromContent(lecture.Identity())
		}

		key := makeLectureKey(lecture.Id)
		existing, err := readLecture(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}

		lecture.InsertedAt = time.Now().UTC()
		lecture.UpdatedAt = lecture.InsertedAt

		if err := tx.Set(key, storage.MarshalLecture(lecture)); err != nil {
			return err
		}
		result = lecture
		return tx.Commit()
	}, true)

	return result, err
}

// UpdateLecture replaces an existing lecture record.
func (r *LectureRepository) UpdateLecture(ctx context.Context, lecture *core.Lecture) (*core.Lecture, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeLectureKey(lecture.Id)
		old, err := readLecture(tx, key)
		if err != nil {
			return err
		}
		if old == nil {
			return storage.ErrNotFound
		}

		lecture.UpdatedAt = time.Now().UTC()
		if err := tx.Set(key, storage.MarshalLecture(lecture)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)

	return lecture, err
}

// GetLecture retrieves a single lecture by ID.
func (r *LectureRepository) GetLecture(ctx context.Context, id core.ID) (*core.Lecture, error) {
	var result *core.Lecture
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readLecture(tx, makeLectureKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// ListLectures retrieves all lectures, ordered by ID.
func (r *LectureRepository) ListLectures(ctx context.Context) ([]*core.Lecture, error) {
	var results []*core.Lecture
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(lectureRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var lecture *core.Lecture
			err := item.Value(func(val []byte) error {
				var err error
				lecture, err = storage.UnmarshalLecture(val)
				return err
			})
			if err != nil {
				return err
			}
			if lecture != nil {
				results = append(results, lecture)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys are decimal-formatted, so iteration order is lexicographic.
	slices.SortFunc(results, func(a, b *core.Lecture) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
	return results, nil
}

// SetLectureState transitions a lecture to a new state after validating the
// transition. The reason is recorded alongside the state.
func (r *LectureRepository) SetLectureState(ctx context.Context, id core.ID, state core.LectureState, reason string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeLectureKey(id)
		lecture, err := readLecture(tx, key)
		if err != nil {
			return err
		}
		if lecture == nil {
			return storage.ErrNotFound
		}

		if err := core.ValidateTransition(lecture.State, state); err != nil {
			return err
		}

		lecture.State = state
		lecture.StateReason = reason
		if state == core.StateIngested {
			// Re-ingestion restarts the run; stale warnings would otherwise
			// accumulate across runs.
			lecture.Warnings = nil
		}
		lecture.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalLecture(lecture)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AppendWarning records a degradable failure against the lecture.
func (r *LectureRepository) AppendWarning(ctx context.Context, id core.ID, warning string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeLectureKey(id)
		lecture, err := readLecture(tx, key)
		if err != nil {
			return err
		}
		if lecture == nil {
			return storage.ErrNotFound
		}

		lecture.Warnings = append(lecture.Warnings, warning)
		lecture.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalLecture(lecture)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// AddSegments adds segments to storage and records their IDs on the owning
// lecture. Re-adding an existing segment is a no-op.
func (r *LectureRepository) AddSegments(ctx context.Context, segments ...*core.Segment) ([]*core.Segment, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		touched := make(map[core.ID]*core.Lecture)

		for _, segment := range segments {
			if err := core.ValidateSegment(segment); err != nil {
				return err
			}

			// Use content-based ID if not set
			if segment.Id == 0 {
				segment.Id = core.IDFromContent(fmt.Sprintf("(%d,%s)", segment.LectureId, segment.Identity()))
			}

			key := makeSegmentKey(segment.Id)
			existing, err := readSegment(tx, key)
			if err != nil {
				return err
			}
			if existing != nil {
				*segment = *existing
				continue
			}

			segment.InsertedAt = time.Now().UTC()
			if err := tx.Set(key, storage.MarshalSegment(segment)); err != nil {
				return err
			}

			// Update lecture index
			indexKey := makeSegmentLectureKey(segment.LectureId, segment.Start, segment.Id)
			if err := tx.Set(indexKey, storage.MarshalID(segment.Id)); err != nil {
				return err
			}

			lecture, ok := touched[segment.LectureId]
			if !ok {
				lecture, err = readLecture(tx, makeLectureKey(segment.LectureId))
				if err != nil {
					return err
				}
				if lecture == nil {
					return storage.ErrNotFound
				}
				touched[segment.LectureId] = lecture
			}
			if !slices.Contains(lecture.SegmentIds, segment.Id) {
				lecture.SegmentIds = append(lecture.SegmentIds, segment.Id)
			}
		}

		for _, lecture := range touched {
			lecture.UpdatedAt = time.Now().UTC()
			if err := tx.Set(makeLectureKey(lecture.Id), storage.MarshalLecture(lecture)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return segments, err
}

// GetSegment retrieves a single segment by ID.
func (r *LectureRepository) GetSegment(ctx context.Context, id core.ID) (*core.Segment, error) {
	var result *core.Segment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = readSegment(tx, makeSegmentKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetSegmentsByLecture retrieves all segments of a lecture, ordered by start
// offset.
func (r *LectureRepository) GetSegmentsByLecture(ctx context.Context, lectureID core.ID) ([]*core.Segment, error) {
	var results []*core.Segment
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makePartialSegmentLectureKey(lectureID)
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var segmentID core.ID
			err := item.Value(func(val []byte) error {
				var err error
				segmentID, err = storage.UnmarshalID(val)
				return err
			})
			if err != nil {
				return err
			}

			segment, err := readSegment(tx, makeSegmentKey(segmentID))
			if err != nil {
				return err
			}
			if segment != nil {
				results = append(results, segment)
			}
		}
		return nil
	}, false)
	return results, err
}

// readLecture reads a lecture from the transaction.
func readLecture(tx *badger.Txn, key []byte) (*core.Lecture, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var lecture *core.Lecture
	err = item.Value(func(val []byte) error {
		var err error
		lecture, err = storage.UnmarshalLecture(val)
		return err
	})
	return lecture, err
}

// readSegment reads a segment from the transaction.
func readSegment(tx *badger.Txn, key []byte) (*core.Segment, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var segment *core.Segment
	err = item.Value(func(val []byte) error {
		var err error
		segment, err = storage.UnmarshalSegment(val)
		return err
	})
	return segment, err
}
