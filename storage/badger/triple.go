package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/storage"
)

// TripleRepository implements storage.TripleRepository for BadgerDB.
type TripleRepository struct {
	backend *Backend
}

var _ storage.TripleRepository = (*TripleRepository)(nil)

// NewTripleRepository creates a new TripleRepository.
func NewTripleRepository(backend *Backend) (*TripleRepository, error) {
	return &TripleRepository{
		backend: backend,
	}, nil
}

// Close releases resources. TripleRepository has no resources to release.
func (r *TripleRepository) Close() error {
	return nil
}

// WithTransaction delegates to the backend.
func (r *TripleRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// ReplaceForLecture atomically replaces the lecture's triple set. Triples are
// keyed by position so iteration returns them in assembly order.
func (r *TripleRepository) ReplaceForLecture(ctx context.Context, lectureID core.ID, triples []core.Triple) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		// Collect stale keys first; deleting while iterating invalidates
		// the iterator.
		var stale [][]byte
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		prefix := makePartialTripleKey(lectureID)
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			key := iter.Item().Key()
			if !hasPrefix(key, prefix) {
				break
			}
			stale = append(stale, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range stale {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}

		for i := range triples {
			key := makeTripleKey(lectureID, uint64(i))
			if err := tx.Set(key, storage.MarshalTriple(&triples[i])); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetByLecture retrieves the lecture's triple set in stored order.
func (r *TripleRepository) GetByLecture(ctx context.Context, lectureID core.ID) ([]core.Triple, error) {
	var results []core.Triple
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := makePartialTripleKey(lectureID)
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			err := item.Value(func(val []byte) error {
				triple, err := storage.UnmarshalTriple(val)
				if err != nil {
					return err
				}
				results = append(results, *triple)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return results, err
}
