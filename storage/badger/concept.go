package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/storage"
)

// ConceptRepository implements storage.ConceptRepository for BadgerDB.
type ConceptRepository struct {
	backend   *Backend
	createSeq *badger.Sequence
}

var _ storage.ConceptRepository = (*ConceptRepository)(nil)

// NewConceptRepository creates a new ConceptRepository.
func NewConceptRepository(backend *Backend) (*ConceptRepository, error) {
	createSeq, err := backend.GetSequence(conceptCreateSeq)
	if err != nil {
		return nil, err
	}

	return &ConceptRepository{
		backend:   backend,
		createSeq: createSeq,
	}, nil
}

// Close releases the creation sequence.
func (r *ConceptRepository) Close() error {
	return r.createSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *ConceptRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// NextCreationSeq returns the next value of the concept creation sequence.
// The sequence orders concept creation across the whole store and breaks
// merge ties deterministically.
func (r *ConceptRepository) NextCreationSeq() (uint64, error) {
	next, err := r.createSeq.Next()
	if err != nil {
		return 0, err
	}
	// BadgerDB sequences can return 0 on first call, so we skip it
	if next == 0 {
		next, err = r.createSeq.Next()
		if err != nil {
			return 0, err
		}
	}
	return next, nil
}

// AddConcepts adds one or more concepts to storage.
func (r *ConceptRepository) AddConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			if err := core.ValidateConcept(concept); err != nil {
				return err
			}

			// Use content-based ID if not set
			if concept.Id == 0 {
				concept.Id = core.IDFromContent(concept.CanonicalKey)
			}

			// Set timestamps
			concept.InsertedAt = time.Now().UTC()
			concept.UpdatedAt = concept.InsertedAt

			// Store primary record
			key := makeConceptKey(concept.Id)
			value := storage.MarshalConcept(concept)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Store canonical-key index
			keyIndex := makeConceptCanonicalKey(concept.CanonicalKey)
			if err := tx.Set(keyIndex, storage.MarshalID(concept.Id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return concepts, err
}

// UpdateConcepts updates existing concepts.
func (r *ConceptRepository) UpdateConcepts(ctx context.Context, concepts ...*core.Concept) ([]*core.Concept, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, concept := range concepts {
			key := makeConceptKey(concept.Id)

			// Read old concept to detect changes
			old, err := readConcept(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			// Update timestamp
			concept.UpdatedAt = time.Now().UTC()

			// Store updated record
			value := storage.MarshalConcept(concept)
			if err := tx.Set(key, value); err != nil {
				return err
			}

			// Update canonical-key index if the key changed
			if old.CanonicalKey != concept.CanonicalKey {
				if err := tx.Delete(makeConceptCanonicalKey(old.CanonicalKey)); err != nil {
					return err
				}
				newIndex := makeConceptCanonicalKey(concept.CanonicalKey)
				if err := tx.Set(newIndex, storage.MarshalID(concept.Id)); err != nil {
					return err
				}
			}
		}
		return tx.Commit()
	}, true)

	return concepts, err
}

// GetConcept retrieves a single concept by ID.
func (r *ConceptRepository) GetConcept(ctx context.Context, id core.ID) (*core.Concept, error) {
	var result *core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeConceptKey(id)
		var err error
		result, err = readConcept(tx, key)
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

// GetConcepts retrieves multiple concepts by their IDs.
func (r *ConceptRepository) GetConcepts(ctx context.Context, ids ...core.ID) ([]*core.Concept, error) {
	var result []*core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeConceptKey(id)
			concept, err := readConcept(tx, key)
			if err != nil {
				return err
			}
			if concept != nil {
				result = append(result, concept)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetConceptByKey finds a concept by its canonical key.
func (r *ConceptRepository) GetConceptByKey(ctx context.Context, canonicalKey string) (*core.Concept, error) {
	var result *core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		// Look up ID from canonical-key index
		item, err := tx.Get(makeConceptCanonicalKey(canonicalKey))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		var conceptID core.ID
		err = item.Value(func(val []byte) error {
			conceptID, err = storage.UnmarshalID(val)
			return err
		})
		if err != nil {
			return err
		}

		// Look up full concept
		result, err = readConcept(tx, makeConceptKey(conceptID))
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

// AllConcepts retrieves every stored concept, ordered by ID.
func (r *ConceptRepository) AllConcepts(ctx context.Context) ([]*core.Concept, error) {
	var results []*core.Concept
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		prefix := []byte(conceptRecordPrefix + ":")
		for iter.Seek(prefix); iter.Valid(); iter.Next() {
			item := iter.Item()
			if !hasPrefix(item.Key(), prefix) {
				break
			}

			var concept *core.Concept
			err := item.Value(func(val []byte) error {
				var err error
				concept, err = storage.UnmarshalConcept(val)
				return err
			})
			if err != nil {
				return err
			}
			if concept != nil {
				results = append(results, concept)
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Keys are decimal-formatted, so iteration order is lexicographic.
	slices.SortFunc(results, func(a, b *core.Concept) int {
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

// hasPrefix checks if a byte slice has a given prefix
func hasPrefix(s, prefix []byte) bool {
	return len(s) >= len(prefix) && string(s[:len(prefix)]) == string(prefix)
}

// readConcept reads a concept from the transaction.
func readConcept(tx *badger.Txn, key []byte) (*core.Concept, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var concept *core.Concept
	err = item.Value(func(val []byte) error {
		var err error
		concept, err = storage.UnmarshalConcept(val)
		return err
	})
	return concept, err
}
