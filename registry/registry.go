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


package registry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/poiesic/lecturegraph/ai"
	"github.com/poiesic/lecturegraph/core"
	"github.com/poiesic/lecturegraph/storage"
	"github.com/xrash/smetrics"
)

const (
	// Jaro-Winkler parameters as recommended by the algorithm's author.
	jwBoostThreshold = 0.7
	jwPrefixSize     = 4

	defaultFuzzyThreshold  = 0.93
	defaultVectorThreshold = 0.90
)

// entry is the in-memory index record for one concept.
type entry struct {
	id         core.ID
	key        string
	language   string
	createdSeq uint64
	vector     []float32 // computed lazily, nil until first needed
}

// Registry is the single serialization point for concept identity. Every
// mention resolution across all concurrent lecture runs funnels through one
// mutex, so a canonical key can never race into two concepts.
//
// The full key index is held in memory and loaded from storage at open;
// storage writes happen inside the lock so the index and the store cannot
// diverge.
type Registry struct {
	mu       sync.Mutex
	concepts storage.ConceptRepository

	normalizer ai.Normalizer // optional translation/stemming collaborator
	embedder   ai.Embedder   // optional embedding gate for fuzzy merges

	fuzzyThreshold  float64
	vectorThreshold float64

	byKey  map[string]*entry
	closed bool
	logger *slog.Logger
}

// Option configures a Registry.
type Option func(*Registry) error

// WithNormalizer sets the translation collaborator consulted during
// canonicalization. Without it, canonicalization is purely rule-based.
func WithNormalizer(n ai.Normalizer) Option {
	return func(r *Registry) error {
		r.normalizer = n
		return nil
	}
}

// WithEmbedder enables the embedding-similarity gate on fuzzy merges.
func WithEmbedder(e ai.Embedder) Option {
	return func(r *Registry) error {
		r.embedder = e
		return nil
	}
}

// WithFuzzyThreshold overrides the Jaro-Winkler merge threshold.
func WithFuzzyThreshold(t float64) Option {
	return func(r *Registry) error {
		if t <= 0 || t > 1 {
			return fmt.Errorf("fuzzy threshold must be in (0,1], got %f", t)
		}
		r.fuzzyThreshold = t
		return nil
	}
}

// WithVectorThreshold overrides the embedding cosine merge threshold.
func WithVectorThreshold(t float64) Option {
	return func(r *Registry) error {
		if t <= 0 || t > 1 {
			return fmt.Errorf("vector threshold must be in (0,1], got %f", t)
		}
		r.vectorThreshold = t
		return nil
	}
}

// Open creates a Registry over the concept repository and loads the key
// index from storage.
func Open(ctx context.Context, concepts storage.ConceptRepository, opts ...Option) (*Registry, error) {
	r := &Registry{
		concepts:        concepts,
		fuzzyThreshold:  defaultFuzzyThreshold,
		vectorThreshold: defaultVectorThreshold,
		byKey:           make(map[string]*entry),
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	all, err := concepts.AllConcepts(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading concept index: %w", err)
	}
	for _, concept := range all {
		r.byKey[concept.CanonicalKey] = &entry{
			id:         concept.Id,
			key:        concept.CanonicalKey,
			language:   concept.Language,
			createdSeq: concept.CreatedSeq,
		}
	}

	r.logger.Debug("concept registry opened", "concepts", len(r.byKey))
	return r, nil
}

// Close marks the registry closed. The underlying repository is owned by the
// caller and is not closed here.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	return nil
}

// Resolve maps a surface form to a concept, creating one if no existing
// concept matches. Returns the concept and whether it was created by this
// call.
//
// Resolution order: exact canonical-key match, then Jaro-Winkler fuzzy match
// against same-language keys, optionally gated by embedding similarity. Ties
// between fuzzy candidates break on creation order, then ID.
func (r *Registry) Resolve(ctx context.Context, surface, language string) (*core.Concept, bool, error) {
	key, err := r.canonicalKey(ctx, surface, language)
	if err != nil {
		return nil, false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, false, ErrClosed
	}

	// Exact match
	if e, ok := r.byKey[key]; ok {
		return r.mergeInto(ctx, e, surface)
	}

	// Fuzzy match
	if e := r.bestFuzzyMatch(ctx, key, language); e != nil {
		return r.mergeInto(ctx, e, surface)
	}

	// New concept
	seq, err := r.concepts.NextCreationSeq()
	if err != nil {
		return nil, false, err
	}
	concept := &core.Concept{
		CanonicalKey: key,
		Label:        surface,
		Language:     language,
		CreatedSeq:   seq,
	}
	added, err := r.concepts.AddConcepts(ctx, concept)
	if err != nil {
		return nil, false, err
	}
	created := added[0]
	r.byKey[key] = &entry{
		id:         created.Id,
		key:        key,
		language:   language,
		createdSeq: seq,
	}
	r.logger.Debug("concept created", "key", key, "id", created.Id)
	return created, true, nil
}

// CanonicalKeyFor computes the canonical key a surface form would resolve
// under, without creating or merging anything.
func (r *Registry) CanonicalKeyFor(ctx context.Context, surface, language string) (string, error) {
	return r.canonicalKey(ctx, surface, language)
}

// Candidate is one plausible match for a canonical key.
type Candidate struct {
	Concept    *core.Concept
	Exact      bool
	Similarity float64
}

// Candidates returns registered same-language concepts whose canonical keys
// plausibly match the given key: an exact match, a token-prefix relation
// ("cell" against "cell_biology"), or Jaro-Winkler similarity above the
// threshold. The exact match, when present, is always first.
func (r *Registry) Candidates(ctx context.Context, key, language string, threshold float64) ([]Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrClosed
	}

	type hit struct {
		e     *entry
		exact bool
		score float64
	}
	var hits []hit
	for _, e := range r.byKey {
		if e.language != language {
			continue
		}
		switch {
		case e.key == key:
			hits = append(hits, hit{e, true, 1})
		case tokenPrefix(key, e.key) || tokenPrefix(e.key, key):
			hits = append(hits, hit{e, false, smetrics.JaroWinkler(key, e.key, jwBoostThreshold, jwPrefixSize)})
		default:
			score := smetrics.JaroWinkler(key, e.key, jwBoostThreshold, jwPrefixSize)
			if score >= threshold {
				hits = append(hits, hit{e, false, score})
			}
		}
	}
	if len(hits) == 0 {
		return nil, nil
	}

	ids := make([]core.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.e.id
	}
	concepts, err := r.concepts.GetConcepts(ctx, ids...)
	if err != nil {
		return nil, err
	}
	byID := make(map[core.ID]*core.Concept, len(concepts))
	for _, c := range concepts {
		byID[c.Id] = c
	}

	out := make([]Candidate, 0, len(hits))
	for _, h := range hits {
		concept, ok := byID[h.e.id]
		if !ok {
			continue
		}
		out = append(out, Candidate{Concept: concept, Exact: h.exact, Similarity: h.score})
	}
	slices.SortFunc(out, func(a, b Candidate) int {
		switch {
		case a.Exact != b.Exact:
			if a.Exact {
				return -1
			}
			return 1
		case a.Similarity != b.Similarity:
			if a.Similarity > b.Similarity {
				return -1
			}
			return 1
		case a.Concept.Id != b.Concept.Id:
			if a.Concept.Id < b.Concept.Id {
				return -1
			}
			return 1
		}
		return 0
	})
	return out, nil
}

// MergeSynonym records a surface form as a synonym of an existing concept.
// Recording the concept's own label or an existing synonym is a no-op.
func (r *Registry) MergeSynonym(ctx context.Context, id core.ID, surface string) error {
	return r.update(ctx, id, func(concept *core.Concept) bool {
		if surface == concept.Label || concept.HasSynonym(surface) {
			return false
		}
		concept.Synonyms = append(concept.Synonyms, surface)
		return true
	})
}

// AttachEvidence appends an evidence record to the concept. Attaching the
// same evidence twice is a no-op, which keeps re-runs idempotent.
func (r *Registry) AttachEvidence(ctx context.Context, id core.ID, evidence core.Evidence) error {
	return r.update(ctx, id, func(concept *core.Concept) bool {
		if concept.HasEvidence(evidence) {
			return false
		}
		concept.Evidence = append(concept.Evidence, evidence)
		return true
	})
}

// SetEnrichment records the enrichment payload on the concept.
func (r *Registry) SetEnrichment(ctx context.Context, id core.ID, enrichment core.Enrichment) error {
	return r.update(ctx, id, func(concept *core.Concept) bool {
		concept.Enrichment = enrichment
		return true
	})
}

// AttachAsset records a generated asset reference on the concept.
// Re-attaching an existing reference is a no-op.
func (r *Registry) AttachAsset(ctx context.Context, id core.ID, ref string) error {
	return r.update(ctx, id, func(concept *core.Concept) bool {
		if concept.HasAsset(ref) {
			return false
		}
		concept.AssetRefs = append(concept.AssetRefs, ref)
		return true
	})
}

// Get retrieves a concept by ID.
func (r *Registry) Get(ctx context.Context, id core.ID) (*core.Concept, error) {
	concept, err := r.concepts.GetConcept(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownConcept, id)
	}
	return concept, err
}

// GetMany retrieves multiple concepts by ID, skipping missing ones.
func (r *Registry) GetMany(ctx context.Context, ids ...core.ID) ([]*core.Concept, error) {
	return r.concepts.GetConcepts(ctx, ids...)
}

// All retrieves every registered concept, ordered by ID.
func (r *Registry) All(ctx context.Context) ([]*core.Concept, error) {
	return r.concepts.AllConcepts(ctx)
}

// canonicalKey computes the canonical key for a surface form, consulting the
// translation collaborator when configured. A collaborator failure degrades
// to rule-based canonicalization; a surface that reduces to nothing is a
// structural error.
func (r *Registry) canonicalKey(ctx context.Context, surface, language string) (string, error) {
	text := surface
	if r.normalizer != nil {
		normalized, err := r.normalizer.Normalize(ctx, surface, language)
		if err != nil {
			r.logger.Warn("normalizer failed, using rule-based canonicalization",
				"surface", surface, "error", err)
		} else if normalized != "" {
			text = normalized
		}
	}

	key := canonicalize(text)
	if key == "" {
		// The raw surface may still canonicalize when the normalizer
		// returned something degenerate.
		key = canonicalize(surface)
	}
	if key == "" {
		return "", fmt.Errorf("%w: %q", ErrEmptyLabel, surface)
	}
	return key, nil
}

// bestFuzzyMatch scans same-language entries for the closest key above the
// fuzzy threshold. Caller must hold the lock.
func (r *Registry) bestFuzzyMatch(ctx context.Context, key, language string) *entry {
	var best *entry
	var bestScore float64

	for _, e := range r.byKey {
		if e.language != language {
			continue
		}
		score := smetrics.JaroWinkler(key, e.key, jwBoostThreshold, jwPrefixSize)
		if score < r.fuzzyThreshold {
			continue
		}
		if best == nil || score > bestScore ||
			(score == bestScore && older(e, best)) {
			best = e
			bestScore = score
		}
	}

	if best == nil {
		return nil
	}

	// Embedding gate: a high string similarity between semantically distinct
	// keys ("osmosis"/"osteosis") is rejected when vectors disagree.
	if r.embedder != nil && !r.vectorsAgree(ctx, key, best) {
		r.logger.Debug("fuzzy match rejected by embedding gate", "key", key, "candidate", best.key)
		return nil
	}
	return best
}

// vectorsAgree checks the embedding-cosine gate between a candidate key and
// an index entry. Embedding failures fail open: string similarity already
// cleared the higher threshold.
func (r *Registry) vectorsAgree(ctx context.Context, key string, e *entry) bool {
	if e.vector == nil {
		vec, err := r.embedder.EmbedText(ctx, e.key)
		if err != nil {
			r.logger.Warn("embedding candidate key failed", "key", e.key, "error", err)
			return true
		}
		e.vector = vec
	}

	vec, err := r.embedder.EmbedText(ctx, key)
	if err != nil {
		r.logger.Warn("embedding key failed", "key", key, "error", err)
		return true
	}

	return cosineSimilarity(vec, e.vector) >= float32(r.vectorThreshold)
}

// mergeInto resolves a surface form into an existing concept, recording the
// surface as a synonym when it differs from the stored label. Caller must
// hold the lock.
func (r *Registry) mergeInto(ctx context.Context, e *entry, surface string) (*core.Concept, bool, error) {
	concept, err := r.concepts.GetConcept(ctx, e.id)
	if err != nil {
		return nil, false, err
	}

	if surface != concept.Label && !concept.HasSynonym(surface) {
		concept.Synonyms = append(concept.Synonyms, surface)
		if _, err := r.concepts.UpdateConcepts(ctx, concept); err != nil {
			return nil, false, err
		}
	}
	return concept, false, nil
}

// update applies a mutation to a stored concept under the registry lock.
// The mutation reports whether anything changed; unchanged concepts are not
// rewritten.
func (r *Registry) update(ctx context.Context, id core.ID, mutate func(*core.Concept) bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrClosed
	}

	concept, err := r.concepts.GetConcept(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %d", ErrUnknownConcept, id)
	}
	if err != nil {
		return err
	}

	if !mutate(concept) {
		return nil
	}
	_, err = r.concepts.UpdateConcepts(ctx, concept)
	return err
}

// tokenPrefix reports whether short is a whole-token prefix of long:
// "cell" prefixes "cell_biology" but not "cellulose".
func tokenPrefix(short, long string) bool {
	return len(short) < len(long) && strings.HasPrefix(long, short+"_")
}

// older reports whether a was created before b, breaking ties on ID.
func older(a, b *entry) bool {
	if a.createdSeq != b.createdSeq {
		return a.createdSeq < b.createdSeq
	}
	return a.id < b.id
}

// cosineSimilarity computes the cosine of the angle between two vectors.
func cosineSimilarity(a, b []float32) float32 {
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < minLen; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
