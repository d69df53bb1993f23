// Package registry maintains the canonical concept vocabulary.
//
// The registry is the only component that may create or merge concepts.
// Every mention resolution, from every concurrent lecture run, passes
// through one mutex: a canonical key therefore maps to exactly one concept
// ID for the lifetime of the store, and two runs can never race the same
// key into two concepts.
//
// Resolution proceeds in three steps:
//
//  1. Canonicalization: lowercase, strip diacritics and punctuation,
//     collapse whitespace; optionally preceded by the translation
//     collaborator for cross-language normalization.
//  2. Exact match on the canonical key.
//  3. Fuzzy match: Jaro-Winkler against same-language keys, optionally
//     gated by embedding cosine similarity to block string-close but
//     semantically distinct merges.
//
// Concept IDs are derived from the canonical key, so re-ingesting the same
// material reproduces the same IDs.
package registry
