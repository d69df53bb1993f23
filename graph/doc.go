// Package graph assembles and exports the knowledge graph.
//
// The assembler is the only pure stage of the pipeline: it reads the
// concepts evidenced in a lecture and emits triples with no external calls
// and no randomness, so re-assembly of unchanged state is byte-identical.
// Dangling references are a hard error rather than a warning; an
// inconsistent graph is worse than a failed lecture.
//
// The predicate vocabulary is a fixed set of dotted constants
// (concept.appearsIn, concept.hasExplanation, concept.relatedTo,
// concept.hasAsset). Subjects are always concept references; the predicate
// determines whether the object is a segment, a concept, or a literal.
package graph
