package graph

// Concept predicates. Subjects are concept IDs; objects are either node
// references or literals, never both. IDs become "concept:N" node
// references at export time.
const (
	// HasExplanation carries the synthesized explanation text as a literal.
	HasExplanation = "concept.hasExplanation"

	// AppearsIn links a concept to a segment it has evidence in.
	AppearsIn = "concept.appearsIn"

	// RelatedTo links two concepts that co-occur within the co-occurrence
	// window of one lecture. Emitted once per unordered pair, lower concept
	// ID as subject.
	RelatedTo = "concept.relatedTo"

	// HasAsset carries a generated asset reference (e.g. spoken explanation)
	// as a literal.
	HasAsset = "concept.hasAsset"
)
