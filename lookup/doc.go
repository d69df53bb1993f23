// Package lookup provides clients for external definition sources.
//
// The enrichment stage fetches candidate definitions for each unique concept
// from encyclopedic sources (Wikipedia, ConceptNet) before asking the
// synthesis collaborator to write an explanation. Sources are consumed
// through the narrow Service interface; a Chain queries several sources and
// tolerates individual misses and failures.
//
// A miss (ErrNotFound) and a transport failure (ErrUnavailable) are distinct:
// a miss is final for that source, while a transport failure is retryable by
// the caller.
package lookup
