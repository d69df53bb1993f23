package lookup

import "errors"

var (
	// ErrNotFound indicates the source has no entry for the term.
	// A miss is degradable; it is distinct from a transport failure.
	ErrNotFound = errors.New("term not found")

	// ErrUnavailable indicates the lookup service could not be reached or
	// returned a server error. Callers may retry with backoff.
	ErrUnavailable = errors.New("lookup service unavailable")
)
