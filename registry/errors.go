package registry

import "errors"

var (
	// ErrEmptyLabel indicates that canonicalization reduced the surface form
	// to nothing. The mention cannot name a concept and must be discarded by
	// the caller.
	ErrEmptyLabel = errors.New("label canonicalizes to empty key")

	// ErrClosed indicates the registry has been closed.
	ErrClosed = errors.New("registry is closed")

	// ErrUnknownConcept indicates the referenced concept is not in the
	// registry.
	ErrUnknownConcept = errors.New("unknown concept")
)
