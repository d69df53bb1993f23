package graph

import "errors"

var (
	// ErrDanglingReference indicates a triple references a concept or
	// segment that is not part of the assembly input. The graph would be
	// inconsistent; assembly fails hard rather than emitting it.
	ErrDanglingReference = errors.New("dangling graph reference")

	// ErrNilLecture indicates assembly was invoked without a lecture.
	ErrNilLecture = errors.New("lecture is required")
)
