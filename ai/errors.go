package ai

import "errors"

var (
	// ErrUnavailable indicates a transient collaborator failure (timeout,
	// rate limit, connection error). Callers may retry with backoff.
	ErrUnavailable = errors.New("ai service unavailable")

	// ErrMalformedResponse indicates the model returned output that could
	// not be parsed after repair attempts.
	ErrMalformedResponse = errors.New("malformed model response")

	// ErrEmptyInput indicates the caller passed an empty payload or text.
	ErrEmptyInput = errors.New("empty input")
)
