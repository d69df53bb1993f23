package lookup

import (
	"context"
	"errors"
	"log/slog"
)

// Definition is one candidate definition fetched for a concept.
type Definition struct {
	// Text is the definition or summary text.
	Text string

	// Source names where the definition came from, e.g. "wikipedia".
	Source string
}

// Service fetches a candidate definition for a canonical term.
// Implementations must be thread-safe for concurrent use.
type Service interface {
	// Lookup returns a definition for the term in the given language.
	// Returns ErrNotFound when the source has no entry for the term; any
	// other error indicates a transport or service failure.
	Lookup(ctx context.Context, term, language string) (*Definition, error)
}

// ServiceFunc adapts a function to the Service interface.
type ServiceFunc func(ctx context.Context, term, language string) (*Definition, error)

// Lookup calls the wrapped function.
func (f ServiceFunc) Lookup(ctx context.Context, term, language string) (*Definition, error) {
	return f(ctx, term, language)
}

// Chain queries several sources in order and collects every definition it can
// get. A miss or failure from one source does not stop the chain; the
// enrichment coordinator decides what a partial result means.
type Chain struct {
	services []Service
	logger   *slog.Logger
}

// NewChain creates a lookup chain over the given sources, queried in order.
func NewChain(services ...Service) *Chain {
	return &Chain{
		services: services,
		logger:   slog.Default().With("component", "lookup-chain"),
	}
}

// LookupAll returns every definition the sources produced, in source order,
// plus the first transport error encountered (nil when all sources either
// answered or reported a plain miss).
func (c *Chain) LookupAll(ctx context.Context, term, language string) ([]Definition, error) {
	var definitions []Definition
	var firstErr error

	for _, svc := range c.services {
		def, err := svc.Lookup(ctx, term, language)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				continue
			}
			c.logger.Warn("lookup source failed", "term", term, "err", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		definitions = append(definitions, *def)
	}

	return definitions, firstErr
}
