// Package resolver selects the best catalog match for a structured query.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/requestarr/requestarr/internal/catalog"
	"github.com/requestarr/requestarr/internal/query"
)

// ErrNoMatch is returned when the catalog search yields zero candidates.
var ErrNoMatch = errors.New("no catalog match")

// AmbiguousError is returned when no candidate clears the ranking policy
// decisively. It carries the tied candidates so the caller can report
// the condition; rendering them is the transport's business.
type AmbiguousError struct {
	Candidates []catalog.Item
}

func (e *AmbiguousError) Error() string {
	return fmt.Sprintf("ambiguous match: %d candidates", len(e.Candidates))
}

// Resolver ranks catalog search results and picks a decisive winner.
type Resolver struct {
	client catalog.Client
	logger zerolog.Logger
}

// New creates a new resolver backed by the given catalog client.
func New(client catalog.Client, logger zerolog.Logger) *Resolver {
	return &Resolver{
		client: client,
		logger: logger.With().Str("component", "resolver").Logger(),
	}
}

// Resolve searches the catalog and selects the best match.
//
// Ranking policy: an exact case-insensitive title match beats a partial
// one; among equal title quality a release year equal to the query year
// wins; the collaborator's own relevance order is the tie-break of last
// resort for same-title same-year candidates. A winner must be either a
// unique exact title match or a unique (title, year) pair — otherwise
// the result is *AmbiguousError. Zero candidates is ErrNoMatch.
//
// For TV winners without an embedded season inventory the seasons are
// loaded with a follow-up lookup.
func (r *Resolver) Resolve(ctx context.Context, q *query.StructuredQuery) (*catalog.Item, error) {
	candidates, err := r.client.Search(ctx, q.Title, q.Year)
	if err != nil {
		return nil, fmt.Errorf("catalog search: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoMatch
	}

	winner, err := pick(q, candidates)
	if err != nil {
		return nil, err
	}

	if winner.MediaType == catalog.MediaTypeTV && len(winner.Seasons) == 0 {
		seasons, err := r.client.GetSeasons(ctx, winner.ID)
		if err != nil {
			return nil, fmt.Errorf("season lookup for %q: %w", winner.Title, err)
		}
		winner.Seasons = seasons
	}

	r.logger.Debug().
		Str("title", winner.Title).
		Int("year", winner.Year).
		Str("mediaType", string(winner.MediaType)).
		Int("candidates", len(candidates)).
		Msg("Resolved catalog item")

	return winner, nil
}

func pick(q *query.StructuredQuery, candidates []catalog.Item) (*catalog.Item, error) {
	exact := make([]catalog.Item, 0, len(candidates))
	for _, c := range candidates {
		if titlesEqual(c.Title, q.Title) {
			exact = append(exact, c)
		}
	}

	pool := candidates
	if len(exact) > 0 {
		pool = exact
	}

	if q.Year > 0 {
		byYear := make([]catalog.Item, 0, len(pool))
		for _, c := range pool {
			if c.Year == q.Year {
				byYear = append(byYear, c)
			}
		}
		switch {
		case len(byYear) == 1:
			return &byYear[0], nil
		case len(byYear) > 1 && len(exact) > 0:
			// Same title, same year (remakes): the collaborator's
			// relevance order is the last-resort tie-break.
			return &byYear[0], nil
		}
		// Year hint matched nothing; fall through to title-only ranking.
	}

	if len(exact) == 1 {
		return &exact[0], nil
	}
	if len(exact) == 0 && len(candidates) == 1 {
		return &candidates[0], nil
	}

	return nil, &AmbiguousError{Candidates: pool}
}

func titlesEqual(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
