// Package query turns free-text media commands into structured queries.
// Natural-language understanding is delegated to a completion service
// behind the CompletionClient interface so tests can substitute a
// deterministic fixture.
package query

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

// ErrEmptyQuery is returned when the command text is empty after trimming.
var ErrEmptyQuery = errors.New("query text is empty")

// ExtractionError wraps a failed or malformed completion-service response.
type ExtractionError struct {
	Reason string
	Err    error
}

func (e *ExtractionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("extraction failed: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("extraction failed: %s", e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Payload is the fixed output schema the completion service must produce.
// Season phrases like "s03", "season 4" or "s02 and s05" are the service's
// responsibility to parse into numbers.
type Payload struct {
	Title   string `json:"title"`
	Year    int    `json:"year,omitempty"`
	Seasons []int  `json:"seasons,omitempty"`
}

// CompletionClient is the narrow contract to the completion service.
type CompletionClient interface {
	Extract(ctx context.Context, text string) (*Payload, error)
}

// StructuredQuery is the immutable result of extraction. Seasons are
// deduplicated and sorted ascending; an empty set means "whole show" for
// TV or simply "movie".
type StructuredQuery struct {
	Title   string
	Year    int
	Seasons []int
}

// Extractor produces StructuredQuery values from raw command text.
type Extractor struct {
	client CompletionClient
	logger zerolog.Logger
}

// NewExtractor creates a new query extractor.
func NewExtractor(client CompletionClient, logger zerolog.Logger) *Extractor {
	return &Extractor{
		client: client,
		logger: logger.With().Str("component", "query").Logger(),
	}
}

// Extract parses the raw command text into a structured query.
// Empty input is a precondition violation (ErrEmptyQuery); any completion
// failure or schema violation surfaces as *ExtractionError.
func (e *Extractor) Extract(ctx context.Context, text string) (*StructuredQuery, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyQuery
	}

	payload, err := e.client.Extract(ctx, text)
	if err != nil {
		e.logger.Error().Err(err).Msg("Completion call failed")
		return nil, &ExtractionError{Reason: "completion call failed", Err: err}
	}
	if payload == nil {
		return nil, &ExtractionError{Reason: "completion returned no payload"}
	}

	title := strings.TrimSpace(payload.Title)
	if title == "" {
		return nil, &ExtractionError{Reason: "completion returned empty title"}
	}

	q := &StructuredQuery{
		Title:   title,
		Year:    payload.Year,
		Seasons: normalizeSeasons(payload.Seasons),
	}

	e.logger.Debug().
		Str("title", q.Title).
		Int("year", q.Year).
		Ints("seasons", q.Seasons).
		Msg("Extracted structured query")

	return q, nil
}

// normalizeSeasons drops non-positive numbers, deduplicates and sorts.
func normalizeSeasons(seasons []int) []int {
	if len(seasons) == 0 {
		return nil
	}

	seen := make(map[int]struct{}, len(seasons))
	out := make([]int, 0, len(seasons))
	for _, n := range seasons {
		if n <= 0 {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	if len(out) == 0 {
		return nil
	}

	sort.Ints(out)
	return out
}
