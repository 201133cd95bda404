package orchestrator

import (
	"errors"
	"fmt"

	"github.com/requestarr/requestarr/internal/query"
	"github.com/requestarr/requestarr/internal/resolver"
	"github.com/requestarr/requestarr/internal/seasons"
)

// ErrStaleAction is returned when a confirmation or cancellation names an
// action that is no longer the live one for the conversation.
var ErrStaleAction = errors.New("action is no longer valid")

// SubmitError wraps a failed submit-request call. The core reports it and
// does not retry; retry policy belongs to the backend client.
type SubmitError struct {
	Err error
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit request failed: %v", e.Err)
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// FailureKind is the closed set of user-reportable failure categories.
// Every kind maps to a distinct message category in the transport.
type FailureKind string

const (
	FailureNone           FailureKind = ""
	FailureEmptyQuery     FailureKind = "empty_query"
	FailureExtraction     FailureKind = "extraction_failure"
	FailureNoMatch        FailureKind = "no_match"
	FailureAmbiguous      FailureKind = "ambiguous_match"
	FailureNoValidSeasons FailureKind = "no_valid_seasons"
	FailureStaleAction    FailureKind = "stale_action"
	FailureSubmit         FailureKind = "submit_failure"
	FailureUnknown        FailureKind = "unknown"
)

// Classify maps a pipeline error to its failure kind. Unclassified
// transport faults below the core's abstraction come out as
// FailureUnknown.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var extractionErr *query.ExtractionError
	var ambiguousErr *resolver.AmbiguousError
	var submitErr *SubmitError

	switch {
	case errors.Is(err, query.ErrEmptyQuery):
		return FailureEmptyQuery
	case errors.As(err, &extractionErr):
		return FailureExtraction
	case errors.Is(err, resolver.ErrNoMatch):
		return FailureNoMatch
	case errors.As(err, &ambiguousErr):
		return FailureAmbiguous
	case errors.Is(err, seasons.ErrNoValidSeasons):
		return FailureNoValidSeasons
	case errors.Is(err, ErrStaleAction):
		return FailureStaleAction
	case errors.As(err, &submitErr):
		return FailureSubmit
	default:
		return FailureUnknown
	}
}
