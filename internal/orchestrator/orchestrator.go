// Package orchestrator sequences the request pipeline: extraction,
// catalog resolution, status mapping, season selection and the
// confirmation round-trip. One state machine instance runs per incoming
// command; the only shared state is the live pending-action register.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/requestarr/requestarr/internal/catalog"
	"github.com/requestarr/requestarr/internal/history"
	"github.com/requestarr/requestarr/internal/query"
	"github.com/requestarr/requestarr/internal/resolver"
	"github.com/requestarr/requestarr/internal/seasons"
	"github.com/requestarr/requestarr/internal/status"
)

// Command state machine states. Terminal states are done and failed.
type state string

const (
	stateExtracting state = "extracting"
	stateResolving  state = "resolving"
	stateReported   state = "status_reported"
	stateAwaiting   state = "awaiting_confirmation"
	stateSubmitting state = "submitting"
	stateDone       state = "done"
	stateFailed     state = "failed"
)

// Recorder persists terminal outcomes. A nil recorder disables auditing.
type Recorder interface {
	Record(ctx context.Context, e history.Entry) error
}

// OfferedAction is the confirmation offer exposed to the transport. The
// ID must be echoed back verbatim on confirmation or cancellation.
type OfferedAction struct {
	ID        string
	MediaID   int
	MediaType catalog.MediaType
	Title     string
	Year      int
	Seasons   []int
}

// CommandResult is the outcome of one command: the reported status plus,
// when something is actionable, the offered confirmation.
type CommandResult struct {
	Query          *query.StructuredQuery
	Item           *catalog.Item
	Status         status.Resolved
	UnknownSeasons []int
	Action         *OfferedAction
}

// ConfirmResult is the outcome of a successful confirmation.
type ConfirmResult struct {
	Action PendingAction
}

// Service is the request orchestrator.
type Service struct {
	extractor *query.Extractor
	resolver  *resolver.Resolver
	catalog   catalog.Client
	recorder  Recorder
	pending   *pendingRegister
	logger    zerolog.Logger
}

// NewService creates a new orchestrator.
func NewService(extractor *query.Extractor, res *resolver.Resolver, client catalog.Client, recorder Recorder, logger zerolog.Logger) *Service {
	return &Service{
		extractor: extractor,
		resolver:  res,
		catalog:   client,
		recorder:  recorder,
		pending:   newPendingRegister(),
		logger:    logger.With().Str("component", "orchestrator").Logger(),
	}
}

// HandleCommand runs the pipeline for one incoming command. A new
// command supersedes any live pending action for the conversation. The
// returned error, when non-nil, classifies via Classify.
func (s *Service) HandleCommand(ctx context.Context, chatID int64, text string) (*CommandResult, error) {
	// Superseding, not queuing: the previous prompt dies here even if
	// this command ends up offering nothing.
	s.pending.clear(chatID)

	log := s.logger.With().Int64("chatId", chatID).Logger()
	log.Debug().Str("state", string(stateExtracting)).Msg("Command accepted")

	q, err := s.extractor.Extract(ctx, text)
	if err != nil {
		s.recordFailure(ctx, chatID, text, nil, "", err)
		return nil, err
	}

	log.Debug().Str("state", string(stateResolving)).Str("title", q.Title).Msg("Query extracted")

	item, err := s.resolver.Resolve(ctx, q)
	if err != nil {
		s.recordFailure(ctx, chatID, text, nil, "", err)
		return nil, err
	}

	st := status.Map(item)
	log.Debug().
		Str("state", string(stateReported)).
		Str("title", item.Title).
		Str("status", string(st)).
		Msg("Status resolved")

	result := &CommandResult{
		Query:  q,
		Item:   item,
		Status: st,
	}

	var selection []int
	actionable := false

	switch item.MediaType {
	case catalog.MediaTypeTV:
		sel, err := seasons.Resolve(item, q.Seasons)
		if err != nil {
			s.recordFailure(ctx, chatID, text, item, st, err)
			return nil, err
		}
		result.UnknownSeasons = sel.Unknown
		selection = sel.Seasons
		actionable = !sel.Empty()
	default:
		// A movie is actionable only when nothing has been requested yet.
		actionable = st == status.NotRequested
	}

	if !actionable {
		log.Debug().Str("state", string(stateDone)).Msg("Nothing to do, status reported")
		s.record(ctx, history.Entry{
			ChatID:    chatID,
			Command:   text,
			MediaID:   item.ID,
			MediaType: string(item.MediaType),
			Title:     item.Title,
			Status:    string(st),
			Outcome:   history.OutcomeReported,
		})
		return result, nil
	}

	action := &PendingAction{
		ID:        uuid.NewString(),
		ChatID:    chatID,
		MediaID:   item.ID,
		MediaType: item.MediaType,
		Title:     item.Title,
		Year:      item.Year,
		Seasons:   selection,
		CreatedAt: time.Now(),
	}
	s.pending.replace(action)

	result.Action = &OfferedAction{
		ID:        action.ID,
		MediaID:   action.MediaID,
		MediaType: action.MediaType,
		Title:     action.Title,
		Year:      action.Year,
		Seasons:   action.Seasons,
	}

	log.Info().
		Str("state", string(stateAwaiting)).
		Str("actionId", action.ID).
		Str("title", item.Title).
		Ints("seasons", selection).
		Msg("Confirmation offered")

	s.record(ctx, history.Entry{
		ChatID:    chatID,
		Command:   text,
		MediaID:   item.ID,
		MediaType: string(item.MediaType),
		Title:     item.Title,
		Status:    string(st),
		Outcome:   history.OutcomeOffered,
		Seasons:   selection,
	})

	return result, nil
}

// HandleConfirmation consumes the live pending action and submits the
// request. A stale or superseded action id yields ErrStaleAction; it is
// never silently ignored and never submits twice.
func (s *Service) HandleConfirmation(ctx context.Context, chatID int64, actionID string) (*ConfirmResult, error) {
	action, ok := s.pending.take(chatID, actionID)
	if !ok {
		s.logger.Warn().
			Int64("chatId", chatID).
			Str("actionId", actionID).
			Msg("Confirmation for stale action rejected")
		s.recordFailure(ctx, chatID, "", nil, "", ErrStaleAction)
		return nil, ErrStaleAction
	}

	s.logger.Debug().
		Int64("chatId", chatID).
		Str("state", string(stateSubmitting)).
		Str("actionId", actionID).
		Msg("Submitting request")

	if err := s.catalog.SubmitRequest(ctx, action.MediaID, action.MediaType, action.Seasons); err != nil {
		submitErr := &SubmitError{Err: err}
		s.record(ctx, history.Entry{
			ChatID:      chatID,
			MediaID:     action.MediaID,
			MediaType:   string(action.MediaType),
			Title:       action.Title,
			Outcome:     history.OutcomeFailed,
			FailureKind: string(FailureSubmit),
			Seasons:     action.Seasons,
		})
		return nil, submitErr
	}

	s.logger.Info().
		Int64("chatId", chatID).
		Str("state", string(stateDone)).
		Int("mediaId", action.MediaID).
		Str("mediaType", string(action.MediaType)).
		Ints("seasons", action.Seasons).
		Msg("Request submitted")

	s.record(ctx, history.Entry{
		ChatID:    chatID,
		MediaID:   action.MediaID,
		MediaType: string(action.MediaType),
		Title:     action.Title,
		Outcome:   history.OutcomeSubmitted,
		Seasons:   action.Seasons,
	})

	return &ConfirmResult{Action: *action}, nil
}

// Cancel discards the live pending action. Cancelling a stale action is
// ErrStaleAction, same as confirming one.
func (s *Service) Cancel(ctx context.Context, chatID int64, actionID string) error {
	action, ok := s.pending.take(chatID, actionID)
	if !ok {
		return ErrStaleAction
	}

	s.logger.Info().
		Int64("chatId", chatID).
		Str("actionId", actionID).
		Msg("Pending action cancelled")

	s.record(ctx, history.Entry{
		ChatID:    chatID,
		MediaID:   action.MediaID,
		MediaType: string(action.MediaType),
		Title:     action.Title,
		Outcome:   history.OutcomeCancelled,
		Seasons:   action.Seasons,
	})

	return nil
}

// ExpireStale discards pending actions older than maxAge and returns how
// many were dropped. A confirmation arriving afterwards is stale.
func (s *Service) ExpireStale(maxAge time.Duration) int {
	expired := s.pending.expire(time.Now().Add(-maxAge))
	for _, action := range expired {
		s.logger.Info().
			Int64("chatId", action.ChatID).
			Str("actionId", action.ID).
			Str("title", action.Title).
			Msg("Pending action expired")
	}
	return len(expired)
}

// PendingCount returns the number of live pending actions.
func (s *Service) PendingCount() int {
	return s.pending.count()
}

func (s *Service) record(ctx context.Context, e history.Entry) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(ctx, e); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to record history entry")
	}
}

func (s *Service) recordFailure(ctx context.Context, chatID int64, command string, item *catalog.Item, st status.Resolved, cause error) {
	entry := history.Entry{
		ChatID:      chatID,
		Command:     command,
		Outcome:     history.OutcomeFailed,
		FailureKind: string(Classify(cause)),
		Status:      string(st),
	}
	if item != nil {
		entry.MediaID = item.ID
		entry.MediaType = string(item.MediaType)
		entry.Title = item.Title
	}
	s.record(ctx, entry)
}
