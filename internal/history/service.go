// Package history records terminal command and confirmation outcomes in
// SQLite. It is an audit log, not conversation state: nothing in the
// pipeline reads it back.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
)

// Outcome classifies how a command or confirmation ended.
type Outcome string

const (
	OutcomeReported  Outcome = "reported"  // status only, nothing to do
	OutcomeOffered   Outcome = "offered"   // confirmation prompt shown
	OutcomeSubmitted Outcome = "submitted" // request sent to the backend
	OutcomeCancelled Outcome = "cancelled"
	OutcomeFailed    Outcome = "failed"
)

// Entry is one recorded outcome.
type Entry struct {
	ID          int64     `json:"id"`
	ChatID      int64     `json:"chatId"`
	Command     string    `json:"command,omitempty"`
	MediaID     int       `json:"mediaId,omitempty"`
	MediaType   string    `json:"mediaType,omitempty"`
	Title       string    `json:"title,omitempty"`
	Status      string    `json:"status,omitempty"`
	Outcome     Outcome   `json:"outcome"`
	FailureKind string    `json:"failureKind,omitempty"`
	Seasons     []int     `json:"seasons,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Service provides history recording and listing.
type Service struct {
	db     *sql.DB
	logger zerolog.Logger
}

// NewService creates a new history service.
func NewService(db *sql.DB, logger zerolog.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.With().Str("component", "history").Logger(),
	}
}

// Record inserts a new history entry.
func (s *Service) Record(ctx context.Context, e Entry) error {
	var seasonsJSON sql.NullString
	if len(e.Seasons) > 0 {
		b, err := json.Marshal(e.Seasons)
		if err != nil {
			return err
		}
		seasonsJSON = sql.NullString{String: string(b), Valid: true}
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO request_history (chat_id, command, media_id, media_type, title, status, outcome, failure_kind, seasons)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ChatID,
		nullString(e.Command),
		nullInt(e.MediaID),
		nullString(e.MediaType),
		nullString(e.Title),
		nullString(e.Status),
		string(e.Outcome),
		nullString(e.FailureKind),
		seasonsJSON,
	)
	return err
}

// List returns the most recent entries, newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Entry, error) {
	if limit < 1 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, chat_id, command, media_id, media_type, title, status, outcome, failure_kind, seasons, created_at
		FROM request_history
		ORDER BY id DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var (
			e           Entry
			command     sql.NullString
			mediaID     sql.NullInt64
			mediaType   sql.NullString
			title       sql.NullString
			status      sql.NullString
			outcome     string
			failureKind sql.NullString
			seasonsJSON sql.NullString
			createdAt   string
		)
		if err := rows.Scan(&e.ID, &e.ChatID, &command, &mediaID, &mediaType, &title, &status, &outcome, &failureKind, &seasonsJSON, &createdAt); err != nil {
			return nil, err
		}
		e.CreatedAt = parseTimestamp(createdAt)
		e.Command = command.String
		e.MediaID = int(mediaID.Int64)
		e.MediaType = mediaType.String
		e.Title = title.String
		e.Status = status.String
		e.Outcome = Outcome(outcome)
		e.FailureKind = failureKind.String
		if seasonsJSON.Valid {
			if err := json.Unmarshal([]byte(seasonsJSON.String), &e.Seasons); err != nil {
				s.logger.Warn().Err(err).Int64("id", e.ID).Msg("Corrupt seasons JSON in history row")
			}
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Count returns the total number of entries.
func (s *Service) Count(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM request_history`).Scan(&count)
	return count, err
}

// parseTimestamp parses the SQLite CURRENT_TIMESTAMP text format.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{"2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullInt(i int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(i), Valid: i != 0}
}
