package telegram

import (
	"errors"
	"strings"
	"testing"

	"github.com/requestarr/requestarr/internal/catalog"
	"github.com/requestarr/requestarr/internal/orchestrator"
	"github.com/requestarr/requestarr/internal/query"
	"github.com/requestarr/requestarr/internal/resolver"
	"github.com/requestarr/requestarr/internal/seasons"
	"github.com/requestarr/requestarr/internal/status"
)

func TestRenderResultAvailableMovie(t *testing.T) {
	result := &orchestrator.CommandResult{
		Item: &catalog.Item{
			MediaType: catalog.MediaTypeMovie,
			Title:     "The Matrix",
			Year:      1999,
			Overview:  "A computer hacker learns about the true nature of reality.",
			PosterURL: "https://image.tmdb.org/t/p/w600_and_h900_bestv2/matrix.jpg",
		},
		Status: status.Available,
	}

	text, keyboard := renderResult(result)

	if !strings.Contains(text, "already available") {
		t.Errorf("Text missing availability line: %q", text)
	}
	if !strings.Contains(text, "<b>The Matrix</b> (1999)") {
		t.Errorf("Text missing bold title with year: %q", text)
	}
	if !strings.Contains(text, result.Item.PosterURL) {
		t.Errorf("Text missing poster URL: %q", text)
	}
	if keyboard != nil {
		t.Error("Keyboard offered without an action")
	}
}

func TestRenderResultOffersConfirmation(t *testing.T) {
	result := &orchestrator.CommandResult{
		Item: &catalog.Item{
			MediaType: catalog.MediaTypeTV,
			Title:     "Game of Thrones",
			Year:      2011,
		},
		Status: status.PartiallyAvailable,
		Action: &orchestrator.OfferedAction{
			ID:        "abc-123",
			MediaType: catalog.MediaTypeTV,
			Title:     "Game of Thrones",
			Seasons:   []int{3, 4},
		},
	}

	text, keyboard := renderResult(result)

	if !strings.Contains(text, "Request season(s) 3, 4?") {
		t.Errorf("Text missing confirmation question: %q", text)
	}
	if keyboard == nil {
		t.Fatal("No keyboard for an offered action")
	}
	if len(keyboard.InlineKeyboard) != 2 {
		t.Fatalf("Keyboard rows = %d, want 2", len(keyboard.InlineKeyboard))
	}
	if got := keyboard.InlineKeyboard[0][0].CallbackData; got != "confirm:abc-123" {
		t.Errorf("Confirm callback = %q, want confirm:abc-123", got)
	}
	if got := keyboard.InlineKeyboard[1][0].CallbackData; got != "cancel:abc-123" {
		t.Errorf("Cancel callback = %q, want cancel:abc-123", got)
	}
}

func TestRenderResultUnknownSeasonsNote(t *testing.T) {
	result := &orchestrator.CommandResult{
		Item: &catalog.Item{
			MediaType: catalog.MediaTypeTV,
			Title:     "Firefly",
		},
		Status:         status.NotRequested,
		UnknownSeasons: []int{7, 9},
		Action: &orchestrator.OfferedAction{
			ID:        "id-1",
			MediaType: catalog.MediaTypeTV,
			Seasons:   []int{1},
		},
	}

	text, _ := renderResult(result)
	if !strings.Contains(text, "No such season(s): 7, 9.") {
		t.Errorf("Text missing unknown seasons note: %q", text)
	}
}

func TestRenderResultTruncatesOverview(t *testing.T) {
	result := &orchestrator.CommandResult{
		Item: &catalog.Item{
			MediaType: catalog.MediaTypeMovie,
			Title:     "Long",
			Overview:  strings.Repeat("a", 500),
		},
		Status: status.Available,
	}

	text, _ := renderResult(result)
	if !strings.Contains(text, "...") {
		t.Errorf("Overview not truncated: %q", text)
	}
	if strings.Contains(text, strings.Repeat("a", 201)) {
		t.Error("Overview exceeds the truncation limit")
	}
}

func TestRenderResultEscapesHTML(t *testing.T) {
	result := &orchestrator.CommandResult{
		Item: &catalog.Item{
			MediaType: catalog.MediaTypeMovie,
			Title:     "Fast & Furious <7>",
			Overview:  "Cars & <stunts>",
		},
		Status: status.Available,
	}

	text, _ := renderResult(result)
	if strings.Contains(text, "<7>") || strings.Contains(text, "<stunts>") {
		t.Errorf("Unescaped HTML in text: %q", text)
	}
	if !strings.Contains(text, "&amp;") {
		t.Errorf("Ampersand not escaped: %q", text)
	}
}

func TestRenderSubmitted(t *testing.T) {
	movie := &orchestrator.ConfirmResult{Action: orchestrator.PendingAction{
		MediaType: catalog.MediaTypeMovie,
		Title:     "Dune",
		Year:      2021,
	}}
	if got := renderSubmitted(movie); !strings.Contains(got, "Requested <b>Dune</b> (2021).") {
		t.Errorf("renderSubmitted(movie) = %q", got)
	}

	series := &orchestrator.ConfirmResult{Action: orchestrator.PendingAction{
		MediaType: catalog.MediaTypeTV,
		Title:     "Game of Thrones",
		Seasons:   []int{3},
	}}
	if got := renderSubmitted(series); !strings.Contains(got, "season(s) 3") {
		t.Errorf("renderSubmitted(series) = %q", got)
	}
}

func TestRenderFailureDistinctMessages(t *testing.T) {
	errs := []error{
		query.ErrEmptyQuery,
		&query.ExtractionError{Reason: "no payload"},
		resolver.ErrNoMatch,
		&resolver.AmbiguousError{},
		seasons.ErrNoValidSeasons,
		orchestrator.ErrStaleAction,
		&orchestrator.SubmitError{Err: errors.New("boom")},
		errors.New("anything else"),
	}

	seen := make(map[string]error, len(errs))
	for _, err := range errs {
		msg := renderFailure(err)
		if msg == "" {
			t.Errorf("renderFailure(%v) returned empty message", err)
		}
		if prev, ok := seen[msg]; ok {
			t.Errorf("renderFailure(%v) and renderFailure(%v) share message %q", err, prev, msg)
		}
		seen[msg] = err
	}
}
