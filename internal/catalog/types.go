// Package catalog defines the media catalog domain types and the client
// contract used to talk to the request backend.
package catalog

import "context"

// MediaType identifies the kind of catalog item.
type MediaType string

const (
	MediaTypeMovie MediaType = "movie"
	MediaTypeTV    MediaType = "tv"
)

// MediaStatus is the raw backend status code attached to media records.
// Codes follow the Overseerr convention.
type MediaStatus int

const (
	StatusNone               MediaStatus = 0 // no media record exists
	StatusUnknown            MediaStatus = 1
	StatusPending            MediaStatus = 2
	StatusProcessing         MediaStatus = 3
	StatusPartiallyAvailable MediaStatus = 4
	StatusAvailable          MediaStatus = 5
)

// Available reports whether the media is fully available.
func (s MediaStatus) Available() bool {
	return s == StatusAvailable
}

// Requested reports whether the media has an active request in flight.
// Partially available counts: re-requesting it would duplicate the submission.
func (s MediaStatus) Requested() bool {
	return s == StatusPending || s == StatusProcessing || s == StatusPartiallyAvailable
}

// Recognized reports whether the code is one the backend documents.
func (s MediaStatus) Recognized() bool {
	return s >= StatusNone && s <= StatusAvailable
}

// Season is one season of a series with its backend status.
type Season struct {
	Number int
	Status MediaStatus
}

// Item is a single catalog entry as returned by the backend search.
// It is owned by the caller for the duration of one command and never cached.
type Item struct {
	ID        int
	MediaType MediaType
	Title     string
	Year      int
	Overview  string
	PosterURL string
	Status    MediaStatus
	Seasons   []Season
}

// SeasonStatus returns the status of the given season number and whether
// the season is known to the catalog at all.
func (i *Item) SeasonStatus(number int) (MediaStatus, bool) {
	for _, s := range i.Seasons {
		if s.Number == number {
			return s.Status, true
		}
	}
	return StatusNone, false
}

// Client is the backend catalog contract: search, season lookup and
// request submission. Implementations own transport, retries and auth.
type Client interface {
	// Search returns candidates ordered by the backend's own relevance.
	// The year, when non-zero, is a filter hint only.
	Search(ctx context.Context, title string, year int) ([]Item, error)

	// GetSeasons returns the season inventory for a series.
	GetSeasons(ctx context.Context, id int) ([]Season, error)

	// SubmitRequest submits a media request, optionally scoped to seasons.
	SubmitRequest(ctx context.Context, id int, mediaType MediaType, seasons []int) error
}
