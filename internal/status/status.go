// Package status maps raw backend media codes to the closed set of
// user-facing states.
package status

import "github.com/requestarr/requestarr/internal/catalog"

// Resolved is a user-facing availability state.
type Resolved string

const (
	Available          Resolved = "available"
	PartiallyAvailable Resolved = "partially_available"
	Pending            Resolved = "pending"
	NotRequested       Resolved = "not_requested"
	Unknown            Resolved = "unknown"
)

// Map derives the user-facing state for an item. It is a pure function
// and never fails: an unrecognized backend code maps to Unknown so the
// orchestrator can still report something.
//
// For TV the aggregate of the known seasons' statuses wins; a series
// without season data falls back to its item-level code.
func Map(item *catalog.Item) Resolved {
	if item.MediaType == catalog.MediaTypeTV && len(item.Seasons) > 0 {
		return mapSeasons(item.Seasons)
	}
	return mapCode(item.Status)
}

func mapCode(code catalog.MediaStatus) Resolved {
	switch code {
	case catalog.StatusAvailable:
		return Available
	case catalog.StatusPartiallyAvailable:
		return PartiallyAvailable
	case catalog.StatusPending, catalog.StatusProcessing:
		return Pending
	case catalog.StatusNone:
		return NotRequested
	default:
		return Unknown
	}
}

func mapSeasons(seasons []catalog.Season) Resolved {
	total := 0
	available := 0
	requested := 0

	for _, s := range seasons {
		// Specials are not part of the aggregate.
		if s.Number == 0 {
			continue
		}
		if !s.Status.Recognized() {
			return Unknown
		}
		total++
		switch {
		case s.Status.Available():
			available++
		case s.Status.Requested():
			requested++
		}
	}

	switch {
	case total == 0:
		return Unknown
	case available == total:
		return Available
	case available > 0:
		return PartiallyAvailable
	case requested > 0:
		return Pending
	default:
		return NotRequested
	}
}
