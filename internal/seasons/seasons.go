// Package seasons validates requested season numbers against a series'
// known inventory and produces the subset worth submitting.
package seasons

import (
	"errors"
	"fmt"
	"sort"

	"github.com/requestarr/requestarr/internal/catalog"
)

var (
	// ErrNoValidSeasons is returned when none of the requested season
	// numbers exist on the series.
	ErrNoValidSeasons = errors.New("no valid seasons to request")

	// ErrNotSeries is returned when the item is not a TV series.
	ErrNotSeries = errors.New("item is not a series")
)

// Selection is the set of season numbers confirmed present on the item
// and not yet available or requested. Unknown carries season numbers the
// user asked for that the catalog does not know; it is a detail, not a
// failure. An empty Seasons slice means "nothing actionable".
type Selection struct {
	Seasons []int
	Unknown []int
}

// Empty reports whether the selection carries nothing to request.
func (s *Selection) Empty() bool {
	return len(s.Seasons) == 0
}

// Resolve computes the season subset to request. With no requested
// numbers it selects every known season that is neither available nor
// already requested. With requested numbers it intersects them with the
// inventory, collecting unknown numbers as a detail; an empty
// intersection fails with ErrNoValidSeasons.
//
// Seasons already available or pending are dropped silently: requesting
// them again is a no-op, not an error.
func Resolve(item *catalog.Item, requested []int) (*Selection, error) {
	if item.MediaType != catalog.MediaTypeTV {
		return nil, fmt.Errorf("%w: %s %q", ErrNotSeries, item.MediaType, item.Title)
	}

	known := make(map[int]catalog.MediaStatus, len(item.Seasons))
	for _, s := range item.Seasons {
		// Specials are never auto-selected or matched.
		if s.Number == 0 {
			continue
		}
		known[s.Number] = s.Status
	}

	sel := &Selection{}

	if len(requested) == 0 {
		for number, st := range known {
			if requestable(st) {
				sel.Seasons = append(sel.Seasons, number)
			}
		}
		sort.Ints(sel.Seasons)
		return sel, nil
	}

	matched := 0
	for _, number := range requested {
		st, ok := known[number]
		if !ok {
			sel.Unknown = append(sel.Unknown, number)
			continue
		}
		matched++
		if requestable(st) {
			sel.Seasons = append(sel.Seasons, number)
		}
	}
	if matched == 0 {
		return nil, ErrNoValidSeasons
	}

	sort.Ints(sel.Seasons)
	sort.Ints(sel.Unknown)
	return sel, nil
}

func requestable(st catalog.MediaStatus) bool {
	return !st.Available() && !st.Requested()
}
