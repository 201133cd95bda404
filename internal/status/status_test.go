package status

import (
	"testing"

	"github.com/requestarr/requestarr/internal/catalog"
)

func TestMapMovieCodes(t *testing.T) {
	tests := []struct {
		code catalog.MediaStatus
		want Resolved
	}{
		{catalog.StatusNone, NotRequested},
		{catalog.StatusUnknown, Unknown},
		{catalog.StatusPending, Pending},
		{catalog.StatusProcessing, Pending},
		{catalog.StatusPartiallyAvailable, PartiallyAvailable},
		{catalog.StatusAvailable, Available},
		{catalog.MediaStatus(42), Unknown},
		{catalog.MediaStatus(-1), Unknown},
	}

	for _, tt := range tests {
		item := &catalog.Item{MediaType: catalog.MediaTypeMovie, Status: tt.code}
		if got := Map(item); got != tt.want {
			t.Errorf("Map(movie code %d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestMapSeriesAggregatesSeasons(t *testing.T) {
	tests := []struct {
		name    string
		seasons []catalog.Season
		want    Resolved
	}{
		{
			"all available",
			[]catalog.Season{{Number: 1, Status: catalog.StatusAvailable}, {Number: 2, Status: catalog.StatusAvailable}},
			Available,
		},
		{
			"some available",
			[]catalog.Season{{Number: 1, Status: catalog.StatusAvailable}, {Number: 2, Status: catalog.StatusNone}},
			PartiallyAvailable,
		},
		{
			"requested but nothing available",
			[]catalog.Season{{Number: 1, Status: catalog.StatusProcessing}, {Number: 2, Status: catalog.StatusNone}},
			Pending,
		},
		{
			"partially available season counts as pending",
			[]catalog.Season{{Number: 1, Status: catalog.StatusPartiallyAvailable}, {Number: 2, Status: catalog.StatusNone}},
			Pending,
		},
		{
			"nothing requested",
			[]catalog.Season{{Number: 1, Status: catalog.StatusNone}, {Number: 2, Status: catalog.StatusNone}},
			NotRequested,
		},
		{
			"unrecognized season code",
			[]catalog.Season{{Number: 1, Status: catalog.MediaStatus(99)}},
			Unknown,
		},
		{
			"specials are ignored",
			[]catalog.Season{{Number: 0, Status: catalog.StatusNone}, {Number: 1, Status: catalog.StatusAvailable}},
			Available,
		},
		{
			"only specials",
			[]catalog.Season{{Number: 0, Status: catalog.StatusAvailable}},
			Unknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := &catalog.Item{MediaType: catalog.MediaTypeTV, Seasons: tt.seasons}
			if got := Map(item); got != tt.want {
				t.Errorf("Map() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMapSeriesWithoutSeasonsFallsBack(t *testing.T) {
	item := &catalog.Item{MediaType: catalog.MediaTypeTV, Status: catalog.StatusPending}
	if got := Map(item); got != Pending {
		t.Errorf("Map(series without seasons) = %q, want %q", got, Pending)
	}
}

func TestMapIsDeterministic(t *testing.T) {
	item := &catalog.Item{
		MediaType: catalog.MediaTypeTV,
		Status:    catalog.StatusPending,
		Seasons: []catalog.Season{
			{Number: 1, Status: catalog.StatusAvailable},
			{Number: 2, Status: catalog.StatusNone},
		},
	}

	first := Map(item)
	for i := 0; i < 10; i++ {
		if got := Map(item); got != first {
			t.Fatalf("Map returned %q after %q on identical input", got, first)
		}
	}
}
