package history_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/requestarr/requestarr/internal/history"
	"github.com/requestarr/requestarr/internal/testutil"
)

func newTestService(t *testing.T) *history.Service {
	t.Helper()
	tdb := testutil.NewTestDB(t)
	t.Cleanup(tdb.Close)
	return history.NewService(tdb.Conn, tdb.Logger)
}

func TestRecordAndList(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.Record(ctx, history.Entry{
		ChatID:    100,
		Command:   "game of thrones s03",
		MediaID:   1399,
		MediaType: "tv",
		Title:     "Game of Thrones",
		Status:    "partially_available",
		Outcome:   history.OutcomeSubmitted,
		Seasons:   []int{3},
	})
	require.NoError(t, err)

	entries, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, int64(100), e.ChatID)
	assert.Equal(t, "Game of Thrones", e.Title)
	assert.Equal(t, history.OutcomeSubmitted, e.Outcome)
	assert.Equal(t, []int{3}, e.Seasons)
	assert.False(t, e.CreatedAt.IsZero(), "timestamp not parsed")
}

func TestRecordFailureEntry(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	err := svc.Record(ctx, history.Entry{
		ChatID:      7,
		Command:     "asdf qwerty",
		Outcome:     history.OutcomeFailed,
		FailureKind: "no_match",
	})
	require.NoError(t, err)

	entries, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	e := entries[0]
	assert.Equal(t, "no_match", e.FailureKind)
	assert.Zero(t, e.MediaID)
	assert.Empty(t, e.Title)
	assert.Empty(t, e.Seasons)
}

func TestListNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, title := range []string{"First", "Second", "Third"} {
		err := svc.Record(ctx, history.Entry{ChatID: 1, Title: title, Outcome: history.OutcomeReported})
		require.NoError(t, err)
	}

	entries, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Third", entries[0].Title)
	assert.Equal(t, "First", entries[2].Title)
}

func TestListPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := svc.Record(ctx, history.Entry{ChatID: int64(i), Outcome: history.OutcomeReported})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 2, 2)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	count, err := svc.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}
