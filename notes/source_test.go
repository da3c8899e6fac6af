package notes_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/shellmonger/mynotes/notes"
	"github.com/shellmonger/mynotes/notes/queryfake"
)

func collectAllPages(t *testing.T, src notes.Source, initialSize, pageSize int) []notes.Note {
	t.Helper()
	ctx := context.Background()

	initial, err := src.LoadInitial(ctx, notes.InitialParams{RequestedSize: initialSize})
	require.NoError(t, err)

	all := append([]notes.Note{}, initial.Notes...)
	key := initial.NextKey
	for key != nil {
		page, err := src.LoadAfter(ctx, *key, pageSize)
		require.NoError(t, err)
		all = append(all, page.Notes...)
		key = page.NextKey
	}
	return all
}

func requireNoDuplicates(t *testing.T, items []notes.Note) {
	t.Helper()
	seen := make(map[string]bool, len(items))
	for _, n := range items {
		require.False(t, seen[n.ID], "duplicate note %s", n.ID)
		seen[n.ID] = true
	}
}

func TestRemoteSourcePaginationCoversCollectionWithoutDuplicates(t *testing.T) {
	client := queryfake.NewSeeded()
	src := notes.NewRemoteSource(client)

	all := collectAllPages(t, src, 10, 10)
	require.Len(t, all, client.Len())
	requireNoDuplicates(t, all)

	// Source order is preserved.
	require.Equal(t, "title 0", all[0].Title)
	require.Equal(t, "title 200", all[len(all)-1].Title)
}

func TestRemoteSourceClampsPageSize(t *testing.T) {
	client := queryfake.NewSeeded()
	src := notes.NewRemoteSource(client)

	initial, err := src.LoadInitial(context.Background(), notes.InitialParams{RequestedSize: 100})
	require.NoError(t, err)
	require.Len(t, initial.Notes, notes.MaxPageSize)
}

func TestRemoteSourceTransportFailureSurfacesError(t *testing.T) {
	client := queryfake.NewSeeded()
	client.FailNextWith(errors.New("connection reset"))
	src := notes.NewRemoteSource(client)

	_, err := src.LoadInitial(context.Background(), notes.InitialParams{RequestedSize: 10})
	require.Error(t, err)
	require.Contains(t, err.Error(), "connection reset")
}

func TestRemoteSourceEmbeddedErrorsDegradeToEmptyPage(t *testing.T) {
	client := queryfake.NewSeeded()
	client.EmbedErrorsInNext(notes.RemoteError{Message: "throttled"})
	src := notes.NewRemoteSource(client)

	initial, err := src.LoadInitial(context.Background(), notes.InitialParams{RequestedSize: 10})
	require.NoError(t, err)
	require.Empty(t, initial.Notes)
	require.Nil(t, initial.NextKey)
}

func TestRemoteSourceOmitsPlaceholderTotals(t *testing.T) {
	src := notes.NewRemoteSource(queryfake.NewSeeded())

	initial, err := src.LoadInitial(context.Background(), notes.InitialParams{RequestedSize: 10, Placeholders: true})
	require.NoError(t, err)
	require.Nil(t, initial.Position)
	require.Nil(t, initial.Total)
}

func TestLoadBeforeInvalidatesAndNeverReturnsData(t *testing.T) {
	sources := map[string]notes.Source{
		"remote": notes.NewRemoteSource(queryfake.NewSeeded()),
		"memory": notes.NewMemorySource(notes.NewSeededMemoryStore()),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			page, err := src.LoadBefore(context.Background(), "5", 10)
			require.ErrorIs(t, err, notes.BackwardPaginationErr)
			require.Nil(t, page)
			require.True(t, src.Invalidated())
		})
	}
}

func TestInvalidateIsIdempotent(t *testing.T) {
	src := notes.NewMemorySource(notes.NewSeededMemoryStore())

	fired := 0
	src.OnInvalidated(func() { fired++ })
	src.Invalidate()
	src.Invalidate()

	require.True(t, src.Invalidated())
	require.Equal(t, 1, fired)
}

func TestOnInvalidatedRunsImmediatelyForDeadSource(t *testing.T) {
	src := notes.NewMemorySource(notes.NewSeededMemoryStore())
	src.Invalidate()

	fired := false
	src.OnInvalidated(func() { fired = true })
	require.True(t, fired)
}

func TestLoadOnInvalidatedSourceFails(t *testing.T) {
	sources := map[string]notes.Source{
		"remote": notes.NewRemoteSource(queryfake.NewSeeded()),
		"memory": notes.NewMemorySource(notes.NewSeededMemoryStore()),
	}
	for name, src := range sources {
		t.Run(name, func(t *testing.T) {
			src.Invalidate()

			_, err := src.LoadInitial(context.Background(), notes.InitialParams{RequestedSize: 10})
			require.ErrorIs(t, err, notes.SourceInvalidatedErr)

			_, err = src.LoadAfter(context.Background(), "10", 10)
			require.ErrorIs(t, err, notes.SourceInvalidatedErr)
		})
	}
}

func TestMemorySourcePaginationCoversCollectionWithoutDuplicates(t *testing.T) {
	store := notes.NewSeededMemoryStore()
	src := notes.NewMemorySource(store)

	all := collectAllPages(t, src, 10, 10)
	require.Len(t, all, store.Len())
	requireNoDuplicates(t, all)
}

func TestMemorySourceReportsPlaceholderTotals(t *testing.T) {
	store := notes.NewSeededMemoryStore()
	src := notes.NewMemorySource(store)

	initial, err := src.LoadInitial(context.Background(), notes.InitialParams{RequestedSize: 10, Placeholders: true})
	require.NoError(t, err)
	require.NotNil(t, initial.Position)
	require.Equal(t, 0, *initial.Position)
	require.NotNil(t, initial.Total)
	require.Equal(t, store.Len(), *initial.Total)
}

func TestMemorySourceSaveInvalidates(t *testing.T) {
	src := notes.NewMemorySource(notes.NewSeededMemoryStore())

	item := notes.New()
	item.Title = "fresh"
	_, err := src.Save(context.Background(), item)
	require.NoError(t, err)
	require.True(t, src.Invalidated())
}

func TestMemorySourceDeleteUnknownIsNoOp(t *testing.T) {
	src := notes.NewMemorySource(notes.NewSeededMemoryStore())

	missing := notes.New()
	require.NoError(t, src.Delete(context.Background(), missing))
	require.False(t, src.Invalidated())
}

func TestRemoteSourceSaveNormalizesBlankFields(t *testing.T) {
	client := queryfake.New()
	src := notes.NewRemoteSource(client)

	item := notes.New()
	saved, err := src.Save(context.Background(), item)
	require.NoError(t, err)
	require.Equal(t, " ", saved.Title)
	require.Equal(t, " ", saved.Content)
	require.True(t, src.Invalidated())
}

func TestRemoteSourceGetByIDUnknownReturnsNil(t *testing.T) {
	src := notes.NewRemoteSource(queryfake.NewSeeded())

	note, err := src.GetByID(context.Background(), "no-such-id")
	require.NoError(t, err)
	require.Nil(t, note)
}
