package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedtime/deposit-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testSession(id string) sqlite.Session {
	return sqlite.Session{
		ID:            id,
		ClientName:    "Ada Obi",
		AccountNumber: "0011223344",
		RateCardJSON:  `{"base_rate":20.66,"tenor_days":365,"tiers":[{"margin":4}]}`,
		CreatedAt:     time.Date(2025, time.June, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestStore_SessionRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveSession(ctx, testSession("sess-1")))

	got, err := store.GetSession(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Ada Obi", got.ClientName)
	assert.Equal(t, "0011223344", got.AccountNumber)
	assert.Contains(t, got.RateCardJSON, "20.66")

	missing, err := store.GetSession(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestStore_ListSessions_NewestFirst(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := testSession("sess-old")
	newer := testSession("sess-new")
	newer.CreatedAt = older.CreatedAt.Add(time.Hour)

	require.NoError(t, store.SaveSession(ctx, older))
	require.NoError(t, store.SaveSession(ctx, newer))

	sessions, err := store.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "sess-new", sessions[0].ID)
}

func TestStore_AppendEntries_PreservesInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, testSession("sess-1")))

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	first := []sqlite.Entry{
		{ID: "e-1", Date: day, Kind: "Deposit", Amount: "100000"},
		{ID: "e-2", Date: day, Kind: "Deposit", Amount: "50000"},
	}
	second := []sqlite.Entry{
		{ID: "e-3", Date: day.AddDate(0, 0, 5), Kind: "Withdrawal", Amount: "25000"},
	}

	require.NoError(t, store.AppendEntries(ctx, "sess-1", first))
	require.NoError(t, store.AppendEntries(ctx, "sess-1", second))

	entries, err := store.ListEntries(ctx, "sess-1")
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, []string{"e-1", "e-2", "e-3"},
		[]string{entries[0].ID, entries[1].ID, entries[2].ID})
	assert.Equal(t, 2, entries[2].Position)
	assert.Equal(t, "100000", entries[0].Amount, "amounts round-trip as decimal text")
}

func TestStore_DeleteEntry(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, testSession("sess-1")))

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendEntries(ctx, "sess-1", []sqlite.Entry{
		{ID: "e-1", Date: day, Kind: "Deposit", Amount: "1000"},
	}))

	deleted, err := store.DeleteEntry(ctx, "sess-1", "e-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = store.DeleteEntry(ctx, "sess-1", "e-1")
	require.NoError(t, err)
	assert.False(t, deleted, "second delete finds nothing")
}

func TestStore_DeleteSession_CascadesEntries(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SaveSession(ctx, testSession("sess-1")))

	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	require.NoError(t, store.AppendEntries(ctx, "sess-1", []sqlite.Entry{
		{ID: "e-1", Date: day, Kind: "Deposit", Amount: "1000"},
	}))

	deleted, err := store.DeleteSession(ctx, "sess-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	entries, err := store.ListEntries(ctx, "sess-1")
	require.NoError(t, err)
	assert.Empty(t, entries)
}
