package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-agency/collection"
	"github.com/warp/travel-agency/store/sqlite"
)

type entry struct {
	City string `json:"city"`
}

func newTestStore(t *testing.T) *sqlite.Store {
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ReadMissing(t *testing.T) {
	store := newTestStore(t)

	data, err := store.Read(context.Background(), "tours")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := collection.New[entry](newTestStore(t), "tours")

	want := []entry{{City: "Rome"}, {City: "Kyoto"}}
	require.NoError(t, c.Save(ctx, want))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_Write_BumpsVersion(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	v, err := store.Version(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, 0, v)

	require.NoError(t, store.Write(ctx, "history", []byte("[]")))
	require.NoError(t, store.Write(ctx, "history", []byte("[]")))

	v, err = store.Version(ctx, "history")
	require.NoError(t, err)
	assert.Equal(t, 2, v)
}

func TestStore_WriteBatch_IsAtomicAndDurable(t *testing.T) {
	// GIVEN: a file database
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "travel.db")
	store, err := sqlite.New(path)
	require.NoError(t, err)

	// WHEN: two collections are written in one batch
	err = store.WriteBatch(ctx, []collection.Snapshot{
		{Name: "tours", Data: []byte(`[]`)},
		{Name: "history", Data: []byte(`[{"city":"Rome"}]`)},
	})
	require.NoError(t, err)
	require.NoError(t, store.Close())

	// THEN: both survive a reopen
	reopened, err := sqlite.New(path)
	require.NoError(t, err)
	defer reopened.Close()

	tours, err := collection.New[entry](reopened, "tours").Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tours)

	history, err := collection.New[entry](reopened, "history").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entry{{City: "Rome"}}, history)
}

func TestStore_UsedThroughWriteAll(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	var _ collection.BatchWriter = store
	var _ collection.Versioner = store

	require.NoError(t, collection.WriteAll(ctx, store, []collection.Snapshot{
		{Name: "a", Data: []byte(`[{"city":"A"}]`)},
	}))
	got, err := collection.New[entry](store, "a").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []entry{{City: "A"}}, got)
}

func TestStore_CorruptSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.Write(ctx, "tours", []byte("nope")))

	_, err := collection.New[entry](store, "tours").Load(ctx)
	assert.ErrorIs(t, err, collection.ErrCorruptStore)
}
