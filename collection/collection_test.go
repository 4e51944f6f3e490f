package collection_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-agency/collection"
)

type item struct {
	City  string  `json:"city"`
	Price float64 `json:"price"`
}

func TestCollection_LoadMissing_ReturnsEmpty(t *testing.T) {
	c := collection.New[item](collection.NewMemory(), "tours")

	items, err := c.Load(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestCollection_SaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	c := collection.New[item](collection.NewMemory(), "tours")

	want := []item{{City: "Rome", Price: 100}, {City: "Paris", Price: 250.5}, {City: "Oslo"}}
	require.NoError(t, c.Save(ctx, want))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCollection_RoundTrip_SchemaFlexibleRecords(t *testing.T) {
	ctx := context.Background()
	c := collection.New[map[string]any](collection.NewMemory(), "tours")

	want := []map[string]any{
		{"city": "Rome", "price": 100.0, "tags": []any{"food", "art"}},
		{"city": "Lima", "nested": map[string]any{"nights": 3.0}},
	}
	require.NoError(t, c.Save(ctx, want))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestCollection_Snapshot_IsPrettyPrinted(t *testing.T) {
	c := collection.New[item](collection.NewMemory(), "tours")

	snap, err := c.Snapshot([]item{{City: "Rome", Price: 100}})
	require.NoError(t, err)
	assert.Equal(t, "tours", snap.Name)
	assert.Equal(t, "[\n  {\n    \"city\": \"Rome\",\n    \"price\": 100\n  }\n]\n", string(snap.Data))
}

func TestCollection_Snapshot_NilEncodesEmptyArray(t *testing.T) {
	c := collection.New[item](collection.NewMemory(), "history")

	snap, err := c.Snapshot(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(snap.Data))
}

func TestCollection_Load_Corrupt(t *testing.T) {
	ctx := context.Background()
	mem := collection.NewMemory()
	require.NoError(t, mem.Write(ctx, "history", []byte("{not json")))

	_, err := collection.New[item](mem, "history").Load(ctx)

	require.Error(t, err)
	assert.ErrorIs(t, err, collection.ErrCorruptStore)
	var corrupt *collection.CorruptStoreError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "history", corrupt.Name)
}

func TestCollection_Load_EmptySnapshotIsCorrupt(t *testing.T) {
	ctx := context.Background()
	mem := collection.NewMemory()
	require.NoError(t, mem.Write(ctx, "tours", []byte{}))

	_, err := collection.New[item](mem, "tours").Load(ctx)
	assert.ErrorIs(t, err, collection.ErrCorruptStore)
}

func TestMemory_EmptySnapshotIsNotMissing(t *testing.T) {
	ctx := context.Background()
	mem := collection.NewMemory()

	data, err := mem.Read(ctx, "tours")
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, mem.Write(ctx, "tours", []byte{}))
	data, err = mem.Read(ctx, "tours")
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
}

func TestWriteAll_RollsBackOnFailure(t *testing.T) {
	// GIVEN: two collections with existing content, second one failing writes
	ctx := context.Background()
	mem := collection.NewMemory()
	tours := collection.New[item](mem, "tours")
	history := collection.New[item](mem, "history")
	require.NoError(t, tours.Save(ctx, []item{{City: "Rome"}}))
	require.NoError(t, history.Save(ctx, []item{}))
	mem.FailWrites("history", collection.ErrInjected)

	// WHEN: writing both
	t1, err := tours.Snapshot([]item{})
	require.NoError(t, err)
	h1, err := history.Snapshot([]item{{City: "Rome"}})
	require.NoError(t, err)
	err = collection.WriteAll(ctx, mem, []collection.Snapshot{t1, h1})

	// THEN: the error surfaces and the first collection is restored
	assert.ErrorIs(t, err, collection.ErrInjected)
	got, err := tours.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []item{{City: "Rome"}}, got)
}

func TestWriteAll_Success(t *testing.T) {
	ctx := context.Background()
	mem := collection.NewMemory()
	a := collection.New[item](mem, "a")
	b := collection.New[item](mem, "b")

	sa, _ := a.Snapshot([]item{{City: "A"}})
	sb, _ := b.Snapshot([]item{{City: "B"}})
	require.NoError(t, collection.WriteAll(ctx, mem, []collection.Snapshot{sa, sb}))

	gotA, _ := a.Load(ctx)
	gotB, _ := b.Load(ctx)
	assert.Equal(t, []item{{City: "A"}}, gotA)
	assert.Equal(t, []item{{City: "B"}}, gotB)
}
