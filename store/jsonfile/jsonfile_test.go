package jsonfile_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/travel-agency/collection"
	"github.com/warp/travel-agency/store/jsonfile"
)

type tour struct {
	City  string  `json:"city"`
	Price float64 `json:"price"`
}

func newTestStore(t *testing.T) *jsonfile.Store {
	s, err := jsonfile.New(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_ReadMissing(t *testing.T) {
	s := newTestStore(t)

	data, err := s.Read(context.Background(), "tours")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestStore_SaveLoad_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := collection.New[tour](s, "tours")

	want := []tour{{City: "Rome", Price: 100}, {City: "Paris", Price: 80}}
	require.NoError(t, c.Save(ctx, want))

	got, err := c.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestStore_Write_LeavesOnlyTargetFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := collection.New[tour](s, "tours")

	require.NoError(t, c.Save(ctx, []tour{{City: "Rome"}}))
	require.NoError(t, c.Save(ctx, []tour{{City: "Rome"}, {City: "Oslo"}}))

	entries, err := os.ReadDir(s.Dir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "tours.json", entries[0].Name())
}

func TestStore_Write_ReplacesWholeFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	c := collection.New[tour](s, "tours")

	require.NoError(t, c.Save(ctx, []tour{{City: "Rome"}, {City: "Oslo"}, {City: "Lima"}}))
	require.NoError(t, c.Save(ctx, []tour{{City: "Oslo"}}))

	raw, err := os.ReadFile(s.Path("tours"))
	require.NoError(t, err)
	assert.Equal(t, "[\n  {\n    \"city\": \"Oslo\",\n    \"price\": 0\n  }\n]\n", string(raw))
}

func TestStore_Load_CorruptFile(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	require.NoError(t, os.WriteFile(s.Path("history"), []byte(`[{"city": "Rome",`), 0o644))

	_, err := collection.New[tour](s, "history").Load(ctx)

	var corrupt *collection.CorruptStoreError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, "history", corrupt.Name)
}

func TestStore_RejectsPathNames(t *testing.T) {
	s := newTestStore(t)

	for _, name := range []string{"", "../tours", "a/b", ".hidden"} {
		assert.Error(t, s.Write(context.Background(), name, []byte("[]")), name)
	}
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first, err := jsonfile.New(dir)
	require.NoError(t, err)
	require.NoError(t, collection.New[tour](first, "tours").Save(ctx, []tour{{City: "Rome", Price: 1}}))

	second, err := jsonfile.New(dir)
	require.NoError(t, err)
	got, err := collection.New[tour](second, "tours").Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tour{{City: "Rome", Price: 1}}, got)
}
