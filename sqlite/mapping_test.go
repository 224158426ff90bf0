package sqlite_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db := sqlite.NewDB(":memory:")
	require.NoError(t, db.Open())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMappingStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("returns empty list for unknown URL", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMappingStore(setupTestDB(t), nil)

		entries, err := store.Get(context.Background(), "https://example.com/")
		require.NoError(t, err)
		assert.NotNil(t, entries)
		assert.Empty(t, entries)
	})

	t.Run("returns empty list and logs warning for corrupt data", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		var buf bytes.Buffer
		store := sqlite.NewMappingStore(db, slog.New(slog.NewTextHandler(&buf, nil)))
		ctx := context.Background()

		_, err := db.ExecContext(ctx,
			`INSERT INTO mappings (url, entries, updated_at) VALUES (?, ?, ?)`,
			"https://example.com/", "{not json", "2024-01-01T00:00:00Z")
		require.NoError(t, err)

		entries, err := store.Get(ctx, "https://example.com/")
		require.NoError(t, err)
		assert.Empty(t, entries)
		assert.Contains(t, buf.String(), "undecodable mapping")
	})
}

func TestMappingStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("round-trips entries", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMappingStore(setupTestDB(t), nil)
		ctx := context.Background()
		entries := []*blockimport.MappingEntry{
			{ID: "1", Mapping: "hero", Selector: "div.hero", Variants: "dark"},
			{ID: "2", Mapping: blockimport.MappingMetadata, Name: "Title", Value: "h1"},
		}

		require.NoError(t, store.Save(ctx, "https://example.com/", entries))

		got, err := store.Get(ctx, "https://example.com/")
		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("replaces existing entries", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMappingStore(setupTestDB(t), nil)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "u", []*blockimport.MappingEntry{{ID: "1", Mapping: "hero", Selector: ".a"}}))
		require.NoError(t, store.Save(ctx, "u", []*blockimport.MappingEntry{{ID: "2", Mapping: "cards", Selector: ".b"}}))

		got, err := store.Get(ctx, "u")
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ID)
	})

	t.Run("empty list removes URL", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMappingStore(setupTestDB(t), nil)
		ctx := context.Background()

		require.NoError(t, store.Save(ctx, "u", []*blockimport.MappingEntry{{ID: "1", Mapping: "hero", Selector: ".a"}}))
		require.NoError(t, store.Save(ctx, "u", nil))

		urls, err := store.URLs(ctx)
		require.NoError(t, err)
		assert.Empty(t, urls)
	})

	t.Run("rejects empty URL", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewMappingStore(setupTestDB(t), nil)

		err := store.Save(context.Background(), "", []*blockimport.MappingEntry{{ID: "1", Mapping: "hero"}})
		assert.Equal(t, blockimport.EINVALID, blockimport.ErrorCode(err))
	})
}

func TestMappingStore_URLs(t *testing.T) {
	t.Parallel()

	store := sqlite.NewMappingStore(setupTestDB(t), nil)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "b", []*blockimport.MappingEntry{{ID: "1", Mapping: "hero"}}))
	require.NoError(t, store.Save(ctx, "a", []*blockimport.MappingEntry{{ID: "2", Mapping: "hero"}}))

	urls, err := store.URLs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, urls)
}
