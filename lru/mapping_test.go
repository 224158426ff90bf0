package lru_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/lru"
	"github.com/fwojciec/blockimport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMappingStore_Get(t *testing.T) {
	t.Parallel()

	t.Run("loads from the underlying store once", func(t *testing.T) {
		t.Parallel()

		calls := 0
		inner := &mock.MappingStore{
			GetFn: func(_ context.Context, url string) ([]*blockimport.MappingEntry, error) {
				calls++
				return []*blockimport.MappingEntry{{ID: "1", Mapping: "hero", Selector: ".hero"}}, nil
			},
		}
		store, err := lru.NewMappingStore(inner, 4)
		require.NoError(t, err)

		for range 3 {
			entries, err := store.Get(context.Background(), "u")
			require.NoError(t, err)
			require.Len(t, entries, 1)
		}
		assert.Equal(t, 1, calls)
	})

	t.Run("returned entries do not alias the cache", func(t *testing.T) {
		t.Parallel()

		inner := &mock.MappingStore{
			GetFn: func(context.Context, string) ([]*blockimport.MappingEntry, error) {
				return []*blockimport.MappingEntry{{ID: "1", Mapping: "hero"}}, nil
			},
		}
		store, err := lru.NewMappingStore(inner, 4)
		require.NoError(t, err)

		first, err := store.Get(context.Background(), "u")
		require.NoError(t, err)
		first[0].Mapping = "changed"

		second, err := store.Get(context.Background(), "u")
		require.NoError(t, err)
		assert.Equal(t, "hero", second[0].Mapping)
	})

	t.Run("does not cache errors", func(t *testing.T) {
		t.Parallel()

		calls := 0
		inner := &mock.MappingStore{
			GetFn: func(context.Context, string) ([]*blockimport.MappingEntry, error) {
				calls++
				return nil, errors.New("boom")
			},
		}
		store, err := lru.NewMappingStore(inner, 0)
		require.NoError(t, err)

		_, err = store.Get(context.Background(), "u")
		require.Error(t, err)
		_, err = store.Get(context.Background(), "u")
		require.Error(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("evicts least recently used URL", func(t *testing.T) {
		t.Parallel()

		loads := map[string]int{}
		inner := &mock.MappingStore{
			GetFn: func(_ context.Context, url string) ([]*blockimport.MappingEntry, error) {
				loads[url]++
				return []*blockimport.MappingEntry{}, nil
			},
		}
		store, err := lru.NewMappingStore(inner, 1)
		require.NoError(t, err)
		ctx := context.Background()

		_, _ = store.Get(ctx, "a")
		_, _ = store.Get(ctx, "b")
		_, _ = store.Get(ctx, "a")

		assert.Equal(t, 2, loads["a"])
		assert.Equal(t, 1, loads["b"])
	})
}

func TestMappingStore_Save(t *testing.T) {
	t.Parallel()

	t.Run("writes through and serves saved entries", func(t *testing.T) {
		t.Parallel()

		var saved []*blockimport.MappingEntry
		inner := &mock.MappingStore{
			GetFn: func(context.Context, string) ([]*blockimport.MappingEntry, error) {
				t.Fatal("Get should be served from cache")
				return nil, nil
			},
			SaveFn: func(_ context.Context, _ string, entries []*blockimport.MappingEntry) error {
				saved = entries
				return nil
			},
		}
		store, err := lru.NewMappingStore(inner, 4)
		require.NoError(t, err)
		ctx := context.Background()
		entries := []*blockimport.MappingEntry{{ID: "1", Mapping: "cards", Selector: ".cards"}}

		require.NoError(t, store.Save(ctx, "u", entries))
		assert.Equal(t, entries, saved)

		got, err := store.Get(ctx, "u")
		require.NoError(t, err)
		assert.Equal(t, entries, got)
	})

	t.Run("saving nil caches an empty list", func(t *testing.T) {
		t.Parallel()

		inner := &mock.MappingStore{
			SaveFn: func(context.Context, string, []*blockimport.MappingEntry) error { return nil },
		}
		store, err := lru.NewMappingStore(inner, 4)
		require.NoError(t, err)

		require.NoError(t, store.Save(context.Background(), "u", nil))
		got, err := store.Get(context.Background(), "u")
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("failed save drops cached entry", func(t *testing.T) {
		t.Parallel()

		gets := 0
		inner := &mock.MappingStore{
			GetFn: func(context.Context, string) ([]*blockimport.MappingEntry, error) {
				gets++
				return []*blockimport.MappingEntry{}, nil
			},
			SaveFn: func(context.Context, string, []*blockimport.MappingEntry) error {
				return errors.New("disk full")
			},
		}
		store, err := lru.NewMappingStore(inner, 4)
		require.NoError(t, err)
		ctx := context.Background()

		_, _ = store.Get(ctx, "u")
		require.Error(t, store.Save(ctx, "u", []*blockimport.MappingEntry{{ID: "1", Mapping: "hero"}}))
		_, _ = store.Get(ctx, "u")
		assert.Equal(t, 2, gets)
	})
}
