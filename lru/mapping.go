// Package lru provides an in-memory cache in front of a mapping store.
package lru

import (
	"context"
	"sync"

	"github.com/fwojciec/blockimport"
	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultSize is the number of URLs cached when no size is given.
const DefaultSize = 128

// Compile-time interface verification.
var _ blockimport.MappingStore = (*MappingStore)(nil)

// MappingStore caches entry lists per URL in front of another store.
// Cached lists are copied on the way in and out so callers can modify them.
type MappingStore struct {
	store blockimport.MappingStore

	mu    sync.Mutex
	cache *lru.Cache[string, []*blockimport.MappingEntry]
}

// NewMappingStore wraps store with a cache holding up to size URLs.
// A size below one uses DefaultSize.
func NewMappingStore(store blockimport.MappingStore, size int) (*MappingStore, error) {
	if size < 1 {
		size = DefaultSize
	}
	cache, err := lru.New[string, []*blockimport.MappingEntry](size)
	if err != nil {
		return nil, err
	}
	return &MappingStore{store: store, cache: cache}, nil
}

func (s *MappingStore) Get(ctx context.Context, url string) ([]*blockimport.MappingEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entries, ok := s.cache.Get(url); ok {
		return clone(entries), nil
	}
	entries, err := s.store.Get(ctx, url)
	if err != nil {
		return nil, err
	}
	s.cache.Add(url, clone(entries))
	return entries, nil
}

// Save writes through to the underlying store. The cache is updated only
// when the write succeeds.
func (s *MappingStore) Save(ctx context.Context, url string, entries []*blockimport.MappingEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Save(ctx, url, entries); err != nil {
		s.cache.Remove(url)
		return err
	}
	if entries == nil {
		entries = []*blockimport.MappingEntry{}
	}
	s.cache.Add(url, clone(entries))
	return nil
}

// Purge drops every cached URL.
func (s *MappingStore) Purge() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache.Purge()
}

func clone(entries []*blockimport.MappingEntry) []*blockimport.MappingEntry {
	out := make([]*blockimport.MappingEntry, len(entries))
	for i, e := range entries {
		c := *e
		out[i] = &c
	}
	return out
}
