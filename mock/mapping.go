package mock

import (
	"context"

	"github.com/fwojciec/blockimport"
)

var _ blockimport.MappingStore = (*MappingStore)(nil)

// MappingStore is a mock implementation of blockimport.MappingStore.
type MappingStore struct {
	GetFn  func(ctx context.Context, url string) ([]*blockimport.MappingEntry, error)
	SaveFn func(ctx context.Context, url string, entries []*blockimport.MappingEntry) error
}

func (s *MappingStore) Get(ctx context.Context, url string) ([]*blockimport.MappingEntry, error) {
	return s.GetFn(ctx, url)
}

func (s *MappingStore) Save(ctx context.Context, url string, entries []*blockimport.MappingEntry) error {
	return s.SaveFn(ctx, url, entries)
}
