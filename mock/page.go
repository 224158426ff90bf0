package mock

import (
	"context"

	"github.com/fwojciec/blockimport"
)

var _ blockimport.PageStore = (*PageStore)(nil)

// PageStore is a mock implementation of blockimport.PageStore.
type PageStore struct {
	SaveFn   func(ctx context.Context, page *blockimport.Page) error
	CommitFn func() error
	AbortFn  func() error
}

func (s *PageStore) Save(ctx context.Context, page *blockimport.Page) error {
	return s.SaveFn(ctx, page)
}

func (s *PageStore) Commit() error {
	return s.CommitFn()
}

func (s *PageStore) Abort() error {
	return s.AbortFn()
}
