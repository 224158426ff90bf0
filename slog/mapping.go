package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/blockimport"
)

var _ blockimport.MappingStore = (*LoggingMappingStore)(nil)

// LoggingMappingStore wraps a MappingStore with debug logging.
type LoggingMappingStore struct {
	next   blockimport.MappingStore
	logger *slog.Logger
}

// NewLoggingMappingStore creates a new LoggingMappingStore.
func NewLoggingMappingStore(next blockimport.MappingStore, logger *slog.Logger) *LoggingMappingStore {
	return &LoggingMappingStore{next: next, logger: logger}
}

func (s *LoggingMappingStore) Get(ctx context.Context, url string) (entries []*blockimport.MappingEntry, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("mapping get",
			"url", url,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Get(ctx, url)
}

func (s *LoggingMappingStore) Save(ctx context.Context, url string, entries []*blockimport.MappingEntry) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("mapping save",
			"url", url,
			"count", len(entries),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Save(ctx, url, entries)
}
