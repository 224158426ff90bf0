package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fwojciec/blockimport"
)

// Compile-time interface verification.
var _ blockimport.MappingStore = (*MappingStore)(nil)

// MappingStore implements blockimport.MappingStore using SQLite. Entries
// are stored as one JSON array per URL.
type MappingStore struct {
	db     *DB
	logger *slog.Logger
}

// NewMappingStore creates a new MappingStore. Undecodable rows are reported
// to logger; a nil logger discards them.
func NewMappingStore(db *DB, logger *slog.Logger) *MappingStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MappingStore{db: db, logger: logger}
}

// Get returns the entries saved for url, or an empty list.
func (s *MappingStore) Get(ctx context.Context, url string) ([]*blockimport.MappingEntry, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT entries FROM mappings WHERE url = ?`, url).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return []*blockimport.MappingEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping: %w", err)
	}

	var entries []*blockimport.MappingEntry
	if err := json.Unmarshal([]byte(data), &entries); err != nil {
		s.logger.Warn("discarding undecodable mapping", "url", url, "err", err)
		return []*blockimport.MappingEntry{}, nil
	}
	if entries == nil {
		entries = []*blockimport.MappingEntry{}
	}
	return entries, nil
}

// Save replaces the entries for url. An empty list deletes the row.
func (s *MappingStore) Save(ctx context.Context, url string, entries []*blockimport.MappingEntry) error {
	if url == "" {
		return blockimport.Errorf(blockimport.EINVALID, "mapping URL required")
	}
	if len(entries) == 0 {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM mappings WHERE url = ?`, url); err != nil {
			return fmt.Errorf("failed to delete mapping: %w", err)
		}
		return nil
	}

	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("failed to encode mapping: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mappings (url, entries, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(url) DO UPDATE SET entries = excluded.entries, updated_at = excluded.updated_at
	`, url, string(data), time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

// URLs returns the URLs with saved entries, most recently updated first.
func (s *MappingStore) URLs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT url FROM mappings ORDER BY updated_at DESC, url`)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
