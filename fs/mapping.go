package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fwojciec/blockimport"
)

// Compile-time interface verification.
var _ blockimport.MappingStore = (*MappingFile)(nil)

// mappingDocument is one URL's record in the mapping file.
type mappingDocument struct {
	URL           string                      `json:"url"`
	DetectionType string                      `json:"detectionType,omitempty"`
	Mapping       []*blockimport.MappingEntry `json:"mapping"`
}

// MappingFile implements blockimport.MappingStore on a single JSON file
// holding an array of {url, detectionType, mapping} records. A file holding
// a single record object is also accepted and rewritten as an array on the
// next save.
type MappingFile struct {
	path   string
	logger *slog.Logger

	mu sync.Mutex
}

// NewMappingFile creates a store backed by the file at path. The file is
// created on the first save.
func NewMappingFile(path string, logger *slog.Logger) *MappingFile {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &MappingFile{path: path, logger: logger}
}

func (f *MappingFile) Get(ctx context.Context, url string) ([]*blockimport.MappingEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.load()
	if err != nil {
		return nil, err
	}
	for _, d := range docs {
		if d.URL == url && d.Mapping != nil {
			return d.Mapping, nil
		}
	}
	return []*blockimport.MappingEntry{}, nil
}

func (f *MappingFile) Save(ctx context.Context, url string, entries []*blockimport.MappingEntry) error {
	if url == "" {
		return blockimport.Errorf(blockimport.EINVALID, "mapping URL required")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.load()
	if err != nil {
		return err
	}

	out := make([]mappingDocument, 0, len(docs)+1)
	replaced := false
	for _, d := range docs {
		if d.URL != url {
			out = append(out, d)
			continue
		}
		if len(entries) > 0 && !replaced {
			out = append(out, newMappingDocument(url, entries))
			replaced = true
		}
	}
	if len(entries) > 0 && !replaced {
		out = append(out, newMappingDocument(url, entries))
	}
	return f.write(out)
}

// URLs returns the URLs with saved entries in file order.
func (f *MappingFile) URLs(ctx context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	docs, err := f.load()
	if err != nil {
		return nil, err
	}
	urls := make([]string, 0, len(docs))
	for _, d := range docs {
		urls = append(urls, d.URL)
	}
	return urls, nil
}

func newMappingDocument(url string, entries []*blockimport.MappingEntry) mappingDocument {
	d := mappingDocument{URL: url, Mapping: entries}
	for _, e := range entries {
		if e.DetectionType == blockimport.DetectionAuto {
			d.DetectionType = blockimport.DetectionAuto
			break
		}
	}
	return d
}

// load reads every record. A missing file is empty; an undecodable file is
// logged and treated as empty.
func (f *MappingFile) load() ([]mappingDocument, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read mapping file: %w", err)
	}

	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var docs []mappingDocument
	if data[0] == '{' {
		var d mappingDocument
		err = json.Unmarshal(data, &d)
		docs = []mappingDocument{d}
	} else {
		err = json.Unmarshal(data, &docs)
	}
	if err != nil {
		f.logger.Warn("discarding undecodable mapping file", "path", f.path, "err", err)
		return nil, nil
	}
	return docs, nil
}

// write replaces the file through a temporary file in the same directory.
func (f *MappingFile) write(docs []mappingDocument) error {
	data, err := json.MarshalIndent(docs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode mapping file: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write mapping file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}
