package blockimport

import "context"

// Page is a transformed page ready to be written out.
type Page struct {
	URL         string
	Title       string
	Markdown    string
	ContentHash string
}

// Validate returns an error if the page contains invalid fields.
func (p *Page) Validate() error {
	if p.URL == "" {
		return Errorf(EINVALID, "page URL required")
	}
	return nil
}

// ImportProgress reports progress during a bulk import.
type ImportProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// ImportProgressFunc is called as pages are processed.
type ImportProgressFunc func(ImportProgress)

// PageStore persists pages with atomic semantics.
// Save writes to a temporary location; Commit makes changes permanent;
// Abort discards pending changes.
type PageStore interface {
	Save(ctx context.Context, page *Page) error
	Commit() error
	Abort() error
}
