package blockimport

import "context"

// Fetcher retrieves the HTML of a page.
// Browser-backed implementations wait for the page to finish loading
// before returning.
type Fetcher interface {
	// Fetch loads the URL and returns its HTML.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases resources held by the fetcher.
	Close() error
}

// DomainLimiter spaces requests to the same host.
type DomainLimiter interface {
	// Wait blocks until a request to domain is allowed.
	// Returns an error if the context is canceled.
	Wait(ctx context.Context, domain string) error
}
