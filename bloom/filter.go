// Package bloom provides approximate URL deduplication for bulk imports.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Filter remembers the URLs of an import in a fixed amount of memory. A URL
// never seen is occasionally reported as seen, at the configured false
// positive rate, and that page is skipped.
type Filter struct {
	f *bloom.BloomFilter
}

// NewFilter creates a filter sized for n URLs with the given false
// positive rate. n is raised to one if zero.
func NewFilter(n uint, fpRate float64) *Filter {
	if n == 0 {
		n = 1
	}
	return &Filter{f: bloom.NewWithEstimates(n, fpRate)}
}

// Seen reports whether url may have been added before and records it.
func (f *Filter) Seen(url string) bool {
	return f.f.TestAndAddString(url)
}

// EstimatedCount returns the approximate number of URLs recorded.
func (f *Filter) EstimatedCount() uint {
	return uint(f.f.ApproximatedSize())
}
