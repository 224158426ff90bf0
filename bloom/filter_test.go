package bloom_test

import (
	"fmt"
	"testing"

	"github.com/fwojciec/blockimport/bloom"
	"github.com/stretchr/testify/assert"
)

func TestFilter_Seen(t *testing.T) {
	t.Parallel()

	t.Run("reports a URL only after its first visit", func(t *testing.T) {
		t.Parallel()

		f := bloom.NewFilter(0, 0.001)

		assert.False(t, f.Seen("https://example.com/a"))
		assert.True(t, f.Seen("https://example.com/a"))
		assert.False(t, f.Seen("https://example.com/b"))
	})

	t.Run("skips repeats in a sitemap listing", func(t *testing.T) {
		t.Parallel()

		urls := []string{
			"https://example.com/docs/intro",
			"https://example.com/docs/setup",
			"https://example.com/docs/intro",
			"https://example.com/blog/launch",
			"https://example.com/docs/setup",
		}
		f := bloom.NewFilter(uint(len(urls)), 0.001)

		var kept []string
		for _, u := range urls {
			if !f.Seen(u) {
				kept = append(kept, u)
			}
		}

		assert.Equal(t, []string{
			"https://example.com/docs/intro",
			"https://example.com/docs/setup",
			"https://example.com/blog/launch",
		}, kept)
	})

	t.Run("drops few distinct pages on a large site", func(t *testing.T) {
		t.Parallel()

		const pages = 10000
		f := bloom.NewFilter(2*pages, 0.01)
		for i := range pages {
			f.Seen(fmt.Sprintf("https://example.com/docs/%d", i))
		}

		dropped := 0
		for i := range pages {
			if f.Seen(fmt.Sprintf("https://example.com/blog/%d", i)) {
				dropped++
			}
		}

		// Twice the nominal rate leaves room for variance.
		assert.Less(t, float64(dropped)/pages, 0.02)
	})
}

func TestFilter_EstimatedCount(t *testing.T) {
	t.Parallel()

	f := bloom.NewFilter(100, 0.01)
	assert.Zero(t, f.EstimatedCount())

	for _, u := range []string{"https://example.com/a", "https://example.com/b", "https://example.com/a", "https://example.com/c"} {
		f.Seen(u)
	}

	count := f.EstimatedCount()
	assert.True(t, count >= 2 && count <= 4, "expected about 3 distinct URLs, got %d", count)
}
