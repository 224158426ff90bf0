package main_test

import (
	"testing"

	main "github.com/fwojciec/blockimport/cmd/blockimport"
	"github.com/stretchr/testify/assert"
)

func TestTruncateURL(t *testing.T) {
	t.Parallel()

	t.Run("returns URL unchanged when shorter than max", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "https://x.com", main.TruncateURL("https://x.com", 50))
	})

	t.Run("keeps the end of long URLs", func(t *testing.T) {
		t.Parallel()
		result := main.TruncateURL("https://example.com/very/long/path/to/documentation", 20)
		assert.Equal(t, ".../to/documentation", result)
		assert.Len(t, result, 20)
	})

	t.Run("returns empty string when maxLen is not positive", func(t *testing.T) {
		t.Parallel()
		assert.Empty(t, main.TruncateURL("https://example.com", 0))
		assert.Empty(t, main.TruncateURL("https://example.com", -1))
	})

	t.Run("cuts without ellipsis below four characters", func(t *testing.T) {
		t.Parallel()
		assert.Equal(t, "htt", main.TruncateURL("https://example.com", 3))
	})
}

func TestFormatBytes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "512 B", main.FormatBytes(512))
	assert.Equal(t, "1.5 KB", main.FormatBytes(1536))
	assert.Equal(t, "2.0 MB", main.FormatBytes(2*1024*1024))
}
