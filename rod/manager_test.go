//go:build integration

package rod_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/fwojciec/blockimport/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrowserManager_Browser(t *testing.T) {
	t.Parallel()

	t.Run("replaces the browser once it has rendered max pages", func(t *testing.T) {
		t.Parallel()

		var logs bytes.Buffer
		manager, err := rod.NewBrowserManager(
			rod.WithMaxPages(2),
			rod.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
		)
		require.NoError(t, err)
		defer manager.Close()

		first := manager.Browser()
		manager.PageDone()
		manager.PageDone()
		oldPID := manager.LauncherPID()

		second := manager.Browser()
		require.NotNil(t, second)

		assert.NotSame(t, first, second)
		assert.NotEqual(t, oldPID, manager.LauncherPID())
		assert.Equal(t, rod.BrowserStats{Pages: 2, Current: 0, Recycles: 1}, manager.Stats())
		assert.Contains(t, logs.String(), "browser recycled")
		assert.Contains(t, logs.String(), "after_pages=2")
	})

	t.Run("keeps the browser below max pages", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(5))
		require.NoError(t, err)
		defer manager.Close()

		first := manager.Browser()
		manager.PageDone()

		assert.Same(t, first, manager.Browser())
		assert.Equal(t, rod.BrowserStats{Pages: 1, Current: 1}, manager.Stats())
	})

	t.Run("never recycles with max pages of zero", func(t *testing.T) {
		t.Parallel()

		manager, err := rod.NewBrowserManager(rod.WithMaxPages(0))
		require.NoError(t, err)
		defer manager.Close()

		first := manager.Browser()
		for i := 0; i < 3; i++ {
			manager.PageDone()
		}

		assert.Same(t, first, manager.Browser())
		assert.Zero(t, manager.Stats().Recycles)
	})
}
