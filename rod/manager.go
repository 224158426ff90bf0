package rod

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/launcher/flags"
)

// DefaultMaxPages is the number of imported pages a browser renders before
// it is replaced.
const DefaultMaxPages = 75

// launchFlags keep a headless browser responsive during long imports.
var launchFlags = []flags.Flag{
	"disable-background-timer-throttling",
	"disable-backgrounding-occluded-windows",
	"disable-renderer-backgrounding",
	"disable-dev-shm-usage",
	"disable-hang-monitor",
}

// BrowserStats summarizes the pages rendered by a BrowserManager.
type BrowserStats struct {
	// Pages rendered since the manager started.
	Pages int
	// Pages rendered by the current browser.
	Current int
	// Times the browser was replaced.
	Recycles int
}

// BrowserManager owns the browser that renders imported pages. Chrome's
// memory grows with every page, so after maxPages pages the browser is
// replaced by a fresh one before the next page is rendered.
//
// BrowserManager is safe for concurrent use.
type BrowserManager struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launcher *launcher.Launcher
	stats    BrowserStats
	maxPages int
	logger   *slog.Logger
	closed   atomic.Bool
}

// ManagerOption configures a BrowserManager.
type ManagerOption func(*BrowserManager)

// WithMaxPages sets how many pages a browser renders before it is replaced.
// Values below one disable recycling.
func WithMaxPages(n int) ManagerOption {
	return func(bm *BrowserManager) {
		bm.maxPages = n
	}
}

// WithLogger reports browser launches and recycling to logger.
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(bm *BrowserManager) {
		bm.logger = logger
	}
}

// NewBrowserManager launches a headless browser. Close must be called when
// the BrowserManager is no longer needed.
func NewBrowserManager(opts ...ManagerOption) (*BrowserManager, error) {
	bm := &BrowserManager{
		maxPages: DefaultMaxPages,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(bm)
	}

	b, l, err := launch()
	if err != nil {
		return nil, err
	}
	bm.browser, bm.launcher = b, l
	bm.logger.Debug("browser launched", "pid", l.PID(), "max_pages", bm.maxPages)
	return bm, nil
}

// Browser returns the browser for the next page, replacing the current one
// first when it has rendered maxPages pages. Call PageDone once the page
// has been read.
func (bm *BrowserManager) Browser() *rod.Browser {
	bm.mu.Lock()
	defer bm.mu.Unlock()

	if bm.maxPages > 0 && bm.stats.Current >= bm.maxPages {
		bm.recycle()
	}
	return bm.browser
}

// PageDone records a page rendered by the current browser.
func (bm *BrowserManager) PageDone() {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	bm.stats.Pages++
	bm.stats.Current++
}

// Stats returns the page and recycle counters.
func (bm *BrowserManager) Stats() BrowserStats {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	return bm.stats
}

// Close shuts the browser down. Close is safe to call multiple times.
func (bm *BrowserManager) Close() error {
	if !bm.closed.CompareAndSwap(false, true) {
		return nil
	}

	bm.mu.Lock()
	defer bm.mu.Unlock()

	err := shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = nil, nil
	bm.logger.Debug("browser closed", "pages", bm.stats.Pages, "recycles", bm.stats.Recycles)
	return err
}

// LauncherPID returns the process ID of the browser launcher, or zero when
// no browser is running.
func (bm *BrowserManager) LauncherPID() int {
	bm.mu.Lock()
	defer bm.mu.Unlock()
	if bm.launcher == nil {
		return 0
	}
	return bm.launcher.PID()
}

// recycle swaps in a fresh browser. When the launch fails the current
// browser keeps rendering and the next page tries again.
// Must be called with mu held.
func (bm *BrowserManager) recycle() {
	b, l, err := launch()
	if err != nil {
		bm.logger.Warn("browser recycle failed, keeping current browser", "pages", bm.stats.Current, "error", err)
		return
	}

	old := bm.launcher.PID()
	_ = shutdown(bm.browser, bm.launcher)
	bm.browser, bm.launcher = b, l
	bm.stats.Recycles++
	bm.logger.Info("browser recycled",
		"after_pages", bm.stats.Current,
		"imported", bm.stats.Pages,
		"old_pid", old,
		"pid", l.PID(),
	)
	bm.stats.Current = 0
}

func launch() (*rod.Browser, *launcher.Launcher, error) {
	l := launcher.New().Leakless(true).Headless(true)
	for _, f := range launchFlags {
		l = l.Set(f)
	}

	u, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launching browser: %w", err)
	}

	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		l.Kill()
		return nil, nil, fmt.Errorf("connecting to browser: %w", err)
	}
	return b, l, nil
}

func shutdown(b *rod.Browser, l *launcher.Launcher) error {
	var err error
	if b != nil {
		err = b.Close()
	}
	if l != nil {
		l.Kill()
	}
	return err
}
