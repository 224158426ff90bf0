package slog

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/fwojciec/blockimport"
)

var _ blockimport.SitemapService = (*LoggingSitemapService)(nil)

// LoggingSitemapService logs the URLs a sitemap contributes to an import,
// along with the include and exclude patterns that selected them.
type LoggingSitemapService struct {
	next   blockimport.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next blockimport.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service. A sitemap that yields no
// URLs is logged as a warning since the import will have nothing to do.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *blockimport.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", baseURL, "found", len(urls), "duration", time.Since(begin)}
		if filter != nil {
			attrs = append(attrs, "include", sources(filter.Include), "exclude", sources(filter.Exclude))
		}
		switch {
		case err != nil:
			s.logger.Error("sitemap discovery", append(attrs, "err", err)...)
		case len(urls) == 0:
			s.logger.Warn("sitemap discovery found no URLs to import", attrs...)
		default:
			s.logger.Info("sitemap discovery", attrs...)
		}
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}

func sources(res []*regexp.Regexp) []string {
	out := make([]string, len(res))
	for i, re := range res {
		out[i] = re.String()
	}
	return out
}
