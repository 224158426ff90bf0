package mock

import (
	"context"
	"strings"

	"github.com/fwojciec/blockimport"
)

var _ blockimport.SitemapService = (*SitemapService)(nil)

// SitemapService is a mock implementation of blockimport.SitemapService.
// Without DiscoverURLsFn it serves Listed as the site's sitemap: URLs under
// the base URL that pass the filter are returned in order.
type SitemapService struct {
	DiscoverURLsFn func(ctx context.Context, baseURL string, filter *blockimport.URLFilter) ([]string, error)
	Listed         []string
}

func (s *SitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *blockimport.URLFilter) ([]string, error) {
	if s.DiscoverURLsFn != nil {
		return s.DiscoverURLsFn(ctx, baseURL, filter)
	}
	var urls []string
	for _, u := range s.Listed {
		if strings.HasPrefix(u, baseURL) && filter.Match(u) {
			urls = append(urls, u)
		}
	}
	return urls, nil
}
