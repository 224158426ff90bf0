// Package importer runs the page pipeline: fetch, resolve the ruleset,
// transform, convert to markdown and store. Pages are processed one at a
// time.
package importer

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/bloom"
	"golang.org/x/net/html"
)

// dedupeFalsePositiveRate is the chance a new URL is taken for a duplicate.
const dedupeFalsePositiveRate = 0.0001

// Importer turns pages into blocks. Fetcher, Transformer and Rules are
// required; Converter and Pages are required for Import and ImportAll.
type Importer struct {
	Fetcher     blockimport.Fetcher
	Mappings    blockimport.MappingStore
	Rules       blockimport.RuleBuilder
	Transformer blockimport.Transformer
	Converter   blockimport.Converter
	Pages       blockimport.PageStore

	// Metadata supplies page titles. Optional.
	Metadata blockimport.MetadataExtractor

	// Limiter spaces fetches per host. Optional.
	Limiter blockimport.DomainLimiter

	// Ruleset, when set, is used for every page instead of the ruleset
	// built from the page's mapping entries.
	Ruleset *blockimport.Ruleset

	// Params are the source-level block params.
	Params *blockimport.BlockParams

	Logger *slog.Logger
}

// Result summarizes a bulk import.
type Result struct {
	Saved   int
	Failed  int
	Skipped int
	Bytes   int
}

// Transformed is a transformed page before conversion.
type Transformed struct {
	URL      string
	Title    string
	HTML     string
	Warnings []blockimport.Warning
}

func (i *Importer) logger() *slog.Logger {
	if i.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return i.Logger
}

// RulesetFor returns the ruleset applied to pageURL and the warnings
// produced while building it.
func (i *Importer) RulesetFor(ctx context.Context, pageURL string) (*blockimport.Ruleset, []blockimport.Warning, error) {
	if i.Ruleset != nil {
		return i.Ruleset, nil, nil
	}
	var entries []*blockimport.MappingEntry
	if i.Mappings != nil {
		var err error
		if entries, err = i.Mappings.Get(ctx, pageURL); err != nil {
			return nil, nil, fmt.Errorf("loading mapping: %w", err)
		}
	}
	rs, warnings := i.Rules.Build(entries)
	return rs, warnings, nil
}

// Document fetches pageURL and parses it.
func (i *Importer) Document(ctx context.Context, pageURL string) (*html.Node, error) {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return nil, blockimport.Errorf(blockimport.EINVALID, "invalid page URL %q", pageURL)
	}
	if i.Limiter != nil {
		if err := i.Limiter.Wait(ctx, u.Host); err != nil {
			return nil, err
		}
	}
	raw, err := i.Fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	doc, err := html.Parse(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", pageURL, err)
	}
	return doc, nil
}

// Transform fetches pageURL and rewrites it into blocks.
func (i *Importer) Transform(ctx context.Context, pageURL string) (*Transformed, error) {
	if u, err := url.Parse(pageURL); err != nil || u.Host == "" {
		return nil, blockimport.Errorf(blockimport.EINVALID, "invalid page URL %q", pageURL)
	}

	rs, warnings, err := i.RulesetFor(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		i.logger().Warn("mapping entry skipped", "url", pageURL, "entry", w.EntryID, "reason", w.Message)
	}

	doc, err := i.Document(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	var title string
	if i.Metadata != nil {
		fields, err := i.Metadata.Extract(doc)
		if err != nil {
			return nil, fmt.Errorf("reading metadata: %w", err)
		}
		for _, f := range fields {
			if f.Name == "Title" {
				title = f.Value()
				break
			}
		}
	}

	root, err := i.Transformer.Transform(doc, rs, &blockimport.Source{URL: pageURL, Params: i.Params})
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, root); err != nil {
		return nil, fmt.Errorf("rendering %s: %w", pageURL, err)
	}

	return &Transformed{URL: pageURL, Title: title, HTML: buf.String(), Warnings: warnings}, nil
}

// Import transforms pageURL and converts the result to markdown.
func (i *Importer) Import(ctx context.Context, pageURL string) (*blockimport.Page, error) {
	t, err := i.Transform(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	md, err := i.Converter.Convert(t.HTML)
	if err != nil {
		return nil, fmt.Errorf("converting %s: %w", pageURL, err)
	}
	return &blockimport.Page{
		URL:         pageURL,
		Title:       t.Title,
		Markdown:    md,
		ContentHash: ContentHash(md),
	}, nil
}

// ImportAll imports urls in order and saves each page. Repeated URLs are
// skipped. A failed page is reported to progress and does not stop the
// import. Saved pages are committed at the end; nothing is committed when
// no page was saved or ctx is canceled.
func (i *Importer) ImportAll(ctx context.Context, urls []string, progress blockimport.ImportProgressFunc) (*Result, error) {
	res := &Result{}
	seen := bloom.NewFilter(uint(len(urls)), dedupeFalsePositiveRate)
	report := func(n int, u string, err error) {
		if progress != nil {
			progress(blockimport.ImportProgress{URL: u, Completed: n, Total: len(urls), Error: err})
		}
	}

	for n, u := range urls {
		if err := ctx.Err(); err != nil {
			_ = i.Pages.Abort()
			return res, err
		}
		if seen.Seen(u) {
			res.Skipped++
			continue
		}

		page, err := i.Import(ctx, u)
		if err == nil {
			err = i.Pages.Save(ctx, page)
		}
		if err != nil {
			res.Failed++
			i.logger().Warn("import failed", "url", u, "err", err)
			report(n+1, u, err)
			continue
		}
		res.Saved++
		res.Bytes += len(page.Markdown)
		report(n+1, u, nil)
	}

	if err := ctx.Err(); err != nil {
		_ = i.Pages.Abort()
		return res, err
	}
	i.logger().Debug("import finished",
		"saved", res.Saved,
		"failed", res.Failed,
		"duplicates", res.Skipped,
		"distinct_urls", seen.EstimatedCount(),
	)
	if res.Saved == 0 {
		return res, i.Pages.Abort()
	}
	if err := i.Pages.Commit(); err != nil {
		return res, fmt.Errorf("committing pages: %w", err)
	}
	return res, nil
}
