package main

import (
	"fmt"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/fs"
)

// progressURLWidth is the display width of URLs in progress lines.
const progressURLWidth = 60

// Run executes the import command.
func (c *ImportCmd) Run(deps *Dependencies) error {
	filter, err := blockimport.NewURLFilter(c.Include, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
		return err
	}

	urls := make([]string, 0, len(c.URLs))
	for _, u := range c.URLs {
		if filter.Match(u) {
			urls = append(urls, u)
		}
	}
	if c.Sitemap != "" {
		found, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.Sitemap, filter)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
			return err
		}
		urls = append(urls, found...)
	}

	if len(urls) == 0 {
		fmt.Fprintln(deps.Stderr, "error: no URLs to import. Pass page URLs or --sitemap.")
		return blockimport.Errorf(blockimport.EINVALID, "no URLs to import")
	}

	if c.Preview {
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	if c.Rules != "" {
		rs, err := loadRuleset(c.Rules, deps.Validator)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", blockimport.ErrorMessage(err))
			return err
		}
		deps.Importer.Ruleset = rs
	}
	deps.Importer.Pages = fs.NewFileStore(c.Dir, c.Name)

	fmt.Fprintf(deps.Stdout, "  Found %d URLs\n", len(urls))
	progress := func(p blockimport.ImportProgress) {
		if p.Error != nil {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", TruncateURL(p.URL, progressURLWidth), p.Error)
			return
		}
		fmt.Fprintf(deps.Stderr, "  [%d/%d] %s\n", p.Completed, p.Total, TruncateURL(p.URL, progressURLWidth))
	}

	res, err := deps.Importer.ImportAll(deps.Ctx, urls, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error importing: %v\n", err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "  Saved %d pages (%s)", res.Saved, FormatBytes(res.Bytes))
	if res.Failed > 0 {
		fmt.Fprintf(deps.Stdout, ", %d failed", res.Failed)
	}
	if res.Skipped > 0 {
		fmt.Fprintf(deps.Stdout, ", %d duplicates skipped", res.Skipped)
	}
	fmt.Fprintln(deps.Stdout)

	if res.Saved == 0 {
		return blockimport.Errorf(blockimport.EINTERNAL, "no pages imported")
	}
	return nil
}
