package main

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/importer"
)

// URLLister lists the URLs a mapping store holds entries for.
type URLLister interface {
	URLs(ctx context.Context) ([]string, error)
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx       context.Context
	Stdout    io.Writer
	Stderr    io.Writer
	Logger    *slog.Logger
	Mappings  blockimport.MappingStore
	URLs      URLLister
	Validator blockimport.SelectorValidator
	XPath     blockimport.XPathEvaluator
	Sitemaps  blockimport.SitemapService
	Importer  *importer.Importer

	// Block types with a dedicated parser. Other block types use the
	// generic block parser.
	BlockTypes []string
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Verbose   bool          `short:"v" help:"Log debug output"`
	Store     string        `enum:"sqlite,file" default:"sqlite" help:"Mapping store backend (sqlite, file)"`
	Mappings  string        `default:"mappings.json" help:"Mapping file used with --store=file"`
	Browser   bool          `short:"b" help:"Render pages in a headless browser"`
	Recycle   int           `default:"75" help:"Pages rendered before the browser is restarted (0 to never restart)"`
	Timeout   time.Duration `default:"30s" help:"Per-page fetch timeout"`
	Metadata  string        `enum:"goquery,trafilatura,readability" default:"goquery" help:"Page metadata extractor (goquery, trafilatura, readability)"`
	CacheSize int           `default:"128" help:"Mapping cache size"`
	Rate      float64       `default:"0" help:"Requests per second per host (0 for unlimited)"`

	Map       MapCmd       `cmd:"" help:"Manage the mapping entries of a page"`
	Automap   AutomapCmd   `cmd:"" help:"Detect blocks on a page and add them to its mapping"`
	Inspect   InspectCmd   `cmd:"" help:"Check a page's mapping entries against the live page"`
	Rules     RulesCmd     `cmd:"" help:"Print the transformation config built from a page's mapping"`
	Transform TransformCmd `cmd:"" help:"Transform a page into blocks"`
	Import    ImportCmd    `cmd:"" help:"Import pages as block-structured markdown"`
}

// MapCmd groups the mapping subcommands.
type MapCmd struct {
	Add    MapAddCmd    `cmd:"" help:"Add a mapping entry"`
	List   MapListCmd   `cmd:"" help:"List the mapping entries of a page"`
	Delete MapDeleteCmd `cmd:"" help:"Delete a mapping entry"`
	Clear  MapClearCmd  `cmd:"" help:"Delete all mapping entries of a page"`
	URLs   MapURLsCmd   `cmd:"" name:"urls" help:"List pages with mapping entries"`
}

// MapAddCmd is the "map add" subcommand.
type MapAddCmd struct {
	URL        string `arg:"" help:"Page URL"`
	Mapping    string `short:"m" required:"" help:"Mapping type: root, exclude, metadata, defaultContent or a block type"`
	Selector   string `short:"s" help:"CSS selector"`
	DomID      string `name:"dom-id" help:"Element id"`
	DomClasses string `name:"dom-classes" help:"Space separated element classes"`
	XPath      string `name:"xpath" help:"XPath locator"`
	Variants   string `help:"Comma separated block variants"`
	Name       string `help:"Metadata cell name"`
	Value      string `help:"Metadata cell value or exclusion value"`
	Condition  string `help:"Selector that must match for the metadata cell to apply (* for always)"`
	Attribute  string `help:"Exclude elements by this attribute"`
	Property   string `help:"Exclude elements by this property"`
	Color      string `help:"Display color"`
}

// MapListCmd is the "map list" subcommand.
type MapListCmd struct {
	URL string `arg:"" help:"Page URL"`
}

// MapDeleteCmd is the "map delete" subcommand.
type MapDeleteCmd struct {
	URL string `arg:"" help:"Page URL"`
	ID  string `arg:"" help:"Mapping entry ID"`
}

// MapClearCmd is the "map clear" subcommand.
type MapClearCmd struct {
	URL   string `arg:"" help:"Page URL"`
	Force bool   `help:"Confirm deletion"`
}

// MapURLsCmd is the "map urls" subcommand.
type MapURLsCmd struct{}

// AutomapCmd is the "automap" subcommand.
type AutomapCmd struct {
	URL string `arg:"" help:"Page URL"`
}

// InspectCmd is the "inspect" subcommand.
type InspectCmd struct {
	URL string `arg:"" help:"Page URL"`
}

// RulesCmd is the "rules" subcommand.
type RulesCmd struct {
	URL string `arg:"" help:"Page URL"`
	Out string `short:"o" help:"Write the config to a file instead of stdout"`
}

// TransformCmd is the "transform" subcommand.
type TransformCmd struct {
	URL    string            `arg:"" help:"Page URL"`
	Rules  string            `short:"r" type:"existingfile" help:"Transformation config file to use instead of the page's mapping"`
	Option map[string]string `help:"Block option (key=value, repeatable)"`
	HTML   bool              `name:"html" help:"Print the transformed HTML instead of markdown"`
	Out    string            `short:"o" help:"Write the output to a file instead of stdout"`
}

// ImportCmd is the "import" subcommand.
type ImportCmd struct {
	URLs    []string `arg:"" optional:"" help:"Page URLs"`
	Sitemap string   `help:"Discover page URLs from this site's sitemap"`
	Include []string `short:"I" help:"Keep only URLs matching this regex (repeatable)"`
	Exclude []string `short:"X" help:"Drop URLs matching this regex (repeatable)"`
	Rules   string   `short:"r" type:"existingfile" help:"Transformation config file to use for every page"`
	Dir     string   `short:"d" default:"." help:"Output directory"`
	Name    string   `short:"n" default:"pages" help:"Name of the page folder inside the output directory"`
	Preview bool     `short:"p" help:"List the URLs without importing"`
}
