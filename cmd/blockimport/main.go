package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/fs"
	"github.com/fwojciec/blockimport/goquery"
	"github.com/fwojciec/blockimport/htmlquery"
	"github.com/fwojciec/blockimport/htmltomarkdown"
	bihttp "github.com/fwojciec/blockimport/http"
	"github.com/fwojciec/blockimport/importer"
	"github.com/fwojciec/blockimport/lru"
	"github.com/fwojciec/blockimport/readability"
	"github.com/fwojciec/blockimport/rod"
	"github.com/fwojciec/blockimport/rules"
	bislog "github.com/fwojciec/blockimport/slog"
	"github.com/fwojciec/blockimport/sqlite"
	"github.com/fwojciec/blockimport/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database backing the default mapping store.
	DB *sqlite.DB

	// Overrides for end-to-end testing. When nil they are built from flags.
	Mappings blockimport.MappingStore
	Fetcher  blockimport.Fetcher
	Sitemaps blockimport.SitemapService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// fetchingCommands need a page fetcher.
var fetchingCommands = map[string]bool{
	"automap":   true,
	"inspect":   true,
	"transform": true,
	"import":    true,
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("blockimport"),
		kong.Description("Map page regions to blocks and import pages as block-structured markdown"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}),
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'blockimport --help' to see available commands")
	}
	if args[0] == "help" || args[0] == "--help" || args[0] == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	level := slog.LevelInfo
	if cli.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	deps.Logger = logger

	store, err := m.mappingStore(cli, logger, stderr)
	if err != nil {
		return err
	}
	defer m.Close()
	if l, ok := store.(URLLister); ok {
		deps.URLs = l
	}
	cached, err := lru.NewMappingStore(store, cli.CacheSize)
	if err != nil {
		return fmt.Errorf("failed to create mapping cache: %w", err)
	}
	deps.Mappings = bislog.NewLoggingMappingStore(cached, logger)

	meta := metadataExtractor(cli.Metadata)
	validator := goquery.NewValidator()
	deps.Validator = validator
	deps.XPath = htmlquery.NewEvaluator()

	deps.Sitemaps = m.Sitemaps
	if deps.Sitemaps == nil {
		deps.Sitemaps = bislog.NewLoggingSitemapService(bihttp.NewSitemapService(nil), logger)
	}

	parsers := goquery.NewDefaultRegistry(meta)
	deps.BlockTypes = parsers.List()

	deps.Importer = &importer.Importer{
		Mappings:    deps.Mappings,
		Rules:       rules.NewBuilder(validator),
		Transformer: bislog.NewLoggingTransformer(goquery.NewTransformer(parsers, goquery.NewTableBuilder()), logger),
		Converter:   bislog.NewLoggingConverter(htmltomarkdown.NewConverter(), logger),
		Metadata:    meta,
		Limiter:     importer.NewDomainLimiter(cli.Rate),
		Logger:      logger,
	}

	if fields := strings.Fields(kongCtx.Command()); len(fields) > 0 && fetchingCommands[fields[0]] {
		fetcher, err := m.fetcher(cli, logger, stderr)
		if err != nil {
			return err
		}
		defer fetcher.Close()
		deps.Importer.Fetcher = bislog.NewLoggingFetcher(fetcher, logger)
	}

	return kongCtx.Run(deps)
}

func (m *Main) mappingStore(cli *CLI, logger *slog.Logger, stderr io.Writer) (blockimport.MappingStore, error) {
	if m.Mappings != nil {
		return m.Mappings, nil
	}
	if cli.Store == "file" {
		return fs.NewMappingFile(cli.Mappings, logger), nil
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set BLOCKIMPORT_DB to use a different database path\n")
		return nil, fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	return sqlite.NewMappingStore(m.DB, logger), nil
}

func (m *Main) fetcher(cli *CLI, logger *slog.Logger, stderr io.Writer) (blockimport.Fetcher, error) {
	if m.Fetcher != nil {
		return m.Fetcher, nil
	}
	if !cli.Browser {
		return bihttp.NewFetcher(bihttp.WithTimeout(cli.Timeout)), nil
	}
	f, err := rod.NewFetcher(
		rod.WithFetchTimeout(cli.Timeout),
		rod.WithManagerOptions(rod.WithLogger(logger), rod.WithMaxPages(cli.Recycle)),
	)
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}
	return f, nil
}

func metadataExtractor(name string) blockimport.MetadataExtractor {
	switch name {
	case "trafilatura":
		return trafilatura.NewExtractor()
	case "readability":
		return readability.NewExtractor()
	default:
		return goquery.NewMetadataExtractor()
	}
}

func defaultDBPath() string {
	if path := os.Getenv("BLOCKIMPORT_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "blockimport.db"
	}
	dir := filepath.Join(home, ".blockimport")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "blockimport.db")
}
