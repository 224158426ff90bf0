package blockimport

import "golang.org/x/net/html"

// ParseContext is the shared input handed to block parsers.
type ParseContext struct {
	// Document is the whole document being transformed.
	Document *html.Node

	// URL is the page address, if known.
	URL string

	// Params are the block's params merged over the source params.
	Params *BlockParams
}

// BlockParser extracts cells from an element matched for a block.
// Parsers must not modify the element unless documented otherwise.
type BlockParser interface {
	Parse(el *html.Node, pc *ParseContext) (*Cells, error)
}

// BlockParserFunc adapts a function to BlockParser.
type BlockParserFunc func(el *html.Node, pc *ParseContext) (*Cells, error)

// Parse calls f(el, pc).
func (f BlockParserFunc) Parse(el *html.Node, pc *ParseContext) (*Cells, error) {
	return f(el, pc)
}

// ParserRegistry maps block types to parsers. Lookup never returns nil:
// unknown types resolve to the default parser.
type ParserRegistry interface {
	Register(blockType string, p BlockParser)
	Lookup(blockType string) BlockParser
}

// BlockBuilder turns parsed cells into block markup.
type BlockBuilder interface {
	// CreateBlock returns the block element, or nil when there is nothing
	// to insert. It must tolerate empty or irregular cells.
	CreateBlock(doc *html.Node, name string, variants []string, cells *Cells) (*html.Node, error)

	// BlockName returns the presentable name of a block type.
	BlockName(blockType string) string
}

// MetadataExtractor reads the conventional page metadata (title,
// description, image, ...) from a document.
type MetadataExtractor interface {
	Extract(doc *html.Node) ([]Field, error)
}

// XPathEvaluator evaluates an XPath expression against a document.
type XPathEvaluator interface {
	Evaluate(doc *html.Node, xpath string) ([]*html.Node, error)
}

// Source describes the document handed to a transform.
type Source struct {
	URL    string
	Params *BlockParams
}

// Transformer rewrites a document into blocks according to a ruleset.
type Transformer interface {
	// Transform modifies doc in place and returns the root element holding
	// the blocks. A transform assumes a pristine document.
	Transform(doc *html.Node, rs *Ruleset, src *Source) (*html.Node, error)
}

// Warning is a non-fatal finding about a mapping entry.
type Warning struct {
	EntryID string
	Message string
}

// String returns the warning prefixed with the entry ID.
func (w Warning) String() string {
	if w.EntryID == "" {
		return w.Message
	}
	return w.EntryID + ": " + w.Message
}

// RuleBuilder derives a Ruleset from a mapping entry list. Entries that
// cannot be used are skipped and reported as warnings.
type RuleBuilder interface {
	Build(entries []*MappingEntry) (*Ruleset, []Warning)
}
