package mock

import (
	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
)

// Compile-time interface verification.
var (
	_ blockimport.BlockParser       = (*BlockParser)(nil)
	_ blockimport.BlockBuilder      = (*BlockBuilder)(nil)
	_ blockimport.MetadataExtractor = (*MetadataExtractor)(nil)
	_ blockimport.XPathEvaluator    = (*XPathEvaluator)(nil)
	_ blockimport.SelectorValidator = (*SelectorValidator)(nil)
	_ blockimport.Transformer       = (*Transformer)(nil)
)

// BlockParser is a mock implementation of blockimport.BlockParser.
type BlockParser struct {
	ParseFn func(el *html.Node, pc *blockimport.ParseContext) (*blockimport.Cells, error)
}

func (p *BlockParser) Parse(el *html.Node, pc *blockimport.ParseContext) (*blockimport.Cells, error) {
	return p.ParseFn(el, pc)
}

// BlockBuilder is a mock implementation of blockimport.BlockBuilder.
type BlockBuilder struct {
	CreateBlockFn func(doc *html.Node, name string, variants []string, cells *blockimport.Cells) (*html.Node, error)
	BlockNameFn   func(blockType string) string
}

func (b *BlockBuilder) CreateBlock(doc *html.Node, name string, variants []string, cells *blockimport.Cells) (*html.Node, error) {
	return b.CreateBlockFn(doc, name, variants, cells)
}

func (b *BlockBuilder) BlockName(blockType string) string {
	return b.BlockNameFn(blockType)
}

// MetadataExtractor is a mock implementation of blockimport.MetadataExtractor.
type MetadataExtractor struct {
	ExtractFn func(doc *html.Node) ([]blockimport.Field, error)
}

func (e *MetadataExtractor) Extract(doc *html.Node) ([]blockimport.Field, error) {
	return e.ExtractFn(doc)
}

// XPathEvaluator is a mock implementation of blockimport.XPathEvaluator.
type XPathEvaluator struct {
	EvaluateFn func(doc *html.Node, xpath string) ([]*html.Node, error)
}

func (e *XPathEvaluator) Evaluate(doc *html.Node, xpath string) ([]*html.Node, error) {
	return e.EvaluateFn(doc, xpath)
}

// SelectorValidator is a mock implementation of blockimport.SelectorValidator.
type SelectorValidator struct {
	IsValidFn func(selector string) bool
}

func (v *SelectorValidator) IsValid(selector string) bool {
	return v.IsValidFn(selector)
}

// Transformer is a mock implementation of blockimport.Transformer.
type Transformer struct {
	TransformFn func(doc *html.Node, rs *blockimport.Ruleset, src *blockimport.Source) (*html.Node, error)
}

func (t *Transformer) Transform(doc *html.Node, rs *blockimport.Ruleset, src *blockimport.Source) (*html.Node, error) {
	return t.TransformFn(doc, rs, src)
}

var _ blockimport.RuleBuilder = (*RuleBuilder)(nil)

// RuleBuilder is a mock implementation of blockimport.RuleBuilder.
type RuleBuilder struct {
	BuildFn func(entries []*blockimport.MappingEntry) (*blockimport.Ruleset, []blockimport.Warning)
}

func (b *RuleBuilder) Build(entries []*blockimport.MappingEntry) (*blockimport.Ruleset, []blockimport.Warning) {
	return b.BuildFn(entries)
}
