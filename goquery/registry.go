package goquery

import (
	"sort"

	"github.com/fwojciec/blockimport"
)

var _ blockimport.ParserRegistry = (*Registry)(nil)

// Registry maps block types to parsers. Types without a registered parser
// resolve to the fallback parser, so Lookup never returns nil.
type Registry struct {
	fallback blockimport.BlockParser
	parsers  map[string]blockimport.BlockParser
}

// NewRegistry creates a new Registry with the given fallback parser.
// A nil fallback is replaced by the generic BlockParser.
func NewRegistry(fallback blockimport.BlockParser) *Registry {
	if fallback == nil {
		fallback = NewBlockParser()
	}
	return &Registry{
		fallback: fallback,
		parsers:  make(map[string]blockimport.BlockParser),
	}
}

// NewDefaultRegistry returns a Registry with the built-in parsers: the
// generic block parser as fallback plus metadata, carousel, columns and
// text. meta provides the base metadata of the metadata parser.
func NewDefaultRegistry(meta blockimport.MetadataExtractor) *Registry {
	r := NewRegistry(NewBlockParser())
	r.Register(blockimport.MappingMetadata, NewMetadataParser(meta))
	r.Register("carousel", NewCarouselParser())
	r.Register("columns", NewColumnsParser())
	r.Register("text", NewTextParser())
	return r
}

// Lookup returns the parser for a block type, falling back to the default
// parser for unregistered types.
func (r *Registry) Lookup(blockType string) blockimport.BlockParser {
	if p, ok := r.parsers[blockType]; ok {
		return p
	}
	return r.fallback
}

// Register adds a parser for a block type.
// If a parser is already registered for the type, it is replaced.
func (r *Registry) Register(blockType string, p blockimport.BlockParser) {
	r.parsers[blockType] = p
}

// List returns the block types with a dedicated parser, sorted.
func (r *Registry) List() []string {
	types := make([]string, 0, len(r.parsers))
	for t := range r.parsers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}
