package goquery

import (
	"fmt"

	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
)

var _ blockimport.Transformer = (*Transformer)(nil)

// Transformer rewrites a document into blocks. It selects the root, removes
// the ignore and start cleanup content from it, runs every block definition
// in order and finally removes the end cleanup content from the whole
// document.
type Transformer struct {
	parsers blockimport.ParserRegistry
	builder blockimport.BlockBuilder
}

// NewTransformer creates a new Transformer.
func NewTransformer(parsers blockimport.ParserRegistry, builder blockimport.BlockBuilder) *Transformer {
	return &Transformer{parsers: parsers, builder: builder}
}

// Transform modifies doc in place and returns the root element.
//
// Invalid block selectors are skipped; a block whose selectors are all
// invalid (or that has none) targets the root. Parser errors abort the
// transform.
func (t *Transformer) Transform(doc *html.Node, rs *blockimport.Ruleset, src *blockimport.Source) (*html.Node, error) {
	if doc == nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "document required")
	}
	if rs == nil {
		rs = blockimport.NewRuleset()
	}
	if src == nil {
		src = &blockimport.Source{}
	}

	root := SelectRoot(doc, rs.Root)

	Remove(root, rs.Cleanup.IgnoreRules())
	Remove(root, rs.Cleanup.Start)

	for _, b := range rs.Blocks {
		if err := t.processBlock(doc, root, b, src); err != nil {
			return nil, fmt.Errorf("block %q: %w", b.Type, err)
		}
	}

	Remove(doc, rs.Cleanup.End)

	return root, nil
}

// SelectRoot resolves the root selector, falling back to "main", then to
// the body, then to the document itself.
func SelectRoot(doc *html.Node, selector string) *html.Node {
	if selector != "" && isValidSelector(selector) {
		if n := queryFirst(doc, selector); n != nil {
			return n
		}
	}
	if n := queryFirst(doc, "main"); n != nil {
		return n
	}
	if n := findBody(doc); n != nil {
		return n
	}
	return doc
}

func (t *Transformer) processBlock(doc, root *html.Node, b *blockimport.BlockDefinition, src *blockimport.Source) error {
	parser := t.parsers.Lookup(b.Type)
	name := t.builder.BlockName(b.Type)

	for _, el := range blockTargets(root, b.Selectors) {
		pc := &blockimport.ParseContext{
			Document: doc,
			URL:      src.URL,
			Params:   blockimport.MergeParams(src.Params, b.Params),
		}
		cells, err := parser.Parse(el, pc)
		if err != nil {
			return err
		}
		cells.Compact()
		if cells.IsEmpty() {
			continue
		}

		block, err := t.builder.CreateBlock(doc, name, b.Variants, cells)
		if err != nil {
			return fmt.Errorf("creating block: %w", err)
		}
		if block == nil {
			continue
		}
		insertBlock(root, el, block, b.Mode())
	}
	return nil
}

// blockTargets returns the matches of every valid selector under root, in
// selector order then document order, without repeats. With no valid
// selector the root itself is the only target.
func blockTargets(root *html.Node, selectors []string) []*html.Node {
	var valid []string
	for _, s := range selectors {
		if isValidSelector(s) {
			valid = append(valid, s)
		}
	}
	if len(valid) == 0 {
		return []*html.Node{root}
	}

	var targets []*html.Node
	seen := make(map[*html.Node]bool)
	for _, s := range valid {
		for _, n := range queryAll(root, s) {
			if !seen[n] {
				seen[n] = true
				targets = append(targets, n)
			}
		}
	}
	return targets
}

// insertBlock places block relative to root or el. Replacing the root
// itself swaps its content so the root stays attached.
func insertBlock(root, el, block *html.Node, mode blockimport.InsertMode) {
	switch {
	case mode == blockimport.InsertAppend:
		root.AppendChild(block)
	case mode == blockimport.InsertPrepend:
		root.InsertBefore(block, root.FirstChild)
	case el == root || el.Parent == nil:
		for c := el.FirstChild; c != nil; c = el.FirstChild {
			el.RemoveChild(c)
		}
		el.AppendChild(block)
	default:
		el.Parent.InsertBefore(block, el)
		el.Parent.RemoveChild(el)
	}
}
