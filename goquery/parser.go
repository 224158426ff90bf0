package goquery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"unicode"

	"github.com/araddon/dateparse"
	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Compile-time interface verification.
var (
	_ blockimport.BlockParser = (*BlockParser)(nil)
	_ blockimport.BlockParser = (*MetadataParser)(nil)
	_ blockimport.BlockParser = (*CarouselParser)(nil)
	_ blockimport.BlockParser = (*ColumnsParser)(nil)
	_ blockimport.BlockParser = (*TextParser)(nil)
)

func paramsOf(pc *blockimport.ParseContext) *blockimport.BlockParams {
	if pc == nil {
		return nil
	}
	return pc.Params
}

// BlockParser is the generic parser: a grid specification is evaluated
// with BuildBlockCells, a named one with BuildBlockConfig.
type BlockParser struct{}

// NewBlockParser creates a new BlockParser.
func NewBlockParser() *BlockParser {
	return &BlockParser{}
}

// Parse evaluates the params' cell specification against el.
func (p *BlockParser) Parse(el *html.Node, pc *blockimport.ParseContext) (*blockimport.Cells, error) {
	params := paramsOf(pc)
	if params == nil || params.Cells == nil {
		return &blockimport.Cells{}, nil
	}
	if params.Cells.IsGrid() {
		return BuildBlockCells(el, params.Cells)
	}
	return BuildBlockConfig(el, params.Cells)
}

// MetadataParser merges the document's base metadata with custom cells
// evaluated against the whole document. Custom values take precedence;
// single custom values that read as dates are normalized to YYYY-MM-DD.
type MetadataParser struct {
	extractor blockimport.MetadataExtractor
	block     *BlockParser
}

// NewMetadataParser creates a new MetadataParser. A nil extractor means no
// base metadata.
func NewMetadataParser(extractor blockimport.MetadataExtractor) *MetadataParser {
	return &MetadataParser{extractor: extractor, block: NewBlockParser()}
}

// Parse returns the merged metadata fields.
func (p *MetadataParser) Parse(el *html.Node, pc *blockimport.ParseContext) (*blockimport.Cells, error) {
	doc := documentOf(el)
	if pc != nil && pc.Document != nil {
		doc = pc.Document
	}

	cells := &blockimport.Cells{}
	if p.extractor != nil {
		base, err := p.extractor.Extract(doc)
		if err != nil {
			return nil, fmt.Errorf("extracting base metadata: %w", err)
		}
		for _, f := range base {
			if len(f.Values) > 0 {
				cells.Set(f.Name, f.Values...)
			}
		}
	}

	custom, err := p.block.Parse(doc, pc)
	if err != nil {
		return nil, err
	}
	for _, f := range custom.Fields {
		cells.Set(f.Name, normalizeDates(f.Values)...)
	}
	return cells, nil
}

// normalizeDates rewrites a single date-like value as YYYY-MM-DD. Lists
// and dates without a year are left alone.
func normalizeDates(values []string) []string {
	if len(values) != 1 || !looksLikeDate(values[0]) {
		return values
	}
	t, err := dateparse.ParseAny(values[0])
	if err != nil || t.Year() == 0 {
		return values
	}
	return []string{t.Format("2006-01-02")}
}

// looksLikeDate filters out values dateparse would accept but that are not
// meant as dates, such as bare numbers.
func looksLikeDate(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 64 {
		return false
	}
	digits, letters := 0, 0
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			digits++
		case unicode.IsLetter(r):
			letters++
		}
	}
	if digits == 0 || digits == len(s) {
		return false
	}
	return digits >= 4 || letters > 0
}

// CarouselParser extracts one slide row per carousel item: a fragment
// holding the image, an h3 title and a paragraph description. An item
// with a call-to-action link adds a ["url", href] row.
//
// Options: items, image, title, description, link (selectors).
type CarouselParser struct{}

// NewCarouselParser creates a new CarouselParser.
func NewCarouselParser() *CarouselParser {
	return &CarouselParser{}
}

// Parse returns the slide rows in item order.
func (p *CarouselParser) Parse(el *html.Node, pc *blockimport.ParseContext) (*blockimport.Cells, error) {
	params := paramsOf(pc)
	var base *url.URL
	if pc != nil && pc.URL != "" {
		base, _ = url.Parse(pc.URL)
	}

	cells := &blockimport.Cells{}
	for _, item := range queryAll(el, params.Option("items", ".item")) {
		var slide []*html.Node
		if img := queryFirst(item, params.Option("image", "picture img, img")); img != nil {
			src, _ := attr(img, "src")
			alt, _ := attr(img, "alt")
			slide = append(slide, newElement(atom.Img, "", "src", resolveURL(base, src), "alt", alt))
		}
		title := firstText(item, params.Option("title", ".carousel-caption .carousel-header div, .carousel-header, h2, h3"))
		description := firstText(item, params.Option("description", ".carousel-caption .carousel-copy div, .carousel-copy, p"))
		slide = append(slide, newElement(atom.H3, title), newElement(atom.P, description))
		cells.Rows = append(cells.Rows, blockimport.Row{blockimport.NodeCell(slide...)})

		if link := queryFirst(item, params.Option("link", ".carousel-button a, a.button")); link != nil {
			href, _ := attr(link, "href")
			cells.Rows = append(cells.Rows, blockimport.Row{
				blockimport.TextCell("url"),
				blockimport.TextCell(resolveURL(base, href)),
			})
		}
	}
	return cells, nil
}

func firstText(n *html.Node, selector string) string {
	if m := queryFirst(n, selector); m != nil {
		return strings.TrimSpace(textContent(m))
	}
	return ""
}

func resolveURL(base *url.URL, ref string) string {
	if base == nil || ref == "" {
		return ref
	}
	u, err := base.Parse(ref)
	if err != nil {
		return ref
	}
	return u.String()
}

// newElement returns a detached element holding text, with attributes
// given as key/value pairs.
func newElement(a atom.Atom, text string, kv ...string) *html.Node {
	n := &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String()}
	for i := 0; i+1 < len(kv); i += 2 {
		n.Attr = append(n.Attr, html.Attribute{Key: kv[i], Val: kv[i+1]})
	}
	if text != "" {
		n.AppendChild(&html.Node{Type: html.TextNode, Data: text})
	}
	return n
}

// ColumnsParser splits a multi-column layout into one row. It first removes
// scripts, styles and divs holding neither media nor text, then groups the
// remaining divs by their indexed path without the last index and returns
// the first group, in document order, with more than one member (or with
// exactly "count" members when that option is set).
//
// Unlike the other parsers, ColumnsParser modifies el.
type ColumnsParser struct{}

// NewColumnsParser creates a new ColumnsParser.
func NewColumnsParser() *ColumnsParser {
	return &ColumnsParser{}
}

// Parse returns a single row whose columns are the selected divs.
func (p *ColumnsParser) Parse(el *html.Node, pc *blockimport.ParseContext) (*blockimport.Cells, error) {
	accept := func(n int) bool { return n > 1 }
	if v := paramsOf(pc).Option("count", ""); v != "" {
		count, err := strconv.Atoi(v)
		if err != nil {
			return nil, blockimport.Errorf(blockimport.EINVALID, "columns count %q is not a number", v)
		}
		accept = func(n int) bool { return n == count }
	}

	for _, n := range queryAll(el, "script, style") {
		detach(n)
	}
	for _, div := range queryAll(el, "div") {
		if queryFirst(div, "img, svg, iframe") == nil && strings.TrimSpace(textContent(div)) == "" {
			detach(div)
		}
	}

	var order []string
	groups := make(map[string][]*html.Node)
	for _, div := range queryAll(el, "div") {
		xp := IndexedXPath(div)
		key := xp[:strings.LastIndex(xp, "[")]
		if _, ok := groups[key]; !ok {
			order = append(order, key)
		}
		groups[key] = append(groups[key], div)
	}

	cells := &blockimport.Cells{}
	for _, key := range order {
		if accept(len(groups[key])) {
			var row blockimport.Row
			for _, div := range groups[key] {
				row = append(row, blockimport.NodeCell(div))
			}
			cells.Rows = append(cells.Rows, row)
			break
		}
	}
	return cells, nil
}

// IndexedXPath returns the path of an element from the document root as
// /tag[i] steps, where i counts preceding siblings with the same tag.
func IndexedXPath(n *html.Node) string {
	var steps []string
	for e := n; e != nil && e.Type == html.ElementNode; e = e.Parent {
		i := 1
		for s := e.PrevSibling; s != nil; s = s.PrevSibling {
			if s.Type == html.ElementNode && s.Data == e.Data {
				i++
			}
		}
		steps = append([]string{strings.ToLower(e.Data) + "[" + strconv.Itoa(i) + "]"}, steps...)
	}
	if len(steps) == 0 {
		return ""
	}
	return "/" + strings.Join(steps, "/")
}

// TextParser emits one single-cell row per non-blank text node directly
// under el.
type TextParser struct{}

// NewTextParser creates a new TextParser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// Parse returns the trimmed text rows.
func (p *TextParser) Parse(el *html.Node, _ *blockimport.ParseContext) (*blockimport.Cells, error) {
	cells := &blockimport.Cells{}
	for c := el.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.TextNode {
			continue
		}
		if text := strings.TrimSpace(c.Data); text != "" {
			cells.Rows = append(cells.Rows, blockimport.Row{blockimport.TextCell(text)})
		}
	}
	return cells, nil
}
