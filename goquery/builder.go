package goquery

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var _ blockimport.BlockBuilder = (*TableBuilder)(nil)

// TableBuilder renders blocks as tables. The header row holds the block
// name followed by its variants in parentheses; named fields become
// two-column rows and grid rows keep their columns. Nodes placed in cells
// are moved out of their current position.
type TableBuilder struct{}

// NewTableBuilder creates a new TableBuilder.
func NewTableBuilder() *TableBuilder {
	return &TableBuilder{}
}

// BlockName turns a block type such as "hero-banner" into "Hero Banner".
func (b *TableBuilder) BlockName(blockType string) string {
	words := strings.FieldsFunc(blockType, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// CreateBlock returns the block table, or nil when cells are empty.
func (b *TableBuilder) CreateBlock(_ *html.Node, name string, variants []string, cells *blockimport.Cells) (*html.Node, error) {
	if cells.IsEmpty() {
		return nil, nil
	}

	var rows [][]*html.Node
	for _, f := range cells.Fields {
		rows = append(rows, []*html.Node{textCell(f.Name), valuesCell(f.Values)})
	}
	for _, r := range cells.Rows {
		var tds []*html.Node
		for _, c := range r {
			tds = append(tds, nodeCell(c))
		}
		if len(tds) > 0 {
			rows = append(rows, tds)
		}
	}

	cols := 1
	for _, r := range rows {
		if len(r) > cols {
			cols = len(r)
		}
	}

	table := newElement(atom.Table, "")
	tbody := newElement(atom.Tbody, "")
	table.AppendChild(tbody)

	header := name
	if len(variants) > 0 {
		header += " (" + strings.Join(variants, ", ") + ")"
	}
	th := newElement(atom.Th, header)
	if cols > 1 {
		th.Attr = append(th.Attr, html.Attribute{Key: "colspan", Val: strconv.Itoa(cols)})
	}
	tr := newElement(atom.Tr, "")
	tr.AppendChild(th)
	tbody.AppendChild(tr)

	for _, r := range rows {
		tr := newElement(atom.Tr, "")
		for _, td := range r {
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	return table, nil
}

func textCell(s string) *html.Node {
	return newElement(atom.Td, s)
}

func valuesCell(values []string) *html.Node {
	if len(values) == 1 {
		return textCell(values[0])
	}
	td := newElement(atom.Td, "")
	for _, v := range values {
		td.AppendChild(newElement(atom.P, v))
	}
	return td
}

func nodeCell(c blockimport.Cell) *html.Node {
	if len(c.Nodes) == 0 {
		return textCell(c.Text)
	}
	td := newElement(atom.Td, "")
	if c.Text != "" {
		td.AppendChild(&html.Node{Type: html.TextNode, Data: c.Text})
	}
	for _, n := range c.Nodes {
		detach(n)
		td.AppendChild(n)
	}
	return td
}
