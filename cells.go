package blockimport

import (
	"strings"

	"golang.org/x/net/html"
)

// Cells is a parser's output: named config fields or a grid of rows.
type Cells struct {
	Fields []Field
	Rows   []Row
}

// Field is a named config cell. A single value is a scalar; several values
// are a list.
type Field struct {
	Name   string
	Values []string
}

// Value returns the first value, or an empty string.
func (f Field) Value() string {
	if len(f.Values) == 0 {
		return ""
	}
	return f.Values[0]
}

// Row is one row of cells.
type Row []Cell

// IsEmpty reports whether no column of the row has content.
func (r Row) IsEmpty() bool {
	for _, c := range r {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}

// Cell is a column value: plain text or DOM nodes.
type Cell struct {
	Text  string
	Nodes []*html.Node
}

// TextCell returns a cell holding plain text.
func TextCell(s string) Cell {
	return Cell{Text: s}
}

// NodeCell returns a cell holding the given nodes.
func NodeCell(nodes ...*html.Node) Cell {
	return Cell{Nodes: nodes}
}

// IsEmpty reports whether the cell has neither text nor nodes.
func (c Cell) IsEmpty() bool {
	return strings.TrimSpace(c.Text) == "" && len(c.Nodes) == 0
}

// IsEmpty reports whether cells holds no field and no row.
func (c *Cells) IsEmpty() bool {
	return c == nil || (len(c.Fields) == 0 && len(c.Rows) == 0)
}

// Field returns the named field.
func (c *Cells) Field(name string) (Field, bool) {
	if c == nil {
		return Field{}, false
	}
	for _, f := range c.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Set replaces the named field's values or appends a new field.
func (c *Cells) Set(name string, values ...string) {
	for i := range c.Fields {
		if c.Fields[i].Name == name {
			c.Fields[i].Values = values
			return
		}
	}
	c.Fields = append(c.Fields, Field{Name: name, Values: values})
}

// Compact drops empty rows.
func (c *Cells) Compact() {
	if c == nil || c.Rows == nil {
		return
	}
	rows := c.Rows[:0]
	for _, r := range c.Rows {
		if len(r) > 0 && !r.IsEmpty() {
			rows = append(rows, r)
		}
	}
	c.Rows = rows
}

// Map returns the fields as a name to value map. Single values are strings,
// several values are string slices.
func (c *Cells) Map() map[string]interface{} {
	m := make(map[string]interface{})
	if c == nil {
		return m
	}
	for _, f := range c.Fields {
		if len(f.Values) == 1 {
			m[f.Name] = f.Values[0]
		} else {
			m[f.Name] = f.Values
		}
	}
	return m
}
