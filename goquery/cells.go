package goquery

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/fwojciec/blockimport"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// sanitizer cleans template markup before it is parsed into cells.
var sanitizer = bluemonday.UGCPolicy()

var defaultValidator = NewValidator()

// BuildBlockConfig evaluates a named cell specification against el.
//
// Conditional values use the first entry whose condition matches under el;
// when none matches the field is omitted. Selector values yield the text,
// sibling text or attribute of every match, trimmed and optionally passed
// through a regular expression replacement. A selector without match, and
// any literal, is used verbatim. Templates resolve their placeholders to the
// text of the first match.
func BuildBlockConfig(el *html.Node, spec *blockimport.CellsSpec) (*blockimport.Cells, error) {
	cells := &blockimport.Cells{}
	if spec == nil {
		return cells, nil
	}
	for _, f := range spec.Fields {
		cs, replace, ok := chooseValue(el, f.Value)
		if !ok {
			continue
		}
		values, ok, err := evaluateValue(el, cs.Classified(defaultValidator), replace)
		if err != nil {
			return nil, fmt.Errorf("cell %q: %w", f.Name, err)
		}
		if !ok {
			continue
		}
		cells.Fields = append(cells.Fields, blockimport.Field{Name: f.Name, Values: values})
	}
	return cells, nil
}

func chooseValue(el *html.Node, v blockimport.ValueSpec) (blockimport.CellSpec, *blockimport.Replace, bool) {
	if !v.IsConditional() {
		return v.Spec, nil, true
	}
	for _, c := range v.Conditionals {
		if c.Always() || queryFirst(el, c.Condition) != nil {
			return c.Value, c.Replace, true
		}
	}
	return blockimport.CellSpec{}, nil, false
}

func evaluateValue(el *html.Node, spec blockimport.CellSpec, replace *blockimport.Replace) ([]string, bool, error) {
	switch spec.Kind {
	case blockimport.KindTemplate:
		s := resolveTemplate(el, spec.Value, func(n *html.Node) string {
			return strings.TrimSpace(textContent(n))
		})
		s, err := applyReplace(s, replace)
		if err != nil {
			return nil, false, err
		}
		return []string{strings.TrimSpace(s)}, true, nil
	case blockimport.KindSelector:
		vs := blockimport.ParseValueSelector(spec.Value)
		matches := queryAll(el, vs.Selector)
		if len(matches) == 0 {
			return []string{spec.Value}, true, nil
		}
		var values []string
		for _, m := range matches {
			text, ok := extractValue(m, vs)
			if !ok {
				continue
			}
			text, err := applyReplace(text, replace)
			if err != nil {
				return nil, false, err
			}
			values = append(values, strings.TrimSpace(text))
		}
		return values, len(values) > 0, nil
	}
	return []string{spec.Value}, true, nil
}

func extractValue(n *html.Node, vs blockimport.ValueSelector) (string, bool) {
	switch {
	case vs.Attribute != "":
		return attr(n, vs.Attribute)
	case vs.SiblingText:
		if n.NextSibling == nil {
			return "", false
		}
		return textContent(n.NextSibling), true
	}
	if text := textContent(n); strings.TrimSpace(text) != "" {
		return text, true
	}
	if content, ok := attr(n, "content"); ok {
		return content, true
	}
	return "", true
}

// applyReplace replaces the first match of r.Search in s.
func applyReplace(s string, r *blockimport.Replace) (string, error) {
	if r == nil || r.Search == "" {
		return s, nil
	}
	re, err := regexp.Compile(r.Search)
	if err != nil {
		return "", blockimport.Errorf(blockimport.EINVALID, "invalid replace pattern %q: %v", r.Search, err)
	}
	loc := re.FindStringSubmatchIndex(s)
	if loc == nil {
		return s, nil
	}
	repl := re.ExpandString(nil, r.Replacement, s, loc)
	return s[:loc[0]] + string(repl) + s[loc[1]:], nil
}

// BuildBlockCells evaluates a grid cell specification against el.
//
// A single-spec row yields one column per selector match; otherwise each
// spec is one column holding all of its matches. Templates become a
// sanitized fragment with each placeholder replaced by the inner markup of
// its first match. Literals become text cells. Rows without content in any
// column are dropped.
func BuildBlockCells(el *html.Node, spec *blockimport.CellsSpec) (*blockimport.Cells, error) {
	cells := &blockimport.Cells{}
	if spec == nil {
		return cells, nil
	}
	for _, r := range spec.Rows {
		var row blockimport.Row
		if r.Single && len(r.Columns) == 1 {
			row = singleRow(el, r.Columns[0].Classified(defaultValidator))
		} else {
			for _, c := range r.Columns {
				row = append(row, column(el, c.Classified(defaultValidator)))
			}
		}
		if len(row) > 0 && !row.IsEmpty() {
			cells.Rows = append(cells.Rows, row)
		}
	}
	return cells, nil
}

func singleRow(el *html.Node, spec blockimport.CellSpec) blockimport.Row {
	if spec.Kind != blockimport.KindSelector {
		return blockimport.Row{column(el, spec)}
	}
	var row blockimport.Row
	for _, m := range queryAll(el, blockimport.ParseValueSelector(spec.Value).Selector) {
		row = append(row, blockimport.NodeCell(m))
	}
	return row
}

func column(el *html.Node, spec blockimport.CellSpec) blockimport.Cell {
	switch spec.Kind {
	case blockimport.KindSelector:
		return blockimport.NodeCell(queryAll(el, blockimport.ParseValueSelector(spec.Value).Selector)...)
	case blockimport.KindTemplate:
		markup := resolveTemplate(el, spec.Value, innerHTML)
		return blockimport.NodeCell(parseFragment(sanitizer.Sanitize(markup))...)
	}
	return blockimport.TextCell(strings.TrimSpace(spec.Value))
}

// resolveTemplate replaces each {{ expression }} placeholder with render of
// the first element the expression selects under el, or with the
// expression itself when it is not a selector or matches nothing.
func resolveTemplate(el *html.Node, tmpl string, render func(*html.Node) string) string {
	return blockimport.TemplateRe.ReplaceAllStringFunc(tmpl, func(placeholder string) string {
		expr := strings.TrimSpace(blockimport.TemplateRe.FindStringSubmatch(placeholder)[1])
		if isValidSelector(expr) {
			if n := queryFirst(el, expr); n != nil {
				return render(n)
			}
		}
		return expr
	})
}

// parseFragment parses markup into detached nodes. Whitespace-only markup
// yields no nodes.
func parseFragment(markup string) []*html.Node {
	if strings.TrimSpace(markup) == "" {
		return nil
	}
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil
	}
	return nodes
}

// NodeRow wraps a prebuilt node as a single-column row.
func NodeRow(n *html.Node) blockimport.Row {
	return blockimport.Row{blockimport.NodeCell(n)}
}
