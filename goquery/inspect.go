package goquery

import (
	"fmt"

	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
)

// Inspector reports mapping entries whose selectors are ambiguous or
// unresolvable against a document.
type Inspector struct {
	// XPath, when set, cross-checks entries carrying an XPath.
	XPath blockimport.XPathEvaluator
}

// NewInspector creates a new Inspector.
func NewInspector(xpath blockimport.XPathEvaluator) *Inspector {
	return &Inspector{XPath: xpath}
}

// Inspect returns one warning per problem found. Structured exclusions and
// metadata cells without a locator are not checked.
func (i *Inspector) Inspect(doc *html.Node, entries []*blockimport.MappingEntry) []blockimport.Warning {
	var warnings []blockimport.Warning
	warn := func(e *blockimport.MappingEntry, format string, args ...interface{}) {
		warnings = append(warnings, blockimport.Warning{EntryID: e.ID, Message: fmt.Sprintf(format, args...)})
	}

	for _, e := range entries {
		if e.IsStructuredExclusion() {
			continue
		}
		selector := blockimport.ResolveSelector(e, blockimport.BodyXPath)
		if selector == "" {
			if !e.IsMetadataCell() {
				warn(e, "no selector could be resolved")
			}
			continue
		}
		if !isValidSelector(selector) {
			warn(e, "invalid selector %q", selector)
			continue
		}

		matches := queryAll(doc, selector)
		if len(matches) != 1 {
			warn(e, "selector %q matches %d elements", selector, len(matches))
		}

		if i.XPath == nil || e.XPath == "" || len(matches) == 0 {
			continue
		}
		nodes, err := i.XPath.Evaluate(doc, e.XPath)
		if err != nil {
			warn(e, "invalid xpath %q: %v", e.XPath, err)
			continue
		}
		if len(nodes) == 0 || nodes[0] != matches[0] {
			warn(e, "selector %q does not locate the xpath element", selector)
		}
	}
	return warnings
}
