// Package htmlquery evaluates XPath expressions against parsed documents
// using antchfx/htmlquery.
package htmlquery

import (
	"github.com/antchfx/htmlquery"
	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
)

var _ blockimport.XPathEvaluator = (*Evaluator)(nil)

// Evaluator evaluates XPath expressions.
type Evaluator struct{}

// NewEvaluator creates a new Evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate returns the element nodes selected by xpath, in document order.
// Returns EINVALID for an expression that does not compile.
func (e *Evaluator) Evaluate(doc *html.Node, xpath string) ([]*html.Node, error) {
	if doc == nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "document required")
	}
	nodes, err := htmlquery.QueryAll(doc, xpath)
	if err != nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "invalid xpath %q: %v", xpath, err)
	}
	out := nodes[:0]
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			out = append(out, n)
		}
	}
	return out, nil
}
