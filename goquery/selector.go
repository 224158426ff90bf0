package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// MaxClassesPerElement caps the classes BuildSelector uses for one element.
const MaxClassesPerElement = 4

// ScopeMarker is the selector BuildSelector emits for the document body.
const ScopeMarker = ":scope"

// scopeAttr temporarily marks the :scope element during a query.
const scopeAttr = "data-blockimport-scope"

var scopeRe = regexp.MustCompile(`:scope\b`)

// textMarkerRe matches the extraction markers that are not CSS.
var textMarkerRe = regexp.MustCompile(`::text(\([^)]*\))?`)

// BuildSelector returns a best-effort CSS selector for an element: its id,
// then up to MaxClassesPerElement classes, then ":scope" for the body, then
// its tag name. The selector is not guaranteed to be unique.
func BuildSelector(n *html.Node) string {
	if n == nil || n.Type != html.ElementNode {
		return ""
	}

	var selector string
	if id, ok := attr(n, "id"); ok && strings.TrimSpace(id) != "" {
		selector = "#" + strings.TrimSpace(id)
	}
	if class, ok := attr(n, "class"); ok {
		classes := strings.Fields(class)
		if len(classes) > MaxClassesPerElement {
			classes = classes[:MaxClassesPerElement]
		}
		if len(classes) > 0 {
			selector += "." + strings.Join(classes, ".")
		}
	}
	if selector != "" {
		return selector
	}

	if n.DataAtom == atom.Body {
		return ScopeMarker
	}
	return strings.ToLower(n.Data)
}

// BuildSelectorWithDepth extends BuildSelector with up to depth-1 ancestors
// joined by descendant combinators, stopping at the body. When offset is
// positive and smaller than the number of segments, that many trailing
// segments are dropped. When the walk reached the body before depth was
// exhausted, the chain is anchored with child combinators.
func BuildSelectorWithDepth(n *html.Node, depth, offset int) string {
	if depth < 0 {
		depth = 0
	}

	parts := []string{BuildSelector(n)}
	actual := 1
	parent := n.Parent
	for i := 1; i < depth; i++ {
		if parent == nil || parent.Type != html.ElementNode {
			break
		}
		parts = append([]string{BuildSelector(parent)}, parts...)
		actual++
		if parent.DataAtom == atom.Body {
			break
		}
		parent = parent.Parent
	}

	segments := strings.Fields(strings.Join(parts, " "))
	if offset > 0 && offset < len(segments) {
		segments = segments[:len(segments)-offset]
	}
	selector := strings.Join(segments, " ")

	if actual < depth && strings.Contains(selector, ScopeMarker) {
		selector = strings.Join(segments, " > ")
	}
	return selector
}

// Ensure Validator implements blockimport.SelectorValidator.
var _ blockimport.SelectorValidator = (*Validator)(nil)

// Validator checks selector syntax with cascadia. ":scope" is accepted and
// the "::text" extraction markers are ignored.
type Validator struct{}

// NewValidator creates a new Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// IsValid reports whether selector parses as a CSS selector group.
func (v *Validator) IsValid(selector string) bool {
	return isValidSelector(selector)
}

func isValidSelector(selector string) bool {
	s := strings.TrimSpace(textMarkerRe.ReplaceAllString(selector, ""))
	s = strings.TrimSpace(strings.TrimSuffix(s, "+"))
	if s == "" {
		return false
	}
	s = scopeRe.ReplaceAllString(s, "["+scopeAttr+"]")
	_, err := cascadia.ParseGroup(s)
	return err == nil
}

// queryAll returns the elements under ctx matching selector, in document
// order. ":scope" refers to ctx itself, or to the body when ctx is the
// document node. Invalid selectors match nothing.
func queryAll(ctx *html.Node, selector string) []*html.Node {
	selector = strings.TrimSpace(selector)
	if ctx == nil || selector == "" {
		return nil
	}
	if !scopeRe.MatchString(selector) {
		return goquery.NewDocumentFromNode(ctx).Find(selector).Nodes
	}

	scope := ctx
	if ctx.Type == html.DocumentNode {
		scope = findBody(ctx)
	}
	if scope == nil || scope.Type != html.ElementNode {
		return nil
	}
	scope.Attr = append(scope.Attr, html.Attribute{Key: scopeAttr})
	defer removeAttr(scope, scopeAttr)

	rewritten := scopeRe.ReplaceAllString(selector, "["+scopeAttr+"]")
	return goquery.NewDocumentFromNode(ctx).Find(rewritten).Nodes
}

// queryFirst returns the first element under ctx matching selector, or nil.
func queryFirst(ctx *html.Node, selector string) *html.Node {
	nodes := queryAll(ctx, selector)
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}
