package goquery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

func attr(n *html.Node, key string) (string, bool) {
	for _, a := range n.Attr {
		if a.Namespace == "" && strings.EqualFold(a.Key, key) {
			return a.Val, true
		}
	}
	return "", false
}

func removeAttr(n *html.Node, key string) {
	attrs := n.Attr[:0]
	for _, a := range n.Attr {
		if a.Key != key {
			attrs = append(attrs, a)
		}
	}
	n.Attr = attrs
}

// findBody returns the body element of a document, or nil.
func findBody(doc *html.Node) *html.Node {
	return findFirstAtom(doc, atom.Body)
}

func findFirstAtom(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirstAtom(c, a); found != nil {
			return found
		}
	}
	return nil
}

// documentOf returns the document node n belongs to, or the topmost ancestor.
func documentOf(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

// textContent concatenates the text of every descendant text node.
func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	return goquery.NewDocumentFromNode(n).Text()
}

// innerHTML renders the children of n.
func innerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// RenderNode renders n and its subtree as HTML.
func RenderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// detach removes n from its parent, if any.
func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// contains reports whether n is ancestor or equal to other.
func contains(n, other *html.Node) bool {
	for p := other; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// elements returns the element descendants of n in document order.
func elements(n *html.Node) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(p *html.Node) {
		for c := p.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode {
				out = append(out, c)
				walk(c)
			}
		}
	}
	walk(n)
	return out
}

// Remove deletes the content under root matched by rules. Selector rules
// remove elements, text rules remove matching text nodes only, and
// attribute or property conditions remove elements whose attribute value
// contains the condition value. Invalid selectors match nothing.
func Remove(root *html.Node, rules []blockimport.CleanupRule) {
	if root == nil {
		return
	}
	for _, r := range rules {
		switch {
		case r.IsCondition():
			removeByCondition(root, r)
		default:
			if scope, target, ok := r.TextTarget(); ok {
				removeText(root, scope, target)
				continue
			}
			for _, n := range queryAll(root, r.Selector) {
				detach(n)
			}
		}
	}
}

func removeByCondition(root *html.Node, r blockimport.CleanupRule) {
	name := r.AttributeName()
	for _, n := range elements(root) {
		if v, ok := attr(n, name); ok && strings.Contains(v, r.Value) {
			detach(n)
		}
	}
}

func removeText(root *html.Node, scope, target string) {
	scopes := []*html.Node{root}
	if scope != "" {
		scopes = queryAll(root, scope)
	}
	for _, s := range scopes {
		var matches []*html.Node
		var walk func(*html.Node)
		walk = func(p *html.Node) {
			for c := p.FirstChild; c != nil; c = c.NextSibling {
				switch c.Type {
				case html.TextNode:
					if strings.TrimSpace(c.Data) == target {
						matches = append(matches, c)
					}
				case html.ElementNode:
					walk(c)
				}
			}
		}
		walk(s)
		for _, t := range matches {
			detach(t)
		}
	}
}
