package goquery

import (
	"strings"

	"github.com/fwojciec/blockimport"
	"github.com/google/uuid"
	"golang.org/x/net/html"
)

// AutoMapTargets are the landmarks the auto-mapper excludes.
var AutoMapTargets = []string{"header", "footer"}

// AutoMapper proposes exclude entries for page chrome such as headers and
// footers. On pages built by a known documentation generator it also
// proposes the content root and excludes the generator's navigation.
type AutoMapper struct{}

// NewAutoMapper creates a new AutoMapper.
func NewAutoMapper() *AutoMapper {
	return &AutoMapper{}
}

// Map returns the proposed entries for doc. It refuses with EINVALID when
// existing already holds auto-detected entries.
func (m *AutoMapper) Map(doc *html.Node, existing []*blockimport.MappingEntry) ([]*blockimport.MappingEntry, error) {
	if doc == nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "document required")
	}
	for _, e := range existing {
		if e.DetectionType == blockimport.DetectionAuto {
			return nil, blockimport.Errorf(blockimport.EINVALID, "auto-detected mappings already exist")
		}
	}

	var entries []*blockimport.MappingEntry
	var excluded []*html.Node
	for _, target := range AutoMapTargets {
		for _, n := range outermost(queryAll(doc, target+`, [class*="`+target+`"]`)) {
			entries = append(entries, autoEntry(blockimport.MappingExclude, BuildSelector(n), n))
			excluded = append(excluded, n)
		}
	}

	st := DetectSiteType(doc)
	if st == nil {
		return entries, nil
	}

	var root *html.Node
	if nodes := queryAll(doc, st.Root); len(nodes) == 1 {
		root = nodes[0]
		entries = append([]*blockimport.MappingEntry{autoEntry(blockimport.MappingRoot, st.Root, root)}, entries...)
	}
	for _, selector := range st.Chrome {
		for _, n := range outermost(queryAll(doc, selector)) {
			if coveredBy(n, excluded) || (root != nil && contains(n, root)) {
				continue
			}
			entries = append(entries, autoEntry(blockimport.MappingExclude, BuildSelector(n), n))
			excluded = append(excluded, n)
		}
	}
	return entries, nil
}

func autoEntry(mapping, selector string, n *html.Node) *blockimport.MappingEntry {
	return &blockimport.MappingEntry{
		ID:            "auto-" + uuid.New().String(),
		Mapping:       mapping,
		Selector:      selector,
		XPath:         IndexedXPath(n),
		Precision:     1,
		DetectionType: blockimport.DetectionAuto,
	}
}

// coveredBy reports whether n lies inside one of nodes.
func coveredBy(n *html.Node, nodes []*html.Node) bool {
	for _, other := range nodes {
		if contains(other, n) {
			return true
		}
	}
	return false
}

// outermost drops nodes nested inside another node of the list.
func outermost(nodes []*html.Node) []*html.Node {
	var out []*html.Node
	for _, n := range nodes {
		nested := false
		for _, other := range nodes {
			if other != n && contains(other, n) {
				nested = true
				break
			}
		}
		if !nested && strings.TrimSpace(BuildSelector(n)) != "" {
			out = append(out, n)
		}
	}
	return out
}
