// Package readability reads page metadata with go-readability.
package readability

import (
	"bytes"
	"strings"

	"github.com/fwojciec/blockimport"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// Ensure Extractor implements blockimport.MetadataExtractor at compile time.
var _ blockimport.MetadataExtractor = (*Extractor)(nil)

// Extractor wraps go-readability to read page metadata.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns Title, Description, Image, Author and Site Name when
// present. The document is rendered first since readability rewrites the
// tree it parses.
func (e *Extractor) Extract(doc *html.Node) ([]blockimport.Field, error) {
	if doc == nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "document required")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}

	article, err := readability.FromReader(&buf, nil)
	if err != nil {
		return nil, blockimport.Errorf(blockimport.EINTERNAL, "readability: %v", err)
	}

	var fields []blockimport.Field
	for _, f := range []struct{ name, value string }{
		{"Title", article.Title},
		{"Description", article.Excerpt},
		{"Image", article.Image},
		{"Author", article.Byline},
		{"Site Name", article.SiteName},
	} {
		if v := strings.TrimSpace(f.value); v != "" {
			fields = append(fields, blockimport.Field{Name: f.name, Values: []string{v}})
		}
	}
	return fields, nil
}
