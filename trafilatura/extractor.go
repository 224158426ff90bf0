// Package trafilatura reads page metadata with go-trafilatura, which also
// understands JSON-LD and Dublin Core markup.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/fwojciec/blockimport"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements blockimport.MetadataExtractor at compile time.
var _ blockimport.MetadataExtractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to read page metadata.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns Title, Description, Image, Author, Site Name and
// Publication Date when present. A page trafilatura cannot process yields
// no fields.
func (e *Extractor) Extract(doc *html.Node) ([]blockimport.Field, error) {
	if doc == nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "document required")
	}

	var buf bytes.Buffer
	if err := html.Render(&buf, doc); err != nil {
		return nil, err
	}

	result, err := trafilatura.Extract(&buf, trafilatura.Options{EnableFallback: true})
	if err != nil || result == nil {
		return nil, nil
	}
	m := result.Metadata

	var fields []blockimport.Field
	add := func(name, value string) {
		if value = strings.TrimSpace(value); value != "" {
			fields = append(fields, blockimport.Field{Name: name, Values: []string{value}})
		}
	}
	add("Title", m.Title)
	add("Description", m.Description)
	add("Image", m.Image)
	add("Author", m.Author)
	add("Site Name", m.Sitename)
	if !m.Date.IsZero() {
		add("Publication Date", m.Date.Format("2006-01-02"))
	}
	return fields, nil
}
