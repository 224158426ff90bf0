package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/blockimport"
	"golang.org/x/net/html"
)

var _ blockimport.MetadataExtractor = (*MetadataExtractor)(nil)

// MetadataExtractor reads Title, Description and Image from the document
// head. The title tag wins over og:title; the meta description wins over
// og:description.
type MetadataExtractor struct{}

// NewMetadataExtractor creates a new MetadataExtractor.
func NewMetadataExtractor() *MetadataExtractor {
	return &MetadataExtractor{}
}

// Extract returns the metadata fields present in doc.
func (e *MetadataExtractor) Extract(doc *html.Node) ([]blockimport.Field, error) {
	if doc == nil {
		return nil, blockimport.Errorf(blockimport.EINVALID, "document required")
	}
	d := goquery.NewDocumentFromNode(doc)

	meta := make(map[string]string)
	d.Find("meta").Each(func(_ int, sel *goquery.Selection) {
		content, ok := sel.Attr("content")
		if !ok {
			return
		}
		content = strings.TrimSpace(content)
		if content == "" {
			return
		}
		for _, key := range []string{"name", "property"} {
			if k, ok := sel.Attr(key); ok {
				k = strings.ToLower(strings.TrimSpace(k))
				if _, seen := meta[k]; !seen {
					meta[k] = content
				}
			}
		}
	})

	title := strings.Join(strings.Fields(d.Find("title").First().Text()), " ")

	var fields []blockimport.Field
	add := func(name string, candidates ...string) {
		for _, v := range candidates {
			if v != "" {
				fields = append(fields, blockimport.Field{Name: name, Values: []string{v}})
				return
			}
		}
	}
	add("Title", title, meta["og:title"], meta["twitter:title"])
	add("Description", meta["description"], meta["og:description"], meta["twitter:description"])
	add("Image", meta["og:image"], meta["twitter:image"])
	return fields, nil
}
