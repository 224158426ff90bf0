package blockimport

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	// The input is usually the transformed root holding the blocks.
	Convert(html string) (string, error)
}
