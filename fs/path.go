// Package fs provides file-based storage for imported pages and mappings.
package fs

import (
	"net/url"
	"path"
	"strings"

	"github.com/fwojciec/blockimport"
)

// URLToPath converts a page URL to a relative markdown file path.
// Example: https://example.com/blog/post.html → blog/post.md
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	p := u.Path
	if p == "" || p == "/" {
		return "index.md", nil
	}
	for _, seg := range strings.Split(p, "/") {
		if seg == ".." {
			return "", blockimport.Errorf(blockimport.EINVALID, "path traversal in URL %q", rawURL)
		}
	}

	p = strings.TrimPrefix(p, "/")
	if strings.HasSuffix(p, "/") {
		return p + "index.md", nil
	}

	switch ext := path.Ext(p); ext {
	case ".html", ".htm", ".php", ".aspx":
		p = strings.TrimSuffix(p, ext)
	}
	return p + ".md", nil
}

// FormatPage formats a page with YAML frontmatter.
func FormatPage(page *blockimport.Page) string {
	var b strings.Builder
	b.WriteString("---\n")
	b.WriteString("source: ")
	b.WriteString(page.URL)
	if page.Title != "" {
		b.WriteString("\ntitle: ")
		b.WriteString(quoteYAML(page.Title))
	}
	if page.ContentHash != "" {
		b.WriteString("\nhash: ")
		b.WriteString(page.ContentHash)
	}
	b.WriteString("\n---\n\n")
	b.WriteString(page.Markdown)
	return b.String()
}

// quoteYAML quotes s when it would not survive as a plain scalar.
func quoteYAML(s string) string {
	if !strings.ContainsAny(s, ":#'\"\n") {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}
