package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// SiteType describes the page layout of a documentation generator.
type SiteType struct {
	Name string

	// Markers identify the generator; any match is enough.
	Markers []string

	// Root locates the main content container.
	Root string

	// Chrome lists navigation regions outside the content.
	Chrome []string
}

// SiteTypes are checked in order. VitePress precedes VuePress because it
// carries some of the same markup.
var SiteTypes = []*SiteType{
	{
		Name:    "docusaurus",
		Markers: []string{"#__docusaurus_skipToContent_fallback", ".theme-doc-sidebar-container"},
		Root:    ".theme-doc-markdown",
		Chrome:  []string{".theme-doc-sidebar-container", ".theme-doc-toc-desktop", ".pagination-nav"},
	},
	{
		Name:    "mkdocs",
		Markers: []string{"[data-md-color-scheme]", "[data-md-component]", ".md-nav--primary"},
		Root:    ".md-content__inner",
		Chrome:  []string{".md-sidebar", ".md-footer"},
	},
	{
		Name:    "sphinx",
		Markers: []string{".wy-nav-side", ".wy-menu-vertical", ".sphinxsidebar"},
		Root:    `[role="main"]`,
		Chrome:  []string{".wy-nav-side", ".sphinxsidebar", ".rst-footer-buttons"},
	},
	{
		Name:    "vitepress",
		Markers: []string{"#VPContent", ".VPDoc", ".VPDocAsideOutline"},
		Root:    ".vp-doc",
		Chrome:  []string{".VPSidebar", ".VPDocAsideOutline", ".VPDocFooter"},
	},
	{
		Name:    "vuepress",
		Markers: []string{".theme-default-content", ".sidebar-links", ".vuepress-navbar"},
		Root:    ".theme-default-content",
		Chrome:  []string{".sidebar", ".page-nav"},
	},
	{
		Name:    "gitbook",
		Markers: []string{`[data-testid="space.sidebar"]`, `[data-testid="page.desktopTableOfContents"]`},
		Root:    "main",
		Chrome:  []string{`[data-testid="space.sidebar"]`, `[data-testid="page.desktopTableOfContents"]`},
	},
	{
		Name:    "nextra",
		Markers: []string{".nextra-navbar", ".nextra-sidebar", ".nextra-toc"},
		Root:    "article",
		Chrome:  []string{".nextra-sidebar", ".nextra-toc"},
	},
}

// DetectSiteType returns the documentation generator that produced doc, or
// nil. The generator meta tag wins over markup markers.
func DetectSiteType(doc *html.Node) *SiteType {
	if doc == nil {
		return nil
	}
	d := goquery.NewDocumentFromNode(doc)

	if generator := strings.ToLower(d.Find(`meta[name="generator"]`).AttrOr("content", "")); generator != "" {
		for _, st := range SiteTypes {
			if strings.Contains(generator, st.Name) {
				return st
			}
		}
	}

	for _, st := range SiteTypes {
		for _, m := range st.Markers {
			if d.Find(m).Length() > 0 {
				return st
			}
		}
	}
	if hasGitBookClasses(d) {
		return siteType("gitbook")
	}
	return nil
}

func siteType(name string) *SiteType {
	for _, st := range SiteTypes {
		if st.Name == name {
			return st
		}
	}
	return nil
}

// hasGitBookClasses reports whether the html element carries at least two of
// GitBook's theme classes.
func hasGitBookClasses(d *goquery.Document) bool {
	class := d.Find("html").AttrOr("class", "")
	count := 0
	for _, c := range []string{"circular-corners", "theme-clean", "tint"} {
		if strings.Contains(class, c) {
			count++
		}
	}
	return count >= 2
}
