package blockimport

import (
	"regexp"
	"strings"
)

// BodyXPath is the indexed XPath of the document body. Mapping entry xpaths
// are recorded from the document root; selectors are derived relative to
// the body.
const BodyXPath = "/html[1]/body[1]"

var xpathSegmentRe = regexp.MustCompile(`^([A-Za-z_*][\w.-]*)((?:\[[^\]]+\])*)$`)
var xpathPredicateRe = regexp.MustCompile(`\[([^\]]+)\]`)
var xpathAttrRe = regexp.MustCompile(`^@([\w-]+)(?:\s*=\s*["']([^"']*)["'])?$`)

// XPathToSelector converts an indexed XPath into an equivalent CSS selector.
// The basePath prefix is stripped first. Positional predicates become
// :first-of-type / :nth-of-type(n), attribute predicates become attribute
// selectors and steps are joined with the child combinator ("//" steps use
// the descendant combinator). Returns an empty string when the XPath uses
// constructs that have no CSS equivalent.
func XPathToSelector(xpath, basePath string) string {
	if basePath != "" {
		xpath = strings.Replace(xpath, basePath, "", 1)
	}
	xpath = strings.TrimSpace(xpath)
	if xpath == "" {
		return ""
	}

	var b strings.Builder
	descendant := false
	first := true
	for i, step := range strings.Split(xpath, "/") {
		if step == "" {
			// leading "/" yields one empty step, "//" yields an extra one
			if i > 0 {
				descendant = true
			}
			continue
		}
		css, ok := xpathStepToCSS(step)
		if !ok {
			return ""
		}
		if !first {
			if descendant {
				b.WriteString(" ")
			} else {
				b.WriteString(" > ")
			}
		}
		b.WriteString(css)
		first = false
		descendant = false
	}
	return b.String()
}

func xpathStepToCSS(step string) (string, bool) {
	m := xpathSegmentRe.FindStringSubmatch(step)
	if m == nil {
		return "", false
	}
	tag := strings.ToLower(m[1])
	if tag == "*" {
		tag = ""
	}

	var suffix strings.Builder
	for _, p := range xpathPredicateRe.FindAllStringSubmatch(m[2], -1) {
		pred := strings.TrimSpace(p[1])
		if isDigits(pred) {
			if pred == "1" {
				suffix.WriteString(":first-of-type")
			} else {
				suffix.WriteString(":nth-of-type(" + pred + ")")
			}
			continue
		}
		a := xpathAttrRe.FindStringSubmatch(pred)
		if a == nil {
			return "", false
		}
		if a[2] == "" && !strings.Contains(pred, "=") {
			suffix.WriteString("[" + a[1] + "]")
		} else {
			suffix.WriteString("[" + a[1] + "=\"" + a[2] + "\"]")
		}
	}

	if tag == "" && suffix.Len() == 0 {
		return "*", true
	}
	return tag + suffix.String(), true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ResolveSelector returns the CSS selector locating the entry's region.
// The priority is fixed: selector, then #domId, then .domClasses, then the
// XPath converted relative to basePath. Returns an empty string when the
// entry carries no locator.
func ResolveSelector(e *MappingEntry, basePath string) string {
	switch {
	case e == nil:
		return ""
	case e.Selector != "":
		return e.Selector
	case e.DomID != "":
		return "#" + e.DomID
	case strings.TrimSpace(e.DomClasses) != "":
		return "." + strings.Join(strings.Fields(e.DomClasses), ".")
	case e.XPath != "":
		return XPathToSelector(e.XPath, basePath)
	}
	return ""
}
