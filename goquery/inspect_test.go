package goquery_test

import (
	"errors"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/goquery"
	"github.com/fwojciec/blockimport/htmlquery"
	"github.com/fwojciec/blockimport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestInspector_Inspect(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<body><div id="hero"></div><p id="a">a</p><p id="b">b</p></body>`)
	inspector := goquery.NewInspector(htmlquery.NewEvaluator())

	tests := []struct {
		name  string
		entry *blockimport.MappingEntry
		want  []blockimport.Warning
	}{
		{
			name:  "unique match",
			entry: &blockimport.MappingEntry{ID: "1", Mapping: "hero", DomID: "hero"},
		},
		{
			name:  "ambiguous match",
			entry: &blockimport.MappingEntry{ID: "2", Mapping: "text", Selector: "p"},
			want:  []blockimport.Warning{{EntryID: "2", Message: `selector "p" matches 2 elements`}},
		},
		{
			name:  "no match",
			entry: &blockimport.MappingEntry{ID: "3", Mapping: "text", DomClasses: "missing"},
			want:  []blockimport.Warning{{EntryID: "3", Message: `selector ".missing" matches 0 elements`}},
		},
		{
			name:  "unresolved selector",
			entry: &blockimport.MappingEntry{ID: "4", Mapping: "text"},
			want:  []blockimport.Warning{{EntryID: "4", Message: "no selector could be resolved"}},
		},
		{
			name:  "xpath agrees",
			entry: &blockimport.MappingEntry{ID: "5", Mapping: "text", Selector: "#a", XPath: "/html[1]/body[1]/p[1]"},
		},
		{
			name:  "xpath disagrees",
			entry: &blockimport.MappingEntry{ID: "6", Mapping: "text", Selector: "#b", XPath: "/html[1]/body[1]/p[1]"},
			want:  []blockimport.Warning{{EntryID: "6", Message: `selector "#b" does not locate the xpath element`}},
		},
		{
			name:  "metadata cell without locator",
			entry: &blockimport.MappingEntry{ID: "7", Mapping: blockimport.MappingMetadata, Name: "title", Value: "h1"},
		},
		{
			name:  "structured exclusion",
			entry: &blockimport.MappingEntry{ID: "8", Mapping: blockimport.MappingExclude, Attribute: "class", Value: "ad"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, inspector.Inspect(doc, []*blockimport.MappingEntry{tt.entry}))
		})
	}
}

func TestInspector_XPathEvaluator(t *testing.T) {
	t.Parallel()

	doc := parseHTML(t, `<body><div id="hero"></div></body>`)
	entry := &blockimport.MappingEntry{ID: "1", Mapping: "hero", Selector: "#hero", XPath: "/html[1]/body[1]/div[1]"}

	t.Run("reports evaluator errors", func(t *testing.T) {
		t.Parallel()

		xpath := &mock.XPathEvaluator{
			EvaluateFn: func(*html.Node, string) ([]*html.Node, error) {
				return nil, errors.New("bad expression")
			},
		}

		warnings := goquery.NewInspector(xpath).Inspect(doc, []*blockimport.MappingEntry{entry})

		require.Len(t, warnings, 1)
		assert.Contains(t, warnings[0].Message, "bad expression")
	})

	t.Run("skips the cross-check without an evaluator", func(t *testing.T) {
		t.Parallel()

		warnings := goquery.NewInspector(nil).Inspect(doc, []*blockimport.MappingEntry{entry})

		assert.Empty(t, warnings)
	})
}
