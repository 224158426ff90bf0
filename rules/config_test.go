package rules_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/goquery"
	"github.com/fwojciec/blockimport/rules"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func transform(t *testing.T, markup string, rs *blockimport.Ruleset) (*html.Node, error) {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(markup))
	require.NoError(t, err)
	tr := goquery.NewTransformer(goquery.NewDefaultRegistry(nil), goquery.NewTableBuilder())
	return tr.Transform(doc, rs, &blockimport.Source{})
}

func TestConfig_RoundTrip(t *testing.T) {
	t.Parallel()

	rs, _ := newBuilder().Build([]*blockimport.MappingEntry{
		{ID: "1", Mapping: blockimport.MappingRoot, DomID: "content"},
		{ID: "2", Mapping: blockimport.MappingExclude, DomClasses: "ad"},
		{ID: "3", Mapping: blockimport.MappingExclude, Property: "className", Value: "promo"},
		{ID: "4", Mapping: "hero", DomID: "hero", Variants: "dark"},
		{ID: "5", Mapping: "hero", Name: "title", Value: "h1"},
		{ID: "6", Mapping: blockimport.MappingMetadata, Name: "template", Value: "Promo", Condition: ".promo"},
		{ID: "7", Mapping: blockimport.MappingMetadata, Name: "author", Value: "{{ .byline }}"},
	})
	rs.Cleanup.End = []blockimport.CleanupRule{{Selector: "::text(Advertisement)"}}
	rs.Blocks = append(rs.Blocks, &blockimport.BlockDefinition{
		Type:       "carousel",
		Selectors:  []string{".slides"},
		InsertMode: blockimport.InsertPrepend,
		Params: &blockimport.BlockParams{
			Cells:   &blockimport.CellsSpec{Rows: []blockimport.RowSpec{{Columns: []blockimport.CellSpec{{Value: ".slide"}}, Single: true}}},
			Options: map[string]string{"items": ".slide"},
		},
	})
	rs.Classify(goquery.NewValidator())

	var buf bytes.Buffer
	require.NoError(t, rules.Encode(&buf, rs))

	decoded, err := rules.Decode(&buf, goquery.NewValidator())

	require.NoError(t, err)
	assert.Equal(t, rs, decoded)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	t.Run("rejects malformed json", func(t *testing.T) {
		t.Parallel()

		_, err := rules.Decode(strings.NewReader(`{"blocks":`), goquery.NewValidator())

		assert.Equal(t, blockimport.EINVALID, blockimport.ErrorCode(err))
	})

	t.Run("rejects blocks without type", func(t *testing.T) {
		t.Parallel()

		_, err := rules.Decode(strings.NewReader(`{"cleanup":{"start":[]},"blocks":[{"selectors":["#x"]}]}`), goquery.NewValidator())

		assert.Equal(t, blockimport.EINVALID, blockimport.ErrorCode(err))
	})

	t.Run("applies a decoded config", func(t *testing.T) {
		t.Parallel()

		rs, err := rules.Decode(strings.NewReader(`{
  "cleanup": {"start": [".ad"]},
  "blocks": [{"type": "hero", "selectors": ["#hero"], "params": {"cells": {"title": "h1"}}}]
}`), goquery.NewValidator())
		require.NoError(t, err)

		root, err := transform(t, `<body><div class="ad">ad</div><div id="hero"><h1>Welcome</h1></div></body>`, rs)

		require.NoError(t, err)
		out, err := goquery.RenderNode(root)
		require.NoError(t, err)
		assert.Equal(t, `<body><table><tbody><tr><th colspan="2">Hero</th></tr><tr><td>title</td><td>Welcome</td></tr></tbody></table></body>`, out)
	})
}
