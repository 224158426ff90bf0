package goquery_test

import (
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func field(name, value string) blockimport.FieldSpec {
	return blockimport.FieldSpec{Name: name, Value: blockimport.ValueSpec{Spec: blockimport.CellSpec{Value: value}}}
}

func TestBuildBlockConfig(t *testing.T) {
	t.Parallel()

	t.Run("extracts text of selector matches", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="hero"><h1> Welcome </h1><p>Sub</p></div></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "hero"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{field("title", "h1"), field("text", "p")},
		})

		require.NoError(t, err)
		assert.Equal(t, []blockimport.Field{
			{Name: "title", Values: []string{"Welcome"}},
			{Name: "text", Values: []string{"Sub"}},
		}, cells.Fields)
	})

	t.Run("collects every match as a list", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><ul id="tags"><li>go</li><li>html</li></ul></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "tags"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{field("tags", "li")},
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"tags": []string{"go", "html"}}, cells.Map())
	})

	t.Run("uses the raw value when nothing matches", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"></div></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{field("title", "Products"), field("note", "Sale: 50%")},
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"title": "Products", "note": "Sale: 50%"}, cells.Map())
	})

	t.Run("extracts attributes and omits the key when absent", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><img src="/a.png"><img alt="no src"><a>link</a></div></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{field("image", "img[src]"), field("href", "a[href]")},
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"image": "/a.png"}, cells.Map())
	})

	t.Run("extracts the next sibling text", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><dl id="x"><dt>Price</dt><dd> 10 </dd></dl></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{field("price", "dt + ::text"), field("label", "dt::text")},
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"price": "10", "label": "Price"}, cells.Map())
	})

	t.Run("falls back to the content attribute", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><span itemprop="price" content="9.99"></span></div></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{field("price", `[itemprop="price"]`)},
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"price": "9.99"}, cells.Map())
	})

	t.Run("resolves templates to element text", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><h1>Welcome</h1></div></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{field("title", "{{ h1 }} | {{ missing text }}")},
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"title": "Welcome | missing text"}, cells.Map())
	})

	t.Run("picks the first applicable conditional", func(t *testing.T) {
		t.Parallel()

		spec := &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{{Name: "template", Value: blockimport.ValueSpec{Conditionals: []blockimport.Conditional{
				{Condition: ".promo", Value: blockimport.CellSpec{Value: "Promotion"}},
				{Condition: "*", Value: blockimport.CellSpec{Value: "Article"}},
			}}}},
		}

		promo := parseHTML(t, `<body><div id="x"><span class="promo"></span></div></body>`)
		cells, err := goquery.BuildBlockConfig(find(t, promo, "x"), spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"template": "Promotion"}, cells.Map())

		plain := parseHTML(t, `<body><div id="x"></div></body>`)
		cells, err = goquery.BuildBlockConfig(find(t, plain, "x"), spec)
		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"template": "Article"}, cells.Map())
	})

	t.Run("omits the key when no conditional applies", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"></div></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{{Name: "template", Value: blockimport.ValueSpec{Conditionals: []blockimport.Conditional{
				{Condition: ".promo", Value: blockimport.CellSpec{Value: "Promotion"}},
			}}}},
		})

		require.NoError(t, err)
		assert.True(t, cells.IsEmpty())
	})

	t.Run("applies the first-match replacement", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><h1>Price: 10 EUR, was 12 EUR</h1></div></body>`)

		cells, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{{Name: "price", Value: blockimport.ValueSpec{Conditionals: []blockimport.Conditional{
				{Condition: "*", Value: blockimport.CellSpec{Value: "h1"}, Replace: &blockimport.Replace{Search: `(\d+) EUR`, Replacement: "€$1"}},
			}}}},
		})

		require.NoError(t, err)
		assert.Equal(t, map[string]interface{}{"price": "Price: €10, was 12 EUR"}, cells.Map())
	})

	t.Run("rejects an invalid replacement pattern", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><h1>a</h1></div></body>`)

		_, err := goquery.BuildBlockConfig(find(t, doc, "x"), &blockimport.CellsSpec{
			Fields: []blockimport.FieldSpec{{Name: "title", Value: blockimport.ValueSpec{Conditionals: []blockimport.Conditional{
				{Condition: "*", Value: blockimport.CellSpec{Value: "h1"}, Replace: &blockimport.Replace{Search: "(", Replacement: ""}},
			}}}},
		})

		assert.Equal(t, blockimport.EINVALID, blockimport.ErrorCode(err))
	})

	t.Run("returns empty cells for nil spec", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body></body>`)

		cells, err := goquery.BuildBlockConfig(doc, nil)

		require.NoError(t, err)
		assert.True(t, cells.IsEmpty())
	})
}

func TestBuildBlockCells(t *testing.T) {
	t.Parallel()

	t.Run("empty row list yields empty cells", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><p>a</p></div></body>`)

		cells, err := goquery.BuildBlockCells(find(t, doc, "x"), &blockimport.CellsSpec{Rows: []blockimport.RowSpec{}})

		require.NoError(t, err)
		assert.True(t, cells.IsEmpty())
	})

	t.Run("drops rows whose columns are all empty", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><p>a</p></div></body>`)

		cells, err := goquery.BuildBlockCells(find(t, doc, "x"), &blockimport.CellsSpec{Rows: []blockimport.RowSpec{
			{Columns: []blockimport.CellSpec{{Value: ".missing"}, {Value: ".none"}}},
			{Columns: []blockimport.CellSpec{{Value: "p"}}},
		}})

		require.NoError(t, err)
		require.Len(t, cells.Rows, 1)
		assert.Len(t, cells.Rows[0][0].Nodes, 1)
	})

	t.Run("single selector row yields one column per match", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><ul id="x"><li>1</li><li>2</li><li>3</li></ul></body>`)

		cells, err := goquery.BuildBlockCells(find(t, doc, "x"), &blockimport.CellsSpec{Rows: []blockimport.RowSpec{
			{Columns: []blockimport.CellSpec{{Value: "li"}}, Single: true},
		}})

		require.NoError(t, err)
		require.Len(t, cells.Rows, 1)
		assert.Len(t, cells.Rows[0], 3)
	})

	t.Run("array row holds all matches per column", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><h2>A</h2><p>1</p><p>2</p></div></body>`)

		cells, err := goquery.BuildBlockCells(find(t, doc, "x"), &blockimport.CellsSpec{Rows: []blockimport.RowSpec{
			{Columns: []blockimport.CellSpec{{Value: "Heading:"}, {Value: "h2"}, {Value: "p"}}},
		}})

		require.NoError(t, err)
		require.Len(t, cells.Rows, 1)
		row := cells.Rows[0]
		require.Len(t, row, 3)
		assert.Equal(t, "Heading:", row[0].Text)
		assert.Len(t, row[1].Nodes, 1)
		assert.Len(t, row[2].Nodes, 2)
	})

	t.Run("template columns are sanitized fragments", func(t *testing.T) {
		t.Parallel()

		doc := parseHTML(t, `<body><div id="x"><h1><em>Hi</em></h1></div></body>`)

		cells, err := goquery.BuildBlockCells(find(t, doc, "x"), &blockimport.CellsSpec{Rows: []blockimport.RowSpec{
			{Columns: []blockimport.CellSpec{{Value: `<strong>{{ h1 }}</strong><script>alert(1)</script>`}}},
		}})

		require.NoError(t, err)
		require.Len(t, cells.Rows, 1)
		nodes := cells.Rows[0][0].Nodes
		require.Len(t, nodes, 1)
		assert.Equal(t, "<strong><em>Hi</em></strong>", render(t, nodes[0]))
	})
}
