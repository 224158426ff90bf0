package blockimport_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// validator accepts selectors that contain no spaces and no colon.
var validator = &mock.SelectorValidator{
	IsValidFn: func(s string) bool {
		for _, r := range s {
			if r == ' ' || r == ':' {
				return false
			}
		}
		return s != ""
	},
}

func TestParseValueSelector(t *testing.T) {
	t.Parallel()

	tests := []struct {
		raw  string
		want blockimport.ValueSelector
	}{
		{raw: "h1", want: blockimport.ValueSelector{Selector: "h1"}},
		{raw: "h1::text", want: blockimport.ValueSelector{Selector: "h1", Text: true}},
		{raw: "dt + ::text", want: blockimport.ValueSelector{Selector: "dt", Text: true, SiblingText: true}},
		{raw: "dt::text + *", want: blockimport.ValueSelector{Selector: "dt", Text: true, SiblingText: true}},
		{raw: "img[src]", want: blockimport.ValueSelector{Selector: "img", Attribute: "src"}},
		{raw: ".card a[data-href]", want: blockimport.ValueSelector{Selector: ".card a", Attribute: "data-href"}},
		{raw: "[src]", want: blockimport.ValueSelector{Selector: "[src]"}},
		{raw: `a[href="/x"]`, want: blockimport.ValueSelector{Selector: `a[href="/x"]`}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, blockimport.ParseValueSelector(tt.raw), "ParseValueSelector(%q)", tt.raw)
	}
}

func TestClassifySpec(t *testing.T) {
	t.Parallel()

	assert.Equal(t, blockimport.KindTemplate, blockimport.ClassifySpec("{{ h1 }} - Site", validator).Kind)
	assert.Equal(t, blockimport.KindSelector, blockimport.ClassifySpec("h1", validator).Kind)
	assert.Equal(t, blockimport.KindSelector, blockimport.ClassifySpec("img[src]", validator).Kind)
	assert.Equal(t, blockimport.KindLiteral, blockimport.ClassifySpec("Our Products", validator).Kind)
	assert.Equal(t, blockimport.KindLiteral, blockimport.ClassifySpec("", validator).Kind)
	assert.Equal(t, blockimport.KindLiteral, blockimport.ClassifySpec("h1", nil).Kind)
	assert.Equal(t, "selector", blockimport.KindSelector.String())
}

func TestCellsSpec_JSON(t *testing.T) {
	t.Parallel()

	t.Run("object form keeps field order", func(t *testing.T) {
		t.Parallel()

		data := `{"title":"h1","template":[[".promo","Promotion",{"replace":["^P","p"]}],["*","Article"]],"author":".byline"}`

		var spec blockimport.CellsSpec
		require.NoError(t, json.Unmarshal([]byte(data), &spec))

		require.False(t, spec.IsGrid())
		require.Len(t, spec.Fields, 3)
		assert.Equal(t, "title", spec.Fields[0].Name)
		assert.Equal(t, "template", spec.Fields[1].Name)
		assert.Equal(t, "author", spec.Fields[2].Name)

		v, ok := spec.Field("template")
		require.True(t, ok)
		require.True(t, v.IsConditional())
		assert.Equal(t, &blockimport.Replace{Search: "^P", Replacement: "p"}, v.Conditionals[0].Replace)
		assert.True(t, v.Conditionals[1].Always())

		out, err := json.Marshal(spec)
		require.NoError(t, err)
		assert.Equal(t, data, string(out))
	})

	t.Run("grid form accepts strings and arrays", func(t *testing.T) {
		t.Parallel()

		data := `[".slide",["Heading","h2"],[]]`

		var spec blockimport.CellsSpec
		require.NoError(t, json.Unmarshal([]byte(data), &spec))

		require.True(t, spec.IsGrid())
		require.Len(t, spec.Rows, 3)
		assert.True(t, spec.Rows[0].Single)
		assert.Len(t, spec.Rows[1].Columns, 2)
		assert.Empty(t, spec.Rows[2].Columns)

		out, err := json.Marshal(spec)
		require.NoError(t, err)
		assert.Equal(t, data, string(out))
	})

	t.Run("empty grid stays a grid", func(t *testing.T) {
		t.Parallel()

		var spec blockimport.CellsSpec
		require.NoError(t, json.Unmarshal([]byte(`[]`), &spec))

		assert.True(t, spec.IsGrid())
	})

	t.Run("rejects malformed conditionals", func(t *testing.T) {
		t.Parallel()

		var spec blockimport.CellsSpec
		err := json.Unmarshal([]byte(`{"title":[["only-condition"]]}`), &spec)

		assert.Error(t, err)
	})
}

func TestCellsSpec_SetField(t *testing.T) {
	t.Parallel()

	spec := &blockimport.CellsSpec{}
	spec.SetField("title", blockimport.ValueSpec{Spec: blockimport.CellSpec{Value: "h1"}})
	spec.SetField("title", blockimport.ValueSpec{Spec: blockimport.CellSpec{Value: "h2"}})

	require.Len(t, spec.Fields, 1)
	assert.Equal(t, "h2", spec.Fields[0].Value.Spec.Value)
}
