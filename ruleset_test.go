package blockimport_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRuleset(t *testing.T) {
	t.Parallel()

	rs := blockimport.NewRuleset()

	assert.Empty(t, rs.Root)
	assert.Equal(t, blockimport.DefaultIgnore, rs.Cleanup.IgnoreRules())
	require.Len(t, rs.Blocks, 1)
	meta := rs.Block(blockimport.MappingMetadata)
	require.NotNil(t, meta)
	assert.Equal(t, blockimport.InsertAppend, meta.Mode())

	out, err := json.Marshal(rs)
	require.NoError(t, err)
	assert.JSONEq(t, `{"cleanup":{"start":[]},"blocks":[{"type":"metadata","insertMode":"append","params":{"cells":{}}}]}`, string(out))
}

func TestBlockDefinition_Mode(t *testing.T) {
	t.Parallel()

	assert.Equal(t, blockimport.InsertReplace, (&blockimport.BlockDefinition{}).Mode())
	assert.Equal(t, blockimport.InsertReplace, (&blockimport.BlockDefinition{InsertMode: "sideways"}).Mode())
	assert.Equal(t, blockimport.InsertPrepend, (&blockimport.BlockDefinition{InsertMode: blockimport.InsertPrepend}).Mode())
}

func TestMergeParams(t *testing.T) {
	t.Parallel()

	cells := &blockimport.CellsSpec{}
	base := &blockimport.BlockParams{Options: map[string]string{"a": "1", "b": "1"}}
	over := &blockimport.BlockParams{Cells: cells, Options: map[string]string{"b": "2"}}

	got := blockimport.MergeParams(base, over)

	assert.Same(t, cells, got.Cells)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, got.Options)
	assert.Equal(t, map[string]string{"a": "1", "b": "1"}, base.Options)
	assert.Equal(t, "2", got.Option("b", "x"))
	assert.Equal(t, "x", got.Option("c", "x"))
	assert.Equal(t, "x", (*blockimport.BlockParams)(nil).Option("c", "x"))
}

func TestBlockParams_JSON(t *testing.T) {
	t.Parallel()

	data := `{"cells":{"title":"h1"},"items":".slide","count":3}`

	var p blockimport.BlockParams
	require.NoError(t, json.Unmarshal([]byte(data), &p))

	require.NotNil(t, p.Cells)
	assert.Equal(t, map[string]string{"items": ".slide"}, p.Options)

	out, err := json.Marshal(p)
	require.NoError(t, err)
	assert.Equal(t, `{"cells":{"title":"h1"},"items":".slide"}`, string(out))
}

func TestCleanupRule(t *testing.T) {
	t.Parallel()

	t.Run("text targets", func(t *testing.T) {
		t.Parallel()

		scope, target, ok := blockimport.CleanupRule{Selector: `p::text("Sponsored")`}.TextTarget()
		require.True(t, ok)
		assert.Equal(t, "p", scope)
		assert.Equal(t, "Sponsored", target)

		scope, target, ok = blockimport.CleanupRule{Selector: "::text(Ad)"}.TextTarget()
		require.True(t, ok)
		assert.Empty(t, scope)
		assert.Equal(t, "Ad", target)

		_, _, ok = blockimport.CleanupRule{Selector: ".ad"}.TextTarget()
		assert.False(t, ok)
	})

	t.Run("attribute names", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, "class", blockimport.CleanupRule{Property: "className", Value: "x"}.AttributeName())
		assert.Equal(t, "for", blockimport.CleanupRule{Property: "htmlFor", Value: "x"}.AttributeName())
		assert.Equal(t, "data-x", blockimport.CleanupRule{Attribute: "data-x", Value: "x"}.AttributeName())
	})

	t.Run("encodes selectors as strings and conditions as objects", func(t *testing.T) {
		t.Parallel()

		rules := []blockimport.CleanupRule{{Selector: ".ad"}, {Attribute: "class", Value: "promo"}}

		out, err := json.Marshal(rules)
		require.NoError(t, err)
		assert.Equal(t, `[".ad",{"attribute":"class","value":"promo"}]`, string(out))

		var decoded []blockimport.CleanupRule
		require.NoError(t, json.Unmarshal(out, &decoded))
		assert.Equal(t, rules, decoded)
	})
}
