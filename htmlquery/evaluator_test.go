package htmlquery_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/htmlquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestEvaluator_Evaluate(t *testing.T) {
	t.Parallel()

	doc, err := html.Parse(strings.NewReader(`<body><div><p>a</p><p id="b">b</p></div></body>`))
	require.NoError(t, err)

	e := htmlquery.NewEvaluator()

	t.Run("returns nodes for an indexed path", func(t *testing.T) {
		t.Parallel()

		nodes, err := e.Evaluate(doc, "/html[1]/body[1]/div[1]/p[2]")

		require.NoError(t, err)
		require.Len(t, nodes, 1)
		assert.Equal(t, "b", nodes[0].FirstChild.Data)
	})

	t.Run("returns every match", func(t *testing.T) {
		t.Parallel()

		nodes, err := e.Evaluate(doc, "//p")

		require.NoError(t, err)
		assert.Len(t, nodes, 2)
	})

	t.Run("drops non-element results", func(t *testing.T) {
		t.Parallel()

		nodes, err := e.Evaluate(doc, "//p/text()")

		require.NoError(t, err)
		assert.Empty(t, nodes)
	})

	t.Run("rejects invalid expressions", func(t *testing.T) {
		t.Parallel()

		_, err := e.Evaluate(doc, "//p[")

		assert.Equal(t, blockimport.EINVALID, blockimport.ErrorCode(err))
	})
}
