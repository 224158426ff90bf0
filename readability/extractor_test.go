package readability_test

import (
	"strings"
	"testing"

	"github.com/fwojciec/blockimport"
	"github.com/fwojciec/blockimport/readability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

func TestExtractor_RejectsNilDocument(t *testing.T) {
	t.Parallel()

	_, err := readability.NewExtractor().Extract(nil)

	require.Error(t, err)
	assert.Equal(t, blockimport.EINVALID, blockimport.ErrorCode(err))
}

func TestExtractor_ExtractsTitle(t *testing.T) {
	t.Parallel()

	doc, err := html.Parse(strings.NewReader(`<!DOCTYPE html>
<html>
<head><title>Page Title</title></head>
<body><article><p>Content</p></article></body>
</html>`))
	require.NoError(t, err)

	fields, err := readability.NewExtractor().Extract(doc)

	require.NoError(t, err)
	require.NotEmpty(t, fields)
	assert.Equal(t, "Title", fields[0].Name)
	assert.Equal(t, "Page Title", fields[0].Value())
}

func TestExtractor_LeavesDocumentIntact(t *testing.T) {
	t.Parallel()

	doc, err := html.Parse(strings.NewReader(`<html><head><title>T</title></head><body><nav>Menu</nav><article><p>Content</p></article></body></html>`))
	require.NoError(t, err)

	_, err = readability.NewExtractor().Extract(doc)
	require.NoError(t, err)

	var out strings.Builder
	require.NoError(t, html.Render(&out, doc))
	assert.Contains(t, out.String(), "<nav>Menu</nav>")
}
