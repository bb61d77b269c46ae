package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarkdownRender(t *testing.T) {
	r := NewMarkdownRenderer()

	src := []byte("# Setlist\n\nsome *intro*\n\n## Encore\n\n| a | b |\n|---|---|\n| 1 | 2 |\n")
	res, err := r.Render(src)
	require.NoError(t, err)

	html := string(res.HTML)
	assert.Contains(t, html, "<em>intro</em>")
	assert.Contains(t, html, "<table>")

	require.Len(t, res.Headings, 2)
	assert.Equal(t, 1, res.Headings[0].Level)
	assert.Equal(t, "Setlist", res.Headings[0].Text)
	assert.Equal(t, "Encore", res.Headings[1].Text)
	assert.NotEmpty(t, res.Headings[0].ID)
}
