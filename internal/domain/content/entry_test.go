package content

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeDropsEmptyCategory(t *testing.T) {
	e := Entry{
		Slug:     " my-song ",
		Title:    "  My Song ",
		Category: &Taxonomy{Slug: "live", Title: "  "},
	}
	e.Normalize()

	assert.Equal(t, "my-song", e.Slug)
	assert.Equal(t, "My Song", e.Title)
	assert.Nil(t, e.Category)
	assert.False(t, e.HasCategory())
}

func TestNormalizeDedupesTags(t *testing.T) {
	e := Entry{
		Tags: []Taxonomy{
			{Slug: "rock", Title: "Rock"},
			{Slug: "rock", Title: "rock again"},
			{Slug: "", Title: "blank"},
			{Slug: "90s", Title: " 90s "},
		},
	}
	e.Normalize()

	require.Len(t, e.Tags, 2)
	assert.Equal(t, "Rock", e.Tags[0].Title)
	assert.Equal(t, "90s", e.Tags[1].Title)
	assert.Equal(t, []string{"rock", "90s"}, e.TagSlugs())
}
