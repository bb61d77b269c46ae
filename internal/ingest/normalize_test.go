package ingest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC)

func normOpts() NormalizeOptions {
	return NormalizeOptions{
		PermalinkPattern: "songs/%year%/%month%/%slug%",
		Now:              testNow,
	}
}

func TestNormalizeFullRecord(t *testing.T) {
	raw := RawEntry{
		Front: FrontMatter{
			ID:          "song-1",
			Title:       "Opening Night",
			Slug:        "003.opening-night",
			PublishDate: "2024-03-05",
			UpdateDate:  "2024-04-01",
			Category:    "Live Shows",
			Tags:        []string{"Rock", "90s"},
			Excerpt:     "the one that started it",
		},
		Rel:  "003.opening-night.md",
		Path: "source/songs/003.opening-night.md",
		Hash: "abc",
	}

	e := Normalize(raw, normOpts())

	assert.Equal(t, "song-1", e.ID)
	assert.Equal(t, "opening-night", e.Slug)
	assert.Equal(t, "songs/2024/03/opening-night", e.Permalink)
	assert.Equal(t, 2024, e.PublishDate.Year())
	assert.Equal(t, time.April, e.UpdateDate.Month())

	require.NotNil(t, e.Category)
	assert.Equal(t, "live-shows", e.Category.Slug)
	assert.Equal(t, "Live Shows", e.Category.Title)

	require.Len(t, e.Tags, 2)
	assert.Equal(t, "rock", e.Tags[0].Slug)
	assert.Equal(t, "Rock", e.Tags[0].Title)
	assert.Equal(t, "90s", e.Tags[1].Slug)

	assert.Equal(t, "source/songs/003.opening-night.md", e.Body.SourcePath)
	assert.Equal(t, "abc", e.Body.ContentHash)
}

func TestNormalizeDefaults(t *testing.T) {
	raw := RawEntry{
		Front: FrontMatter{Title: "Untitled Demo"},
		Rel:   "demos/02.untitled-demo.md",
	}

	e := Normalize(raw, normOpts())

	// publish date 缺省用注入的 Now
	assert.Equal(t, testNow, e.PublishDate)
	assert.True(t, e.UpdateDate.IsZero())
	assert.Nil(t, e.Category)
	assert.Empty(t, e.Tags)
	assert.False(t, e.Draft)

	// slug 从 title 推导，id 从相对路径推导
	assert.Equal(t, "untitled-demo", e.Slug)
	assert.Equal(t, "02.untitled-demo", e.ID)
}

func TestNormalizeSlugFallbackToPath(t *testing.T) {
	raw := RawEntry{Rel: "songs/010.first-chord.md"}

	e := Normalize(raw, normOpts())
	assert.Equal(t, "first-chord", e.Slug)
}

func TestNormalizeInvalidDateFallsBack(t *testing.T) {
	raw := RawEntry{
		Front: FrontMatter{Slug: "x", PublishDate: "???"},
		Rel:   "x.md",
	}
	e := Normalize(raw, normOpts())
	assert.Equal(t, testNow, e.PublishDate)
}

func TestNormalizeSkipsBlankTags(t *testing.T) {
	raw := RawEntry{
		Front: FrontMatter{Slug: "x", Tags: []string{" ", "rock", ""}},
		Rel:   "x.md",
	}
	e := Normalize(raw, normOpts())
	require.Len(t, e.Tags, 1)
	assert.Equal(t, "rock", e.Tags[0].Slug)
}
