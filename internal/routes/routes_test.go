package routes

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"encore/internal/collection"
	"encore/internal/domain/config"
	"encore/internal/ingest"
)

type stubSource struct {
	raws []ingest.RawEntry
}

func (s *stubSource) FetchEntries() ([]ingest.RawEntry, error) {
	return s.raws, nil
}

func testRaws(n int) []ingest.RawEntry {
	out := make([]ingest.RawEntry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, ingest.RawEntry{
			Front: ingest.FrontMatter{
				Title:       fmt.Sprintf("song %02d", i),
				Slug:        fmt.Sprintf("song-%02d", i),
				PublishDate: fmt.Sprintf("2024-01-%02d", i+1),
				Category:    "live",
				Tags:        []string{"rock"},
			},
			Rel: fmt.Sprintf("song-%02d.md", i),
		})
	}
	return out
}

func testBuilder(n, perPage int) *Builder {
	cfg := config.Default().Songs
	cfg.EntriesPerPage = perPage
	loader := collection.NewLoader(&stubSource{raws: testRaws(n)}, collection.Options{
		PermalinkPattern: cfg.Post.Pattern,
		Now:              time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return &Builder{Loader: loader, Cfg: cfg}
}

func TestListPathsPagination(t *testing.T) {
	b := testBuilder(7, 3)

	keys, err := b.ListPaths()
	require.NoError(t, err)

	// ceil(7/3) = 3 页，最后一页放余数
	require.Len(t, keys, 3)
	assert.Equal(t, "songs", keys[0].Path)
	assert.Equal(t, "songs/2", keys[1].Path)
	assert.Equal(t, "songs/3", keys[2].Path)

	assert.Len(t, keys[0].Props.Entries, 3)
	assert.Len(t, keys[1].Props.Entries, 3)
	assert.Len(t, keys[2].Props.Entries, 1)

	require.NotNil(t, keys[2].Page)
	assert.Equal(t, 3, keys[2].Page.Current)
	assert.Equal(t, 3, keys[2].Page.TotalPages)
	assert.Equal(t, 7, keys[2].Page.TotalEntries)
}

func TestDisabledRoutesEmitNothing(t *testing.T) {
	b := testBuilder(5, 3)
	b.Cfg.List.Enabled = false
	b.Cfg.Post.Enabled = false
	b.Cfg.Category.Enabled = false
	b.Cfg.Tag.Enabled = false

	for name, fn := range map[string]func() ([]PageKey, error){
		"list":     b.ListPaths,
		"post":     b.PostPaths,
		"category": b.CategoryPaths,
		"tag":      b.TagPaths,
	} {
		keys, err := fn()
		require.NoError(t, err, name)
		assert.Empty(t, keys, name)
	}
}

func TestPostPathsKeyedByPermalink(t *testing.T) {
	b := testBuilder(2, 10)

	keys, err := b.PostPaths()
	require.NoError(t, err)
	require.Len(t, keys, 2)

	assert.Equal(t, "songs/song-00", keys[0].Path)
	assert.Equal(t, "songs/song-00", keys[0].Params["permalink"])
	require.NotNil(t, keys[0].Props.Entry)
	assert.Equal(t, "song-00", keys[0].Props.Entry.Slug)
	assert.Nil(t, keys[0].Page)
}

func TestCategoryAndTagPaths(t *testing.T) {
	b := testBuilder(4, 2)

	catKeys, err := b.CategoryPaths()
	require.NoError(t, err)
	require.Len(t, catKeys, 2) // 4 entries, page size 2
	assert.Equal(t, "category/live", catKeys[0].Path)
	assert.Equal(t, "category/live/2", catKeys[1].Path)
	require.NotNil(t, catKeys[0].Props.Category)
	assert.Equal(t, "live", catKeys[0].Props.Category.Slug)

	tagKeys, err := b.TagPaths()
	require.NoError(t, err)
	require.Len(t, tagKeys, 2)
	assert.Equal(t, "tag/rock", tagKeys[0].Path)
	require.NotNil(t, tagKeys[0].Props.Tag)
	assert.Equal(t, "rock", tagKeys[0].Props.Tag.Slug)
	// tag 页默认 noindex
	assert.False(t, tagKeys[0].Props.Robots.Index)
	assert.True(t, tagKeys[0].Props.Robots.Follow)
}

func TestTagFilterExcludesNonMatching(t *testing.T) {
	raws := testRaws(3)
	raws[1].Front.Tags = []string{"jazz"}

	cfg := config.Default().Songs
	loader := collection.NewLoader(&stubSource{raws: raws}, collection.Options{
		PermalinkPattern: cfg.Post.Pattern,
		Now:              time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	b := &Builder{Loader: loader, Cfg: cfg}

	keys, err := b.TagPaths()
	require.NoError(t, err)

	byPath := map[string]PageKey{}
	for _, k := range keys {
		byPath[k.Path] = k
	}
	require.Contains(t, byPath, "tag/rock")
	require.Contains(t, byPath, "tag/jazz")
	assert.Len(t, byPath["tag/rock"].Props.Entries, 2)
	assert.Len(t, byPath["tag/jazz"].Props.Entries, 1)
}
