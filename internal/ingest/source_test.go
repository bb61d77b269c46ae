package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSong(t *testing.T, dir, rel, body string) {
	t.Helper()
	full := filepath.Join(dir, rel)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
}

func TestFSSourceFetchEntries(t *testing.T) {
	dir := t.TempDir()
	writeSong(t, dir, "001.first.md", "---\ntitle: First\n---\nhello")
	writeSong(t, dir, "nested/002.second.markdown", "---\ntitle: Second\n---\nworld")
	writeSong(t, dir, "notes.txt", "ignored")
	writeSong(t, dir, "bare.md", "no frontmatter at all")

	raws, err := FSSource{Dir: dir}.FetchEntries()
	require.NoError(t, err)
	require.Len(t, raws, 3)

	byRel := map[string]RawEntry{}
	for _, r := range raws {
		byRel[r.Rel] = r
	}

	first := byRel["001.first.md"]
	assert.Equal(t, "First", first.Front.Title)
	assert.Equal(t, "hello", string(first.Body))
	assert.NotEmpty(t, first.Hash)

	require.Contains(t, byRel, "nested/002.second.markdown")

	// 没有 frontmatter：整个文件当正文
	bare := byRel["bare.md"]
	assert.Equal(t, FrontMatter{}, bare.Front)
	assert.Equal(t, "no frontmatter at all", string(bare.Body))
}

func TestFSSourceInvalidFrontMatterIsFatal(t *testing.T) {
	dir := t.TempDir()
	writeSong(t, dir, "bad.md", "---\ntitle: [unclosed\n---\nbody")

	_, err := FSSource{Dir: dir}.FetchEntries()
	assert.Error(t, err)
}

func TestDiscoverSourceMissingDir(t *testing.T) {
	_, err := DiscoverSource(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
