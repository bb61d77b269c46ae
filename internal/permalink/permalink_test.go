package permalink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTrimSlash(t *testing.T) {
	assert.Equal(t, "a", TrimSlash("/a/"))
	assert.Equal(t, "a/b", TrimSlash("/a/b"))
	assert.Equal(t, "", TrimSlash(""))
	assert.Equal(t, "", TrimSlash("///"))
}

func TestCleanSlug(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"003.my-song", "my-song"},
		{"my-song", "my-song"},
		{"/songs/010.opening-night/", "opening-night"},
		{"Hello World", "hello-world"},
		{"1999", "1999"},
		{"", ""},
		{"///", ""},
		{"12.", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, CleanSlug(c.in), "input %q", c.in)
	}
}

func TestGenerate(t *testing.T) {
	date := time.Date(2024, 3, 5, 7, 9, 2, 0, time.UTC)

	got := Generate("%year%/%month%/%slug%", Vars{Slug: "hello", Date: date})
	assert.Equal(t, "2024/03/hello", got)

	got = Generate("/songs/%category%/%slug%/", Vars{Slug: "hello", Date: date})
	assert.Equal(t, "songs/hello", got, "missing category collapses its segment")

	got = Generate("%year%/%month%/%day%/%hour%/%minute%/%second%", Vars{Date: date})
	assert.Equal(t, "2024/03/05/07/09/02", got)

	got = Generate("songs/%id%", Vars{ID: "abc-123", Date: date})
	assert.Equal(t, "songs/abc-123", got)
}
