package ingest

import (
	"fmt"
	"os"
)

// RawEntry 是归一化之前的原始记录：frontmatter + 正文 + 来源信息
type RawEntry struct {
	Front FrontMatter
	Body  []byte
	Path  string
	Rel   string
	Hash  string
}

// FSSource reads the songs collection off the filesystem. It is the
// "fetch all entries of a named collection" boundary: it returns raw
// records only, normalization happens in the collection loader.
type FSSource struct {
	Dir string
}

func (s FSSource) FetchEntries() ([]RawEntry, error) {
	files, err := DiscoverSource(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("discover %s: %w", s.Dir, err)
	}

	out := make([]RawEntry, 0, len(files))
	for _, sf := range files {
		raw, err := os.ReadFile(sf.Path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", sf.Path, err)
		}

		fm, body, fmErr := ParseFrontMatter(raw)
		if fmErr != nil {
			if fmErr != errNoFrontMatter {
				return nil, fmt.Errorf("front matter %s: %w", sf.Path, fmErr)
			}
			// 没有 frontmatter：整个文件当正文
			fm = FrontMatter{}
			body = raw
		}

		out = append(out, RawEntry{
			Front: fm,
			Body:  body,
			Path:  sf.Path,
			Rel:   sf.Rel,
			Hash:  HashBytes(raw),
		})
	}
	return out, nil
}
