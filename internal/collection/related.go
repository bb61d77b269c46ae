package collection

import (
	"sort"

	"encore/internal/domain/content"
)

const DefaultRelatedCount = 4

const (
	scoreSharedCategory = 5
	scoreSharedTag      = 1
)

// Related ranks every other cached entry against ref: shared category
// slug scores 5, each shared tag slug scores 1 (no cap). Ties keep the
// cache order, i.e. ascending publish date. max <= 0 falls back to
// DefaultRelatedCount.
func (l *Loader) Related(ref content.Entry, max int) ([]content.Entry, error) {
	if max <= 0 {
		max = DefaultRelatedCount
	}
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}

	refTags := make(map[string]struct{}, len(ref.Tags))
	for _, slug := range ref.TagSlugs() {
		refTags[slug] = struct{}{}
	}

	type candidate struct {
		entry content.Entry
		score int
	}
	cands := make([]candidate, 0, len(entries))
	for _, e := range entries {
		if e.Slug == ref.Slug {
			continue
		}
		score := 0
		if ref.HasCategory() && e.HasCategory() && e.Category.Slug == ref.Category.Slug {
			score += scoreSharedCategory
		}
		for _, t := range e.Tags {
			if _, ok := refTags[t.Slug]; ok {
				score += scoreSharedTag
			}
		}
		cands = append(cands, candidate{entry: e, score: score})
	}

	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].score > cands[j].score
	})

	if max > len(cands) {
		max = len(cands)
	}
	out := make([]content.Entry, 0, max)
	for _, c := range cands[:max] {
		out = append(out, c.entry)
	}
	return out, nil
}
