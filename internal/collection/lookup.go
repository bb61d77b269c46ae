package collection

import "encore/internal/domain/content"

const DefaultLatestCount = 4

// FindBySlugs returns the entries whose slug appears in slugs, in the
// order of the input, not the collection. Unmatched slugs are skipped.
func (l *Loader) FindBySlugs(slugs []string) ([]content.Entry, error) {
	if len(slugs) == 0 {
		return nil, nil
	}
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}
	bySlug := make(map[string]content.Entry, len(entries))
	for _, e := range entries {
		bySlug[e.Slug] = e
	}
	var out []content.Entry
	for _, s := range slugs {
		if e, ok := bySlug[s]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindByIDs is FindBySlugs keyed by ID.
func (l *Loader) FindByIDs(ids []string) ([]content.Entry, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}
	byID := make(map[string]content.Entry, len(entries))
	for _, e := range entries {
		byID[e.ID] = e
	}
	var out []content.Entry
	for _, id := range ids {
		if e, ok := byID[id]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// FindLatest returns the first count entries of the date-ascending
// collection; count <= 0 falls back to DefaultLatestCount.
func (l *Loader) FindLatest(count int) ([]content.Entry, error) {
	if count <= 0 {
		count = DefaultLatestCount
	}
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}
	if count > len(entries) {
		count = len(entries)
	}
	return entries[:count], nil
}

// Categories builds the category-slug index. Two raw titles that slugify
// identically collide into one relation; last write wins.
func (l *Loader) Categories() (map[string]content.Taxonomy, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]content.Taxonomy)
	for _, e := range entries {
		if e.HasCategory() {
			out[e.Category.Slug] = *e.Category
		}
	}
	return out, nil
}

// Tags builds the tag-slug index, same collision policy as Categories.
func (l *Loader) Tags() (map[string]content.Taxonomy, error) {
	entries, err := l.Load()
	if err != nil {
		return nil, err
	}
	out := make(map[string]content.Taxonomy)
	for _, e := range entries {
		for _, t := range e.Tags {
			out[t.Slug] = t
		}
	}
	return out, nil
}
