package routes

import (
	"fmt"
	"sort"

	"encore/internal/collection"
	"encore/internal/domain/config"
	"encore/internal/domain/content"
	"encore/internal/permalink"
)

// Params are the route parameters handed to the static generator.
type Params map[string]string

// PageMeta describes one page of a paginated listing.
type PageMeta struct {
	Current      int
	TotalPages   int
	Size         int
	TotalEntries int
}

type Props struct {
	Entries  []content.Entry
	Entry    *content.Entry
	Category *content.Taxonomy
	Tag      *content.Taxonomy
	Robots   config.RobotsConfig
}

// PageKey 是一个静态页面的生成单元：路径 + 参数 + 渲染数据
type PageKey struct {
	Path   string
	Params Params
	Props  Props
	Page   *PageMeta
}

type Builder struct {
	Loader *collection.Loader
	Cfg    config.SongsConfig
}

// ListPaths emits one page key per listing page ("songs", "songs/2", …).
// Returns nil when the list route is disabled.
func (b *Builder) ListPaths() ([]PageKey, error) {
	if !b.Cfg.List.Enabled {
		return nil, nil
	}
	entries, err := b.Loader.Load()
	if err != nil {
		return nil, err
	}
	base := permalink.TrimSlash(b.Cfg.List.Pattern)

	var keys []PageKey
	for _, pg := range paginate(entries, b.Cfg.EntriesPerPage) {
		keys = append(keys, PageKey{
			Path:   pagePath(base, pg.Current),
			Params: Params{"page": fmt.Sprint(pg.Current)},
			Props: Props{
				Entries: pg.Entries,
				Robots:  b.Cfg.List.Robots,
			},
			Page: pg.Meta(),
		})
	}
	return keys, nil
}

// PostPaths emits one page key per entry, keyed by its permalink.
func (b *Builder) PostPaths() ([]PageKey, error) {
	if !b.Cfg.Post.Enabled {
		return nil, nil
	}
	entries, err := b.Loader.Load()
	if err != nil {
		return nil, err
	}
	keys := make([]PageKey, 0, len(entries))
	for _, e := range entries {
		e := e
		keys = append(keys, PageKey{
			Path:   e.Permalink,
			Params: Params{"permalink": e.Permalink},
			Props: Props{
				Entry:  &e,
				Robots: b.Cfg.Post.Robots,
			},
		})
	}
	return keys, nil
}

// CategoryPaths emits paginated page keys per distinct category.
func (b *Builder) CategoryPaths() ([]PageKey, error) {
	if !b.Cfg.Category.Enabled {
		return nil, nil
	}
	entries, err := b.Loader.Load()
	if err != nil {
		return nil, err
	}
	cats, err := b.Loader.Categories()
	if err != nil {
		return nil, err
	}
	base := permalink.TrimSlash(b.Cfg.Category.Pattern)

	var keys []PageKey
	for _, slug := range sortedKeys(cats) {
		cat := cats[slug]
		var matched []content.Entry
		for _, e := range entries {
			if e.HasCategory() && e.Category.Slug == slug {
				matched = append(matched, e)
			}
		}
		for _, pg := range paginate(matched, b.Cfg.EntriesPerPage) {
			cat := cat
			keys = append(keys, PageKey{
				Path:   pagePath(base+"/"+slug, pg.Current),
				Params: Params{"category": slug, "page": fmt.Sprint(pg.Current)},
				Props: Props{
					Entries:  pg.Entries,
					Category: &cat,
					Robots:   b.Cfg.Category.Robots,
				},
				Page: pg.Meta(),
			})
		}
	}
	return keys, nil
}

// TagPaths emits paginated page keys per distinct tag.
func (b *Builder) TagPaths() ([]PageKey, error) {
	if !b.Cfg.Tag.Enabled {
		return nil, nil
	}
	entries, err := b.Loader.Load()
	if err != nil {
		return nil, err
	}
	tags, err := b.Loader.Tags()
	if err != nil {
		return nil, err
	}
	base := permalink.TrimSlash(b.Cfg.Tag.Pattern)

	var keys []PageKey
	for _, slug := range sortedKeys(tags) {
		tag := tags[slug]
		var matched []content.Entry
		for _, e := range entries {
			for _, t := range e.Tags {
				if t.Slug == slug {
					matched = append(matched, e)
					break
				}
			}
		}
		for _, pg := range paginate(matched, b.Cfg.EntriesPerPage) {
			tag := tag
			keys = append(keys, PageKey{
				Path:   pagePath(base+"/"+slug, pg.Current),
				Params: Params{"tag": slug, "page": fmt.Sprint(pg.Current)},
				Props: Props{
					Entries: pg.Entries,
					Tag:     &tag,
					Robots:  b.Cfg.Tag.Robots,
				},
				Page: pg.Meta(),
			})
		}
	}
	return keys, nil
}

type page struct {
	Entries      []content.Entry
	Current      int
	TotalPages   int
	Size         int
	TotalEntries int
}

func (p page) Meta() *PageMeta {
	return &PageMeta{
		Current:      p.Current,
		TotalPages:   p.TotalPages,
		Size:         p.Size,
		TotalEntries: p.TotalEntries,
	}
}

// paginate partitions entries into ceil(N/P) groups; the last page
// holds the remainder. Empty input still yields a single empty page so
// the listing root exists.
func paginate(entries []content.Entry, size int) []page {
	if size <= 0 {
		size = 1
	}
	total := (len(entries) + size - 1) / size
	if total == 0 {
		total = 1
	}
	pages := make([]page, 0, total)
	for i := 0; i < total; i++ {
		lo := i * size
		hi := lo + size
		if hi > len(entries) {
			hi = len(entries)
		}
		pages = append(pages, page{
			Entries:      entries[lo:hi],
			Current:      i + 1,
			TotalPages:   total,
			Size:         size,
			TotalEntries: len(entries),
		})
	}
	return pages
}

func pagePath(base string, current int) string {
	if current <= 1 {
		return base
	}
	return fmt.Sprintf("%s/%d", base, current)
}

func sortedKeys(m map[string]content.Taxonomy) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
