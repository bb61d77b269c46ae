package content

import (
	"strings"
	"time"
)

// Taxonomy 是 category / tag 的统一形态：slug 用于路由，title 用于展示
type Taxonomy struct {
	Slug  string
	Title string
}

type Entry struct {
	ID        string
	Slug      string
	Permalink string

	PublishDate time.Time
	UpdateDate  time.Time

	Title   string
	Excerpt string
	Image   string
	Author  string

	Category *Taxonomy
	Tags     []Taxonomy

	Draft bool

	// 透传字段，core 不解释
	Metadata map[string]any

	Body BodyRef
}

type BodyRef struct {
	SourcePath  string
	ContentHash string
}

func (e *Entry) Normalize() {
	e.ID = strings.TrimSpace(e.ID)
	e.Slug = strings.TrimSpace(e.Slug)
	e.Title = strings.TrimSpace(e.Title)
	e.Excerpt = strings.TrimSpace(e.Excerpt)
	e.Author = strings.TrimSpace(e.Author)

	if e.Category != nil {
		e.Category.Title = strings.TrimSpace(e.Category.Title)
		if e.Category.Slug == "" || e.Category.Title == "" {
			e.Category = nil
		}
	}
	e.Tags = dedupeTaxonomies(e.Tags)
}

// HasCategory reports whether the entry carries a usable category relation.
func (e *Entry) HasCategory() bool {
	return e.Category != nil && e.Category.Slug != ""
}

// TagSlugs returns the tag slugs in declaration order.
func (e *Entry) TagSlugs() []string {
	if len(e.Tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(e.Tags))
	for _, t := range e.Tags {
		out = append(out, t.Slug)
	}
	return out
}

func dedupeTaxonomies(items []Taxonomy) []Taxonomy {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]Taxonomy, 0, len(items))
	for _, item := range items {
		item.Title = strings.TrimSpace(item.Title)
		if item.Slug == "" {
			continue
		}
		if _, ok := seen[item.Slug]; ok {
			continue
		}
		seen[item.Slug] = struct{}{}
		out = append(out, item)
	}
	return out
}
