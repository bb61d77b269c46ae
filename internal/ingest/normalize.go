package ingest

import (
	"path"
	"strings"
	"time"

	"encore/internal/domain/content"
	"encore/internal/permalink"
)

type NormalizeOptions struct {
	// PermalinkPattern is the post-route pattern ("songs/%slug%").
	PermalinkPattern string
	// Now is the fallback publish date for entries that carry none.
	Now time.Time
}

// Normalize maps one raw record into the canonical Entry shape. Missing
// optional fields are defaulted, never rejected.
func Normalize(raw RawEntry, opt NormalizeOptions) content.Entry {
	fm := raw.Front

	slug := permalink.CleanSlug(fm.Slug)
	if slug == "" {
		slug = permalink.CleanSlug(fm.Title)
	}
	if slug == "" {
		slug = permalink.CleanSlug(stem(raw.Rel))
	}

	id := strings.TrimSpace(fm.ID)
	if id == "" {
		// 用相对路径（去扩展名）当稳定 ID
		id = stem(raw.Rel)
	}

	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	publish := ParseTime(fm.PublishDate)
	if publish.IsZero() {
		publish = now
	}
	update := ParseTime(fm.UpdateDate)

	var category *content.Taxonomy
	catSlug := ""
	if c := strings.TrimSpace(fm.Category); c != "" {
		catSlug = permalink.CleanSlug(c)
		category = &content.Taxonomy{Slug: catSlug, Title: c}
	}

	var tags []content.Taxonomy
	for _, t := range fm.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		tags = append(tags, content.Taxonomy{Slug: permalink.CleanSlug(t), Title: t})
	}

	e := content.Entry{
		ID:   id,
		Slug: slug,
		Permalink: permalink.Generate(opt.PermalinkPattern, permalink.Vars{
			Slug:     slug,
			ID:       id,
			Category: catSlug,
			Date:     publish,
		}),
		PublishDate: publish,
		UpdateDate:  update,
		Title:       fm.Title,
		Excerpt:     fm.Excerpt,
		Image:       fm.Image,
		Author:      fm.Author,
		Category:    category,
		Tags:        tags,
		Draft:       fm.Draft,
		Metadata:    fm.Metadata,
		Body: content.BodyRef{
			SourcePath:  raw.Path,
			ContentHash: raw.Hash,
		},
	}
	e.Normalize()
	return e
}

func stem(rel string) string {
	base := path.Base(rel)
	return strings.TrimSuffix(base, path.Ext(base))
}
