package render

import (
	"html/template"
	"time"

	"encore/internal/domain/config"
	"encore/internal/domain/content"
)

type Heading struct {
	Level int
	ID    string
	Text  string
}

// LandingPage 是营销首页：hero / features / testimonials 都在模板里，
// 这里只喂站点信息和最新歌曲
type LandingPage struct {
	Site      config.SiteConfig
	Latest    []content.Entry
	Generated time.Time
	PageTitle string
}

type ListPage struct {
	Site     config.SiteConfig
	Title    string
	Entries  []content.Entry
	Category *content.Taxonomy
	Tag      *content.Taxonomy
	Robots   config.RobotsConfig

	// pagination
	Current      int
	TotalPages   int
	TotalEntries int
	BasePath     string

	Generated time.Time
}

type PostPage struct {
	Site    config.SiteConfig
	Entry   content.Entry
	HTML    template.HTML
	TOC     []Heading
	Related []content.Entry
	Robots  config.RobotsConfig
	IsDraft bool
}

type NotFoundPage struct {
	Site config.SiteConfig
	Path string
}
