package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	domainerr "encore/internal/domain/errors"
)

type Config struct {
	Site  SiteConfig  `yaml:"site"`
	Build BuildConfig `yaml:"build"`
	Songs SongsConfig `yaml:"songs"`
}

type SiteConfig struct {
	Title       string `yaml:"title"`
	Subtitle    string `yaml:"subtitle"`
	Author      string `yaml:"author"`
	SiteURL     string `yaml:"site_url"`
	Theme       string `yaml:"themes"`
	Language    string `yaml:"language"`
	Description string `yaml:"description"`
}

type BuildConfig struct {
	SourceDir    string    `yaml:"source_dir"`
	PublicDir    string    `yaml:"public_dir"`
	ThemeDir     string    `yaml:"theme_dir"`
	BasePath     string    `yaml:"base_path"`
	IncludeDraft bool      `yaml:"include_draft"`
	Now          time.Time `yaml:"-"`
}

// SongsConfig 对应 songs 集合的全部路由配置
type SongsConfig struct {
	EntriesPerPage int `yaml:"entries_per_page"`
	RelatedCount   int `yaml:"related_count"`

	List     RouteConfig `yaml:"list"`
	Post     RouteConfig `yaml:"post"`
	Category RouteConfig `yaml:"category"`
	Tag      RouteConfig `yaml:"tag"`
}

type RouteConfig struct {
	Enabled bool `yaml:"enabled"`
	// Pattern is a permalink pattern for the post route
	// ("%year%/%month%/%slug%") and a base path prefix for the others.
	Pattern string       `yaml:"pattern"`
	Robots  RobotsConfig `yaml:"robots"`
}

type RobotsConfig struct {
	Index  bool `yaml:"index"`
	Follow bool `yaml:"follow"`
}

func Default() Config {
	return Config{
		Site: SiteConfig{
			Title:    "Encore",
			SiteURL:  "http://localhost:8080",
			Theme:    "default",
			Language: "en",
		},
		Build: BuildConfig{
			SourceDir:    "source",
			PublicDir:    "public",
			ThemeDir:     "themes",
			BasePath:     "",
			IncludeDraft: false,
			Now:          time.Now(),
		},
		Songs: SongsConfig{
			EntriesPerPage: 6,
			RelatedCount:   4,
			List: RouteConfig{
				Enabled: true,
				Pattern: "songs",
				Robots:  RobotsConfig{Index: true, Follow: true},
			},
			Post: RouteConfig{
				Enabled: true,
				Pattern: "songs/%slug%",
				Robots:  RobotsConfig{Index: true, Follow: true},
			},
			Category: RouteConfig{
				Enabled: true,
				Pattern: "category",
				Robots:  RobotsConfig{Index: true, Follow: true},
			},
			Tag: RouteConfig{
				Enabled: true,
				Pattern: "tag",
				// tag 页默认不让搜索引擎收录
				Robots: RobotsConfig{Index: false, Follow: true},
			},
		},
	}
}

func (c Config) Validate() error {
	var ve domainerr.ValidationError

	if strings.TrimSpace(c.Site.Title) == "" {
		ve.Add("site.title", "must not be empty")
	}

	if strings.TrimSpace(c.Site.SiteURL) == "" {
		ve.Add("site.site_url", "must not be empty")
	} else if !isValidAbsURL(c.Site.SiteURL) {
		ve.Add("site.site_url", "must be a valid absolute URL")
	}

	if strings.TrimSpace(c.Site.Theme) == "" {
		ve.Add("site.themes", "must not be empty")
	}

	if strings.TrimSpace(c.Build.SourceDir) == "" {
		ve.Add("build.source_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.PublicDir) == "" {
		ve.Add("build.public_dir", "must not be empty")
	}
	if strings.TrimSpace(c.Build.ThemeDir) == "" {
		ve.Add("build.theme_dir", "must not be empty")
	}
	if bp := strings.TrimSpace(c.Build.BasePath); bp != "" {
		if !strings.HasPrefix(bp, "/") {
			ve.Addf("build.base_path", "must start with '/', got %q", bp)
		}
		if strings.HasSuffix(bp, "/") && bp != "/" {
			ve.Addf("build.base_path", "must not end with '/', got %q", bp)
		}
	}

	if c.Songs.EntriesPerPage <= 0 {
		ve.Add("songs.entries_per_page", "must be positive")
	}
	if c.Songs.RelatedCount < 0 {
		ve.Add("songs.related_count", "must not be negative")
	}
	if c.Songs.List.Enabled && strings.TrimSpace(c.Songs.List.Pattern) == "" {
		ve.Add("songs.list.pattern", "must not be empty when the route is enabled")
	}
	if c.Songs.Post.Enabled && strings.TrimSpace(c.Songs.Post.Pattern) == "" {
		ve.Add("songs.post.pattern", "must not be empty when the route is enabled")
	}

	if ve.HasAny() {
		return ve
	}
	return nil
}

func isValidAbsURL(s string) bool {
	u, err := url.Parse(strings.TrimSpace(s))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}

func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	// 直接 Unmarshal 到 cfg 上：文件中写到的字段覆盖默认值，其他字段保留 Default
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}

	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadOrDefault(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := cfg.Validate(); err != nil {
				return cfg, err
			}
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.Build.Now.IsZero() {
		cfg.Build.Now = time.Now()
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}
