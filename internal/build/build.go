package build

import (
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"encore/internal/collection"
	domainbuild "encore/internal/domain/build"
	"encore/internal/domain/config"
	"encore/internal/index"
	"encore/internal/ingest"
	"encore/internal/render"
	"encore/internal/routes"
)

type Builder struct {
	Cfg       config.Config
	IndexPath string
	Log       *zap.Logger
}

type Result struct {
	Songs    int
	Pages    int
	Warnings []collection.Warning
}

func (b *Builder) Run(ctx context.Context) (*Result, error) {
	log := b.Log
	if log == nil {
		log = zap.NewNop()
	}

	loader := collection.NewLoader(ingest.FSSource{Dir: b.Cfg.Build.SourceDir}, collection.Options{
		PermalinkPattern: b.Cfg.Songs.Post.Pattern,
		Now:              b.Cfg.Build.Now,
		IncludeDraft:     b.Cfg.Build.IncludeDraft,
	})

	entries, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("load songs: %w", err)
	}
	warns := loader.Warnings()
	for _, w := range warns {
		log.Warn("ingest warning", zap.String("path", w.Path), zap.String("msg", w.Msg))
	}
	log.Info("songs loaded", zap.Int("count", len(entries)))

	st, err := index.Open(index.OpenOptions{Path: b.IndexPath})
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer st.Close()

	fp := domainbuild.Fingerprint{
		ContentHash: domainbuild.ContentFingerprint(entries),
	}
	if err := st.Rebuild(entries, fp.Sum()); err != nil {
		return nil, fmt.Errorf("rebuild index: %w", err)
	}

	md := render.NewMarkdownRenderer()
	tpl, err := render.NewTemplateRenderer(b.Cfg.Build.ThemeDir, b.Cfg.Site.Theme)
	if err != nil {
		return nil, fmt.Errorf("load theme(%s): %w", b.Cfg.Site.Theme, err)
	}

	outDir := b.Cfg.Build.PublicDir
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("mkdir public: %w", err)
	}

	rb := &routes.Builder{Loader: loader, Cfg: b.Cfg.Songs}

	pages, err := b.buildAll(ctx, loader, rb, md, tpl, outDir)
	if err != nil {
		return nil, err
	}
	log.Info("build complete", zap.Int("pages", pages))

	return &Result{
		Songs:    len(entries),
		Pages:    pages,
		Warnings: warns,
	}, nil
}

func (b *Builder) buildAll(
	ctx context.Context,
	loader *collection.Loader,
	rb *routes.Builder,
	md *render.MarkdownRenderer,
	tpl render.Renderer,
	outDir string,
) (int, error) {
	pages := 0

	n, err := b.buildLanding(ctx, loader, tpl, outDir)
	if err != nil {
		return pages, fmt.Errorf("build landing: %w", err)
	}
	pages += n

	listKeys, err := rb.ListPaths()
	if err != nil {
		return pages, err
	}
	n, err = b.buildListings(ctx, tpl, outDir, b.listTitle, listKeys)
	if err != nil {
		return pages, fmt.Errorf("build list: %w", err)
	}
	pages += n

	catKeys, err := rb.CategoryPaths()
	if err != nil {
		return pages, err
	}
	n, err = b.buildListings(ctx, tpl, outDir, b.categoryTitle, catKeys)
	if err != nil {
		return pages, fmt.Errorf("build categories: %w", err)
	}
	pages += n

	tagKeys, err := rb.TagPaths()
	if err != nil {
		return pages, err
	}
	n, err = b.buildListings(ctx, tpl, outDir, b.tagTitle, tagKeys)
	if err != nil {
		return pages, fmt.Errorf("build tags: %w", err)
	}
	pages += n

	postKeys, err := rb.PostPaths()
	if err != nil {
		return pages, err
	}
	n, err = b.buildPosts(ctx, loader, md, tpl, outDir, postKeys)
	if err != nil {
		return pages, fmt.Errorf("build posts: %w", err)
	}
	pages += n

	if err := b.buildNotFound(ctx, tpl, outDir); err != nil {
		return pages, fmt.Errorf("build 404: %w", err)
	}
	pages++

	if err := b.copyStaticAssets(outDir); err != nil {
		return pages, fmt.Errorf("copy static assets: %w", err)
	}
	return pages, nil
}

func (b *Builder) buildLanding(
	ctx context.Context,
	loader *collection.Loader,
	tpl render.Renderer,
	outDir string,
) (int, error) {
	latest, err := loader.FindLatest(0)
	if err != nil {
		return 0, err
	}
	page := render.LandingPage{
		Site:      b.Cfg.Site,
		Latest:    latest,
		Generated: b.Cfg.Build.Now,
		PageTitle: b.Cfg.Site.Title,
	}
	htmlBytes, err := tpl.RenderLanding(ctx, page)
	if err != nil {
		return 0, err
	}
	return 1, writeFile(outDir, "index.html", htmlBytes)
}

func (b *Builder) listTitle(k routes.PageKey) string {
	return "Songs"
}

func (b *Builder) categoryTitle(k routes.PageKey) string {
	if k.Props.Category != nil {
		return fmt.Sprintf("Category: %s", k.Props.Category.Title)
	}
	return "Category"
}

func (b *Builder) tagTitle(k routes.PageKey) string {
	if k.Props.Tag != nil {
		return fmt.Sprintf("Tag: %s", k.Props.Tag.Title)
	}
	return "Tag"
}

// buildListings renders one file per page key. Pages are independent, so
// rendering fans out across the CPUs.
func (b *Builder) buildListings(
	ctx context.Context,
	tpl render.Renderer,
	outDir string,
	title func(routes.PageKey) string,
	keys []routes.PageKey,
) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, k := range keys {
		k := k
		g.Go(func() error {
			lp := render.ListPage{
				Site:      b.Cfg.Site,
				Title:     title(k),
				Entries:   k.Props.Entries,
				Category:  k.Props.Category,
				Tag:       k.Props.Tag,
				Robots:    k.Props.Robots,
				Generated: b.Cfg.Build.Now,
			}
			if k.Page != nil {
				lp.Current = k.Page.Current
				lp.TotalPages = k.Page.TotalPages
				lp.TotalEntries = k.Page.TotalEntries
			}
			lp.BasePath = k.Path

			htmlBytes, err := tpl.RenderList(ctx, lp)
			if err != nil {
				return fmt.Errorf("render %s: %w", k.Path, err)
			}
			return writeFile(outDir, filepath.Join(filepath.FromSlash(k.Path), "index.html"), htmlBytes)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (b *Builder) buildPosts(
	ctx context.Context,
	loader *collection.Loader,
	md *render.MarkdownRenderer,
	tpl render.Renderer,
	outDir string,
	keys []routes.PageKey,
) (int, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for _, k := range keys {
		k := k
		g.Go(func() error {
			e := *k.Props.Entry

			src, err := os.ReadFile(e.Body.SourcePath)
			if err != nil {
				return fmt.Errorf("read song source(%s): %w", e.Body.SourcePath, err)
			}
			// 去掉 frontmatter，只渲染正文
			_, body, fmErr := ingest.ParseFrontMatter(src)
			if fmErr != nil {
				body = src
			}

			mdResult, err := md.Render(body)
			if err != nil {
				return fmt.Errorf("markdown render(%s): %w", e.Slug, err)
			}

			related, err := loader.Related(e, b.Cfg.Songs.RelatedCount)
			if err != nil {
				return err
			}

			pp := render.PostPage{
				Site:    b.Cfg.Site,
				Entry:   e,
				HTML:    template.HTML(mdResult.HTML),
				TOC:     mdResult.Headings,
				Related: related,
				Robots:  k.Props.Robots,
				IsDraft: e.Draft,
			}
			htmlBytes, err := tpl.RenderPost(ctx, pp)
			if err != nil {
				return fmt.Errorf("render song(%s): %w", e.Slug, err)
			}
			return writeFile(outDir, filepath.Join(filepath.FromSlash(k.Path), "index.html"), htmlBytes)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (b *Builder) buildNotFound(
	ctx context.Context,
	tpl render.Renderer,
	outDir string,
) error {
	page := render.NotFoundPage{
		Site: b.Cfg.Site,
		Path: "",
	}
	htmlBytes, err := tpl.RenderNotFound(ctx, page)
	if err != nil {
		return err
	}
	return writeFile(outDir, "404.html", htmlBytes)
}

func writeFile(root, rel string, data []byte) error {
	full := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return err
	}
	return os.WriteFile(full, data, 0o644)
}

func (b *Builder) copyStaticAssets(outDir string) error {
	src := filepath.Join(b.Cfg.Build.ThemeDir, b.Cfg.Site.Theme, "static")
	// 没有 static 目录就算了
	info, err := os.Stat(src)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return nil
	}

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		dst := filepath.Join(outDir, rel)

		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return err
		}

		in, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		return os.WriteFile(dst, in, 0o644)
	})
}
