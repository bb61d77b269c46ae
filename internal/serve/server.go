package serve

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"encore/internal/collection"
	domainbuild "encore/internal/domain/build"
	"encore/internal/domain/config"
	"encore/internal/domain/content"
	"encore/internal/index"
	"encore/internal/ingest"
	"encore/internal/render"
	"encore/internal/routes"
)

type Server struct {
	cfg config.Config
	log *zap.Logger

	indexPath string
	idx       *index.Store
	md        *render.MarkdownRenderer
	tpl       render.Renderer
	loader    *collection.Loader

	mu    sync.RWMutex
	pages map[string]routes.PageKey

	sseMu     sync.Mutex
	sseConns  map[chan string]struct{}
	watcher   *fsnotify.Watcher
	watchOnce sync.Once
}

func New(cfg config.Config, indexPath string, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	md := render.NewMarkdownRenderer()
	tpl, err := render.NewTemplateRenderer(cfg.Build.ThemeDir, cfg.Site.Theme)
	if err != nil {
		return nil, fmt.Errorf("serve: failed to create template renderer: %w", err)
	}
	st, err := index.Open(index.OpenOptions{Path: indexPath})
	if err != nil {
		return nil, fmt.Errorf("serve: failed to open index: %w", err)
	}

	loader := collection.NewLoader(ingest.FSSource{Dir: cfg.Build.SourceDir}, collection.Options{
		PermalinkPattern: cfg.Songs.Post.Pattern,
		Now:              cfg.Build.Now,
		// dev 模式下 draft 也要能预览
		IncludeDraft: true,
	})

	s := &Server{
		cfg:       cfg,
		log:       log,
		indexPath: indexPath,
		idx:       st,
		md:        md,
		tpl:       tpl,
		loader:    loader,
		pages:     make(map[string]routes.PageKey),
		sseConns:  make(map[chan string]struct{}),
	}
	return s, nil
}

func (s *Server) Close() error {
	if s.watcher != nil {
		_ = s.watcher.Close()
	}
	if s.idx != nil {
		return s.idx.Close()
	}
	return nil
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	if err := s.rebuild(); err != nil {
		return err
	}

	if err := s.startWatch(ctx); err != nil {
		return err
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.HandleFunc("/dev/events", s.handleSSE)

	staticDir := filepath.Join(s.cfg.Build.ThemeDir, s.cfg.Site.Theme, "static")
	fileServer := http.FileServer(http.Dir(staticDir))

	mux.Handle("/css/", fileServer)
	mux.Handle("/js/", fileServer)
	mux.Handle("/images/", fileServer)
	mux.Handle("/favicon.ico", fileServer)

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(context.Background())
	}()

	s.log.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// rebuild reloads the collection and regenerates the page-key map.
// Unchanged content (same fingerprint) is a no-op.
func (s *Server) rebuild() error {
	s.loader.Invalidate()
	entries, err := s.loader.Load()
	if err != nil {
		return fmt.Errorf("load songs: %w", err)
	}
	for _, w := range s.loader.Warnings() {
		s.log.Warn("ingest warning", zap.String("path", w.Path), zap.String("msg", w.Msg))
	}

	fp := domainbuild.Fingerprint{
		ContentHash: domainbuild.ContentFingerprint(entries),
	}.Sum()

	stored, err := s.idx.Fingerprint()
	if err == nil && stored == fp && len(s.snapshotPages()) > 0 {
		s.log.Debug("content unchanged, rebuild skipped")
		return nil
	}

	if err := s.idx.Rebuild(entries, fp); err != nil {
		return fmt.Errorf("index rebuild: %w", err)
	}

	// 文章页直接走 index 的 permalink 查询，这里只收 listing 页
	rb := &routes.Builder{Loader: s.loader, Cfg: s.cfg.Songs}
	pages := make(map[string]routes.PageKey)
	for _, fn := range []func() ([]routes.PageKey, error){
		rb.ListPaths,
		rb.CategoryPaths,
		rb.TagPaths,
	} {
		keys, err := fn()
		if err != nil {
			return fmt.Errorf("page keys: %w", err)
		}
		for _, k := range keys {
			pages[k.Path] = k
		}
	}

	s.mu.Lock()
	s.pages = pages
	s.mu.Unlock()

	s.log.Info("rebuild complete",
		zap.Int("songs", len(entries)),
		zap.Int("pages", len(pages)))
	s.broadcastSSE("reload")
	return nil
}

func (s *Server) snapshotPages() map[string]routes.PageKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pages
}

func (s *Server) startWatch(ctx context.Context) error {
	var err error
	s.watchOnce.Do(func() {
		w, e := fsnotify.NewWatcher()
		if e != nil {
			err = e
			return
		}
		s.watcher = w

		go s.watchLoop(ctx)

		err = filepath.Walk(s.cfg.Build.SourceDir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return w.Add(path)
			}
			return nil
		})
	})
	return err
}

func (s *Server) watchLoop(ctx context.Context) {
	s.log.Info("watching for file changes")
	debounce := time.NewTicker(time.Hour)
	debounce.Stop()

	trigger := func() {
		select {
		case <-debounce.C:
		default:
		}
		debounce.Reset(200 * time.Millisecond)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
				trigger()
			}
		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("watcher error", zap.Error(err))
		case <-debounce.C:
			debounce.Stop()
			if err := s.rebuild(); err != nil {
				s.log.Error("rebuild error", zap.Error(err))
			}
		}
	}
}

func (s *Server) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan string, 4)
	s.sseMu.Lock()
	s.sseConns[ch] = struct{}{}
	s.sseMu.Unlock()
	defer func() {
		s.sseMu.Lock()
		delete(s.sseConns, ch)
		s.sseMu.Unlock()
	}()

	fmt.Fprintf(w, "data: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

func (s *Server) broadcastSSE(msg string) {
	s.sseMu.Lock()
	defer s.sseMu.Unlock()
	for ch := range s.sseConns {
		select {
		case ch <- msg:
		default:
		}
	}
}

// handlePage resolves every site path against the page-key map.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	p := strings.Trim(r.URL.Path, "/")
	if bp := strings.Trim(s.cfg.Build.BasePath, "/"); bp != "" {
		p = strings.TrimPrefix(p, bp)
		p = strings.Trim(p, "/")
	}

	if p == "" {
		s.handleLanding(w, r)
		return
	}

	s.mu.RLock()
	key, ok := s.pages[p]
	s.mu.RUnlock()
	if ok {
		s.renderListing(w, r, key)
		return
	}

	if s.cfg.Songs.Post.Enabled {
		e, err := s.idx.GetByPermalink(p)
		if err == nil {
			s.renderPost(w, r, e)
			return
		}
		if !errors.Is(err, index.ErrNotFound) {
			s.fail(w, "permalink lookup", err)
			return
		}
	}
	s.handleNotFound(w, r)
}

func (s *Server) handleLanding(w http.ResponseWriter, r *http.Request) {
	latest, err := s.loader.FindLatest(0)
	if err != nil {
		s.fail(w, "landing query", err)
		return
	}
	page := render.LandingPage{
		Site:      s.cfg.Site,
		Latest:    latest,
		Generated: time.Now(),
		PageTitle: s.cfg.Site.Title,
	}
	htmlBytes, err := s.tpl.RenderLanding(r.Context(), page)
	if err != nil {
		s.fail(w, "render landing", err)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) renderListing(w http.ResponseWriter, r *http.Request, key routes.PageKey) {
	title := "Songs"
	switch {
	case key.Props.Category != nil:
		title = fmt.Sprintf("Category: %s", key.Props.Category.Title)
	case key.Props.Tag != nil:
		title = fmt.Sprintf("Tag: %s", key.Props.Tag.Title)
	}

	// 每次请求都从 index 查当页条目，而不是用 rebuild 时的快照
	cur, size := 1, s.cfg.Songs.EntriesPerPage
	if key.Page != nil {
		cur, size = key.Page.Current, key.Page.Size
	}
	opt := index.ListOptions{Page: cur, Size: size}

	var entries []content.Entry
	var err error
	switch {
	case key.Props.Category != nil:
		entries, err = s.idx.ListByCategory(key.Props.Category.Slug, opt)
	case key.Props.Tag != nil:
		entries, err = s.idx.ListByTag(key.Props.Tag.Slug, opt)
	default:
		entries, err = s.idx.List(opt)
	}
	if err != nil {
		s.fail(w, "listing query", err)
		return
	}

	lp := render.ListPage{
		Site:      s.cfg.Site,
		Title:     title,
		Entries:   entries,
		Category:  key.Props.Category,
		Tag:       key.Props.Tag,
		Robots:    key.Props.Robots,
		BasePath:  key.Path,
		Generated: time.Now(),
	}
	if key.Page != nil {
		lp.Current = key.Page.Current
		lp.TotalPages = key.Page.TotalPages
		lp.TotalEntries = key.Page.TotalEntries
	}

	htmlBytes, err := s.tpl.RenderList(r.Context(), lp)
	if err != nil {
		s.fail(w, "render listing", err)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) renderPost(w http.ResponseWriter, r *http.Request, e content.Entry) {
	src, err := os.ReadFile(e.Body.SourcePath)
	if err != nil {
		s.fail(w, "read source", err)
		return
	}
	_, body, fmErr := ingest.ParseFrontMatter(src)
	if fmErr != nil {
		body = src
	}

	mdResult, err := s.md.Render(body)
	if err != nil {
		s.fail(w, "markdown render", err)
		return
	}

	related, err := s.loader.Related(e, s.cfg.Songs.RelatedCount)
	if err != nil {
		s.fail(w, "related query", err)
		return
	}

	pp := render.PostPage{
		Site:    s.cfg.Site,
		Entry:   e,
		HTML:    template.HTML(mdResult.HTML),
		TOC:     mdResult.Headings,
		Related: related,
		Robots:  s.cfg.Songs.Post.Robots,
		IsDraft: e.Draft,
	}
	htmlBytes, err := s.tpl.RenderPost(r.Context(), pp)
	if err != nil {
		s.fail(w, "render song", err)
		return
	}
	writeHTML(w, htmlBytes)
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	page := render.NotFoundPage{
		Site: s.cfg.Site,
		Path: r.URL.Path,
	}
	htmlBytes, err := s.tpl.RenderNotFound(r.Context(), page)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusNotFound)
	writeHTML(w, htmlBytes)
}

func (s *Server) fail(w http.ResponseWriter, what string, err error) {
	s.log.Error(what, zap.Error(err))
	http.Error(w, what+" error", http.StatusInternalServerError)
}

func writeHTML(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}
