package collection

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"encore/internal/domain/content"
	"encore/internal/ingest"
)

// Source 是底层 content-collection 存储的边界
type Source interface {
	FetchEntries() ([]ingest.RawEntry, error)
}

type Options struct {
	PermalinkPattern string
	// Now is the fallback publish date, injected so builds are reproducible.
	Now time.Time
	// IncludeDraft keeps draft entries in the cache (dev server only).
	IncludeDraft bool
	// Workers bounds the normalize fan-out; 0 means GOMAXPROCS.
	Workers int
}

type Warning struct {
	Path string
	Msg  string
}

// Loader fetches, normalizes, sorts and filters the song collection
// exactly once per process and serves every later call from memory.
type Loader struct {
	src Source
	opt Options

	mu      sync.Mutex
	loaded  bool
	entries []content.Entry
	warns   []Warning
	err     error
}

func NewLoader(src Source, opt Options) *Loader {
	return &Loader{src: src, opt: opt}
}

// Load returns the cached collection, loading it on first call. The
// result is sorted ascending by publish date and contains no drafts
// (unless IncludeDraft is set). A load failure is cached too: the whole
// pass is fatal, there is no partial recovery.
func (l *Loader) Load() ([]content.Entry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.loaded {
		l.entries, l.warns, l.err = l.load()
		l.loaded = true
	}
	return l.entries, l.err
}

// Invalidate drops the cached collection so the next Load refetches.
// The build path never calls this; the dev server does on file change.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loaded = false
	l.entries = nil
	l.warns = nil
	l.err = nil
}

// Warnings reports non-fatal issues (duplicate slugs) from the last load.
func (l *Loader) Warnings() []Warning {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.warns
}

func (l *Loader) load() ([]content.Entry, []Warning, error) {
	raws, err := l.src.FetchEntries()
	if err != nil {
		return nil, nil, fmt.Errorf("fetch songs: %w", err)
	}

	nopt := ingest.NormalizeOptions{
		PermalinkPattern: l.opt.PermalinkPattern,
		Now:              l.opt.Now,
	}

	workers := l.opt.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(raws) && len(raws) > 0 {
		workers = len(raws)
	}

	// 纯 parallel-map：各条目之间无顺序依赖，顺序由后面的 sort 决定
	entries := make([]content.Entry, len(raws))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				entries[idx] = ingest.Normalize(raws[idx], nopt)
			}
		}()
	}
	for idx := range raws {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PublishDate.Before(entries[j].PublishDate)
	})

	var warns []Warning
	seen := make(map[string]struct{}, len(entries))
	out := make([]content.Entry, 0, len(entries))
	for _, e := range entries {
		if e.Draft && !l.opt.IncludeDraft {
			continue
		}
		if _, ok := seen[e.Slug]; ok {
			warns = append(warns, Warning{
				Path: e.Body.SourcePath,
				Msg:  "duplicate slug, skipped: " + e.Slug,
			})
			continue
		}
		seen[e.Slug] = struct{}{}
		out = append(out, e)
	}
	return out, warns, nil
}
