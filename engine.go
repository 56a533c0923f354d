package arbor

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/gobwas/glob"

	"github.com/jward/arbor/internal/cache"
	"github.com/jward/arbor/internal/config"
	"github.com/jward/arbor/internal/observability"
	"github.com/jward/arbor/internal/parser"
	"github.com/jward/arbor/internal/pike"
	"github.com/jward/arbor/internal/resolver"
	"github.com/jward/arbor/internal/store"
)

// Engine orchestrates the arbor pipeline: file indexing, parse caching, open
// document overlays, and query access. It is the multi-document symbol index
// the hierarchy builder traverses.
type Engine struct {
	store *store.Store
	cache *cache.Cache

	extensions   []string
	excludeDirs  map[string]bool
	excludeFiles []string
	excludeGlobs []glob.Glob

	maxArtifacts int
	maxModules   int

	// mu guards the open document overlay. The cache and store carry their
	// own locking.
	mu   sync.RWMutex
	open map[string]string
}

// Option configures an Engine.
type Option func(*Engine)

// WithCacheLimits sets the LRU capacities for parse artifacts and module
// symbol tables.
func WithCacheLimits(maxArtifacts, maxModules int) Option {
	return func(e *Engine) {
		e.maxArtifacts = maxArtifacts
		e.maxModules = maxModules
	}
}

// WithExtensions restricts which file extensions IndexDirectory picks up.
func WithExtensions(exts ...string) Option {
	return func(e *Engine) {
		e.extensions = exts
	}
}

// WithExcludeDirs skips directories by base name during IndexDirectory.
func WithExcludeDirs(dirs ...string) Option {
	return func(e *Engine) {
		for _, d := range dirs {
			e.excludeDirs[d] = true
		}
	}
}

// WithExcludeFiles skips files whose base name matches any of the glob
// patterns during IndexDirectory.
func WithExcludeFiles(patterns ...string) Option {
	return func(e *Engine) {
		e.excludeFiles = append(e.excludeFiles, patterns...)
	}
}

// New creates an Engine backed by a SQLite database at dbPath.
func New(dbPath string, opts ...Option) (*Engine, error) {
	s, err := store.NewStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("arbor: create store: %w", err)
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, fmt.Errorf("arbor: migrate: %w", err)
	}

	e := &Engine{
		store:       s,
		extensions:  []string{".pike", ".pmod"},
		excludeDirs: map[string]bool{".git": true},
		open:        map[string]string{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.cache = cache.New(e.maxArtifacts, e.maxModules)

	for _, pattern := range e.excludeFiles {
		g, err := glob.Compile(pattern)
		if err != nil {
			s.Close()
			return nil, fmt.Errorf("arbor: exclude pattern %q: %w", pattern, err)
		}
		e.excludeGlobs = append(e.excludeGlobs, g)
	}
	return e, nil
}

// NewFromConfig creates an Engine from a loaded configuration.
func NewFromConfig(cfg *config.Config) (*Engine, error) {
	return New(cfg.DBPath,
		WithCacheLimits(cfg.Cache.MaxArtifacts, cfg.Cache.MaxModules),
		WithExtensions(cfg.Extensions...),
		WithExcludeDirs(cfg.Exclude.Dirs...),
		WithExcludeFiles(cfg.Exclude.Files...),
	)
}

// Close releases the Engine's database resources.
func (e *Engine) Close() error {
	return e.store.Close()
}

// Store returns the underlying Store for direct access.
func (e *Engine) Store() *Store {
	return e.store
}

// Parse analyzes source text, returning symbols and diagnostics. Results are
// cached by content hash; re-parsing an unchanged buffer is a cache hit.
// Parse is total: any input yields a well-formed result.
func (e *Engine) Parse(code, filename string, startLine int) *parser.Result {
	key := fmt.Sprintf("%s:%d:%s", filename, startLine, store.ContentHash(code))
	if v, ok := e.cache.Get(cache.Artifacts, key); ok {
		observability.CacheHits.WithLabelValues(string(cache.Artifacts)).Inc()
		return v.(*parser.Result)
	}
	observability.CacheMisses.WithLabelValues(string(cache.Artifacts)).Inc()

	start := time.Now()
	res := parser.Parse(code, filename, startLine)
	observability.ParseDuration.Observe(time.Since(start).Seconds())
	for _, d := range res.Diagnostics {
		observability.ParseDiagnostics.WithLabelValues(string(d.Severity)).Inc()
	}
	e.cache.Put(cache.Artifacts, key, res)
	return res
}

// Resolve answers "what type does name have at line" for an indexed or open
// document. A nil entry with nil error means the name is not in scope.
func (e *Engine) Resolve(uri string, line int, name string) (*ScopeEntry, error) {
	text, ok := e.DocumentText(uri)
	if !ok {
		return nil, fmt.Errorf("arbor: document not analyzed: %s", uri)
	}
	return resolver.ResolveVariableType(text, uri, line, name), nil
}

// OpenDocument registers a live buffer for uri and analyzes it. Until
// CloseDocument, the buffer shadows any persisted state for every query.
func (e *Engine) OpenDocument(uri, text string) *parser.Result {
	e.mu.Lock()
	e.open[uri] = text
	e.mu.Unlock()
	return e.Parse(text, uri, 1)
}

// UpdateDocument replaces the live buffer for uri and re-analyzes it.
func (e *Engine) UpdateDocument(uri, text string) *parser.Result {
	return e.OpenDocument(uri, text)
}

// CloseDocument drops the live buffer. Queries fall back to the persisted
// index, which may be stale until the file is re-indexed.
func (e *Engine) CloseDocument(uri string) {
	e.mu.Lock()
	delete(e.open, uri)
	e.mu.Unlock()
}

// openText returns the live buffer for uri, if any.
func (e *Engine) openText(uri string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	text, ok := e.open[uri]
	return text, ok
}

// DocumentSymbols returns the symbol tree of a document: the open buffer if
// one exists, otherwise the module-symbol cache, otherwise the persistent
// index. Nil means the document has not been analyzed, which is distinct
// from an empty symbol slice.
func (e *Engine) DocumentSymbols(uri string) []*pike.Symbol {
	if text, ok := e.openText(uri); ok {
		syms := e.Parse(text, uri, 1).Symbols
		if syms == nil {
			syms = []*pike.Symbol{}
		}
		return syms
	}
	if v, ok := e.cache.Get(cache.Modules, uri); ok {
		observability.CacheHits.WithLabelValues(string(cache.Modules)).Inc()
		return v.([]*pike.Symbol)
	}
	observability.CacheMisses.WithLabelValues(string(cache.Modules)).Inc()
	syms, err := e.store.FileSymbols(uri)
	if err != nil || syms == nil {
		return nil
	}
	e.cache.Put(cache.Modules, uri, syms)
	return syms
}

// DocumentText returns the source of a document, preferring the open buffer
// over the persisted copy.
func (e *Engine) DocumentText(uri string) (string, bool) {
	if text, ok := e.openText(uri); ok {
		return text, true
	}
	text, ok, err := e.store.FileText(uri)
	if err != nil {
		return "", false
	}
	return text, ok
}

// Documents lists every document the engine can see: indexed files plus open
// buffers, sorted, each path once.
func (e *Engine) Documents() []string {
	seen := map[string]bool{}
	paths, err := e.store.Files()
	if err == nil {
		for _, p := range paths {
			seen[p] = true
		}
	}
	e.mu.RLock()
	for uri := range e.open {
		seen[uri] = true
	}
	e.mu.RUnlock()

	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Stats reports the size of the persistent index and refreshes the indexed
// gauges.
func (e *Engine) Stats() (IndexStats, error) {
	st, err := e.store.Stats()
	if err != nil {
		return st, err
	}
	observability.IndexedFiles.Set(float64(st.Files))
	observability.IndexedSymbols.Set(float64(st.Symbols))
	return st, nil
}

// CacheStats snapshots both cache namespaces.
func (e *Engine) CacheStats() map[CacheNamespace]CacheStats {
	return e.cache.Stats()
}

// SetCacheLimits adjusts the LRU capacities. Oversized namespaces shrink on
// their next eviction, not immediately.
func (e *Engine) SetCacheLimits(maxArtifacts, maxModules int) {
	e.cache.SetLimits(maxArtifacts, maxModules)
}

// ClearCache empties the named cache namespace (or both for CacheAll),
// preserving cumulative hit/miss counters.
func (e *Engine) ClearCache(ns CacheNamespace) {
	e.cache.Clear(ns)
}
