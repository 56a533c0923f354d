package arbor

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/jward/arbor/internal/cache"
	"github.com/jward/arbor/internal/store"
)

// IndexFile parses one file and persists its symbols and diagnostics.
// Unchanged content (by hash) is skipped. The module-symbol cache entry for
// the path is refreshed so subsequent queries see the new state.
func (e *Engine) IndexFile(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("arbor: read %s: %w", path, err)
	}
	content := string(data)
	hash := store.ContentHash(content)

	prev, err := e.store.FileHash(path)
	if err != nil {
		return fmt.Errorf("arbor: %w", err)
	}
	if prev == hash {
		return nil
	}

	res := e.Parse(content, path, 1)
	if err := e.store.UpsertFile(path, hash, content, res.Symbols, res.Diagnostics); err != nil {
		return fmt.Errorf("arbor: %w", err)
	}
	syms := res.Symbols
	if syms == nil {
		syms = []*Symbol{}
	}
	e.cache.Put(cache.Modules, path, syms)
	return nil
}

// IndexDirectory walks root and indexes every matching source file, honoring
// the engine's extension filter and directory/file excludes.
func (e *Engine) IndexDirectory(ctx context.Context, root string) error {
	paths, err := e.listFiles(root)
	if err != nil {
		return err
	}
	for _, path := range paths {
		if err := e.IndexFile(ctx, path); err != nil {
			return err
		}
	}
	_, err = e.Stats() // refresh gauges
	return err
}

// RemoveFile drops a file from the index, for deletions seen by watch mode.
func (e *Engine) RemoveFile(path string) error {
	if err := e.store.DeleteFile(path); err != nil {
		return fmt.Errorf("arbor: %w", err)
	}
	e.cache.Remove(cache.Modules, path)
	return nil
}

func (e *Engine) listFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && e.excludeDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.matchesExtension(path) {
			return nil
		}
		for _, g := range e.excludeGlobs {
			if g.Match(d.Name()) {
				return nil
			}
		}
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("arbor: walk %s: %w", root, err)
	}
	return paths, nil
}

func (e *Engine) matchesExtension(path string) bool {
	ext := filepath.Ext(path)
	for _, want := range e.extensions {
		if ext == want {
			return true
		}
	}
	return false
}
