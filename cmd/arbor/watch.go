package main

import (
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"

	"github.com/jward/arbor"
	"github.com/jward/arbor/internal/config"
	"github.com/jward/arbor/internal/observability"
)

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-index source files as they change",
	Long:  "Runs a full index of the tree, then watches it for changes and re-indexes modified files, debounced and rate limited.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	root := "."
	if len(args) == 1 {
		root = args[0]
	}

	cfg, err := loadConfig()
	if err != nil {
		return outputError("watch", err)
	}
	e, err := arbor.NewFromConfig(cfg)
	if err != nil {
		return outputError("watch", err)
	}
	defer e.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := e.IndexDirectory(ctx, root); err != nil {
		return outputError("watch", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return outputError("watch", fmt.Errorf("start watcher: %w", err))
	}
	defer watcher.Close()

	if err := watchTree(watcher, root, cfg); err != nil {
		return outputError("watch", err)
	}
	fmt.Fprintf(os.Stderr, "watching %s\n", root)

	limiter := rate.NewLimiter(rate.Limit(cfg.Watch.MaxReindexPerSec), 1)
	pending := map[string]fsnotify.Op{}
	flush := time.NewTicker(cfg.Watch.Debounce)
	defer flush.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			observability.WatcherEventsTotal.Inc()
			if ev.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if !cfg.ExcludedDir(filepath.Base(ev.Name)) {
						watcher.Add(ev.Name)
					}
					continue
				}
			}
			if !matchesConfig(ev.Name, cfg) {
				continue
			}
			pending[ev.Name] |= ev.Op

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "watch error: %s\n", err)

		case <-flush.C:
			for path, op := range pending {
				if err := limiter.Wait(ctx); err != nil {
					return nil
				}
				if op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					if err := e.RemoveFile(path); err != nil {
						fmt.Fprintf(os.Stderr, "remove %s: %s\n", path, err)
					}
					continue
				}
				if err := e.IndexFile(ctx, path); err != nil {
					fmt.Fprintf(os.Stderr, "reindex %s: %s\n", path, err)
				}
			}
			pending = map[string]fsnotify.Op{}
		}
	}
}

// watchTree registers root and every non-excluded subdirectory.
func watchTree(watcher *fsnotify.Watcher, root string, cfg *config.Config) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && cfg.ExcludedDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := watcher.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

// matchesConfig reports whether a changed path is source the index cares
// about.
func matchesConfig(path string, cfg *config.Config) bool {
	ext := filepath.Ext(path)
	for _, want := range cfg.Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
