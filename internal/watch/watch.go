// Package watch re-runs a callback when stylesheet sources change.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/pli-cadastros/plicss/internal/cssfile"
)

// DefaultDebounce groups the burst of events an editor save produces.
const DefaultDebounce = 300 * time.Millisecond

// Watcher watches a directory tree recursively.
type Watcher struct {
	Root     string
	Debounce time.Duration
	// Filter reports whether a changed path should trigger a rebuild.
	// Nil uses IsSource.
	Filter func(path string) bool
	Log    *zap.SugaredLogger

	pending map[string]time.Time
}

// IsSource accepts hand-written stylesheets and ignores build outputs,
// so a rebuild never triggers itself.
func IsSource(path string) bool {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".css") {
		return false
	}
	if strings.HasSuffix(base, ".min.css") || cssfile.IsHashed(base) {
		return false
	}
	return !strings.HasPrefix(base, ".") && !strings.HasSuffix(base, "~")
}

// Run blocks until ctx is done, calling onChange with the sorted set of
// changed paths after each quiet period. Errors from onChange are logged
// and watching continues.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string) error) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addTree(fw, w.Root); err != nil {
		return err
	}

	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	tick := debounce / 3
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	w.pending = make(map[string]time.Time)
	w.debugf("watching %s", w.Root)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, event)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			w.warnf("watch error: %v", err)

		case now := <-ticker.C:
			changed := w.ready(now, debounce)
			if len(changed) == 0 {
				continue
			}
			if err := onChange(ctx, changed); err != nil {
				w.warnf("rebuild failed: %v", err)
			}
		}
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, event fsnotify.Event) {
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(fw, event.Name); err != nil {
				w.warnf("%v", err)
			}
			return
		}
	}
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}

	filter := w.Filter
	if filter == nil {
		filter = IsSource
	}
	if !filter(event.Name) {
		return
	}
	w.debugf("%s %s", strings.ToLower(event.Op.String()), event.Name)
	w.pending[event.Name] = time.Now()
}

// ready drains paths that have been quiet for at least debounce. Nothing is
// drained while any path is still settling, so one save yields one batch.
func (w *Watcher) ready(now time.Time, debounce time.Duration) []string {
	if len(w.pending) == 0 {
		return nil
	}
	for _, at := range w.pending {
		if now.Sub(at) < debounce {
			return nil
		}
	}
	changed := make([]string, 0, len(w.pending))
	for path := range w.pending {
		changed = append(changed, path)
	}
	sort.Strings(changed)
	w.pending = make(map[string]time.Time)
	return changed
}

// addTree registers dir and its subdirectories, skipping the usual
// non-source directories.
func (w *Watcher) addTree(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := fw.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func skipDir(name string) bool {
	for _, s := range cssfile.DefaultSkipDirs {
		if name == s {
			return true
		}
	}
	return false
}

func (w *Watcher) debugf(format string, args ...any) {
	if w.Log != nil {
		w.Log.Debugf(format, args...)
	}
}

func (w *Watcher) warnf(format string, args ...any) {
	if w.Log != nil {
		w.Log.Warnf(format, args...)
	}
}
