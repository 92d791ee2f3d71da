// Package watch triggers re-indexing when documents change on disk.
package watch

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces bursts of filesystem events into a single
// trigger. Editors often write a file several times per save.
const DefaultDebounce = 2 * time.Second

// Options configures a watcher.
type Options struct {
	// Root is the directory tree to watch.
	Root string

	// Debounce is the quiet period before firing the trigger.
	Debounce time.Duration
}

// Watcher observes a directory tree and invokes a callback after
// changes settle.
type Watcher struct {
	fsw      *fsnotify.Watcher
	root     string
	debounce time.Duration
}

// New creates a watcher over the tree rooted at opts.Root. Hidden
// directories are not watched; they are invisible to indexing too.
func New(opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{fsw: fsw, root: opts.Root, debounce: opts.Debounce}
	if err := w.addRecursive(opts.Root); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// Run blocks, invoking trigger after each debounced burst of events,
// until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, trigger func()) error {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			// New subdirectories need their own watch before files
			// land in them.
			if event.Op.Has(fsnotify.Create) {
				if err := w.addRecursive(event.Name); err != nil {
					slog.Debug("watch add failed", "path", event.Name, "error", err)
				}
			}
			slog.Debug("filesystem event", "op", event.Op.String(), "path", event.Name)
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerC = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)

		case <-timerC:
			timer = nil
			timerC = nil
			trigger()
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// relevant drops events under hidden directories and for hidden files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil {
		return false
	}
	for _, part := range strings.Split(filepath.ToSlash(rel), "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return false
		}
	}
	return true
}

// addRecursive watches path and, if it is a directory, everything
// beneath it except hidden directories.
func (w *Watcher) addRecursive(path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// The entry may be gone already; watching best-effort.
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != path && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}
