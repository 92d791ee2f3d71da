package index

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"golang.org/x/sync/errgroup"

	"github.com/vectorium/vectorium/internal/embed"
	verrors "github.com/vectorium/vectorium/internal/errors"
	"github.com/vectorium/vectorium/internal/scanner"
	"github.com/vectorium/vectorium/internal/store"
)

// previewRunes is the length of the content excerpt stored with each
// point. Counted in runes so multi-byte characters never get split.
const previewRunes = 200

// Options configures an indexing pipeline.
type Options struct {
	// Root is the documents directory.
	Root string

	// Extensions limits which files are indexed.
	Extensions []string

	// MaxFileSize caps the size of files considered for indexing.
	MaxFileSize int64

	// Workers bounds concurrent embed+upsert operations.
	// Defaults to GOMAXPROCS.
	Workers int

	// LockFile guards against concurrent indexing runs.
	// Empty disables locking.
	LockFile string
}

// Failure records one file the run could not index.
type Failure struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Report summarizes an indexing run.
type Report struct {
	Scanned  int           `json:"scanned"`
	Added    int           `json:"added"`
	Updated  int           `json:"updated"`
	Removed  int           `json:"removed"`
	Failed   []Failure     `json:"failed,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Pipeline synchronizes the vector store with the documents root.
type Pipeline struct {
	store    store.VectorStore
	embedder embed.Embedder
	opts     Options
}

// NewPipeline creates an indexing pipeline.
func NewPipeline(s store.VectorStore, e embed.Embedder, opts Options) *Pipeline {
	if opts.Workers <= 0 {
		opts.Workers = runtime.GOMAXPROCS(0)
	}
	return &Pipeline{store: s, embedder: e, opts: opts}
}

// Run performs one full synchronization: scan the root, diff against
// the store, embed and upsert new or changed documents, and delete
// points for files that are gone.
//
// Per-file failures (unreadable files, embedding errors) are collected
// in the report and do not stop the run. Store failures abort it: a
// partially synced store is recoverable on the next run, but blindly
// continuing against a broken store is not.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()

	if p.opts.LockFile != "" {
		lock := flock.New(p.opts.LockFile)
		locked, err := lock.TryLock()
		if err != nil {
			return nil, verrors.FilesystemError("cannot acquire index lock", err).
				WithDetail("lock_file", p.opts.LockFile)
		}
		if !locked {
			return nil, verrors.ValidationError("another indexing run is in progress").
				WithDetail("lock_file", p.opts.LockFile)
		}
		defer func() { _ = lock.Unlock() }()
	}

	snap, err := scanner.Scan(ctx, scanner.Options{
		Root:        p.opts.Root,
		Extensions:  p.opts.Extensions,
		MaxFileSize: p.opts.MaxFileSize,
	})
	if err != nil {
		return nil, err
	}

	previous, err := p.store.FetchIndexed(ctx)
	if err != nil {
		return nil, err
	}

	diff := ComputeDiff(snap, previous)
	report := &Report{Scanned: len(snap)}

	slog.Info("index diff computed",
		"scanned", len(snap),
		"added", len(diff.Added),
		"changed", len(diff.Changed),
		"removed", len(diff.Removed))

	if diff.Empty() {
		report.Duration = time.Since(start)
		return report, nil
	}

	added, failures, err := p.indexPaths(ctx, snap, diff.Added)
	if err != nil {
		return nil, err
	}
	report.Added = added
	report.Failed = append(report.Failed, failures...)

	updated, failures, err := p.indexPaths(ctx, snap, diff.Changed)
	if err != nil {
		return nil, err
	}
	report.Updated = updated
	report.Failed = append(report.Failed, failures...)

	if len(diff.Removed) > 0 {
		ids := make([]string, len(diff.Removed))
		for i, m := range diff.Removed {
			ids[i] = m.ID
		}
		if err := p.store.Delete(ctx, ids); err != nil {
			return nil, err
		}
		report.Removed = len(diff.Removed)
	}

	report.Duration = time.Since(start)
	slog.Info("index run complete",
		"added", report.Added,
		"updated", report.Updated,
		"removed", report.Removed,
		"failed", len(report.Failed),
		"duration", report.Duration)
	return report, nil
}

// indexPaths embeds and upserts the given paths with bounded
// concurrency. It returns the success count and per-file failures;
// a non-nil error means a store failure aborted the batch.
func (p *Pipeline) indexPaths(ctx context.Context, snap scanner.Snapshot, paths []string) (int, []Failure, error) {
	if len(paths) == 0 {
		return 0, nil, nil
	}

	var mu sync.Mutex
	var failures []Failure
	succeeded := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for _, path := range paths {
		g.Go(func() error {
			err := p.indexOne(gctx, snap[path])
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
				return nil
			case verrors.IsStoreError(err) || gctx.Err() != nil:
				return err
			default:
				slog.Warn("skipping file", "path", path, "error", err)
				failures = append(failures, Failure{Path: path, Reason: err.Error()})
				return nil
			}
		})
	}

	if err := g.Wait(); err != nil {
		return 0, nil, err
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	return succeeded, failures, nil
}

// indexOne reads, embeds, and upserts a single document.
func (p *Pipeline) indexOne(ctx context.Context, entry scanner.Entry) error {
	// Re-stat so the stored size and mtime describe the content we
	// actually embed, not the snapshot taken before the scan queue
	// drained.
	info, err := os.Stat(entry.AbsPath)
	if err != nil {
		return verrors.FileError(entry.Path, err)
	}

	content, err := os.ReadFile(entry.AbsPath)
	if err != nil {
		return verrors.FileError(entry.Path, err)
	}

	vector, err := p.embedder.Embed(ctx, string(content))
	if err != nil {
		return err
	}

	return p.store.Upsert(ctx, []store.Point{{
		ID:     store.PointID(entry.Path),
		Vector: vector,
		Payload: store.Payload{
			Path:         entry.Path,
			Size:         info.Size(),
			LastModified: info.ModTime().UnixNano(),
			Preview:      preview(string(content)),
		},
	}})
}

// preview returns the first previewRunes runes of content.
func preview(content string) string {
	runes := []rune(content)
	if len(runes) <= previewRunes {
		return content
	}
	return string(runes[:previewRunes])
}
