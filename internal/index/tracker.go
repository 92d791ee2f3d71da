// Package index keeps the vector store in sync with the documents on disk.
package index

import (
	"sort"

	"github.com/vectorium/vectorium/internal/scanner"
	"github.com/vectorium/vectorium/internal/store"
)

// Diff is the work an indexing run has to do: paths to embed for the
// first time, paths whose content changed, and stored points whose
// files are gone.
type Diff struct {
	Added   []string
	Changed []string
	Removed []store.Meta
}

// Empty reports whether the run has nothing to do.
func (d Diff) Empty() bool {
	return len(d.Added) == 0 && len(d.Changed) == 0 && len(d.Removed) == 0
}

// ComputeDiff compares the current filesystem snapshot against the
// store-derived previous state. A file counts as changed when its size
// or mtime differs from what was recorded at indexing time. The
// comparison is pure; it touches neither disk nor store.
func ComputeDiff(current scanner.Snapshot, previous []store.Meta) Diff {
	prevByPath := make(map[string]store.Meta, len(previous))
	for _, m := range previous {
		prevByPath[m.Path] = m
	}

	var d Diff
	for path, entry := range current {
		prev, ok := prevByPath[path]
		if !ok {
			d.Added = append(d.Added, path)
			continue
		}
		if entry.Size != prev.Size || entry.ModTime.UnixNano() != prev.LastModified {
			d.Changed = append(d.Changed, path)
		}
	}

	for _, m := range previous {
		if _, ok := current[m.Path]; !ok {
			d.Removed = append(d.Removed, m)
		}
	}

	// Deterministic order for logging and tests.
	sort.Strings(d.Added)
	sort.Strings(d.Changed)
	sort.Slice(d.Removed, func(i, j int) bool {
		return d.Removed[i].Path < d.Removed[j].Path
	})
	return d
}
