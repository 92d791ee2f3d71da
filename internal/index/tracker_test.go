package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vectorium/vectorium/internal/scanner"
	"github.com/vectorium/vectorium/internal/store"
)

func entry(size int64, mtime time.Time) scanner.Entry {
	return scanner.Entry{Size: size, ModTime: mtime}
}

func meta(path string, size int64, mtime time.Time) store.Meta {
	return store.Meta{
		ID:           store.PointID(path),
		Path:         path,
		Size:         size,
		LastModified: mtime.UnixNano(),
	}
}

func TestComputeDiffEmptyBothSides(t *testing.T) {
	d := ComputeDiff(scanner.Snapshot{}, nil)
	assert.True(t, d.Empty())
}

func TestComputeDiffAllNew(t *testing.T) {
	now := time.Now()
	snap := scanner.Snapshot{
		"b.txt": entry(2, now),
		"a.txt": entry(1, now),
	}

	d := ComputeDiff(snap, nil)
	assert.Equal(t, []string{"a.txt", "b.txt"}, d.Added)
	assert.Empty(t, d.Changed)
	assert.Empty(t, d.Removed)
}

func TestComputeDiffUnchanged(t *testing.T) {
	now := time.Now()
	snap := scanner.Snapshot{"a.txt": entry(10, now)}
	prev := []store.Meta{meta("a.txt", 10, now)}

	assert.True(t, ComputeDiff(snap, prev).Empty())
}

func TestComputeDiffSizeChange(t *testing.T) {
	now := time.Now()
	snap := scanner.Snapshot{"a.txt": entry(11, now)}
	prev := []store.Meta{meta("a.txt", 10, now)}

	d := ComputeDiff(snap, prev)
	assert.Equal(t, []string{"a.txt"}, d.Changed)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Removed)
}

func TestComputeDiffMtimeChange(t *testing.T) {
	now := time.Now()
	snap := scanner.Snapshot{"a.txt": entry(10, now.Add(time.Second))}
	prev := []store.Meta{meta("a.txt", 10, now)}

	d := ComputeDiff(snap, prev)
	assert.Equal(t, []string{"a.txt"}, d.Changed)
}

func TestComputeDiffRemoved(t *testing.T) {
	now := time.Now()
	snap := scanner.Snapshot{"keep.txt": entry(1, now)}
	prev := []store.Meta{
		meta("keep.txt", 1, now),
		meta("gone.txt", 2, now),
	}

	d := ComputeDiff(snap, prev)
	assert.Empty(t, d.Added)
	assert.Empty(t, d.Changed)
	if assert.Len(t, d.Removed, 1) {
		assert.Equal(t, "gone.txt", d.Removed[0].Path)
		assert.Equal(t, store.PointID("gone.txt"), d.Removed[0].ID)
	}
}

func TestComputeDiffMixed(t *testing.T) {
	now := time.Now()
	snap := scanner.Snapshot{
		"new.txt":       entry(1, now),
		"changed.txt":   entry(9, now),
		"unchanged.txt": entry(3, now),
	}
	prev := []store.Meta{
		meta("changed.txt", 5, now),
		meta("unchanged.txt", 3, now),
		meta("removed.txt", 4, now),
	}

	d := ComputeDiff(snap, prev)
	assert.Equal(t, []string{"new.txt"}, d.Added)
	assert.Equal(t, []string{"changed.txt"}, d.Changed)
	if assert.Len(t, d.Removed, 1) {
		assert.Equal(t, "removed.txt", d.Removed[0].Path)
	}
	assert.False(t, d.Empty())
}
