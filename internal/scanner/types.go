// Package scanner discovers indexable text files under the document root.
// It produces the filesystem snapshot the indexing pipeline diffs against
// the metadata already held by the vector store.
package scanner

import "time"

// Entry contains the change-detection metadata for one discovered file.
type Entry struct {
	// Path is the path relative to the document root, in slash form.
	Path string

	// AbsPath is the absolute path on disk.
	AbsPath string

	// Size is the file size in bytes.
	Size int64

	// ModTime is the last modification time.
	ModTime time.Time
}

// Snapshot maps relative path to its Entry for every eligible file found
// in a single scan. Iteration order carries no meaning.
type Snapshot map[string]Entry

// Options configures the scanner behavior.
type Options struct {
	// Root is the document root directory to scan.
	Root string

	// Extensions lists eligible file extensions (lowercase, with dot).
	// Empty means DefaultExtensions.
	Extensions []string

	// MaxFileSize is the maximum file size to include in bytes
	// (0 = DefaultMaxFileSize).
	MaxFileSize int64
}

// DefaultMaxFileSize is the default maximum file size (10MB).
const DefaultMaxFileSize = 10 * 1024 * 1024

// DefaultExtensions are the file extensions treated as text documents.
var DefaultExtensions = []string{".txt", ".md"}
