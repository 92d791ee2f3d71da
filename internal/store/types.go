// Package store persists document embeddings in a vector database and
// answers similarity queries against them.
package store

import (
	"context"
	"time"
)

// Default store settings.
const (
	// DefaultEndpoint is the Qdrant gRPC endpoint.
	DefaultEndpoint = "localhost:6334"

	// DefaultCollection is the collection holding document vectors.
	DefaultCollection = "documents"

	// DefaultDimensions matches the default embedding model.
	DefaultDimensions = 384

	// DefaultTimeout bounds a single store operation.
	DefaultTimeout = 10 * time.Second

	// scrollPageSize is the page size when listing indexed documents.
	scrollPageSize = 256
)

// Payload is the metadata stored alongside each document vector.
type Payload struct {
	// Path is the slash-separated path relative to the documents root.
	Path string

	// Size is the file size in bytes at indexing time.
	Size int64

	// LastModified is the file mtime at indexing time, in Unix nanoseconds.
	LastModified int64

	// Preview is the leading content excerpt shown in search results.
	Preview string
}

// Point is a document vector plus its payload, keyed by a UUID derived
// from the document path.
type Point struct {
	ID      string
	Vector  []float32
	Payload Payload
}

// ScoredPoint is a query match with its cosine similarity score.
type ScoredPoint struct {
	ID      string
	Score   float32
	Payload Payload
}

// Meta describes an indexed document without its vector. It is the
// store-derived prior state the index tracker diffs against.
type Meta struct {
	ID           string
	Path         string
	Size         int64
	LastModified int64
}

// VectorStore is the persistence boundary for document embeddings.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist.
	// Calling it against an existing collection is a no-op.
	EnsureCollection(ctx context.Context) error

	// Upsert inserts or replaces points. Points with existing IDs are
	// overwritten.
	Upsert(ctx context.Context, points []Point) error

	// Delete removes points by ID. Missing IDs are ignored.
	Delete(ctx context.Context, ids []string) error

	// Query returns up to limit points ordered by descending score,
	// filtered to scores >= threshold.
	Query(ctx context.Context, vector []float32, limit int, threshold float32) ([]ScoredPoint, error)

	// FetchIndexed lists the metadata of every indexed document.
	FetchIndexed(ctx context.Context) ([]Meta, error)

	// Close releases the underlying connection.
	Close() error
}
