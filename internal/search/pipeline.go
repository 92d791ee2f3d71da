// Package search answers similarity queries over the indexed documents.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/vectorium/vectorium/internal/embed"
	verrors "github.com/vectorium/vectorium/internal/errors"
	"github.com/vectorium/vectorium/internal/store"
)

// Search defaults and bounds.
const (
	// DefaultLimit is the result count when the caller does not ask.
	DefaultLimit = 5

	// MaxLimit caps the result count regardless of what was asked.
	MaxLimit = 20

	// DefaultThreshold is the minimum similarity score when the caller
	// does not set one.
	DefaultThreshold = 0.7

	// DefaultTimeout bounds a whole search (embedding plus query).
	DefaultTimeout = 5 * time.Second
)

// Request is a similarity search request. A nil Limit or Threshold
// means "use the default"; explicit values are clamped or validated.
type Request struct {
	Query     string
	Limit     *int
	Threshold *float64
}

// Result is one matching document.
type Result struct {
	Path         string    `json:"filename"`
	Score        float32   `json:"similarity_score"`
	Preview      string    `json:"content_preview"`
	Size         int64     `json:"file_size"`
	LastModified time.Time `json:"last_modified"`
}

// Response is a completed search with timing breakdown.
type Response struct {
	Results         []Result `json:"results"`
	TotalFound      int      `json:"total_found"`
	EmbeddingTimeMS int64    `json:"query_embedding_time_ms"`
	SearchTimeMS    int64    `json:"search_time_ms"`
}

// Options configures a search pipeline. DefaultThreshold is a pointer
// so a configured 0.0 ("return everything") is distinguishable from
// unset.
type Options struct {
	DefaultLimit     int
	MaxLimit         int
	DefaultThreshold *float64
	Timeout          time.Duration
}

// Pipeline embeds queries and runs them against the vector store.
type Pipeline struct {
	store    store.VectorStore
	embedder embed.Embedder
	opts     Options
}

// NewPipeline creates a search pipeline.
func NewPipeline(s store.VectorStore, e embed.Embedder, opts Options) *Pipeline {
	if opts.DefaultLimit <= 0 {
		opts.DefaultLimit = DefaultLimit
	}
	if opts.MaxLimit <= 0 {
		opts.MaxLimit = MaxLimit
	}
	if opts.DefaultThreshold == nil {
		d := float64(DefaultThreshold)
		opts.DefaultThreshold = &d
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	return &Pipeline{store: s, embedder: e, opts: opts}
}

// Search validates the request, embeds the query, and returns the
// matching documents ordered by descending score.
func (p *Pipeline) Search(ctx context.Context, req Request) (*Response, error) {
	if strings.TrimSpace(req.Query) == "" {
		return nil, verrors.New(verrors.ErrCodeQueryEmpty, "query must not be empty", nil)
	}

	// Out-of-range limits clamp silently: explicit zero or negative
	// values become 1, oversized requests become the cap.
	limit := p.opts.DefaultLimit
	if req.Limit != nil {
		limit = *req.Limit
		if limit < 1 {
			limit = 1
		}
		if limit > p.opts.MaxLimit {
			limit = p.opts.MaxLimit
		}
	}

	threshold := *p.opts.DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
		if math.IsNaN(threshold) || threshold < 0 || threshold > 1 {
			return nil, verrors.ValidationError(
				fmt.Sprintf("threshold must be in [0, 1], got %v", threshold))
		}
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	embedStart := time.Now()
	vector, err := p.embedder.Embed(ctx, req.Query)
	embedTime := time.Since(embedStart)
	if err != nil {
		return nil, p.mapTimeout(ctx, "query embedding", err)
	}

	queryStart := time.Now()
	hits, err := p.store.Query(ctx, vector, limit, float32(threshold))
	queryTime := time.Since(queryStart)
	if err != nil {
		return nil, p.mapTimeout(ctx, "vector search", err)
	}

	results := make([]Result, len(hits))
	for i, hit := range hits {
		results[i] = Result{
			Path:         hit.Payload.Path,
			Score:        hit.Score,
			Preview:      hit.Payload.Preview,
			Size:         hit.Payload.Size,
			LastModified: time.Unix(0, hit.Payload.LastModified),
		}
	}

	slog.Debug("search complete",
		"query_len", len(req.Query),
		"limit", limit,
		"threshold", threshold,
		"results", len(results),
		"embed_ms", embedTime.Milliseconds(),
		"search_ms", queryTime.Milliseconds())

	return &Response{
		Results:         results,
		TotalFound:      len(results),
		EmbeddingTimeMS: embedTime.Milliseconds(),
		SearchTimeMS:    queryTime.Milliseconds(),
	}, nil
}

// mapTimeout converts a deadline overrun into the timeout error the
// tool boundary reports; other errors pass through unchanged.
func (p *Pipeline) mapTimeout(ctx context.Context, stage string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return verrors.TimeoutError(
			fmt.Sprintf("%s exceeded %s budget", stage, p.opts.Timeout), err)
	}
	return err
}
