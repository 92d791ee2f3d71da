package search

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vectorium/vectorium/internal/embed"
	verrors "github.com/vectorium/vectorium/internal/errors"
	"github.com/vectorium/vectorium/internal/store"
)

// queryStore records Query calls and returns canned hits.
type queryStore struct {
	store.VectorStore
	hits      []store.ScoredPoint
	err       error
	limit     int
	threshold float32
	delay     time.Duration
}

func (q *queryStore) Query(ctx context.Context, _ []float32, limit int, threshold float32) ([]store.ScoredPoint, error) {
	q.limit = limit
	q.threshold = threshold
	if q.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(q.delay):
		}
	}
	if q.err != nil {
		return nil, q.err
	}
	out := make([]store.ScoredPoint, 0, len(q.hits))
	for _, h := range q.hits {
		if h.Score >= threshold {
			out = append(out, h)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func hit(path string, score float32) store.ScoredPoint {
	return store.ScoredPoint{
		ID:    store.PointID(path),
		Score: score,
		Payload: store.Payload{
			Path:         path,
			Preview:      "preview of " + path,
			LastModified: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC).UnixNano(),
		},
	}
}

func newTestPipeline(s store.VectorStore) *Pipeline {
	return NewPipeline(s, embed.NewStaticEmbedder(embed.DefaultDimensions), Options{})
}

func floatPtr(v float64) *float64 { return &v }

func intPtr(v int) *int { return &v }

func TestSearchReturnsScoredResults(t *testing.T) {
	qs := &queryStore{hits: []store.ScoredPoint{
		hit("docs/a.txt", 0.95),
		hit("docs/b.txt", 0.81),
	}}
	p := newTestPipeline(qs)

	resp, err := p.Search(context.Background(), Request{Query: "database pooling"})
	require.NoError(t, err)

	require.Len(t, resp.Results, 2)
	assert.Equal(t, resp.TotalFound, len(resp.Results))
	assert.Equal(t, "docs/a.txt", resp.Results[0].Path)
	assert.InDelta(t, 0.95, float64(resp.Results[0].Score), 1e-6)
	assert.Equal(t, "preview of docs/a.txt", resp.Results[0].Preview)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), resp.Results[0].LastModified.UTC())

	assert.GreaterOrEqual(t, resp.EmbeddingTimeMS, int64(0))
	assert.GreaterOrEqual(t, resp.SearchTimeMS, int64(0))
}

func TestSearchDefaultsLimitAndThreshold(t *testing.T) {
	qs := &queryStore{}
	p := newTestPipeline(qs)

	_, err := p.Search(context.Background(), Request{Query: "anything"})
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, qs.limit)
	assert.InDelta(t, DefaultThreshold, float64(qs.threshold), 1e-6)
}

func TestSearchLimitClamping(t *testing.T) {
	tests := []struct {
		name  string
		limit *int
		want  int
	}{
		{"omitted uses default", nil, DefaultLimit},
		{"explicit zero clamps to one", intPtr(0), 1},
		{"negative clamps to one", intPtr(-3), 1},
		{"in range passes through", intPtr(7), 7},
		{"above max clamps to max", intPtr(100), MaxLimit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			qs := &queryStore{}
			_, err := newTestPipeline(qs).Search(context.Background(),
				Request{Query: "q", Limit: tt.limit})
			require.NoError(t, err)
			assert.Equal(t, tt.want, qs.limit)
		})
	}
}

func TestSearchExplicitThreshold(t *testing.T) {
	qs := &queryStore{hits: []store.ScoredPoint{
		hit("a.txt", 0.9),
		hit("b.txt", 0.4),
	}}
	p := newTestPipeline(qs)

	resp, err := p.Search(context.Background(),
		Request{Query: "q", Threshold: floatPtr(0.5)})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, float64(qs.threshold), 1e-6)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, "a.txt", resp.Results[0].Path)
	assert.Equal(t, 1, resp.TotalFound)
}

func TestSearchConfiguredZeroDefaultThreshold(t *testing.T) {
	qs := &queryStore{hits: []store.ScoredPoint{hit("low.txt", 0.05)}}
	p := NewPipeline(qs, embed.NewStaticEmbedder(embed.DefaultDimensions),
		Options{DefaultThreshold: floatPtr(0)})

	// A configured 0.0 is a deliberate "return everything" default,
	// not an unset value to be replaced.
	resp, err := p.Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	assert.Zero(t, qs.threshold)
	assert.Len(t, resp.Results, 1)
}

func TestSearchZeroThresholdIsExplicit(t *testing.T) {
	qs := &queryStore{hits: []store.ScoredPoint{hit("low.txt", 0.1)}}
	p := newTestPipeline(qs)

	resp, err := p.Search(context.Background(),
		Request{Query: "q", Threshold: floatPtr(0)})
	require.NoError(t, err)
	assert.Zero(t, qs.threshold)
	assert.Len(t, resp.Results, 1)
}

func TestSearchInvalidThreshold(t *testing.T) {
	for _, bad := range []float64{-0.1, 1.5, math.NaN()} {
		_, err := newTestPipeline(&queryStore{}).Search(context.Background(),
			Request{Query: "q", Threshold: floatPtr(bad)})
		require.Error(t, err)
		assert.Equal(t, verrors.ErrCodeInvalidInput, verrors.GetCode(err))
	}
}

func TestSearchEmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\n\t"} {
		_, err := newTestPipeline(&queryStore{}).Search(context.Background(), Request{Query: q})
		require.Error(t, err)
		assert.Equal(t, verrors.ErrCodeQueryEmpty, verrors.GetCode(err))
	}
}

func TestSearchPreservesStoreOrder(t *testing.T) {
	qs := &queryStore{hits: []store.ScoredPoint{
		hit("first.txt", 0.8),
		hit("second.txt", 0.8), // tie: store order wins
		hit("third.txt", 0.75),
	}}

	resp, err := newTestPipeline(qs).Search(context.Background(), Request{Query: "q"})
	require.NoError(t, err)
	require.Len(t, resp.Results, 3)
	assert.Equal(t, "first.txt", resp.Results[0].Path)
	assert.Equal(t, "second.txt", resp.Results[1].Path)
	assert.Equal(t, "third.txt", resp.Results[2].Path)
}

func TestSearchTimeout(t *testing.T) {
	qs := &queryStore{delay: time.Second}
	p := NewPipeline(qs, embed.NewStaticEmbedder(embed.DefaultDimensions),
		Options{Timeout: 20 * time.Millisecond})

	_, err := p.Search(context.Background(), Request{Query: "slow"})
	require.Error(t, err)
	assert.Equal(t, verrors.ErrCodeTimeout, verrors.GetCode(err))
	assert.True(t, verrors.IsRetryable(err))
}

func TestSearchStoreErrorPassesThrough(t *testing.T) {
	qs := &queryStore{err: verrors.StoreUnavailable("down", nil)}

	_, err := newTestPipeline(qs).Search(context.Background(), Request{Query: "q"})
	require.Error(t, err)
	assert.Equal(t, verrors.ErrCodeStoreUnavailable, verrors.GetCode(err))
}

func TestSearchNoResults(t *testing.T) {
	resp, err := newTestPipeline(&queryStore{}).Search(context.Background(), Request{Query: "nothing"})
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.Zero(t, resp.TotalFound)
}
