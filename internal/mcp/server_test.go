package mcp

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/vectorium/vectorium/internal/errors"
	"github.com/vectorium/vectorium/internal/index"
	"github.com/vectorium/vectorium/internal/search"
)

type fakeSearcher struct {
	req  search.Request
	resp *search.Response
	err  error
}

func (f *fakeSearcher) Search(_ context.Context, req search.Request) (*search.Response, error) {
	f.req = req
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeIndexer struct {
	report *index.Report
	err    error
	runs   int
}

func (f *fakeIndexer) Run(context.Context) (*index.Report, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func testInfo() Info {
	return Info{Collection: "documents", Dimensions: 384, EmbeddingModel: "all-minilm"}
}

func TestSearchHandlerMapsResponse(t *testing.T) {
	mod := time.Date(2026, 5, 10, 8, 30, 0, 0, time.UTC)
	searcher := &fakeSearcher{resp: &search.Response{
		Results: []search.Result{{
			Path:         "docs/a.txt",
			Score:        0.92,
			Preview:      "alpha",
			Size:         120,
			LastModified: mod,
		}},
		TotalFound:      1,
		EmbeddingTimeMS: 3,
		SearchTimeMS:    7,
	}}
	s := NewServer(searcher, &fakeIndexer{}, testInfo())

	limit := 3
	threshold := 0.8
	_, out, err := s.searchHandler(context.Background(), nil, SearchInput{
		Query:     "find alpha",
		Limit:     &limit,
		Threshold: &threshold,
	})
	require.NoError(t, err)

	// request passed through unmodified; the pipeline owns clamping
	assert.Equal(t, "find alpha", searcher.req.Query)
	require.NotNil(t, searcher.req.Limit)
	assert.Equal(t, 3, *searcher.req.Limit)
	require.NotNil(t, searcher.req.Threshold)
	assert.InDelta(t, 0.8, *searcher.req.Threshold, 1e-9)

	require.Len(t, out.Results, 1)
	assert.Equal(t, "docs/a.txt", out.Results[0].Filename)
	assert.InDelta(t, 0.92, float64(out.Results[0].SimilarityScore), 1e-6)
	assert.Equal(t, int64(120), out.Results[0].FileSize)
	assert.Equal(t, "2026-05-10T08:30:00Z", out.Results[0].LastModified)
	assert.Equal(t, 1, out.TotalFound)
	assert.Equal(t, int64(3), out.EmbeddingTimeMS)
	assert.Equal(t, int64(7), out.SearchTimeMS)
}

func TestSearchHandlerOmittedOptionsStayNil(t *testing.T) {
	searcher := &fakeSearcher{resp: &search.Response{}}
	s := NewServer(searcher, &fakeIndexer{}, testInfo())

	_, _, err := s.searchHandler(context.Background(), nil, SearchInput{Query: "q"})
	require.NoError(t, err)
	assert.Nil(t, searcher.req.Limit)
	assert.Nil(t, searcher.req.Threshold)
}

func TestSearchHandlerErrorCarriesCode(t *testing.T) {
	searcher := &fakeSearcher{err: verrors.ValidationError("threshold must be in [0, 1], got 2")}
	s := NewServer(searcher, &fakeIndexer{}, testInfo())

	_, _, err := s.searchHandler(context.Background(), nil, SearchInput{Query: "q"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), verrors.ErrCodeInvalidInput)
}

func TestIndexHandlerReturnsReport(t *testing.T) {
	indexer := &fakeIndexer{report: &index.Report{
		Scanned:  4,
		Added:    2,
		Updated:  1,
		Removed:  1,
		Failed:   []index.Failure{{Path: "bad.txt", Reason: "unreadable"}},
		Duration: 1500 * time.Millisecond,
	}}
	s := NewServer(&fakeSearcher{}, indexer, testInfo())

	_, out, err := s.indexHandler(context.Background(), nil, IndexInput{})
	require.NoError(t, err)

	assert.Equal(t, 4, out.Scanned)
	assert.Equal(t, 2, out.Added)
	assert.Equal(t, 1, out.Updated)
	assert.Equal(t, 1, out.Removed)
	assert.Equal(t, int64(1500), out.DurationMS)
	require.Len(t, out.Failed, 1)
	assert.Equal(t, "bad.txt", out.Failed[0].Path)
	assert.Equal(t, 1, indexer.runs)
}

func TestIndexHandlerStoreFailure(t *testing.T) {
	indexer := &fakeIndexer{err: verrors.StoreUnavailable("connection refused", nil)}
	s := NewServer(&fakeSearcher{}, indexer, testInfo())

	_, _, err := s.indexHandler(context.Background(), nil, IndexInput{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), verrors.ErrCodeStoreUnavailable)
}

func TestStatusHandlerLifecycle(t *testing.T) {
	indexer := &fakeIndexer{report: &index.Report{Scanned: 2, Added: 2}}
	s := NewServer(&fakeSearcher{}, indexer, testInfo())

	_, out, err := s.statusHandler(context.Background(), nil, StatusInput{})
	require.NoError(t, err)
	assert.Equal(t, "documents", out.Collection)
	assert.Equal(t, 384, out.Dimensions)
	assert.Equal(t, "all-minilm", out.EmbeddingModel)
	assert.False(t, out.Indexing)
	assert.Nil(t, out.LastRun)
	assert.Empty(t, out.LastRunAt)
	assert.Zero(t, out.Documents)

	_, _, err = s.indexHandler(context.Background(), nil, IndexInput{})
	require.NoError(t, err)

	_, out, err = s.statusHandler(context.Background(), nil, StatusInput{})
	require.NoError(t, err)
	assert.False(t, out.Indexing)
	require.NotNil(t, out.LastRun)
	assert.Equal(t, 2, out.LastRun.Added)
	assert.Equal(t, 2, out.Documents)
	assert.NotEmpty(t, out.LastRunAt)
}

func TestRecordRunPublishesBackgroundReport(t *testing.T) {
	s := NewServer(&fakeSearcher{}, &fakeIndexer{}, testInfo())

	s.RecordRun(&index.Report{Scanned: 9, Added: 9})

	_, out, err := s.statusHandler(context.Background(), nil, StatusInput{})
	require.NoError(t, err)
	require.NotNil(t, out.LastRun)
	assert.Equal(t, 9, out.LastRun.Scanned)
}

func TestSetIndexingVisibleInStatus(t *testing.T) {
	s := NewServer(&fakeSearcher{}, &fakeIndexer{}, testInfo())

	s.SetIndexing(true)
	_, out, err := s.statusHandler(context.Background(), nil, StatusInput{})
	require.NoError(t, err)
	assert.True(t, out.Indexing)

	s.SetIndexing(false)
	_, out, err = s.statusHandler(context.Background(), nil, StatusInput{})
	require.NoError(t, err)
	assert.False(t, out.Indexing)
}

func TestToolErrorFormatsDetails(t *testing.T) {
	err := toolError(verrors.FileError("docs/a.txt", errors.New("permission denied")))
	assert.Contains(t, err.Error(), verrors.ErrCodeFileUnreadable)
	assert.Contains(t, err.Error(), "path=docs/a.txt")
}

func TestToolErrorWrapsPlainErrors(t *testing.T) {
	err := toolError(errors.New("something odd"))
	assert.Contains(t, err.Error(), verrors.ErrCodeInternal)
	assert.Contains(t, err.Error(), "something odd")
}

func TestToolErrorMapsRawDeadline(t *testing.T) {
	err := toolError(context.DeadlineExceeded)
	assert.Contains(t, err.Error(), verrors.ErrCodeTimeout)
}
