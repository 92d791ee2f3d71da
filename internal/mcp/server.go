// Package mcp exposes document search and indexing as MCP tools over
// stdio.
package mcp

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vectorium/vectorium/internal/index"
	"github.com/vectorium/vectorium/internal/search"
	"github.com/vectorium/vectorium/pkg/version"
)

// Searcher answers similarity queries. Implemented by search.Pipeline.
type Searcher interface {
	Search(ctx context.Context, req search.Request) (*search.Response, error)
}

// Indexer synchronizes the store with the documents root. Implemented
// by index.Pipeline.
type Indexer interface {
	Run(ctx context.Context) (*index.Report, error)
}

// Info describes the serving configuration reported by index_status.
type Info struct {
	Collection     string
	Dimensions     int
	EmbeddingModel string
}

// Server is the MCP boundary. It owns no domain logic; it validates
// tool calls, delegates to the pipelines, and shapes their results
// for the wire.
type Server struct {
	mcp      *mcp.Server
	searcher Searcher
	indexer  Indexer
	info     Info
	logger   *slog.Logger

	mu        sync.Mutex
	indexing  bool
	lastRun   *index.Report
	lastRunAt time.Time
}

// NewServer creates the MCP server and registers its tools.
func NewServer(searcher Searcher, indexer Indexer, info Info) *Server {
	s := &Server{
		searcher: searcher,
		indexer:  indexer,
		info:     info,
		logger:   slog.Default(),
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "vectorium",
			Version: version.Version,
		},
		nil,
	)
	s.registerTools()
	return s
}

// SearchInput is the input schema for the search_documents tool.
// Limit and Threshold are pointers so omission is distinguishable from
// an explicit zero.
type SearchInput struct {
	Query     string   `json:"query" jsonschema:"the natural-language search query"`
	Limit     *int     `json:"limit,omitempty" jsonschema:"maximum number of results, 1-20, default 5"`
	Threshold *float64 `json:"threshold,omitempty" jsonschema:"minimum similarity score in [0,1], default 0.7"`
}

// SearchResultOutput is one match in the search_documents output.
type SearchResultOutput struct {
	Filename        string  `json:"filename" jsonschema:"path relative to the documents root"`
	SimilarityScore float32 `json:"similarity_score" jsonschema:"cosine similarity score in [0,1]"`
	Preview         string  `json:"content_preview" jsonschema:"leading excerpt of the document"`
	FileSize        int64   `json:"file_size" jsonschema:"file size in bytes at indexing"`
	LastModified    string  `json:"last_modified" jsonschema:"RFC 3339 modification time at indexing"`
}

// SearchOutput is the output schema for the search_documents tool.
type SearchOutput struct {
	Results         []SearchResultOutput `json:"results" jsonschema:"matches ordered by descending score"`
	TotalFound      int                  `json:"total_found" jsonschema:"number of results returned"`
	EmbeddingTimeMS int64                `json:"query_embedding_time_ms" jsonschema:"time spent embedding the query"`
	SearchTimeMS    int64                `json:"search_time_ms" jsonschema:"time spent querying the vector store"`
}

// IndexInput is the input schema for the index_documents tool.
type IndexInput struct{}

// IndexOutput is the output schema for the index_documents tool.
type IndexOutput struct {
	Scanned    int             `json:"scanned" jsonschema:"eligible files found on disk"`
	Added      int             `json:"added" jsonschema:"documents indexed for the first time"`
	Updated    int             `json:"updated" jsonschema:"documents re-indexed after changes"`
	Removed    int             `json:"removed" jsonschema:"stale documents deleted from the store"`
	Failed     []index.Failure `json:"failed,omitempty" jsonschema:"files skipped with the reason"`
	DurationMS int64           `json:"duration_ms" jsonschema:"total run duration"`
}

// StatusInput is the input schema for the index_status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the index_status tool.
type StatusOutput struct {
	Collection     string       `json:"collection" jsonschema:"vector store collection name"`
	Dimensions     int          `json:"dimensions" jsonschema:"embedding dimension of the collection"`
	EmbeddingModel string       `json:"embedding_model" jsonschema:"active embedding model"`
	Documents      int          `json:"documents" jsonschema:"eligible documents found by the last run"`
	Indexing       bool         `json:"indexing" jsonschema:"true while an indexing run is in progress"`
	LastRun        *IndexOutput `json:"last_run,omitempty" jsonschema:"summary of the most recent completed run"`
	LastRunAt      string       `json:"last_run_at,omitempty" jsonschema:"RFC 3339 time the last run finished"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "search_documents",
		Description: "Semantic search over the indexed document collection. Finds documents by meaning, not keywords. Returns the matching file paths with similarity scores and content previews.",
	}, s.searchHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_documents",
		Description: "Synchronize the vector store with the documents directory: index new and changed files and remove entries for deleted ones. Safe to call repeatedly; unchanged files are skipped.",
	}, s.indexHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "index_status",
		Description: "Report whether an indexing run is in progress and summarize the most recent run. Use before searching if results look stale.",
	}, s.statusHandler)
}

func (s *Server) searchHandler(ctx context.Context, _ *mcp.CallToolRequest, input SearchInput) (
	*mcp.CallToolResult,
	SearchOutput,
	error,
) {
	resp, err := s.searcher.Search(ctx, search.Request{
		Query:     input.Query,
		Limit:     input.Limit,
		Threshold: input.Threshold,
	})
	if err != nil {
		s.logger.Warn("search failed", slog.String("error", err.Error()))
		return nil, SearchOutput{}, toolError(err)
	}

	out := SearchOutput{
		Results:         make([]SearchResultOutput, len(resp.Results)),
		TotalFound:      resp.TotalFound,
		EmbeddingTimeMS: resp.EmbeddingTimeMS,
		SearchTimeMS:    resp.SearchTimeMS,
	}
	for i, r := range resp.Results {
		out.Results[i] = SearchResultOutput{
			Filename:        r.Path,
			SimilarityScore: r.Score,
			Preview:         r.Preview,
			FileSize:        r.Size,
			LastModified:    r.LastModified.UTC().Format(time.RFC3339),
		}
	}
	return nil, out, nil
}

func (s *Server) indexHandler(ctx context.Context, _ *mcp.CallToolRequest, _ IndexInput) (
	*mcp.CallToolResult,
	IndexOutput,
	error,
) {
	s.SetIndexing(true)
	report, err := s.indexer.Run(ctx)
	s.SetIndexing(false)
	if err != nil {
		s.logger.Error("index run failed", slog.String("error", err.Error()))
		return nil, IndexOutput{}, toolError(err)
	}

	out := reportOutput(report)
	s.mu.Lock()
	s.lastRun = report
	s.lastRunAt = time.Now()
	s.mu.Unlock()
	return nil, out, nil
}

func (s *Server) statusHandler(_ context.Context, _ *mcp.CallToolRequest, _ StatusInput) (
	*mcp.CallToolResult,
	StatusOutput,
	error,
) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StatusOutput{
		Collection:     s.info.Collection,
		Dimensions:     s.info.Dimensions,
		EmbeddingModel: s.info.EmbeddingModel,
		Indexing:       s.indexing,
	}
	if s.lastRun != nil {
		lr := reportOutput(s.lastRun)
		out.LastRun = &lr
		out.LastRunAt = s.lastRunAt.UTC().Format(time.RFC3339)
		out.Documents = s.lastRun.Scanned
	}
	return nil, out, nil
}

// RecordRun publishes an indexing report produced outside a tool call,
// such as the startup run or a watcher-triggered run, so index_status
// reflects it.
func (s *Server) RecordRun(report *index.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastRun = report
	s.lastRunAt = time.Now()
}

// SetIndexing marks an indexing run in progress so index_status can
// report runs triggered outside a tool call as well.
func (s *Server) SetIndexing(v bool) {
	s.mu.Lock()
	s.indexing = v
	s.mu.Unlock()
}

func reportOutput(r *index.Report) IndexOutput {
	return IndexOutput{
		Scanned:    r.Scanned,
		Added:      r.Added,
		Updated:    r.Updated,
		Removed:    r.Removed,
		Failed:     r.Failed,
		DurationMS: r.Duration.Milliseconds(),
	}
}

// Serve runs the server over stdio until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	s.logger.Info("starting MCP server", slog.String("transport", "stdio"))

	err := s.mcp.Run(ctx, &mcp.StdioTransport{})
	if err != nil && err != context.Canceled {
		s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
		return err
	}
	s.logger.Info("MCP server stopped")
	return nil
}
