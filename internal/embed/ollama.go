package embed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

// OllamaEmbedder generates embeddings using Ollama's HTTP API.
type OllamaEmbedder struct {
	client    *http.Client
	transport *http.Transport // kept for connection cleanup
	config    OllamaConfig

	mu     sync.RWMutex
	closed bool
}

// Verify interface implementation at compile time.
var _ Embedder = (*OllamaEmbedder)(nil)

// NewOllamaEmbedder creates a new Ollama embedder.
// It does not contact the server; use Available to probe readiness.
func NewOllamaEmbedder(cfg OllamaConfig) *OllamaEmbedder {
	if cfg.Host == "" {
		cfg.Host = DefaultOllamaHost
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}

	// Per-request timeouts come from the context, not http.Client.Timeout,
	// so a caller-supplied deadline always wins.
	transport := &http.Transport{
		MaxIdleConns:        OllamaPoolSize,
		MaxIdleConnsPerHost: OllamaPoolSize,
		IdleConnTimeout:     10 * time.Second,
	}

	return &OllamaEmbedder{
		client:    &http.Client{Transport: transport},
		transport: transport,
		config:    cfg,
	}
}

// Embed generates the embedding for a single text.
func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}

	// Whitespace-only input embeds to the zero vector rather than erroring;
	// the scanner never hands such content to the indexing pipeline.
	if strings.TrimSpace(text) == "" {
		return make([]float32, e.config.Dimensions), nil
	}

	embeddings, err := e.doEmbedWithRetry(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != 1 {
		return nil, verrors.EmbeddingError(
			fmt.Sprintf("expected 1 embedding, got %d", len(embeddings)), nil)
	}
	return e.checkDimensions(embeddings[0])
}

// EmbedBatch generates embeddings for multiple texts in one request.
func (e *OllamaEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.checkOpen(); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return [][]float32{}, nil
	}

	embeddings, err := e.doEmbedWithRetry(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(embeddings) != len(texts) {
		return nil, verrors.EmbeddingError(
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(embeddings)), nil)
	}
	for i, v := range embeddings {
		if embeddings[i], err = e.checkDimensions(v); err != nil {
			return nil, err
		}
	}
	return embeddings, nil
}

// doEmbedWithRetry issues the embed request with backoff on failure.
// input is a string or a []string, matching the Ollama API.
func (e *OllamaEmbedder) doEmbedWithRetry(ctx context.Context, input any) ([][]float32, error) {
	var result [][]float32

	err := doWithRetry(ctx, e.config.Retry, func() error {
		reqCtx, cancel := context.WithTimeout(ctx, e.config.Timeout)
		defer cancel()

		embeddings, err := e.doEmbed(reqCtx, input)
		if err != nil {
			return err
		}
		result = embeddings
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, verrors.EmbeddingError("embedding request failed", err)
	}
	return result, nil
}

// doEmbed performs a single POST /api/embed call.
func (e *OllamaEmbedder) doEmbed(ctx context.Context, input any) ([][]float32, error) {
	body, err := json.Marshal(ollamaEmbedRequest{
		Model: e.config.Model,
		Input: input,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		e.config.Host+"/api/embed", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ollama request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	var result ollamaEmbedResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}

	for i, v := range result.Embeddings {
		result.Embeddings[i] = normalizeVector(v)
	}
	return result.Embeddings, nil
}

// checkDimensions verifies the vector length against the configured
// dimension; a mismatch would silently corrupt the collection.
func (e *OllamaEmbedder) checkDimensions(v []float32) ([]float32, error) {
	if len(v) != e.config.Dimensions {
		return nil, verrors.EmbeddingError(
			fmt.Sprintf("model %s returned %d dimensions, expected %d",
				e.config.Model, len(v), e.config.Dimensions), nil)
	}
	return v, nil
}

// Dimensions returns the embedding dimension.
func (e *OllamaEmbedder) Dimensions() int {
	return e.config.Dimensions
}

// ModelName returns the model identifier.
func (e *OllamaEmbedder) ModelName() string {
	return e.config.Model
}

// Available checks whether the Ollama server responds and lists the
// configured model.
func (e *OllamaEmbedder) Available(ctx context.Context) bool {
	if err := e.checkOpen(); err != nil {
		return false
	}

	probeCtx, cancel := context.WithTimeout(ctx, OllamaConnectTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, e.config.Host+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return false
	}

	var result ollamaModelListResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false
	}

	want := strings.ToLower(e.config.Model)
	wantBase := strings.Split(want, ":")[0]
	for _, m := range result.Models {
		name := strings.ToLower(m.Name)
		if name == want || strings.Split(name, ":")[0] == wantBase {
			return true
		}
	}
	return false
}

// Close releases HTTP connections. The embedder is unusable afterwards.
func (e *OllamaEmbedder) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	e.transport.CloseIdleConnections()
	return nil
}

func (e *OllamaEmbedder) checkOpen() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return fmt.Errorf("embedder is closed")
	}
	return nil
}
