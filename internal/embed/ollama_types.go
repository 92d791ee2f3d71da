package embed

import "time"

// Default Ollama connection settings.
const (
	// DefaultOllamaHost is the default Ollama API endpoint.
	DefaultOllamaHost = "http://localhost:11434"

	// DefaultOllamaModel is the default embedding model.
	DefaultOllamaModel = "all-minilm"

	// OllamaConnectTimeout bounds the initial availability probe.
	OllamaConnectTimeout = 5 * time.Second

	// OllamaPoolSize is the HTTP connection pool size.
	OllamaPoolSize = 4
)

// OllamaConfig configures the Ollama embedder.
type OllamaConfig struct {
	// Host is the Ollama API endpoint (default: http://localhost:11434).
	Host string

	// Model is the embedding model name (default: all-minilm).
	Model string

	// Dimensions is the expected embedding dimension (default: 384).
	Dimensions int

	// Timeout bounds a single embedding request.
	Timeout time.Duration

	// Retry configures backoff for transient failures.
	Retry RetryConfig
}

// ollamaEmbedRequest is the request body for POST /api/embed.
type ollamaEmbedRequest struct {
	Model string `json:"model"`
	Input any    `json:"input"` // string or []string
}

// ollamaEmbedResponse is the response body for POST /api/embed.
type ollamaEmbedResponse struct {
	Model      string      `json:"model"`
	Embeddings [][]float32 `json:"embeddings"`
}

// ollamaModelListResponse is the response body for GET /api/tags.
type ollamaModelListResponse struct {
	Models []ollamaModelInfo `json:"models"`
}

// ollamaModelInfo describes one installed model.
type ollamaModelInfo struct {
	Name string `json:"name"`
}
