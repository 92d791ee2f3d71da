// Package config loads and validates the Vectorium configuration.
//
// Configuration is resolved in three layers, lowest priority first:
//  1. Built-in defaults
//  2. YAML file (vectorium.yaml in the working directory, or --config)
//  3. Environment variables (VECTORIUM_*)
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

// DefaultConfigFile is the config file name looked up in the working directory.
const DefaultConfigFile = "vectorium.yaml"

// Config is the complete Vectorium configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store"`
	Documents  DocumentsConfig  `yaml:"documents"`
	Embeddings EmbeddingsConfig `yaml:"embeddings"`
	Indexing   IndexingConfig   `yaml:"indexing"`
	Search     SearchConfig     `yaml:"search"`
	Server     ServerConfig     `yaml:"server"`
}

// StoreConfig configures the Qdrant vector store connection.
type StoreConfig struct {
	// Endpoint is the Qdrant gRPC endpoint (host:port).
	Endpoint string `yaml:"endpoint"`

	// Collection is the collection name holding document points.
	Collection string `yaml:"collection"`

	// Dimensions is the vector dimension of the collection.
	// Must match the embedding provider.
	Dimensions int `yaml:"dimensions"`

	// Timeout bounds individual store calls.
	Timeout Duration `yaml:"timeout"`
}

// DocumentsConfig configures the document root being indexed.
type DocumentsConfig struct {
	// Root is the directory whose text files are indexed.
	Root string `yaml:"root"`

	// CacheDir holds run-local state (the index run lock).
	// Defaults to <root>/.vectorium.
	CacheDir string `yaml:"cache_dir"`

	// Extensions lists the file extensions considered text documents.
	Extensions []string `yaml:"extensions"`

	// MaxFileSize is the maximum file size to index in bytes.
	MaxFileSize int64 `yaml:"max_file_size"`
}

// EmbeddingsConfig configures the embedding provider.
type EmbeddingsConfig struct {
	// Provider selects the embedder: "ollama" or "static".
	Provider string `yaml:"provider"`

	// Host is the Ollama API endpoint.
	Host string `yaml:"host"`

	// Model is the embedding model name.
	Model string `yaml:"model"`

	// Dimensions is the expected embedding dimension.
	Dimensions int `yaml:"dimensions"`

	// Timeout bounds a single embedding request.
	Timeout Duration `yaml:"timeout"`

	// CacheSize is the number of embeddings kept in the LRU cache.
	CacheSize int `yaml:"cache_size"`
}

// IndexingConfig configures the indexing pipeline.
type IndexingConfig struct {
	// Workers is the bounded concurrency for embed+upsert work.
	// 0 means NumCPU.
	Workers int `yaml:"workers"`

	// Watch enables filesystem watching during serve.
	Watch bool `yaml:"watch"`

	// WatchDebounce is the quiet window before a watch-triggered run.
	WatchDebounce Duration `yaml:"watch_debounce"`
}

// SearchConfig configures the search pipeline.
type SearchConfig struct {
	// DefaultLimit is the result count when the client omits limit.
	DefaultLimit int `yaml:"default_limit"`

	// MaxLimit caps the result count; larger requests are clamped.
	MaxLimit int `yaml:"max_limit"`

	// DefaultThreshold is the minimum similarity score when the client
	// omits threshold.
	DefaultThreshold float64 `yaml:"default_threshold"`

	// Timeout bounds a search call end-to-end, embedding included.
	Timeout Duration `yaml:"timeout"`
}

// ServerConfig configures the MCP server.
type ServerConfig struct {
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
}

// Default returns the built-in configuration defaults.
func Default() *Config {
	return &Config{
		Store: StoreConfig{
			Endpoint:   "localhost:6334",
			Collection: "documents",
			Dimensions: 384,
			Timeout:    Duration(10 * time.Second),
		},
		Documents: DocumentsConfig{
			Root:        ".",
			Extensions:  []string{".txt", ".md"},
			MaxFileSize: 10 * 1024 * 1024,
		},
		Embeddings: EmbeddingsConfig{
			Provider:   "ollama",
			Host:       "http://localhost:11434",
			Model:      "all-minilm",
			Dimensions: 384,
			Timeout:    Duration(60 * time.Second),
			CacheSize:  1000,
		},
		Indexing: IndexingConfig{
			Workers:       runtime.NumCPU(),
			Watch:         true,
			WatchDebounce: Duration(500 * time.Millisecond),
		},
		Search: SearchConfig{
			DefaultLimit:     5,
			MaxLimit:         20,
			DefaultThreshold: 0.7,
			Timeout:          Duration(5 * time.Second),
		},
		Server: ServerConfig{
			LogLevel: "info",
		},
	}
}

// Load reads configuration from path, falling back to defaults when the
// file does not exist, then applies environment overrides and validates.
// An empty path means DefaultConfigFile in the working directory.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if path == "" {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, verrors.New(verrors.ErrCodeConfigInvalid,
				fmt.Sprintf("cannot parse %s: %v", path, err), err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file is fine; defaults apply.
	default:
		return nil, verrors.New(verrors.ErrCodeConfigNotFound,
			fmt.Sprintf("cannot read %s: %v", path, err), err)
	}

	cfg.applyEnv()
	cfg.applyDerived()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv applies VECTORIUM_* environment overrides.
func (c *Config) applyEnv() {
	if v := os.Getenv("VECTORIUM_STORE_ENDPOINT"); v != "" {
		c.Store.Endpoint = v
	}
	if v := os.Getenv("VECTORIUM_STORE_COLLECTION"); v != "" {
		c.Store.Collection = v
	}
	if v := os.Getenv("VECTORIUM_DOCUMENTS_ROOT"); v != "" {
		c.Documents.Root = v
	}
	if v := os.Getenv("VECTORIUM_CACHE_DIR"); v != "" {
		c.Documents.CacheDir = v
	}
	if v := os.Getenv("VECTORIUM_EMBEDDINGS_PROVIDER"); v != "" {
		c.Embeddings.Provider = v
	}
	if v := os.Getenv("VECTORIUM_OLLAMA_HOST"); v != "" {
		c.Embeddings.Host = v
	}
	if v := os.Getenv("VECTORIUM_EMBEDDINGS_MODEL"); v != "" {
		c.Embeddings.Model = v
	}
	if v := os.Getenv("VECTORIUM_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
	if v := os.Getenv("VECTORIUM_INDEX_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Indexing.Workers = n
		}
	}
}

// applyDerived fills values computed from other settings.
func (c *Config) applyDerived() {
	if c.Documents.CacheDir == "" {
		c.Documents.CacheDir = filepath.Join(c.Documents.Root, ".vectorium")
	}
	if c.Indexing.Workers <= 0 {
		c.Indexing.Workers = runtime.NumCPU()
	}
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if c.Store.Endpoint == "" {
		return verrors.New(verrors.ErrCodeConfigInvalid, "store.endpoint is required", nil)
	}
	if c.Store.Collection == "" {
		return verrors.New(verrors.ErrCodeConfigInvalid, "store.collection is required", nil)
	}
	if c.Store.Dimensions <= 0 {
		return verrors.New(verrors.ErrCodeConfigInvalid, "store.dimensions must be positive", nil)
	}
	if c.Documents.Root == "" {
		return verrors.New(verrors.ErrCodeConfigInvalid, "documents.root is required", nil)
	}
	if c.Documents.MaxFileSize <= 0 {
		return verrors.New(verrors.ErrCodeConfigInvalid, "documents.max_file_size must be positive", nil)
	}
	if c.Embeddings.Dimensions != c.Store.Dimensions {
		return verrors.New(verrors.ErrCodeConfigInvalid,
			fmt.Sprintf("embeddings.dimensions (%d) must match store.dimensions (%d)",
				c.Embeddings.Dimensions, c.Store.Dimensions), nil)
	}
	switch c.Embeddings.Provider {
	case "ollama", "static":
	default:
		return verrors.New(verrors.ErrCodeConfigInvalid,
			fmt.Sprintf("unknown embeddings.provider %q (supported: ollama, static)", c.Embeddings.Provider), nil)
	}
	if c.Search.DefaultLimit < 1 || c.Search.DefaultLimit > c.Search.MaxLimit {
		return verrors.New(verrors.ErrCodeConfigInvalid,
			"search.default_limit must be in [1, max_limit]", nil)
	}
	if c.Search.DefaultThreshold < 0 || c.Search.DefaultThreshold > 1 {
		return verrors.New(verrors.ErrCodeConfigInvalid,
			"search.default_threshold must be in [0.0, 1.0]", nil)
	}
	if c.Search.Timeout <= 0 {
		return verrors.New(verrors.ErrCodeConfigInvalid, "search.timeout must be positive", nil)
	}
	return nil
}

// LockFile returns the path of the index run lock inside the cache dir.
func (c *Config) LockFile() string {
	return filepath.Join(c.Documents.CacheDir, "index.lock")
}
