package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/vectorium/vectorium/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.applyDerived()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "documents", cfg.Store.Collection)
	assert.Equal(t, 384, cfg.Store.Dimensions)
	assert.Equal(t, 5, cfg.Search.DefaultLimit)
	assert.Equal(t, 20, cfg.Search.MaxLimit)
	assert.InDelta(t, 0.7, cfg.Search.DefaultThreshold, 1e-9)
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "localhost:6334", cfg.Store.Endpoint)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Equal(t, verrors.ErrCodeConfigNotFound, verrors.GetCode(err))
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "vectorium.yaml")
	content := `
store:
  endpoint: qdrant.internal:6334
  collection: notes
documents:
  root: /srv/docs
  extensions: [".txt"]
search:
  default_limit: 3
  timeout: 2s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "qdrant.internal:6334", cfg.Store.Endpoint)
	assert.Equal(t, "notes", cfg.Store.Collection)
	assert.Equal(t, "/srv/docs", cfg.Documents.Root)
	assert.Equal(t, []string{".txt"}, cfg.Documents.Extensions)
	assert.Equal(t, 3, cfg.Search.DefaultLimit)
	assert.Equal(t, Duration(2*time.Second), cfg.Search.Timeout)
	// Unset values keep defaults.
	assert.Equal(t, "all-minilm", cfg.Embeddings.Model)
	// Cache dir derives from root.
	assert.Equal(t, filepath.Join("/srv/docs", ".vectorium"), cfg.Documents.CacheDir)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("VECTORIUM_STORE_ENDPOINT", "remote:6334")
	t.Setenv("VECTORIUM_DOCUMENTS_ROOT", "/data/docs")
	t.Setenv("VECTORIUM_EMBEDDINGS_PROVIDER", "static")
	t.Setenv("VECTORIUM_INDEX_WORKERS", "2")

	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "remote:6334", cfg.Store.Endpoint)
	assert.Equal(t, "/data/docs", cfg.Documents.Root)
	assert.Equal(t, "static", cfg.Embeddings.Provider)
	assert.Equal(t, 2, cfg.Indexing.Workers)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty endpoint", func(c *Config) { c.Store.Endpoint = "" }},
		{"empty collection", func(c *Config) { c.Store.Collection = "" }},
		{"dimension mismatch", func(c *Config) { c.Embeddings.Dimensions = 768 }},
		{"unknown provider", func(c *Config) { c.Embeddings.Provider = "openai" }},
		{"zero default limit", func(c *Config) { c.Search.DefaultLimit = 0 }},
		{"default limit above max", func(c *Config) { c.Search.DefaultLimit = 30 }},
		{"threshold above one", func(c *Config) { c.Search.DefaultThreshold = 1.5 }},
		{"zero search timeout", func(c *Config) { c.Search.Timeout = 0 }},
		{"zero max file size", func(c *Config) { c.Documents.MaxFileSize = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.applyDerived()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Equal(t, verrors.ErrCodeConfigInvalid, verrors.GetCode(err))
		})
	}
}

func TestLockFile(t *testing.T) {
	cfg := Default()
	cfg.Documents.Root = "/srv/docs"
	cfg.applyDerived()
	assert.Equal(t, filepath.Join("/srv/docs", ".vectorium", "index.lock"), cfg.LockFile())
}
