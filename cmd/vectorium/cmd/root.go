// Package cmd provides the CLI commands for vectorium.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vectorium/vectorium/internal/config"
	"github.com/vectorium/vectorium/internal/embed"
	verrors "github.com/vectorium/vectorium/internal/errors"
	"github.com/vectorium/vectorium/internal/index"
	"github.com/vectorium/vectorium/internal/logging"
	"github.com/vectorium/vectorium/internal/search"
	"github.com/vectorium/vectorium/internal/store"
	"github.com/vectorium/vectorium/pkg/version"
)

// NewRootCmd creates the root command for the vectorium CLI.
func NewRootCmd() *cobra.Command {
	var configPath string
	var logLevel string

	cmd := &cobra.Command{
		Use:   "vectorium",
		Short: "Semantic document search over MCP",
		Long: `Vectorium indexes a directory of text documents into a Qdrant
vector store and serves semantic search to MCP clients over stdio.

Run 'vectorium serve' from your documents directory to get started.`,
		Version:       version.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("vectorium version {{.Version}}\n")

	cmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: vectorium.yaml)")
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Minimum log level: debug, info, warn, error")

	cmd.AddCommand(newServeCmd(&configPath, &logLevel))
	cmd.AddCommand(newIndexCmd(&configPath, &logLevel))
	cmd.AddCommand(newSearchCmd(&configPath, &logLevel))
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() error {
	cmd := NewRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// app bundles the wired components a command works with.
type app struct {
	cfg      *config.Config
	store    store.VectorStore
	embedder embed.Embedder
	indexer  *index.Pipeline
	searcher *search.Pipeline
}

// buildApp loads configuration, sets up logging, and wires the store,
// embedder, and pipelines.
func buildApp(configPath, logLevel string) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Server.LogLevel = logLevel
	}
	logging.SetupDefault(cfg.Server.LogLevel)

	s, err := store.NewQdrantStore(store.QdrantConfig{
		Endpoint:   cfg.Store.Endpoint,
		Collection: cfg.Store.Collection,
		Dimensions: cfg.Store.Dimensions,
		Timeout:    cfg.Store.Timeout.Std(),
	})
	if err != nil {
		return nil, err
	}

	embedder, err := buildEmbedder(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}

	// Fail fast when the embedding backend is unreachable instead of
	// surfacing it on the first tool call.
	probeCtx, cancel := context.WithTimeout(context.Background(), cfg.Embeddings.Timeout.Std())
	available := embedder.Available(probeCtx)
	cancel()
	if !available {
		_ = embedder.Close()
		_ = s.Close()
		return nil, verrors.EmbeddingError(
			fmt.Sprintf("embedding model %q is not available at %s",
				cfg.Embeddings.Model, cfg.Embeddings.Host), nil)
	}

	if err := os.MkdirAll(cfg.Documents.CacheDir, 0o755); err != nil {
		_ = embedder.Close()
		_ = s.Close()
		return nil, fmt.Errorf("cannot create cache dir: %w", err)
	}

	return &app{
		cfg:      cfg,
		store:    s,
		embedder: embedder,
		indexer: index.NewPipeline(s, embedder, index.Options{
			Root:        cfg.Documents.Root,
			Extensions:  cfg.Documents.Extensions,
			MaxFileSize: cfg.Documents.MaxFileSize,
			Workers:     cfg.Indexing.Workers,
			LockFile:    cfg.LockFile(),
		}),
		searcher: search.NewPipeline(s, embedder, search.Options{
			DefaultLimit:     cfg.Search.DefaultLimit,
			MaxLimit:         cfg.Search.MaxLimit,
			DefaultThreshold: &cfg.Search.DefaultThreshold,
			Timeout:          cfg.Search.Timeout.Std(),
		}),
	}, nil
}

func buildEmbedder(cfg *config.Config) (embed.Embedder, error) {
	var inner embed.Embedder
	switch cfg.Embeddings.Provider {
	case "static":
		inner = embed.NewStaticEmbedder(cfg.Embeddings.Dimensions)
	default:
		inner = embed.NewOllamaEmbedder(embed.OllamaConfig{
			Host:       cfg.Embeddings.Host,
			Model:      cfg.Embeddings.Model,
			Dimensions: cfg.Embeddings.Dimensions,
			Timeout:    cfg.Embeddings.Timeout.Std(),
		})
	}
	return embed.NewCachedEmbedder(inner, cfg.Embeddings.CacheSize)
}

// close releases the app's resources.
func (a *app) close() {
	_ = a.embedder.Close()
	_ = a.store.Close()
}
