package cmd

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vectorium/vectorium/internal/mcp"
	"github.com/vectorium/vectorium/internal/watch"
)

// newServeCmd creates the serve command.
func newServeCmd(configPath, logLevel *string) *cobra.Command {
	var noWatch bool
	var noInitialIndex bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Start the MCP server, exposing search_documents, index_documents,
and index_status to MCP clients over stdio.

On startup the documents directory is indexed in the background, and
file changes trigger incremental re-indexing while the server runs.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), *configPath, *logLevel, noWatch, noInitialIndex)
		},
	}

	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "Disable filesystem watching")
	cmd.Flags().BoolVar(&noInitialIndex, "no-initial-index", false, "Skip the startup indexing run")

	return cmd
}

func runServe(ctx context.Context, configPath, logLevel string, noWatch, noInitialIndex bool) error {
	a, err := buildApp(configPath, logLevel)
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.store.EnsureCollection(ctx); err != nil {
		return err
	}

	server := mcp.NewServer(a.searcher, a.indexer, mcp.Info{
		Collection:     a.cfg.Store.Collection,
		Dimensions:     a.cfg.Store.Dimensions,
		EmbeddingModel: a.embedder.ModelName(),
	})

	runIndex := func(reason string) {
		server.SetIndexing(true)
		defer server.SetIndexing(false)

		report, err := a.indexer.Run(ctx)
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("background index run failed",
					"reason", reason, "error", err)
			}
			return
		}
		server.RecordRun(report)
	}

	if !noInitialIndex {
		go runIndex("startup")
	}

	if a.cfg.Indexing.Watch && !noWatch {
		watcher, err := watch.New(watch.Options{
			Root:     a.cfg.Documents.Root,
			Debounce: a.cfg.Indexing.WatchDebounce.Std(),
		})
		if err != nil {
			return err
		}
		defer func() { _ = watcher.Close() }()
		go func() {
			_ = watcher.Run(ctx, func() { runIndex("filesystem change") })
		}()
	}

	return server.Serve(ctx)
}
