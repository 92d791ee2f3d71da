package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

// newIndexCmd creates the index command.
func newIndexCmd(configPath, logLevel *string) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the documents directory once and exit",
		Long: `Run one synchronization pass: index new and changed documents,
remove entries for deleted files, and print a summary.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := buildApp(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			ctx := cmd.Context()
			if err := a.store.EnsureCollection(ctx); err != nil {
				return err
			}

			report, err := a.indexer.Run(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			fmt.Fprintf(out, "Scanned %d files: %d added, %d updated, %d removed (%s)\n",
				report.Scanned, report.Added, report.Updated, report.Removed,
				report.Duration.Round(time.Millisecond))
			for _, f := range report.Failed {
				fmt.Fprintf(out, "  skipped %s: %s\n", f.Path, f.Reason)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output the report as JSON")

	return cmd
}
