package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vectorium/vectorium/internal/search"
)

// newSearchCmd creates the search command.
func newSearchCmd(configPath, logLevel *string) *cobra.Command {
	var limit int
	var threshold float64
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search the indexed documents from the command line",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(*configPath, *logLevel)
			if err != nil {
				return err
			}
			defer a.close()

			req := search.Request{
				Query: strings.Join(args, " "),
			}
			if cmd.Flags().Changed("limit") {
				req.Limit = &limit
			}
			if cmd.Flags().Changed("threshold") {
				req.Threshold = &threshold
			}

			resp, err := a.searcher.Search(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(resp)
			}

			if resp.TotalFound == 0 {
				fmt.Fprintln(out, "No results.")
				return nil
			}
			for i, r := range resp.Results {
				fmt.Fprintf(out, "%d. %s (score %.3f)\n", i+1, r.Path, r.Score)
				preview := strings.ReplaceAll(r.Preview, "\n", " ")
				if preview != "" {
					fmt.Fprintf(out, "   %s\n", preview)
				}
			}
			fmt.Fprintf(out, "\n%d results in %dms (embed %dms, search %dms)\n",
				resp.TotalFound, resp.EmbeddingTimeMS+resp.SearchTimeMS,
				resp.EmbeddingTimeMS, resp.SearchTimeMS)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum results (1-20, default from config)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "Minimum similarity score in [0,1]")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output results as JSON")

	return cmd
}
