package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-engine/internal/embed"
	"github.com/pdiddy/book-engine/internal/index"
	"github.com/pdiddy/book-engine/internal/retrieve"
	"github.com/pdiddy/book-engine/pkg/types"
)

// queryCmd retrieves fact packs for a query string from the vector index.
// Implements: prd003-retrieval (R1-R4).
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Retrieve grounded fact packs from the index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexDir, _ := cmd.Flags().GetString("index-dir")
		k, _ := cmd.Flags().GetInt("k")
		asJSON, _ := cmd.Flags().GetBool("json")

		store, err := index.NewStore(types.IndexConfig{IndexDir: indexDir})
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		defer store.Close()

		retriever := retrieve.NewRetriever(store, embed.NewHashingEmbedder(0))
		facts, err := retriever.Retrieve(cmd.Context(), args[0], k)
		if err != nil {
			return fmt.Errorf("retrieving facts: %w", err)
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(facts)
		}

		if len(facts) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No matching chunks")
			return nil
		}
		for i, f := range facts {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. [%s] confidence %.2f\n", i+1, f.CiteKey, f.Confidence)
			fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", f.Source.Title)
			fmt.Fprintf(cmd.OutOrStdout(), "   %s\n\n", snippet(f.Text, 200))
		}
		return nil
	},
}

// snippet truncates s to at most n runes for display.
func snippet(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

func init() {
	queryCmd.Flags().Int("k", 6, "maximum number of fact packs to return")
	queryCmd.Flags().Bool("json", false, "emit fact packs as JSON")

	rootCmd.AddCommand(queryCmd)
}
