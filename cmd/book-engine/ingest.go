// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-engine/internal/embed"
	"github.com/pdiddy/book-engine/internal/index"
	"github.com/pdiddy/book-engine/internal/ingest"
	"github.com/pdiddy/book-engine/pkg/types"
)

// ingestCmd loads source documents, chunks them, and upserts the chunks
// with embeddings into the vector index.
// Implements: prd001-ingestion (R1-R4), prd002-index (R1-R2).
var ingestCmd = &cobra.Command{
	Use:   "ingest [path...]",
	Short: "Chunk source documents and index them for retrieval",
	RunE: func(cmd *cobra.Command, args []string) error {
		indexDir, _ := cmd.Flags().GetString("index-dir")
		chunkSize, _ := cmd.Flags().GetInt("chunk-size")
		overlap, _ := cmd.Flags().GetFloat64("overlap")
		clear, _ := cmd.Flags().GetBool("clear")
		stats, _ := cmd.Flags().GetBool("stats")
		export, _ := cmd.Flags().GetBool("export")

		// Config file values apply unless the flag was given explicitly.
		cfg := pipelineConfig()
		if !cmd.Flags().Changed("chunk-size") && cfg.Ingest.ChunkSize > 0 {
			chunkSize = cfg.Ingest.ChunkSize
		}
		if !cmd.Flags().Changed("overlap") && cfg.Ingest.OverlapFraction > 0 {
			overlap = cfg.Ingest.OverlapFraction
		}

		store, err := index.NewStore(types.IndexConfig{IndexDir: indexDir})
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		defer store.Close()

		ctx := cmd.Context()

		if clear {
			if err := store.Clear(ctx); err != nil {
				return fmt.Errorf("clearing index: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Index cleared")
		}

		if len(args) > 0 {
			pipeline := ingest.NewPipeline(store, embed.NewHashingEmbedder(0), types.IngestConfig{
				ChunkSize:       chunkSize,
				OverlapFraction: overlap,
			})
			total := ingest.Summary{}
			for _, path := range args {
				summary, err := pipeline.IngestPath(ctx, path, cmd.OutOrStdout())
				if err != nil {
					return err
				}
				total.Ingested += summary.Ingested
				total.Failed += summary.Failed
				total.Chunks += summary.Chunks
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Ingested %d documents (%d chunks, %d failed)\n",
				total.Ingested, total.Chunks, total.Failed)
			if total.Failed > 0 && total.Ingested == 0 {
				os.Exit(1)
			}
		}

		if export {
			if err := store.ExportYAML(ctx); err != nil {
				return fmt.Errorf("exporting index: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Exported index to", indexDir+"/export.yaml")
		}

		if stats {
			st, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("reading index stats: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Index: %d chunks across %d sources\n", st.Chunks, len(st.Sources))
			ids := make([]string, 0, len(st.Sources))
			for id := range st.Sources {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				fmt.Fprintf(cmd.OutOrStdout(), "  %-40s %d chunks\n", id, st.Sources[id])
			}
		}

		return nil
	},
}

func init() {
	ingestCmd.Flags().Int("chunk-size", 1000, "maximum chunk size in characters")
	ingestCmd.Flags().Float64("overlap", 0.15, "overlap between adjacent chunks as a fraction of chunk size")
	ingestCmd.Flags().Bool("clear", false, "clear the index before ingesting")
	ingestCmd.Flags().Bool("stats", false, "print index statistics after ingesting")
	ingestCmd.Flags().Bool("export", false, "export the index contents to export.yaml")

	rootCmd.AddCommand(ingestCmd)
}
