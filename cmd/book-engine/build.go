// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-engine/internal/build"
	"github.com/pdiddy/book-engine/internal/draft"
	"github.com/pdiddy/book-engine/pkg/types"
)

// buildCmd runs the quality gate and compiles the book with pandoc.
// Implements: prd005-quality (R1-R3), prd006-build (R1-R4).
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile the book after the quality gate passes",
	RunE: func(cmd *cobra.Command, args []string) error {
		bookDir, _ := cmd.Flags().GetString("book-dir")
		format, _ := cmd.Flags().GetString("format")
		checkOnly, _ := cmd.Flags().GetBool("check")

		cfg := pipelineConfig()
		if !cmd.Flags().Changed("book-dir") && cfg.Build.BookDir != "" {
			bookDir = cfg.Build.BookDir
		}
		if !cmd.Flags().Changed("format") && cfg.Build.Format != "" {
			format = string(cfg.Build.Format)
		}

		project := draft.NewProject(bookDir)

		if checkOnly {
			report, err := project.Evaluate()
			if err != nil {
				return fmt.Errorf("evaluating quality gate: %w", err)
			}
			if !report.Blocking {
				fmt.Fprintln(cmd.OutOrStdout(), "Quality gate: clean")
				return nil
			}
			for _, issue := range report.Issues {
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s: %s\n", issue.Type, issue.Where, issue.Message)
			}
			os.Exit(1)
			return nil
		}

		builder := build.NewBuilder(project)
		result, err := builder.Build(cmd.Context(), types.OutputFormat(format))
		if err != nil {
			var compErr *build.CompilationError
			switch {
			case errors.Is(err, build.ErrGateBlocked):
				fmt.Fprintln(os.Stderr, err)
			case errors.As(err, &compErr):
				fmt.Fprintf(os.Stderr, "pandoc failed (%s):\n%s\n", compErr.Format, compErr.Stderr)
			default:
				fmt.Fprintln(os.Stderr, "build:", err)
			}
			os.Exit(1)
		}

		fmt.Fprintln(cmd.OutOrStdout(), buildSummary(result))
		return nil
	},
}

// buildSummary is the one-line report for a completed build.
func buildSummary(result build.Result) string {
	return fmt.Sprintf("Built %s from %d chapters", result.Export, len(result.Chapters))
}

func init() {
	buildCmd.Flags().String("format", "pdf", "output format: pdf, epub, or html")
	buildCmd.Flags().Bool("check", false, "run the quality gate only, without compiling")

	rootCmd.AddCommand(buildCmd)
}
