package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-engine/internal/draft"
)

// outlineCmd manages the book outline (toc.yaml).
var outlineCmd = &cobra.Command{
	Use:   "outline",
	Short: "Manage the book outline",
}

// outlineInitCmd scaffolds a new book project directory.
var outlineInitCmd = &cobra.Command{
	Use:   "init <title>",
	Short: "Scaffold a new book project with a starter outline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookDir, _ := cmd.Flags().GetString("book-dir")

		project := draft.NewProject(bookDir)
		if err := project.Scaffold(args[0]); err != nil {
			return fmt.Errorf("scaffolding book project: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created book project in %s\n", bookDir)
		return nil
	},
}

// outlineValidateCmd checks toc.yaml for structural problems.
var outlineValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate the outline for duplicate slugs and missing fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		bookDir, _ := cmd.Flags().GetString("book-dir")

		project := draft.NewProject(bookDir)
		outline, err := project.LoadOutline()
		if err != nil {
			return fmt.Errorf("loading outline: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Outline OK: %q, %d chapters\n", outline.Title, len(outline.Chapters))
		return nil
	},
}

func init() {
	outlineCmd.AddCommand(outlineInitCmd)
	outlineCmd.AddCommand(outlineValidateCmd)
	rootCmd.AddCommand(outlineCmd)
}
