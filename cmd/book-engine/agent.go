// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/book-engine/internal/agent"
	"github.com/pdiddy/book-engine/internal/build"
	"github.com/pdiddy/book-engine/internal/draft"
	"github.com/pdiddy/book-engine/internal/embed"
	"github.com/pdiddy/book-engine/internal/index"
	"github.com/pdiddy/book-engine/internal/oracle"
	"github.com/pdiddy/book-engine/internal/retrieve"
	"github.com/pdiddy/book-engine/internal/tools"
	"github.com/pdiddy/book-engine/pkg/types"
)

// agentCmd runs the reasoning loop against a goal until the agent finishes
// or the step budget is exhausted.
// Implements: prd004-agent (R1-R6).
var agentCmd = &cobra.Command{
	Use:   "agent <goal>",
	Short: "Run the reasoning agent toward a writing goal",
	Long: `Agent plans and executes a sequence of tool calls toward the given
goal: retrieving facts from the index, drafting sections through the AI
oracle, saving chapters, and building the book. The run ends when the
agent calls finish or the step budget runs out.

Exits non-zero when the budget is exhausted before the agent finishes.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		indexDir, _ := cmd.Flags().GetString("index-dir")
		bookDir, _ := cmd.Flags().GetString("book-dir")
		model, _ := cmd.Flags().GetString("model")
		maxSteps, _ := cmd.Flags().GetInt("max-steps")
		traceWindow, _ := cmd.Flags().GetInt("trace-window")

		cfg := pipelineConfig()
		if !cmd.Flags().Changed("model") && cfg.Agent.Model != "" {
			model = cfg.Agent.Model
		}
		if !cmd.Flags().Changed("max-steps") && cfg.Agent.MaxSteps > 0 {
			maxSteps = cfg.Agent.MaxSteps
		}
		if !cmd.Flags().Changed("trace-window") && cfg.Agent.TraceWindow > 0 {
			traceWindow = cfg.Agent.TraceWindow
		}

		apiKey := secretDefault("anthropic-api-key", cfg.Agent.APIKey)
		if apiKey == "" {
			return fmt.Errorf("no API key: place one in .secrets/anthropic-api-key")
		}

		store, err := index.NewStore(types.IndexConfig{IndexDir: indexDir})
		if err != nil {
			return fmt.Errorf("opening index: %w", err)
		}
		defer store.Close()

		ai := types.AIConfig{Model: model, APIKey: apiKey, MaxRetries: cfg.Agent.MaxRetries}
		client := oracle.NewClient(ai, nil)
		project := draft.NewProject(bookDir)
		registry := tools.NewRegistry(
			&tools.RetrieveFacts{Source: retrieve.NewRetriever(store, embed.NewHashingEmbedder(0))},
			&tools.WriteSection{Oracle: &tools.ClaudeDrafter{Client: client}},
			&tools.SaveChapter{Project: project},
			&tools.BuildBook{Builder: build.NewBuilder(project)},
			&tools.GetStatus{Project: project},
			tools.Finish{},
		)
		planner := &agent.ClaudePlanner{Client: client, Tools: registry.Names()}

		loop := agent.NewLoop(planner, registry, types.AgentConfig{
			AIConfig:    ai,
			MaxSteps:    maxSteps,
			TraceWindow: traceWindow,
		}, cmd.OutOrStdout())

		result, err := loop.Run(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("running agent: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Run %s: %s after %d steps\n", result.RunID, result.Outcome, len(result.Trace))
		fmt.Fprintln(cmd.OutOrStdout(), "Summary:", result.Summary)
		if result.Outcome != agent.OutcomeFinished {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	agentCmd.Flags().String("model", "claude-sonnet-4-20250514", "AI model identifier for planning and drafting")
	agentCmd.Flags().Int("max-steps", 15, "maximum number of agent steps per run")
	agentCmd.Flags().Int("trace-window", 3, "number of recent steps shown to the planner")

	rootCmd.AddCommand(agentCmd)
}
