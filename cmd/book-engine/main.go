// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the book-engine CLI.
// Implements: prd001-ingestion, prd002-index, prd003-retrieval,
// prd004-agent, prd005-quality, prd006-build (CLI surface).
// See docs/ARCHITECTURE § Pipeline Interface, § Project Structure.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/book-engine/internal/secrets"
	"github.com/pdiddy/book-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when non-empty, else the stored secret.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the book-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "book-engine",
	Short: "Agent-driven book generation over a local retrieval index",
	Long: `book-engine turns ingested source documents into a complete book. A
reasoning agent plans the work step by step: it retrieves grounded facts
from a local vector index, drafts sections through an AI oracle, persists
chapters, and compiles the book once the quality gate passes.

Each stage is also a standalone subcommand: ingest, query, agent, outline,
and build.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(".secrets/")
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./book-engine.yaml or ~/.config/book-engine/config.yaml)")
	rootCmd.PersistentFlags().String("index-dir", "index", "directory for the vector index database")
	rootCmd.PersistentFlags().String("book-dir", "book", "book project directory (toc.yaml, chapters/, exports/)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("book-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "book-engine"))
		}
	}

	viper.SetEnvPrefix("BOOK_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// pipelineConfig decodes the loaded config file into stage settings.
// Flags override anything set here; zero values fall back to each
// stage's defaults.
func pipelineConfig() types.PipelineConfig {
	var cfg types.PipelineConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "warning: ignoring malformed config:", err)
		return types.PipelineConfig{}
	}
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
