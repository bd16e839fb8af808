// Package main provides the CLI entry point for the evaluation harness.
//
// The harness evaluates finetuned NLP models against benchmark datasets:
//
//	evalharness eval --task qa --dataset dev.yaml --config harness.yaml
//
// List the supported tasks:
//
//	evalharness tasks
//
// Inspect persisted runs:
//
//	evalharness runs list --task qa
//	evalharness runs show <run-id>
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information - populated by ldflags during build.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd creates the root command with all subcommands attached.
// This is separated from main() to facilitate testing.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "evalharness",
		Short: "Evaluate finetuned NLP models against benchmark datasets",
		Long: `evalharness runs benchmark evaluations for finetuned NLP models.

Supported tasks: extractive question answering, sequence classification,
token classification. Models are reached over a plain JSON inference
protocol, so any serving stack can participate.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildEvalCmd(),
		buildTasksCmd(),
		buildRunsCmd(),
		buildSchemaCmd(),
	)

	return rootCmd
}
