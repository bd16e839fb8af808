// commands.go contains the cobra command definitions and their flag
// configurations. Each builder creates a command and wires it to its
// handler in handlers.go.
package main

import (
	"github.com/spf13/cobra"
)

func buildEvalCmd() *cobra.Command {
	var (
		configPath  string
		taskName    string
		datasetPath string
		modelName   string
		endpoint    string
		limit       int
		jsonOut     bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Run one evaluation and print the scored report",
		Long: `Run the named task's pipeline over a dataset file and print the
scored report. The model and tokenizer endpoints come from the config
file; --model and --endpoint override the configured model.`,
		Example: `  # Evaluate a served QA model on a SQuAD-style dataset
  evalharness eval --task qa --dataset dev.yaml --config harness.yaml

  # Quick smoke run over the first 50 examples
  evalharness eval --task sent --dataset reviews.yaml --limit 50`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, evalParams{
				configPath:  configPath,
				taskName:    taskName,
				datasetPath: datasetPath,
				modelName:   modelName,
				endpoint:    endpoint,
				limit:       limit,
				jsonOut:     jsonOut,
			})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&taskName, "task", "t", "", "Task name (see `evalharness tasks`)")
	cmd.Flags().StringVarP(&datasetPath, "dataset", "d", "", "Path to the dataset file (YAML or JSON)")
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Model name reported in results (overrides config)")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Inference server base URL (overrides config)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Evaluate at most this many examples (0 = all)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the full report as JSON")
	_ = cmd.MarkFlagRequired("task")
	_ = cmd.MarkFlagRequired("dataset")

	return cmd
}

func buildTasksCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tasks",
		Short: "List the supported evaluation tasks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTasks(cmd)
		},
	}
}

func buildRunsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect persisted evaluation runs",
	}
	cmd.AddCommand(buildRunsListCmd(), buildRunsShowCmd())
	return cmd
}

func buildRunsListCmd() *cobra.Command {
	var (
		configPath string
		taskName   string
		modelName  string
		limit      int
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List persisted runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsList(cmd, configPath, taskName, modelName, limit)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	cmd.Flags().StringVarP(&taskName, "task", "t", "", "Filter by task name")
	cmd.Flags().StringVarP(&modelName, "model", "m", "", "Filter by model name")
	cmd.Flags().IntVar(&limit, "limit", 20, "Show at most this many runs")
	return cmd
}

func buildRunsShowCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "show <run-id>",
		Short: "Print one persisted run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRunsShow(cmd, configPath, args[0])
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML configuration file")
	return cmd
}

func buildSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema for the configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSchema(cmd)
		},
	}
}
