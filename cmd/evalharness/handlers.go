// handlers.go contains the run functions behind each cobra command.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/haasonsaas/evalharness/internal/config"
	"github.com/haasonsaas/evalharness/internal/eval"
	"github.com/haasonsaas/evalharness/internal/observability"
	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/internal/results"
	"github.com/haasonsaas/evalharness/internal/tasks"
)

type evalParams struct {
	configPath  string
	taskName    string
	datasetPath string
	modelName   string
	endpoint    string
	limit       int
	jsonOut     bool
}

// loadConfig loads the config file when given, or falls back to defaults
// so flag-only invocations work.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

func runEval(cmd *cobra.Command, params evalParams) error {
	cfg, err := loadConfig(params.configPath)
	if err != nil {
		return err
	}
	if params.modelName != "" {
		cfg.Model.Name = params.modelName
	}
	if params.endpoint != "" {
		cfg.Model.Endpoint = params.endpoint
	}
	if params.limit > 0 {
		cfg.Eval.Limit = params.limit
	}
	if cfg.Model.Name == "" {
		return fmt.Errorf("model name is required (set model.name or pass --model)")
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		AddSource: cfg.Logging.AddSource,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracer, shutdown, err := observability.NewTracer(ctx, observability.TraceConfig{
		ServiceName:  "evalharness",
		Endpoint:     cfg.Tracing.Endpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Insecure:     cfg.Tracing.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	model, err := providers.NewHTTPModel(providers.HTTPConfig{
		Name:      cfg.Model.Name,
		BaseURL:   cfg.Model.Endpoint,
		Framework: providers.Framework(cfg.Model.Framework),
		Timeout:   cfg.Model.Timeout,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	// The tokenizer is optional: rule-engine token classification runs
	// on raw words and never tokenizes.
	var tokenizer providers.Tokenizer
	if cfg.Tokenizer.Endpoint != "" {
		tokenizer, err = providers.NewHTTPTokenizer(providers.HTTPTokenizerConfig{
			BaseURL:        cfg.Tokenizer.Endpoint,
			ModelMaxLength: cfg.Tokenizer.ModelMaxLength,
			ClassTokenID:   cfg.Tokenizer.ClassTokenID,
			Timeout:        cfg.Model.Timeout,
		})
		if err != nil {
			return err
		}
	}

	ds, err := eval.LoadDataset(params.datasetPath)
	if err != nil {
		return err
	}

	evaluator := eval.New(model, tokenizer, &eval.Options{
		Limit:   cfg.Eval.Limit,
		Workers: cfg.Eval.Workers,
	}, logger).
		WithMetrics(observability.NewMetrics()).
		WithTracer(tracer)

	report, err := evaluator.Evaluate(ctx, params.taskName, ds)
	if err != nil {
		return err
	}
	logger.Info("evaluation finished", "summary", report.Summary())

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, report); err != nil {
		logger.Warn("failed to persist report", "error", err)
	}

	if params.jsonOut {
		return printJSON(cmd, report)
	}
	return printReport(cmd, report)
}

func runTasks(cmd *cobra.Command) error {
	registry := tasks.NewRegistry()
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tKIND\tDATASET\tMETRICS")
	for _, cfg := range registry.All() {
		metrics := ""
		for i, m := range cfg.Metrics {
			if i > 0 {
				metrics += ", "
			}
			metrics += m.Name
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cfg.Name, cfg.Kind, cfg.DatasetName, metrics)
	}
	return w.Flush()
}

func runRunsList(cmd *cobra.Command, configPath, taskName, modelName string, limit int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	reports, err := store.List(cmd.Context(), results.Filter{
		Task:  taskName,
		Model: modelName,
		Limit: limit,
	})
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTASK\tMODEL\tEXAMPLES\tGENERATED")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.Task, r.Model, r.Examples, r.GeneratedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runRunsShow(cmd *cobra.Command, configPath, id string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	report, err := store.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	return printJSON(cmd, report)
}

func runSchema(cmd *cobra.Command) error {
	schema, err := config.JSONSchema()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(schema))
	return nil
}

// openStore returns the configured results store. Without a configured
// path, runs persist only for the lifetime of the process.
func openStore(cfg *config.Config) (results.Store, error) {
	if cfg.Results.Path == "" {
		return results.NewMemoryStore(), nil
	}
	return results.NewSQLiteStore(cfg.Results.Path)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printReport(cmd *cobra.Command, report *eval.Report) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s\n", report.ID)
	fmt.Fprintf(out, "  Task:      %s (%s)\n", report.Task, report.Dataset)
	fmt.Fprintf(out, "  Model:     %s [%s]\n", report.Model, report.Framework)
	fmt.Fprintf(out, "  Examples:  %d (%d features)\n", report.Examples, report.Features)
	fmt.Fprintf(out, "  Inference: %s\n", report.InferenceTime)
	for _, score := range report.Scores {
		fmt.Fprintf(out, "  %-20s %.4f\n", score.PrettyName+":", score.Value)
	}
	return nil
}
