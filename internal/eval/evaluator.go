// Package eval runs complete evaluations: it resolves the task
// configuration, builds the task pipeline, drives it over a dataset,
// and assembles a report.
package eval

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/haasonsaas/evalharness/internal/observability"
	"github.com/haasonsaas/evalharness/internal/pipeline"
	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/internal/tasks"
)

// Options controls evaluation behavior.
type Options struct {
	// Limit caps how many examples are evaluated (0 means all).
	Limit int

	// Workers bounds span resolution parallelism for QA tasks
	// (0 means the resolver default).
	Workers int
}

// Evaluator evaluates one model against benchmark datasets.
type Evaluator struct {
	registry  *tasks.Registry
	model     providers.Model
	tokenizer providers.Tokenizer
	options   Options
	logger    *slog.Logger
	metrics   *observability.Metrics
	tracer    trace.Tracer
}

// New creates an evaluator for a model. The tokenizer may be nil for
// tasks that do not tokenize (rule-engine token classification).
func New(model providers.Model, tokenizer providers.Tokenizer, opts *Options, logger *slog.Logger) *Evaluator {
	if logger == nil {
		logger = slog.Default()
	}
	resolved := Options{}
	if opts != nil {
		resolved = *opts
	}
	return &Evaluator{
		registry:  tasks.NewRegistry(),
		model:     model,
		tokenizer: tokenizer,
		options:   resolved,
		logger:    logger.With("component", "evaluator"),
	}
}

// WithMetrics attaches Prometheus metrics collection.
func (e *Evaluator) WithMetrics(m *observability.Metrics) *Evaluator {
	e.metrics = m
	return e
}

// WithTracer attaches a tracer.
func (e *Evaluator) WithTracer(t trace.Tracer) *Evaluator {
	e.tracer = t
	return e
}

// Evaluate runs the named task's pipeline over the dataset and returns
// the scored report.
func (e *Evaluator) Evaluate(ctx context.Context, taskName string, ds *Dataset) (*Report, error) {
	if ds == nil {
		return nil, fmt.Errorf("dataset is nil")
	}
	cfg, err := e.registry.Get(taskName)
	if err != nil {
		return nil, err
	}

	examples := ds.Examples
	if e.options.Limit > 0 && len(examples) > e.options.Limit {
		examples = examples[:e.options.Limit]
	}

	p, err := pipeline.ForTask(cfg, e.tokenizer, e.options.Workers, e.logger)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(p, e.model, e.logger)
	if e.metrics != nil {
		runner = runner.WithMetrics(e.metrics)
	}
	if e.tracer != nil {
		runner = runner.WithTracer(e.tracer)
	}

	e.logger.Info("starting evaluation",
		"task", cfg.Name,
		"dataset", ds.Name,
		"model", e.model.Name(),
		"examples", len(examples))

	result, err := runner.Run(ctx, examples)
	if err != nil {
		return nil, fmt.Errorf("evaluate %s: %w", cfg.Name, err)
	}

	return &Report{
		ID:            uuid.New().String(),
		GeneratedAt:   time.Now().UTC(),
		Task:          cfg.Name,
		Dataset:       cfg.DatasetName,
		Model:         e.model.Name(),
		Framework:     e.model.Framework().String(),
		Examples:      len(examples),
		Features:      result.FeatureCount,
		InferenceTime: result.InferenceTime,
		Scores:        result.Scores,
	}, nil
}
