// Package pipeline implements the task evaluation pipeline: the closed
// set of per-task orchestrators that sequence preprocessing, inference,
// postprocessing, and scoring over a shared control flow.
//
// Each task kind overrides only the stages that differ; the run loop,
// state machine, capability dispatch, and scoring are shared. A
// framework that cannot handle the requested task fails from the idle
// state with a typed error, before any inference call is made.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/haasonsaas/evalharness/internal/metricfn"
	"github.com/haasonsaas/evalharness/internal/observability"
	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/internal/tasks"
	"github.com/haasonsaas/evalharness/pkg/models"
)

// State is the pipeline's linear run state.
type State string

const (
	StateIdle          State = "idle"
	StatePreprocessed  State = "preprocessed"
	StateInferred      State = "inferred"
	StatePostprocessed State = "postprocessed"
	StateScored        State = "scored"
	StateFailed        State = "failed"
)

// Prepared is the output of the preprocessing stage. Task kinds
// populate the parts they need.
type Prepared struct {
	// Features are the QA windows with offset maps.
	Features []models.Feature

	// InputIDs/AttentionMask are unpadded tokenized inputs for
	// classification tasks; collation pads them.
	InputIDs      [][]int
	AttentionMask [][]int

	// Tokens are the raw word sequences for rule-engine inputs.
	Tokens [][]string

	// LabelIDs are the canonical gold label ids for sequence
	// classification.
	LabelIDs []int

	// TokenLabelIDs are the canonical gold label ids per token for
	// token classification.
	TokenLabelIDs [][]int
}

// Pair is one aligned (predictions, labels) batch handed to scoring.
type Pair struct {
	Predictions []models.Prediction
	Labels      []models.Label
}

// MetricResult is one scored metric.
type MetricResult struct {
	// Name is the metric identifier from the task config.
	Name string `json:"name"`

	// PrettyName is the human-readable metric name.
	PrettyName string `json:"pretty_name"`

	// Value is the scalar extracted via the metric's results key.
	Value float64 `json:"value"`
}

// Pipeline is the per-task orchestration contract. Implementations form
// a closed set, one per task kind.
type Pipeline interface {
	// Task returns the task configuration being evaluated.
	Task() *tasks.Config

	// Preprocess turns raw examples into model-ready features for the
	// given framework variant.
	Preprocess(ctx context.Context, examples []models.Example, framework providers.Framework) (*Prepared, error)

	// Collate assembles the prepared features into one batched input.
	Collate(prepared *Prepared) (*providers.Batch, error)

	// CheckTrained structurally probes raw outputs to verify the model
	// was trained for this task, before postprocessing runs.
	CheckTrained(out *providers.Output) bool

	// Postprocess converts raw model outputs into aligned
	// (predictions, labels) pairs.
	Postprocess(ctx context.Context, out *providers.Output, examples []models.Example, prepared *Prepared) ([]Pair, error)
}

// Result is a finished pipeline run.
type Result struct {
	// State is the terminal state, StateScored on success.
	State State `json:"state"`

	// Pairs are the aligned prediction/label batches.
	Pairs []Pair `json:"-"`

	// Scores are the computed metrics.
	Scores []MetricResult `json:"scores"`

	// InferenceTime is how long the model's predict call took.
	InferenceTime time.Duration `json:"inference_time"`

	// FeatureCount is how many model inputs preprocessing produced.
	FeatureCount int `json:"feature_count"`
}

// Runner drives a task pipeline through its state machine.
type Runner struct {
	pipeline Pipeline
	model    providers.Model
	logger   *slog.Logger
	metrics  *observability.Metrics
	tracer   trace.Tracer
}

// NewRunner creates a runner for one pipeline and model.
func NewRunner(p Pipeline, model providers.Model, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		pipeline: p,
		model:    model,
		logger: logger.With(
			"component", "pipeline",
			"task", p.Task().Name,
			"model", model.Name(),
		),
	}
}

// WithMetrics attaches Prometheus metrics collection.
func (r *Runner) WithMetrics(m *observability.Metrics) *Runner {
	r.metrics = m
	return r
}

// WithTracer attaches a tracer; each stage becomes a span.
func (r *Runner) WithTracer(t trace.Tracer) *Runner {
	r.tracer = t
	return r
}

// Run evaluates the examples end to end. The state machine is linear:
// idle → preprocessed → inferred → postprocessed → scored, with the
// single exception of a capability mismatch, which aborts straight from
// idle before any inference is attempted.
func (r *Runner) Run(ctx context.Context, examples []models.Example) (*Result, error) {
	task := r.pipeline.Task()
	framework := r.model.Framework()

	if !framework.Supports(task.Kind) {
		err := &providers.CapabilityError{Framework: framework, Task: task.PrettyName}
		r.fail("capability", err)
		return &Result{State: StateFailed}, err
	}

	prepared, err := r.preprocess(ctx, examples, framework)
	if err != nil {
		r.fail("preprocess", err)
		return &Result{State: StateFailed}, err
	}

	batch, err := r.pipeline.Collate(prepared)
	if err != nil {
		r.fail("collate", err)
		return &Result{State: StateFailed}, err
	}

	out, inferenceTime, err := r.predict(ctx, batch)
	if err != nil {
		r.fail("inference", err)
		return &Result{State: StateFailed}, err
	}

	if !r.pipeline.CheckTrained(out) {
		err := &NotTrainedError{Task: task.PrettyName, Model: r.model.Name()}
		r.fail("trained_check", err)
		return &Result{State: StateFailed}, err
	}

	pairs, err := r.postprocess(ctx, out, examples, prepared)
	if err != nil {
		r.fail("postprocess", err)
		return &Result{State: StateFailed}, err
	}

	scores, err := r.score(ctx, pairs)
	if err != nil {
		r.fail("score", err)
		return &Result{State: StateFailed}, err
	}

	if r.metrics != nil {
		r.metrics.ExamplesProcessed.WithLabelValues(task.Name).Add(float64(len(examples)))
	}
	r.logger.Info("evaluation run finished",
		"examples", len(examples),
		"features", featureCount(prepared),
		"inference_time", inferenceTime)

	return &Result{
		State:         StateScored,
		Pairs:         pairs,
		Scores:        scores,
		InferenceTime: inferenceTime,
		FeatureCount:  featureCount(prepared),
	}, nil
}

func (r *Runner) preprocess(ctx context.Context, examples []models.Example, framework providers.Framework) (*Prepared, error) {
	ctx, end := r.span(ctx, "pipeline.preprocess")
	defer end()
	prepared, err := r.pipeline.Preprocess(ctx, examples, framework)
	if err != nil {
		return nil, err
	}
	if r.metrics != nil {
		r.metrics.FeaturesBuilt.WithLabelValues(r.pipeline.Task().Name).Add(float64(featureCount(prepared)))
	}
	return prepared, nil
}

func (r *Runner) predict(ctx context.Context, batch *providers.Batch) (*providers.Output, time.Duration, error) {
	ctx, end := r.span(ctx, "pipeline.predict")
	defer end()
	start := time.Now()
	out, err := r.model.Predict(ctx, batch)
	elapsed := time.Since(start)
	if err != nil {
		return nil, elapsed, fmt.Errorf("inference: %w", err)
	}
	if r.metrics != nil {
		r.metrics.InferenceDuration.WithLabelValues(r.model.Name()).Observe(elapsed.Seconds())
	}
	return out, elapsed, nil
}

func (r *Runner) postprocess(ctx context.Context, out *providers.Output, examples []models.Example, prepared *Prepared) ([]Pair, error) {
	ctx, end := r.span(ctx, "pipeline.postprocess")
	defer end()
	return r.pipeline.Postprocess(ctx, out, examples, prepared)
}

// score computes every configured metric over each pair and averages
// across pairs. All built-in tasks emit a single pair, so the average
// is normally a pass-through.
func (r *Runner) score(ctx context.Context, pairs []Pair) ([]MetricResult, error) {
	_, end := r.span(ctx, "pipeline.score")
	defer end()

	task := r.pipeline.Task()
	results := make([]MetricResult, 0, len(task.Metrics))
	for _, mc := range task.Metrics {
		fn, err := metricfn.Lookup(mc.Name)
		if err != nil {
			return nil, err
		}
		var sum float64
		for _, pair := range pairs {
			computed, err := fn(pair.Predictions, pair.Labels, mc.ComputeOptions)
			if err != nil {
				return nil, fmt.Errorf("compute %s: %w", mc.Name, err)
			}
			value, ok := computed[mc.ResultsKey]
			if !ok {
				return nil, fmt.Errorf("metric %s has no results key %q", mc.Name, mc.ResultsKey)
			}
			sum += value
		}
		if len(pairs) > 0 {
			sum /= float64(len(pairs))
		}
		results = append(results, MetricResult{
			Name:       mc.Name,
			PrettyName: mc.PrettyName,
			Value:      sum,
		})
	}
	return results, nil
}

func (r *Runner) span(ctx context.Context, name string) (context.Context, func()) {
	if r.tracer == nil {
		return ctx, func() {}
	}
	ctx, span := r.tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}

func (r *Runner) fail(stage string, err error) {
	if r.metrics != nil {
		r.metrics.EvalErrors.WithLabelValues(r.pipeline.Task().Name, stage).Inc()
	}
	r.logger.Error("evaluation run failed", "stage", stage, "error", err)
}

func featureCount(p *Prepared) int {
	if len(p.Features) > 0 {
		return len(p.Features)
	}
	if len(p.InputIDs) > 0 {
		return len(p.InputIDs)
	}
	return len(p.Tokens)
}
