package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects Prometheus metrics for evaluation runs.
//
// Tracked series:
//   - examples processed and feature windows built, per task
//   - inference batch latency, per model
//   - failed pipeline runs, per task and stage
type Metrics struct {
	// ExamplesProcessed counts evaluated examples.
	// Labels: task
	ExamplesProcessed *prometheus.CounterVec

	// FeaturesBuilt counts model inputs produced by preprocessing.
	// A QA example with a long context contributes several windows.
	// Labels: task
	FeaturesBuilt *prometheus.CounterVec

	// InferenceDuration measures batched predict call latency in seconds.
	// Labels: model
	InferenceDuration *prometheus.HistogramVec

	// EvalErrors counts failed pipeline runs.
	// Labels: task, stage (capability|preprocess|collate|inference|trained_check|postprocess|score)
	EvalErrors *prometheus.CounterVec
}

// NewMetrics creates metrics registered on the default registry.
func NewMetrics() *Metrics {
	return NewMetricsWithRegistry(nil)
}

// NewMetricsWithRegistry creates metrics on a specific registry; tests
// pass a fresh registry to avoid duplicate registration.
func NewMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	if reg == nil {
		factory = promauto.With(prometheus.DefaultRegisterer)
	}

	return &Metrics{
		ExamplesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evalharness_examples_processed_total",
				Help: "Number of examples evaluated, by task.",
			},
			[]string{"task"},
		),
		FeaturesBuilt: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evalharness_features_built_total",
				Help: "Number of model inputs produced by preprocessing, by task.",
			},
			[]string{"task"},
		),
		InferenceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "evalharness_inference_duration_seconds",
				Help:    "Latency of batched model predict calls.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120},
			},
			[]string{"model"},
		),
		EvalErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "evalharness_eval_errors_total",
				Help: "Failed pipeline runs, by task and failing stage.",
			},
			[]string{"task", "stage"},
		),
	}
}
