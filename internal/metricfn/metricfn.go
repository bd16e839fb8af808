// Package metricfn implements the metric functions the built-in tasks
// reference. Every metric satisfies the same call contract: it receives
// aligned predictions and labels plus pass-through compute options, and
// returns a map of named scalar results keyed the way the task config's
// results_key expects.
package metricfn

import (
	"fmt"

	"github.com/haasonsaas/evalharness/pkg/models"
)

// Func is the metric capability contract. Predictions and labels are
// aligned 1:1 by position and share ids pairwise.
type Func func(preds []models.Prediction, labels []models.Label, opts map[string]any) (map[string]float64, error)

// registry maps metric names from task configs to implementations.
var registry = map[string]Func{
	"accuracy":         Accuracy,
	"mcc":              MatthewsCorrelation,
	"macro_f1":         ClassF1,
	"micro_f1":         EntityF1,
	"micro_f1_no_misc": EntityF1,
	"exact_match":      SquadExactMatch,
	"qa_f1":            SquadF1,
}

// Lookup resolves a metric name to its implementation.
func Lookup(name string) (Func, error) {
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric %q", name)
	}
	return fn, nil
}

// checkAligned verifies the 1:1 prediction/label alignment every metric
// relies on.
func checkAligned(preds []models.Prediction, labels []models.Label) error {
	if len(preds) != len(labels) {
		return fmt.Errorf("got %d predictions for %d labels", len(preds), len(labels))
	}
	for i := range preds {
		if preds[i].ID != labels[i].ID {
			return fmt.Errorf("prediction %d has id %s but label has id %s", i, preds[i].ID, labels[i].ID)
		}
	}
	return nil
}

// stringOpt reads a string compute option with a default.
func stringOpt(opts map[string]any, key, def string) string {
	if opts == nil {
		return def
	}
	if v, ok := opts[key].(string); ok && v != "" {
		return v
	}
	return def
}

// boolOpt reads a boolean compute option.
func boolOpt(opts map[string]any, key string) bool {
	if opts == nil {
		return false
	}
	v, _ := opts[key].(bool)
	return v
}
