package eval

import (
	"fmt"
	"strings"
	"time"

	"github.com/haasonsaas/evalharness/internal/pipeline"
)

// Report captures one finished evaluation run.
type Report struct {
	// ID is the unique run identifier.
	ID string `json:"id"`

	// GeneratedAt is when the run finished.
	GeneratedAt time.Time `json:"generated_at"`

	// Task is the task name that was evaluated.
	Task string `json:"task"`

	// Dataset is the benchmark dataset name from the task config.
	Dataset string `json:"dataset"`

	// Model is the evaluated model's name.
	Model string `json:"model"`

	// Framework is the model's framework variant.
	Framework string `json:"framework"`

	// Examples is how many examples were evaluated.
	Examples int `json:"examples"`

	// Features is how many model inputs preprocessing produced.
	Features int `json:"features"`

	// InferenceTime is the total time spent in model predict calls.
	InferenceTime time.Duration `json:"inference_time"`

	// Scores are the computed metric results.
	Scores []pipeline.MetricResult `json:"scores"`
}

// Score returns the value for a metric name, and whether it was found.
func (r *Report) Score(name string) (float64, bool) {
	for _, s := range r.Scores {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// Summary renders the report as a single log-friendly line.
func (r *Report) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s on %s with %s: %d examples", r.Task, r.Dataset, r.Model, r.Examples)
	for _, s := range r.Scores {
		fmt.Fprintf(&b, ", %s=%.4f", s.Name, s.Value)
	}
	return b.String()
}
