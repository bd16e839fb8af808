// Package tasks defines the closed set of evaluation task kinds together
// with their static configuration: dataset identity, feature and label
// columns, the label/synonym tables, and the metrics each task reports.
package tasks

// Kind identifies an evaluation task kind. The set is closed: each kind
// has exactly one pipeline implementation.
type Kind string

const (
	// QuestionAnswering is extractive question answering: the answer is
	// a span of the provided context.
	QuestionAnswering Kind = "question-answering"

	// SequenceClassification assigns one label to a whole input text.
	SequenceClassification Kind = "sequence-classification"

	// TokenClassification assigns one label per input token (e.g. NER).
	TokenClassification Kind = "token-classification"
)

// String returns the kind identifier.
func (k Kind) String() string { return string(k) }

// Valid reports whether the kind is one of the known task kinds.
func (k Kind) Valid() bool {
	switch k {
	case QuestionAnswering, SequenceClassification, TokenClassification:
		return true
	default:
		return false
	}
}

// Config is the static, immutable per-task configuration. A Config is
// built once and threaded through the pipeline call chain; it is never
// process-wide mutable state.
type Config struct {
	// Name is the short task identifier (e.g. "qa", "sent", "ner").
	Name string `json:"name" yaml:"name"`

	// PrettyName is the human-readable task name used in diagnostics.
	PrettyName string `json:"pretty_name" yaml:"pretty_name"`

	// Kind selects the pipeline implementation.
	Kind Kind `json:"kind" yaml:"kind"`

	// DatasetName identifies the benchmark dataset for this task.
	DatasetName string `json:"dataset_name" yaml:"dataset_name"`

	// FeatureColumns are the dataset columns holding model inputs.
	FeatureColumns []string `json:"feature_columns" yaml:"feature_columns"`

	// LabelColumn is the dataset column holding the gold label.
	LabelColumn string `json:"label_column,omitempty" yaml:"label_column,omitempty"`

	// Labels is the declared label set with raw-string synonyms.
	Labels []LabelConfig `json:"labels,omitempty" yaml:"labels,omitempty"`

	// Metrics are the metric functions computed for this task.
	Metrics []MetricConfig `json:"metrics" yaml:"metrics"`

	// SplitNames maps the canonical split names (train/val/test) to the
	// dataset's own split names. An empty value means the split is absent.
	SplitNames map[string]string `json:"split_names,omitempty" yaml:"split_names,omitempty"`
}

// LabelConfig declares one canonical label and the raw strings that map
// to it. Canonical names are uppercase; synonym matching is
// case-insensitive.
type LabelConfig struct {
	// Name is the canonical (uppercase) label name.
	Name string `json:"name" yaml:"name"`

	// Synonyms are raw strings that canonicalize to Name.
	Synonyms []string `json:"synonyms,omitempty" yaml:"synonyms,omitempty"`
}

// MetricConfig describes one metric computed for a task.
type MetricConfig struct {
	// Name is the short metric identifier (e.g. "macro_f1").
	Name string `json:"name" yaml:"name"`

	// PrettyName is the human-readable metric name for reports.
	PrettyName string `json:"pretty_name" yaml:"pretty_name"`

	// ResultsKey selects the scalar to extract from the metric's
	// compute result map.
	ResultsKey string `json:"results_key" yaml:"results_key"`

	// ComputeOptions are passed through to the metric's compute call.
	ComputeOptions map[string]any `json:"compute_options,omitempty" yaml:"compute_options,omitempty"`
}

// LabelNames returns the canonical label names in declaration order.
// The declaration order fixes the label-id assignment.
func (c *Config) LabelNames() []string {
	names := make([]string, len(c.Labels))
	for i, l := range c.Labels {
		names[i] = l.Name
	}
	return names
}
