// Package models defines the core data types for the evaluation harness.
package models

// Example is a single benchmark record as loaded from a dataset.
// Examples are immutable once loaded; the pipeline only reads them.
type Example struct {
	// ID is the stable dataset identifier for this example.
	ID string `json:"id" yaml:"id"`

	// Question is the question text for extractive QA tasks.
	Question string `json:"question,omitempty" yaml:"question,omitempty"`

	// Context is the passage the answer must be extracted from.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// Answers holds the gold answers for QA examples.
	Answers Answers `json:"answers,omitempty" yaml:"answers,omitempty"`

	// Text is the input text for classification tasks.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Tokens are the pre-split input tokens for token classification tasks.
	Tokens []string `json:"tokens,omitempty" yaml:"tokens,omitempty"`

	// Label is the raw gold label for classification tasks.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// TokenLabels are the raw per-token gold labels for token classification.
	TokenLabels []string `json:"token_labels,omitempty" yaml:"token_labels,omitempty"`
}

// Answers is the gold answer set for a QA example. Text and AnswerStart
// are parallel: AnswerStart[i] is the character offset of Text[i] in the
// example context.
type Answers struct {
	Text        []string `json:"text" yaml:"text"`
	AnswerStart []int    `json:"answer_start" yaml:"answer_start"`
}

// OffsetSentinel marks offset-mapping entries that do not belong to the
// context segment (question tokens and padding).
var OffsetSentinel = Offset{-1, -1}

// Offset is a half-open character span [Start, End) into the original
// context string.
type Offset struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// IsSentinel reports whether the offset is the non-context sentinel.
func (o Offset) IsSentinel() bool {
	return o == OffsetSentinel
}

// Feature is one fixed-length tokenized window produced from an example.
// A long context yields several overlapping features; each one is
// independently scorable by the model.
type Feature struct {
	// ExampleID is the id of the example this window was cut from.
	ExampleID string `json:"example_id"`

	// InputIDs are the token ids of the window, padded to the window length.
	InputIDs []int `json:"input_ids"`

	// AttentionMask marks real tokens (1) versus padding (0).
	AttentionMask []int `json:"attention_mask"`

	// OffsetMapping maps each token position back to context characters.
	// Positions outside the context segment carry OffsetSentinel.
	OffsetMapping []Offset `json:"offset_mapping"`
}

// ScoreVector holds the model's per-position start and end logits for
// one feature. Both slices have one entry per token position.
type ScoreVector struct {
	StartLogits []float64 `json:"start_logits"`
	EndLogits   []float64 `json:"end_logits"`
}

// CandidateSpan is a scored answer proposal inside a single feature.
// Candidates are discarded once the best answer is chosen.
type CandidateSpan struct {
	StartIndex int     `json:"start_index"`
	EndIndex   int     `json:"end_index"`
	Score      float64 `json:"score"`
	Text       string  `json:"text"`
}

// Prediction is a task-native normalized model output for one example.
type Prediction struct {
	// ID matches the id of the example the prediction belongs to.
	ID string `json:"id"`

	// PredictionText is the extracted answer for QA tasks. Empty means
	// the model asserts the context holds no answer.
	PredictionText string `json:"prediction_text,omitempty"`

	// NoAnswerProbability is reported for QA metric compatibility.
	NoAnswerProbability float64 `json:"no_answer_probability"`

	// Label is the predicted canonical label for classification tasks.
	Label string `json:"label,omitempty"`

	// TokenLabels are the predicted canonical per-token labels for
	// token classification tasks.
	TokenLabels []string `json:"token_labels,omitempty"`
}

// Label is the canonical ground truth paired with a prediction.
// A Label and its Prediction always share the same ID.
type Label struct {
	// ID matches the id of the originating example.
	ID string `json:"id"`

	// Answers holds the gold answers for QA tasks.
	Answers Answers `json:"answers,omitempty"`

	// Value is the canonical gold label for classification tasks.
	Value string `json:"value,omitempty"`

	// TokenValues are the canonical per-token gold labels for token
	// classification tasks.
	TokenValues []string `json:"token_values,omitempty"`
}
