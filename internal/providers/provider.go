// Package providers defines the model-side capabilities the evaluation
// pipeline consumes: the tokenizer contract, the inference contract, and
// the framework capability table used for task dispatch.
//
// The harness never constructs or trains models; it receives a loaded
// model as an opaque inference capability and only asks it to predict.
package providers

import (
	"context"

	"github.com/haasonsaas/evalharness/internal/tasks"
	"github.com/haasonsaas/evalharness/pkg/models"
)

// Framework identifies a model framework variant. The set is closed and
// each variant's task support is declared in the capability table below.
type Framework string

const (
	// FrameworkTransformer is a tensor model: batched numeric inference,
	// arbitrary preprocessing.
	FrameworkTransformer Framework = "transformer"

	// FrameworkRules is a rule-based engine: no training, limited
	// structured output.
	FrameworkRules Framework = "rules"
)

// String returns the framework identifier.
func (f Framework) String() string { return string(f) }

// capabilities is the explicit framework-by-task support table.
// Dispatch consults this table instead of duck-typing the model.
var capabilities = map[Framework]map[tasks.Kind]bool{
	FrameworkTransformer: {
		tasks.QuestionAnswering:      true,
		tasks.SequenceClassification: true,
		tasks.TokenClassification:    true,
	},
	FrameworkRules: {
		tasks.TokenClassification: true,
	},
}

// Supports reports whether the framework can run the given task kind.
func (f Framework) Supports(kind tasks.Kind) bool {
	return capabilities[f][kind]
}

// EncodeOptions controls a tokenizer encode call.
type EncodeOptions struct {
	// TruncateSecondOnly truncates only the pair (context) side when the
	// combined input exceeds MaxLength.
	TruncateSecondOnly bool `json:"truncate_second_only,omitempty"`

	// MaxLength caps the token length of each emitted window.
	MaxLength int `json:"max_length,omitempty"`

	// Stride is the token overlap step between overflow windows.
	Stride int `json:"stride,omitempty"`

	// ReturnOverflow emits additional windows when the input overflows
	// MaxLength rather than discarding the tail.
	ReturnOverflow bool `json:"return_overflow,omitempty"`

	// ReturnOffsets requests a character offset per token.
	ReturnOffsets bool `json:"return_offsets,omitempty"`

	// PadToMaxLength pads every window to exactly MaxLength tokens.
	PadToMaxLength bool `json:"pad_to_max_length,omitempty"`
}

// Encoding is the result of a batched tokenizer encode call. All outer
// slices are indexed by emitted window.
type Encoding struct {
	// InputIDs are the token ids per window.
	InputIDs [][]int `json:"input_ids"`

	// AttentionMask marks real tokens (1) versus padding (0) per window.
	AttentionMask [][]int `json:"attention_mask"`

	// Offsets are the character offsets per token, when requested.
	Offsets [][]models.Offset `json:"offsets,omitempty"`

	// SequenceIDs tag each token position: 0 for the first text, 1 for
	// the pair text, -1 for special tokens and padding.
	SequenceIDs [][]int `json:"sequence_ids,omitempty"`

	// OverflowToSample maps each emitted window back to the index of the
	// input text that produced it.
	OverflowToSample []int `json:"overflow_to_sample,omitempty"`
}

// Tokenizer is the tokenizer capability consumed by preprocessing.
// Implementations live outside the harness; tests use small fakes.
type Tokenizer interface {
	// Encode tokenizes texts (optionally paired with pairs) under opts.
	Encode(ctx context.Context, texts, pairs []string, opts EncodeOptions) (*Encoding, error)

	// ModelMaxLength is the maximum sequence length the model accepts.
	ModelMaxLength() int

	// ClassTokenID is the id of the designated classifier token.
	ClassTokenID() int
}

// Batch is the collated, model-ready input for one inference call.
// Tensor models consume InputIDs/AttentionMask; rule engines consume
// the raw Tokens.
type Batch struct {
	InputIDs      [][]int    `json:"input_ids,omitempty"`
	AttentionMask [][]int    `json:"attention_mask,omitempty"`
	Tokens        [][]string `json:"tokens,omitempty"`
}

// Output holds raw model outputs for one batch. Exactly one of the
// fields is populated, matching the task being evaluated.
type Output struct {
	// SpanLogits holds, per window and token position, the (start, end)
	// logit pair for extractive QA.
	SpanLogits [][][2]float64 `json:"span_logits,omitempty"`

	// ClassProbs holds one class-probability vector per input for
	// sequence classification.
	ClassProbs [][]float64 `json:"class_probs,omitempty"`

	// TokenProbs holds one class-probability vector per token per input
	// for token classification.
	TokenProbs [][][]float64 `json:"token_probs,omitempty"`

	// TokenTags holds one raw label string per token per input, for
	// rule engines that tag directly instead of scoring classes.
	TokenTags [][]string `json:"token_tags,omitempty"`

	// Texts holds raw string answers for QA models that decode
	// internally instead of returning logits.
	Texts []string `json:"texts,omitempty"`
}

// Model is the inference capability consumed by the pipeline. The
// pipeline performs no numeric inference of its own.
type Model interface {
	// Name identifies the model in reports and diagnostics.
	Name() string

	// Framework reports the framework variant for capability dispatch.
	Framework() Framework

	// Predict runs one batched inference call.
	Predict(ctx context.Context, batch *Batch) (*Output, error)
}
