package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/internal/tasks"
	"github.com/haasonsaas/evalharness/pkg/models"
)

// SequenceClassification is the whole-text classification pipeline:
// tokenize, canonicalize gold labels, pad to the longest input, and
// decode the predicted class per example.
type SequenceClassification struct {
	task      *tasks.Config
	tokenizer providers.Tokenizer
	labels    *tasks.LabelMap
	logger    *slog.Logger
}

// NewSequenceClassification creates the classification pipeline. The
// label map is built once from the task's label table and read-only
// afterwards.
func NewSequenceClassification(task *tasks.Config, tokenizer providers.Tokenizer, logger *slog.Logger) *SequenceClassification {
	if logger == nil {
		logger = slog.Default()
	}
	return &SequenceClassification{
		task:      task,
		tokenizer: tokenizer,
		labels:    tasks.NewLabelMap(task),
		logger:    logger.With("component", "classification", "task", task.Name),
	}
}

// Task returns the task configuration.
func (s *SequenceClassification) Task() *tasks.Config { return s.task }

// Preprocess tokenizes the input texts (truncated to the model's limit,
// unpadded) and canonicalizes every gold label. An unmapped label fails
// the whole stage rather than being dropped, since dropping one would
// corrupt prediction/label alignment.
func (s *SequenceClassification) Preprocess(ctx context.Context, examples []models.Example, _ providers.Framework) (*Prepared, error) {
	texts := make([]string, len(examples))
	for i, ex := range examples {
		if ex.Text == "" || ex.Label == "" {
			return nil, &SchemaError{
				Task:      s.task.Name,
				Columns:   append(append([]string{}, s.task.FeatureColumns...), s.task.LabelColumn),
				ExampleID: ex.ID,
			}
		}
		texts[i] = ex.Text
	}

	enc, err := s.tokenizer.Encode(ctx, texts, nil, providers.EncodeOptions{
		MaxLength: s.tokenizer.ModelMaxLength(),
	})
	if err != nil {
		return nil, fmt.Errorf("tokenize %s examples: %w", s.task.Name, err)
	}
	if len(enc.InputIDs) != len(examples) {
		return nil, fmt.Errorf("tokenizer emitted %d sequences for %d examples",
			len(enc.InputIDs), len(examples))
	}

	labelIDs := make([]int, len(examples))
	for i, ex := range examples {
		id, err := s.labels.Canonicalize(ex.Label)
		if err != nil {
			return nil, err
		}
		labelIDs[i] = id
	}

	return &Prepared{
		InputIDs:      enc.InputIDs,
		AttentionMask: enc.AttentionMask,
		LabelIDs:      labelIDs,
	}, nil
}

// Collate pads every sequence to the longest one in the batch.
func (s *SequenceClassification) Collate(prepared *Prepared) (*providers.Batch, error) {
	longest := 0
	for _, ids := range prepared.InputIDs {
		if len(ids) > longest {
			longest = len(ids)
		}
	}
	batch := &providers.Batch{
		InputIDs:      make([][]int, len(prepared.InputIDs)),
		AttentionMask: make([][]int, len(prepared.InputIDs)),
	}
	for i, ids := range prepared.InputIDs {
		padded := make([]int, longest)
		mask := make([]int, longest)
		copy(padded, ids)
		if i < len(prepared.AttentionMask) {
			copy(mask, prepared.AttentionMask[i])
		} else {
			for j := range ids {
				mask[j] = 1
			}
		}
		batch.InputIDs[i] = padded
		batch.AttentionMask[i] = mask
	}
	return batch, nil
}

// CheckTrained expects one class-probability vector per input, sized to
// the task's label set.
func (s *SequenceClassification) CheckTrained(out *providers.Output) bool {
	if len(out.ClassProbs) == 0 {
		return false
	}
	return len(out.ClassProbs[0]) == s.labels.Len()
}

// Postprocess decodes the argmax class per example and pairs it with
// the canonical gold label.
func (s *SequenceClassification) Postprocess(_ context.Context, out *providers.Output, examples []models.Example, prepared *Prepared) ([]Pair, error) {
	if len(out.ClassProbs) != len(examples) {
		return nil, fmt.Errorf("got %d class vectors for %d examples", len(out.ClassProbs), len(examples))
	}

	preds := make([]models.Prediction, len(examples))
	labels := make([]models.Label, len(examples))
	for i, ex := range examples {
		preds[i] = models.Prediction{
			ID:    ex.ID,
			Label: s.labels.Name(argmax(out.ClassProbs[i])),
		}
		labels[i] = models.Label{
			ID:    ex.ID,
			Value: s.labels.Name(prepared.LabelIDs[i]),
		}
	}
	return []Pair{{Predictions: preds, Labels: labels}}, nil
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
