package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haasonsaas/evalharness/internal/features"
	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/internal/spans"
	"github.com/haasonsaas/evalharness/internal/tasks"
	"github.com/haasonsaas/evalharness/pkg/models"
)

// QuestionAnswering is the extractive QA pipeline: sliding-window
// feature building, span resolution from start/end logits, and gold
// answer projection.
type QuestionAnswering struct {
	task     *tasks.Config
	builder  *features.Builder
	resolver *spans.Resolver
}

// NewQuestionAnswering creates the QA pipeline over a tokenizer
// capability. workers bounds span resolution parallelism; zero keeps
// the resolver default.
func NewQuestionAnswering(task *tasks.Config, tokenizer providers.Tokenizer, workers int, logger *slog.Logger) *QuestionAnswering {
	return &QuestionAnswering{
		task:     task,
		builder:  features.NewBuilder(tokenizer, logger),
		resolver: spans.NewResolver(tokenizer.ClassTokenID(), logger).WithWorkers(workers),
	}
}

// Task returns the task configuration.
func (q *QuestionAnswering) Task() *tasks.Config { return q.task }

// Preprocess expands examples into overlapping tokenized windows.
func (q *QuestionAnswering) Preprocess(ctx context.Context, examples []models.Example, _ providers.Framework) (*Prepared, error) {
	for _, ex := range examples {
		if ex.Question == "" || ex.Context == "" {
			return nil, &SchemaError{
				Task:      q.task.Name,
				Columns:   q.task.FeatureColumns,
				ExampleID: ex.ID,
			}
		}
	}
	feats, err := q.builder.Prepare(ctx, examples)
	if err != nil {
		return nil, err
	}
	return &Prepared{Features: feats}, nil
}

// Collate batches the windows as-is: QA windows are already padded to a
// fixed length by the feature builder.
func (q *QuestionAnswering) Collate(prepared *Prepared) (*providers.Batch, error) {
	batch := &providers.Batch{
		InputIDs:      make([][]int, len(prepared.Features)),
		AttentionMask: make([][]int, len(prepared.Features)),
	}
	for i, f := range prepared.Features {
		batch.InputIDs[i] = f.InputIDs
		batch.AttentionMask[i] = f.AttentionMask
	}
	return batch, nil
}

// CheckTrained accepts either per-position (start, end) logit pairs or
// raw string answers; anything else means the model was not trained for
// extractive QA.
func (q *QuestionAnswering) CheckTrained(out *providers.Output) bool {
	if len(out.Texts) > 0 {
		return true
	}
	return len(out.SpanLogits) > 0 && len(out.SpanLogits[0]) > 0
}

// Postprocess resolves the best span per example and projects the gold
// answers as labels.
func (q *QuestionAnswering) Postprocess(_ context.Context, out *providers.Output, examples []models.Example, prepared *Prepared) ([]Pair, error) {
	var preds []models.Prediction

	switch {
	case len(out.SpanLogits) > 0:
		if len(out.SpanLogits) != len(prepared.Features) {
			return nil, fmt.Errorf("got %d span logit vectors for %d features",
				len(out.SpanLogits), len(prepared.Features))
		}
		scores := make([]models.ScoreVector, len(out.SpanLogits))
		for i, positions := range out.SpanLogits {
			sv := models.ScoreVector{
				StartLogits: make([]float64, len(positions)),
				EndLogits:   make([]float64, len(positions)),
			}
			for pos, pair := range positions {
				sv.StartLogits[pos] = pair[0]
				sv.EndLogits[pos] = pair[1]
			}
			scores[i] = sv
		}
		resolved, err := q.resolver.Resolve(examples, prepared.Features, scores)
		if err != nil {
			return nil, err
		}
		preds = resolved

	case len(out.Texts) == len(examples):
		// String-decoding models answer per example, not per window.
		preds = make([]models.Prediction, len(examples))
		for i, ex := range examples {
			preds[i] = models.Prediction{ID: ex.ID, PredictionText: out.Texts[i]}
		}

	default:
		return nil, fmt.Errorf("got %d text answers for %d examples", len(out.Texts), len(examples))
	}

	return []Pair{{Predictions: preds, Labels: qaLabels(examples)}}, nil
}

// qaLabels projects the gold answers unchanged, keeping label shape
// aligned 1:1 with predictions for the metric call.
func qaLabels(examples []models.Example) []models.Label {
	labels := make([]models.Label, len(examples))
	for i, ex := range examples {
		labels[i] = models.Label{
			ID: ex.ID,
			Answers: models.Answers{
				Text:        ex.Answers.Text,
				AnswerStart: ex.Answers.AnswerStart,
			},
		}
	}
	return labels
}
