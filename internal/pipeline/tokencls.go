package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/internal/tasks"
	"github.com/haasonsaas/evalharness/pkg/models"
)

// TokenClassification is the per-token labeling pipeline (e.g. NER).
// It operates at word granularity: the dataset provides pre-split
// tokens, and models are expected to score or tag per word. This is the
// one task kind a rule engine can also run, consuming the raw tokens
// directly.
type TokenClassification struct {
	task   *tasks.Config
	labels *tasks.LabelMap
	logger *slog.Logger
}

// NewTokenClassification creates the token classification pipeline.
func NewTokenClassification(task *tasks.Config, logger *slog.Logger) *TokenClassification {
	if logger == nil {
		logger = slog.Default()
	}
	return &TokenClassification{
		task:   task,
		labels: tasks.NewLabelMap(task),
		logger: logger.With("component", "token-classification", "task", task.Name),
	}
}

// Task returns the task configuration.
func (t *TokenClassification) Task() *tasks.Config { return t.task }

// Preprocess canonicalizes the per-token gold labels and passes the
// word sequences through. Both framework variants take the words; a
// tensor model's serving layer owns any subword handling.
func (t *TokenClassification) Preprocess(_ context.Context, examples []models.Example, _ providers.Framework) (*Prepared, error) {
	prepared := &Prepared{
		Tokens:        make([][]string, len(examples)),
		TokenLabelIDs: make([][]int, len(examples)),
	}
	for i, ex := range examples {
		if len(ex.Tokens) == 0 || len(ex.TokenLabels) == 0 {
			return nil, &SchemaError{
				Task:      t.task.Name,
				Columns:   append(append([]string{}, t.task.FeatureColumns...), t.task.LabelColumn),
				ExampleID: ex.ID,
			}
		}
		if len(ex.Tokens) != len(ex.TokenLabels) {
			return nil, fmt.Errorf("example %s has %d tokens but %d labels",
				ex.ID, len(ex.Tokens), len(ex.TokenLabels))
		}
		ids := make([]int, len(ex.TokenLabels))
		for j, raw := range ex.TokenLabels {
			id, err := t.labels.Canonicalize(raw)
			if err != nil {
				return nil, err
			}
			ids[j] = id
		}
		prepared.Tokens[i] = ex.Tokens
		prepared.TokenLabelIDs[i] = ids
	}
	return prepared, nil
}

// Collate hands the word sequences to the model unchanged.
func (t *TokenClassification) Collate(prepared *Prepared) (*providers.Batch, error) {
	return &providers.Batch{Tokens: prepared.Tokens}, nil
}

// CheckTrained accepts either per-token class-probability vectors sized
// to the label set (tensor models) or raw tag strings (rule engines).
func (t *TokenClassification) CheckTrained(out *providers.Output) bool {
	if len(out.TokenTags) > 0 {
		return true
	}
	if len(out.TokenProbs) == 0 || len(out.TokenProbs[0]) == 0 {
		return false
	}
	return len(out.TokenProbs[0][0]) == t.labels.Len()
}

// Postprocess decodes one canonical label per token. Rule-engine tags
// are canonicalized through the same label map as the gold labels, so
// synonym spellings from the model collapse onto the task's label set.
func (t *TokenClassification) Postprocess(_ context.Context, out *providers.Output, examples []models.Example, prepared *Prepared) ([]Pair, error) {
	preds := make([]models.Prediction, len(examples))
	labels := make([]models.Label, len(examples))

	for i, ex := range examples {
		var tags []string
		switch {
		case len(out.TokenTags) == len(examples):
			tags = make([]string, len(out.TokenTags[i]))
			for j, raw := range out.TokenTags[i] {
				id, err := t.labels.Canonicalize(raw)
				if err != nil {
					return nil, err
				}
				tags[j] = t.labels.Name(id)
			}
		case len(out.TokenProbs) == len(examples):
			tags = make([]string, len(out.TokenProbs[i]))
			for j, probs := range out.TokenProbs[i] {
				tags[j] = t.labels.Name(argmax(probs))
			}
		default:
			return nil, fmt.Errorf("got outputs for %d inputs, want %d", outputLen(out), len(examples))
		}
		if len(tags) != len(ex.Tokens) {
			return nil, fmt.Errorf("example %s got %d tags for %d tokens", ex.ID, len(tags), len(ex.Tokens))
		}

		gold := make([]string, len(prepared.TokenLabelIDs[i]))
		for j, id := range prepared.TokenLabelIDs[i] {
			gold[j] = t.labels.Name(id)
		}

		preds[i] = models.Prediction{ID: ex.ID, TokenLabels: tags}
		labels[i] = models.Label{ID: ex.ID, TokenValues: gold}
	}
	return []Pair{{Predictions: preds, Labels: labels}}, nil
}

func outputLen(out *providers.Output) int {
	if len(out.TokenTags) > 0 {
		return len(out.TokenTags)
	}
	return len(out.TokenProbs)
}
