package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/internal/tasks"
)

// ForTask builds the pipeline implementation for a task configuration.
// The mapping is the closed task-kind set; an unknown kind is a
// configuration error, not a dispatch fallback. workers bounds span
// resolution parallelism for QA; zero keeps the resolver default.
func ForTask(cfg *tasks.Config, tokenizer providers.Tokenizer, workers int, logger *slog.Logger) (Pipeline, error) {
	switch cfg.Kind {
	case tasks.QuestionAnswering:
		if tokenizer == nil {
			return nil, fmt.Errorf("task %s requires a tokenizer", cfg.Name)
		}
		return NewQuestionAnswering(cfg, tokenizer, workers, logger), nil
	case tasks.SequenceClassification:
		if tokenizer == nil {
			return nil, fmt.Errorf("task %s requires a tokenizer", cfg.Name)
		}
		return NewSequenceClassification(cfg, tokenizer, logger), nil
	case tasks.TokenClassification:
		return NewTokenClassification(cfg, logger), nil
	default:
		return nil, fmt.Errorf("task %s has unknown kind %q", cfg.Name, cfg.Kind)
	}
}
