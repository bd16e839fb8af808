// Package features turns QA examples into model-ready fixed-length
// windows. A long context yields several overlapping windows; each
// window keeps an offset map back to the original context characters so
// spans can be recovered after inference.
package features

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haasonsaas/evalharness/internal/providers"
	"github.com/haasonsaas/evalharness/pkg/models"
)

// contextSequence is the tokenizer sequence id of the context side of a
// (question, context) pair.
const contextSequence = 1

// Builder expands QA examples into tokenized feature windows.
type Builder struct {
	tokenizer providers.Tokenizer
	logger    *slog.Logger
}

// NewBuilder creates a feature builder on top of a tokenizer capability.
func NewBuilder(tokenizer providers.Tokenizer, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{
		tokenizer: tokenizer,
		logger:    logger.With("component", "feature-builder"),
	}
}

// Prepare builds the feature batch for a batch of QA examples.
//
// The window budget is derived from the tokenizer's maximum sequence
// length: stride is a quarter of it and windows are capped at the
// remaining three quarters, so consecutive windows of an overflowing
// context overlap by the stride. Every window is padded to the cap and
// tagged with the id of the example that produced it.
func (b *Builder) Prepare(ctx context.Context, examples []models.Example) ([]models.Feature, error) {
	if len(examples) == 0 {
		return nil, nil
	}

	// Questions with lots of leading whitespace would eat window budget
	// once the context side gets truncated, so strip it up front.
	questions := make([]string, len(examples))
	contexts := make([]string, len(examples))
	for i, ex := range examples {
		questions[i] = strings.TrimLeft(ex.Question, " \t\n")
		contexts[i] = ex.Context
	}

	stride := b.tokenizer.ModelMaxLength() / 4
	maxLength := b.tokenizer.ModelMaxLength() - stride

	enc, err := b.tokenizer.Encode(ctx, questions, contexts, providers.EncodeOptions{
		TruncateSecondOnly: true,
		MaxLength:          maxLength,
		Stride:             stride,
		ReturnOverflow:     true,
		ReturnOffsets:      true,
		PadToMaxLength:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("tokenize qa examples: %w", err)
	}
	if len(enc.OverflowToSample) != len(enc.InputIDs) {
		return nil, fmt.Errorf("tokenizer emitted %d windows but %d overflow entries",
			len(enc.InputIDs), len(enc.OverflowToSample))
	}
	if len(enc.Offsets) != len(enc.InputIDs) || len(enc.SequenceIDs) != len(enc.InputIDs) {
		return nil, fmt.Errorf("tokenizer emitted %d windows but %d offset rows and %d sequence-id rows",
			len(enc.InputIDs), len(enc.Offsets), len(enc.SequenceIDs))
	}

	seen := make([]bool, len(examples))
	feats := make([]models.Feature, len(enc.InputIDs))
	for i := range enc.InputIDs {
		sample := enc.OverflowToSample[i]
		if sample < 0 || sample >= len(examples) {
			return nil, fmt.Errorf("window %d maps to out-of-range example %d", i, sample)
		}
		seen[sample] = true

		if len(enc.SequenceIDs[i]) != len(enc.Offsets[i]) {
			return nil, fmt.Errorf("window %d has %d offsets but %d sequence ids",
				i, len(enc.Offsets[i]), len(enc.SequenceIDs[i]))
		}

		// Sentinel every offset that is not a context token, so the
		// resolver can reject non-context positions in O(1).
		offsets := make([]models.Offset, len(enc.Offsets[i]))
		for pos, off := range enc.Offsets[i] {
			if enc.SequenceIDs[i][pos] == contextSequence {
				offsets[pos] = off
			} else {
				offsets[pos] = models.OffsetSentinel
			}
		}

		feats[i] = models.Feature{
			ExampleID:     examples[sample].ID,
			InputIDs:      enc.InputIDs[i],
			AttentionMask: enc.AttentionMask[i],
			OffsetMapping: offsets,
		}
	}

	for idx, ok := range seen {
		if !ok {
			return nil, fmt.Errorf("example %s produced no feature window", examples[idx].ID)
		}
	}

	b.logger.Debug("prepared qa features",
		"examples", len(examples),
		"windows", len(feats),
		"max_length", maxLength,
		"stride", stride)

	return feats, nil
}
