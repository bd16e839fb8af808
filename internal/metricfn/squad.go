package metricfn

import (
	"strings"
	"unicode"

	"github.com/haasonsaas/evalharness/pkg/models"
)

// SquadExactMatch computes SQuAD v2 style exact match over answer
// texts, scored 0-100. An example whose gold answer list is empty is a
// no-answer example; the prediction matches it only with empty text.
func SquadExactMatch(preds []models.Prediction, labels []models.Label, _ map[string]any) (map[string]float64, error) {
	if err := checkAligned(preds, labels); err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return map[string]float64{"exact": 0}, nil
	}
	var sum float64
	for i := range preds {
		sum += bestOverGold(preds[i].PredictionText, labels[i].Answers, exactScore)
	}
	return map[string]float64{"exact": 100 * sum / float64(len(preds))}, nil
}

// SquadF1 computes SQuAD v2 style token-level F1 over answer texts,
// scored 0-100, taking the best F1 across the gold answers per example.
func SquadF1(preds []models.Prediction, labels []models.Label, _ map[string]any) (map[string]float64, error) {
	if err := checkAligned(preds, labels); err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return map[string]float64{"f1": 0}, nil
	}
	var sum float64
	for i := range preds {
		sum += bestOverGold(preds[i].PredictionText, labels[i].Answers, tokenF1)
	}
	return map[string]float64{"f1": 100 * sum / float64(len(preds))}, nil
}

// bestOverGold scores a prediction against every gold answer and keeps
// the best score. No gold answers means a no-answer example, where only
// the empty prediction scores.
func bestOverGold(pred string, gold models.Answers, score func(pred, gold string) float64) float64 {
	golds := make([]string, 0, len(gold.Text))
	for _, g := range gold.Text {
		if normalizeAnswer(g) != "" {
			golds = append(golds, g)
		}
	}
	if len(golds) == 0 {
		if normalizeAnswer(pred) == "" {
			return 1
		}
		return 0
	}
	best := 0.0
	for _, g := range golds {
		if s := score(pred, g); s > best {
			best = s
		}
	}
	return best
}

func exactScore(pred, gold string) float64 {
	if normalizeAnswer(pred) == normalizeAnswer(gold) {
		return 1
	}
	return 0
}

func tokenF1(pred, gold string) float64 {
	predTokens := strings.Fields(normalizeAnswer(pred))
	goldTokens := strings.Fields(normalizeAnswer(gold))
	if len(predTokens) == 0 || len(goldTokens) == 0 {
		if len(predTokens) == len(goldTokens) {
			return 1
		}
		return 0
	}

	goldCounts := make(map[string]int, len(goldTokens))
	for _, t := range goldTokens {
		goldCounts[t]++
	}
	common := 0
	for _, t := range predTokens {
		if goldCounts[t] > 0 {
			goldCounts[t]--
			common++
		}
	}
	if common == 0 {
		return 0
	}
	precision := float64(common) / float64(len(predTokens))
	recall := float64(common) / float64(len(goldTokens))
	return 2 * precision * recall / (precision + recall)
}

// normalizeAnswer lowercases, strips punctuation and articles, and
// collapses whitespace, matching the SQuAD answer comparison rules.
func normalizeAnswer(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if unicode.IsPunct(r) {
			continue
		}
		b.WriteRune(r)
	}
	words := strings.Fields(b.String())
	kept := words[:0]
	for _, w := range words {
		if w == "a" || w == "an" || w == "the" {
			continue
		}
		kept = append(kept, w)
	}
	return strings.Join(kept, " ")
}
