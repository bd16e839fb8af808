package metricfn

import (
	"fmt"
	"math"
	"sort"

	"github.com/haasonsaas/evalharness/pkg/models"
)

// Accuracy computes the fraction of exactly matching labels.
func Accuracy(preds []models.Prediction, labels []models.Label, _ map[string]any) (map[string]float64, error) {
	if err := checkAligned(preds, labels); err != nil {
		return nil, err
	}
	if len(preds) == 0 {
		return map[string]float64{"accuracy": 0}, nil
	}
	correct := 0
	for i := range preds {
		if preds[i].Label == labels[i].Value {
			correct++
		}
	}
	return map[string]float64{"accuracy": float64(correct) / float64(len(preds))}, nil
}

// ClassF1 computes per-class F1 averaged across classes. The "average"
// compute option selects "macro" (default) or "micro" averaging.
func ClassF1(preds []models.Prediction, labels []models.Label, opts map[string]any) (map[string]float64, error) {
	if err := checkAligned(preds, labels); err != nil {
		return nil, err
	}
	average := stringOpt(opts, "average", "macro")

	classes := classSet(preds, labels)
	var macroSum float64
	var tpTotal, fpTotal, fnTotal int
	for _, class := range classes {
		var tp, fp, fn int
		for i := range preds {
			predicted := preds[i].Label == class
			actual := labels[i].Value == class
			switch {
			case predicted && actual:
				tp++
			case predicted && !actual:
				fp++
			case !predicted && actual:
				fn++
			}
		}
		macroSum += f1Score(tp, fp, fn)
		tpTotal += tp
		fpTotal += fp
		fnTotal += fn
	}

	switch average {
	case "macro":
		if len(classes) == 0 {
			return map[string]float64{"f1": 0}, nil
		}
		return map[string]float64{"f1": macroSum / float64(len(classes))}, nil
	case "micro":
		return map[string]float64{"f1": f1Score(tpTotal, fpTotal, fnTotal)}, nil
	default:
		return nil, fmt.Errorf("unsupported f1 average %q", average)
	}
}

// MatthewsCorrelation computes the multiclass Matthews correlation
// coefficient from the confusion matrix.
func MatthewsCorrelation(preds []models.Prediction, labels []models.Label, _ map[string]any) (map[string]float64, error) {
	if err := checkAligned(preds, labels); err != nil {
		return nil, err
	}
	classes := classSet(preds, labels)
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}

	n := len(classes)
	confusion := make([][]float64, n)
	for i := range confusion {
		confusion[i] = make([]float64, n)
	}
	for i := range preds {
		confusion[index[labels[i].Value]][index[preds[i].Label]]++
	}

	// Multiclass MCC per Gorodkin (2004): covariance of the confusion
	// matrix normalized by the per-axis variances.
	var correct, total float64
	rowSums := make([]float64, n)
	colSums := make([]float64, n)
	for i := 0; i < n; i++ {
		correct += confusion[i][i]
		for j := 0; j < n; j++ {
			total += confusion[i][j]
			rowSums[i] += confusion[i][j]
			colSums[j] += confusion[i][j]
		}
	}

	var cov, rowVar, colVar float64
	cov = correct * total
	for i := 0; i < n; i++ {
		cov -= rowSums[i] * colSums[i]
		rowVar += rowSums[i] * rowSums[i]
		colVar += colSums[i] * colSums[i]
	}
	denom := math.Sqrt(total*total-rowVar) * math.Sqrt(total*total-colVar)
	if denom == 0 {
		return map[string]float64{"matthews_correlation": 0}, nil
	}
	return map[string]float64{"matthews_correlation": cov / denom}, nil
}

func f1Score(tp, fp, fn int) float64 {
	if 2*tp+fp+fn == 0 {
		return 0
	}
	return 2 * float64(tp) / float64(2*tp+fp+fn)
}

func classSet(preds []models.Prediction, labels []models.Label) []string {
	seen := make(map[string]bool)
	for i := range labels {
		seen[labels[i].Value] = true
		seen[preds[i].Label] = true
	}
	classes := make([]string, 0, len(seen))
	for c := range seen {
		classes = append(classes, c)
	}
	sort.Strings(classes)
	return classes
}
