package metricfn

import (
	"math"
	"testing"

	"github.com/haasonsaas/evalharness/pkg/models"
)

const tolerance = 1e-6

func classPairs(pairs [][2]string) ([]models.Prediction, []models.Label) {
	preds := make([]models.Prediction, len(pairs))
	labels := make([]models.Label, len(pairs))
	for i, p := range pairs {
		id := string(rune('a' + i))
		preds[i] = models.Prediction{ID: id, Label: p[0]}
		labels[i] = models.Label{ID: id, Value: p[1]}
	}
	return preds, labels
}

func TestLookupKnownMetrics(t *testing.T) {
	for _, name := range []string{"accuracy", "mcc", "macro_f1", "micro_f1", "micro_f1_no_misc", "exact_match", "qa_f1"} {
		if _, err := Lookup(name); err != nil {
			t.Errorf("Lookup(%q): %v", name, err)
		}
	}
	if _, err := Lookup("bleu"); err == nil {
		t.Error("expected unknown metric error")
	}
}

func TestAccuracy(t *testing.T) {
	preds, labels := classPairs([][2]string{
		{"POSITIVE", "POSITIVE"},
		{"NEGATIVE", "POSITIVE"},
		{"NEUTRAL", "NEUTRAL"},
		{"POSITIVE", "NEGATIVE"},
	})
	got, err := Accuracy(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got["accuracy"]-0.5) > tolerance {
		t.Errorf("accuracy = %v, want 0.5", got["accuracy"])
	}
}

func TestChecksAlignment(t *testing.T) {
	preds := []models.Prediction{{ID: "a"}}
	labels := []models.Label{{ID: "b"}}
	if _, err := Accuracy(preds, labels, nil); err == nil {
		t.Error("expected id mismatch error")
	}
	if _, err := Accuracy(preds, nil, nil); err == nil {
		t.Error("expected length mismatch error")
	}
}

func TestClassF1Macro(t *testing.T) {
	// Class A: tp=1, fp=1, fn=0 -> 2/3. Class B: tp=1, fp=0, fn=1 -> 2/3.
	preds, labels := classPairs([][2]string{
		{"A", "A"},
		{"A", "B"},
		{"B", "B"},
	})
	got, err := ClassF1(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got["f1"]-2.0/3.0) > tolerance {
		t.Errorf("macro f1 = %v, want 2/3", got["f1"])
	}
}

func TestClassF1Micro(t *testing.T) {
	preds, labels := classPairs([][2]string{
		{"A", "A"},
		{"A", "B"},
		{"B", "B"},
	})
	got, err := ClassF1(preds, labels, map[string]any{"average": "micro"})
	if err != nil {
		t.Fatal(err)
	}
	// tp=2, fp=1, fn=1 -> 2*2/(4+1+1) = 2/3.
	if math.Abs(got["f1"]-2.0/3.0) > tolerance {
		t.Errorf("micro f1 = %v, want 2/3", got["f1"])
	}
}

func TestClassF1UnknownAverage(t *testing.T) {
	preds, labels := classPairs([][2]string{{"A", "A"}})
	if _, err := ClassF1(preds, labels, map[string]any{"average": "weighted"}); err == nil {
		t.Error("expected error for unsupported average")
	}
}

func TestMatthewsCorrelationPerfect(t *testing.T) {
	preds, labels := classPairs([][2]string{
		{"A", "A"}, {"B", "B"}, {"C", "C"},
	})
	got, err := MatthewsCorrelation(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got["matthews_correlation"]-1.0) > tolerance {
		t.Errorf("mcc = %v, want 1", got["matthews_correlation"])
	}
}

func TestMatthewsCorrelationBinary(t *testing.T) {
	// Binary confusion: tp=4, tn=2, fp=1, fn=1.
	// mcc = (4*2 - 1*1) / sqrt((tp+fp)(tp+fn)(tn+fp)(tn+fn)) = 7/15.
	pairs := [][2]string{
		{"P", "P"}, {"P", "P"}, {"P", "P"}, {"P", "P"},
		{"N", "N"}, {"N", "N"},
		{"P", "N"},
		{"N", "P"},
	}
	preds, labels := classPairs(pairs)
	got, err := MatthewsCorrelation(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := 7.0 / 15.0
	if math.Abs(got["matthews_correlation"]-want) > tolerance {
		t.Errorf("mcc = %v, want %v", got["matthews_correlation"], want)
	}
}

func TestMatthewsCorrelationDegenerate(t *testing.T) {
	// Single class everywhere: zero variance, defined as zero.
	preds, labels := classPairs([][2]string{{"A", "A"}, {"A", "A"}})
	got, err := MatthewsCorrelation(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got["matthews_correlation"] != 0 {
		t.Errorf("mcc = %v, want 0", got["matthews_correlation"])
	}
}

func TestSquadExactMatchNormalization(t *testing.T) {
	preds := []models.Prediction{
		{ID: "1", PredictionText: "The Eiffel Tower."},
		{ID: "2", PredictionText: "paris"},
		{ID: "3", PredictionText: ""},
		{ID: "4", PredictionText: "wrong"},
	}
	labels := []models.Label{
		{ID: "1", Answers: models.Answers{Text: []string{"Eiffel Tower"}}},
		{ID: "2", Answers: models.Answers{Text: []string{"London", "Paris"}}},
		{ID: "3", Answers: models.Answers{}}, // no-answer example
		{ID: "4", Answers: models.Answers{}}, // no-answer, but model answered
	}
	got, err := SquadExactMatch(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got["exact"]-75.0) > tolerance {
		t.Errorf("exact = %v, want 75", got["exact"])
	}
}

func TestSquadF1PartialOverlap(t *testing.T) {
	preds := []models.Prediction{
		{ID: "1", PredictionText: "the eiffel tower in paris"},
	}
	labels := []models.Label{
		{ID: "1", Answers: models.Answers{Text: []string{"Eiffel Tower"}}},
	}
	got, err := SquadF1(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Normalized pred: "eiffel tower in paris" (4 tokens), gold 2 tokens,
	// overlap 2: p=0.5, r=1 -> f1 = 2/3, scored 0-100.
	want := 100 * 2.0 / 3.0
	if math.Abs(got["f1"]-want) > tolerance {
		t.Errorf("f1 = %v, want %v", got["f1"], want)
	}
}

func TestEntityF1ExactExtent(t *testing.T) {
	preds := []models.Prediction{{
		ID:          "1",
		TokenLabels: []string{"B-PER", "I-PER", "O", "B-LOC", "O"},
	}}
	labels := []models.Label{{
		ID:          "1",
		TokenValues: []string{"B-PER", "I-PER", "O", "B-LOC", "O"},
	}}
	got, err := EntityF1(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got["overall_f1"]-1.0) > tolerance {
		t.Errorf("f1 = %v, want 1", got["overall_f1"])
	}
}

func TestEntityF1ExtentMismatchIsWrong(t *testing.T) {
	// Prediction truncates the person entity by one token: the entity
	// counts as both a false positive and a false negative.
	preds := []models.Prediction{{
		ID:          "1",
		TokenLabels: []string{"B-PER", "O", "O"},
	}}
	labels := []models.Label{{
		ID:          "1",
		TokenValues: []string{"B-PER", "I-PER", "O"},
	}}
	got, err := EntityF1(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got["overall_f1"] != 0 {
		t.Errorf("f1 = %v, want 0", got["overall_f1"])
	}
}

func TestEntityF1DropMisc(t *testing.T) {
	preds := []models.Prediction{{
		ID:          "1",
		TokenLabels: []string{"B-MISC", "O", "B-LOC"},
	}}
	labels := []models.Label{{
		ID:          "1",
		TokenValues: []string{"O", "O", "B-LOC"},
	}}

	// With MISC counted the spurious MISC entity costs precision.
	with, err := EntityF1(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(with["overall_precision"]-0.5) > tolerance {
		t.Errorf("precision = %v, want 0.5", with["overall_precision"])
	}

	// With drop_misc the MISC entity vanishes and the score is perfect.
	without, err := EntityF1(preds, labels, map[string]any{"drop_misc": true})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(without["overall_f1"]-1.0) > tolerance {
		t.Errorf("f1 = %v, want 1", without["overall_f1"])
	}
}

func TestEntityF1StrayITagOpensEntity(t *testing.T) {
	preds := []models.Prediction{{
		ID:          "1",
		TokenLabels: []string{"I-LOC", "I-LOC"},
	}}
	labels := []models.Label{{
		ID:          "1",
		TokenValues: []string{"B-LOC", "I-LOC"},
	}}
	got, err := EntityF1(preds, labels, nil)
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(got["overall_f1"]-1.0) > tolerance {
		t.Errorf("f1 = %v, want 1 under lenient decoding", got["overall_f1"])
	}
}
