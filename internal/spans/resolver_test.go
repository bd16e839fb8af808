package spans

import (
	"errors"
	"testing"

	"github.com/haasonsaas/evalharness/pkg/models"
)

const clsID = 101

// parisFixture builds one example with a single feature window over the
// context "Paris is the capital of France." Token layout:
//
//	pos 0: [CLS]           sentinel
//	pos 1: question token  sentinel
//	pos 2: [SEP]           sentinel
//	pos 3: "Paris"         [0,5)
//	pos 4: "is"            [6,8)
//	pos 5: "the"           [9,12)
//	pos 6: "capital"       [13,20)
//	pos 7: "of"            [21,23)
//	pos 8: "France"        [24,30)
//	pos 9: [SEP]           sentinel
func parisFixture() (models.Example, models.Feature) {
	ex := models.Example{
		ID:       "ex0",
		Question: "What is the capital of France?",
		Context:  "Paris is the capital of France.",
	}
	s := models.OffsetSentinel
	feat := models.Feature{
		ExampleID: "ex0",
		InputIDs:  []int{clsID, 2054, 102, 3000, 2003, 1996, 3007, 1997, 2605, 102},
		OffsetMapping: []models.Offset{
			s, s, s,
			{Start: 0, End: 5},
			{Start: 6, End: 8},
			{Start: 9, End: 12},
			{Start: 13, End: 20},
			{Start: 21, End: 23},
			{Start: 24, End: 30},
			s,
		},
	}
	return ex, feat
}

// flatLogits returns a logit vector of the given length filled with a
// low baseline.
func flatLogits(n int, baseline float64) []float64 {
	v := make([]float64, n)
	for i := range v {
		v[i] = baseline
	}
	return v
}

func TestResolvePicksBestSpan(t *testing.T) {
	ex, feat := parisFixture()

	start := flatLogits(10, -5)
	end := flatLogits(10, -5)
	start[3] = 8 // "Paris"
	end[3] = 7
	start[0] = 1 // weak null
	end[0] = 1

	preds, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		[]models.ScoreVector{{StartLogits: start, EndLogits: end}},
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(preds) != 1 {
		t.Fatalf("got %d predictions", len(preds))
	}
	if preds[0].PredictionText != "Paris" {
		t.Errorf("PredictionText = %q, want Paris", preds[0].PredictionText)
	}
	if preds[0].NoAnswerProbability != 0.0 {
		t.Errorf("NoAnswerProbability = %v, want 0", preds[0].NoAnswerProbability)
	}
}

func TestResolveNullWinsOverWeakSpan(t *testing.T) {
	ex, feat := parisFixture()

	start := flatLogits(10, -5)
	end := flatLogits(10, -5)
	start[0] = 9 // dominant null reference at the classifier token
	end[0] = 9
	start[3] = 2
	end[3] = 2

	preds, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		[]models.ScoreVector{{StartLogits: start, EndLogits: end}},
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if preds[0].PredictionText != "" {
		t.Errorf("PredictionText = %q, want empty", preds[0].PredictionText)
	}
}

// Even with every logit deeply negative, the null reference floor means
// a barely-positive span still cannot win against it.
func TestResolveNullFloorIsZero(t *testing.T) {
	ex, feat := parisFixture()

	start := flatLogits(10, -5)
	end := flatLogits(10, -5)
	start[0] = -10 // null score at CLS is -20, below the zero floor
	end[0] = -10
	start[3] = -1 // best span scores -2, below zero
	end[3] = -1

	preds, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		[]models.ScoreVector{{StartLogits: start, EndLogits: end}},
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if preds[0].PredictionText != "" {
		t.Errorf("PredictionText = %q, want empty under the zero floor", preds[0].PredictionText)
	}
}

func TestResolveRejectsInvalidSpans(t *testing.T) {
	ex, feat := parisFixture()

	// Best raw pair is (end before start); next best lands on a
	// sentinel position. Only the modest "capital" span is valid.
	start := flatLogits(10, -5)
	end := flatLogits(10, -5)
	start[8] = 9 // "France" start...
	end[3] = 9   // ...ending at "Paris": end < start, rejected
	start[1] = 8 // question token: sentinel, rejected
	end[1] = 8
	start[6] = 4 // "capital"
	end[6] = 4

	preds, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		[]models.ScoreVector{{StartLogits: start, EndLogits: end}},
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if preds[0].PredictionText != "capital" {
		t.Errorf("PredictionText = %q, want capital", preds[0].PredictionText)
	}
}

func TestResolveRespectsMaxAnswerLength(t *testing.T) {
	ex := models.Example{ID: "long", Context: ""}

	// Build a window of 40 context tokens; the only scored span covers
	// 35 tokens, beyond the answer length cap.
	n := 42
	inputIDs := make([]int, n)
	offsets := make([]models.Offset, n)
	ctxText := make([]byte, 0, n*2)
	inputIDs[0] = clsID
	offsets[0] = models.OffsetSentinel
	offsets[n-1] = models.OffsetSentinel
	inputIDs[n-1] = 102
	for i := 1; i < n-1; i++ {
		inputIDs[i] = 200 + i
		offsets[i] = models.Offset{Start: len(ctxText), End: len(ctxText) + 1}
		ctxText = append(ctxText, 'a', ' ')
	}
	ex.Context = string(ctxText)
	feat := models.Feature{ExampleID: "long", InputIDs: inputIDs, OffsetMapping: offsets}

	start := flatLogits(n, -100)
	end := flatLogits(n, -100)
	start[1] = 9
	end[36] = 9 // span of 36 tokens, over the cap

	preds, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		[]models.ScoreVector{{StartLogits: start, EndLogits: end}},
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if preds[0].PredictionText != "" {
		t.Errorf("over-length span should be rejected, got %q", preds[0].PredictionText)
	}
}

func TestResolveBestWindowWinsAcrossWindows(t *testing.T) {
	ex, feat := parisFixture()
	feat2 := feat // second overlapping window of the same example

	weakStart := flatLogits(10, -5)
	weakEnd := flatLogits(10, -5)
	weakStart[6] = 3 // "capital"
	weakEnd[6] = 3

	strongStart := flatLogits(10, -5)
	strongEnd := flatLogits(10, -5)
	strongStart[3] = 8 // "Paris"
	strongEnd[3] = 8

	preds, err := NewResolver(clsID, nil).WithWorkers(2).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat, feat2},
		[]models.ScoreVector{
			{StartLogits: weakStart, EndLogits: weakEnd},
			{StartLogits: strongStart, EndLogits: strongEnd},
		},
	)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if preds[0].PredictionText != "Paris" {
		t.Errorf("PredictionText = %q, want Paris", preds[0].PredictionText)
	}
}

func TestResolveMalformedFeature(t *testing.T) {
	ex, feat := parisFixture()
	feat.InputIDs[0] = 999 // classifier token missing

	_, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		[]models.ScoreVector{{
			StartLogits: flatLogits(10, 0),
			EndLogits:   flatLogits(10, 0),
		}},
	)
	if err == nil {
		t.Fatal("expected malformed feature error")
	}
	var malformed *MalformedFeatureError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected MalformedFeatureError, got %T", err)
	}
	if malformed.ExampleID != "ex0" || malformed.ClassTokenID != clsID {
		t.Errorf("unexpected error fields: %+v", malformed)
	}
}

func TestResolveShortLogitVector(t *testing.T) {
	ex, feat := parisFixture()

	// The server answered with fewer logits than the window has tokens;
	// this must surface as an error, not a panic.
	_, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		[]models.ScoreVector{{
			StartLogits: flatLogits(3, 0),
			EndLogits:   flatLogits(3, 0),
		}},
	)
	if err == nil {
		t.Fatal("expected error for truncated logit vectors")
	}
}

func TestResolveScoreCountMismatch(t *testing.T) {
	ex, feat := parisFixture()
	_, err := NewResolver(clsID, nil).Resolve(
		[]models.Example{ex},
		[]models.Feature{feat},
		nil,
	)
	if err == nil {
		t.Fatal("expected error for score/feature count mismatch")
	}
}

func TestGroupByExampleUnknownFeature(t *testing.T) {
	ex, feat := parisFixture()
	feat.ExampleID = "ghost"
	_, err := GroupByExample([]models.Example{ex}, []models.Feature{feat})
	if err == nil {
		t.Fatal("expected error for feature referencing unknown example")
	}
}

func TestGroupByExamplePreservesFeatureOrder(t *testing.T) {
	ex, feat := parisFixture()
	ex2 := ex
	ex2.ID = "ex1"
	f0, f1, f2 := feat, feat, feat
	f1.ExampleID = "ex1"

	grouped, err := GroupByExample([]models.Example{ex, ex2}, []models.Feature{f0, f1, f2})
	if err != nil {
		t.Fatalf("GroupByExample: %v", err)
	}
	if got := grouped[0]; len(got) != 2 || got[0] != 0 || got[1] != 2 {
		t.Errorf("example 0 features = %v, want [0 2]", got)
	}
	if got := grouped[1]; len(got) != 1 || got[0] != 1 {
		t.Errorf("example 1 features = %v, want [1]", got)
	}
}
