// Package spans reconstructs answer spans from per-window start/end
// score vectors. Given every window's logits and its offset map back to
// the context, the resolver proposes candidate spans per window, filters
// invalid ones, and picks the single best answer per example — or the
// empty answer when the null score wins.
package spans

import (
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/haasonsaas/evalharness/pkg/models"
)

const (
	// nBest is how many start and end positions are considered per window.
	nBest = 20

	// maxAnswerLength is the longest accepted answer span, in tokens.
	maxAnswerLength = 30
)

// MalformedFeatureError reports a tokenized window whose token sequence
// does not contain the designated classifier token. This indicates a
// feature builder / tokenizer mismatch and aborts the run.
type MalformedFeatureError struct {
	// ExampleID is the example the broken window belongs to.
	ExampleID string

	// FeatureIndex is the index of the broken window in the batch.
	FeatureIndex int

	// ClassTokenID is the token id that was expected but absent.
	ClassTokenID int
}

// Error implements the error interface.
func (e *MalformedFeatureError) Error() string {
	return fmt.Sprintf("feature %d of example %s has no classifier token (id %d)",
		e.FeatureIndex, e.ExampleID, e.ClassTokenID)
}

// GroupByExample maps each example index to the ordered feature indices
// that belong to it. Every feature must reference an example present in
// the batch; the feature builder guarantees every example owns at least
// one feature.
func GroupByExample(examples []models.Example, feats []models.Feature) (map[int][]int, error) {
	idToIndex := make(map[string]int, len(examples))
	for i, ex := range examples {
		idToIndex[ex.ID] = i
	}
	grouped := make(map[int][]int, len(examples))
	for i, f := range feats {
		exIdx, ok := idToIndex[f.ExampleID]
		if !ok {
			return nil, fmt.Errorf("feature %d references unknown example %s", i, f.ExampleID)
		}
		grouped[exIdx] = append(grouped[exIdx], i)
	}
	return grouped, nil
}

// Resolver selects the best answer span per example from windowed
// start/end logits.
type Resolver struct {
	classTokenID int
	workers      int
	logger       *slog.Logger
}

// NewResolver creates a resolver. classTokenID is the id of the
// designated classifier token within each window's token sequence.
func NewResolver(classTokenID int, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		classTokenID: classTokenID,
		workers:      runtime.NumCPU(),
		logger:       logger.With("component", "span-resolver"),
	}
}

// WithWorkers bounds the number of concurrent per-example workers.
// Non-positive values keep the default.
func (r *Resolver) WithWorkers(n int) *Resolver {
	if n > 0 {
		r.workers = n
	}
	return r
}

// Workers reports the configured worker bound.
func (r *Resolver) Workers() int { return r.workers }

// Resolve produces one prediction per example. scores[i] holds the
// logits for feats[i]; both are read-only snapshots from the inference
// stage, so examples are resolved in parallel with no shared state
// beyond the output slot each worker owns.
func (r *Resolver) Resolve(examples []models.Example, feats []models.Feature, scores []models.ScoreVector) ([]models.Prediction, error) {
	if len(scores) != len(feats) {
		return nil, fmt.Errorf("got %d score vectors for %d features", len(scores), len(feats))
	}

	grouped, err := GroupByExample(examples, feats)
	if err != nil {
		return nil, err
	}

	preds := make([]models.Prediction, len(examples))
	errs := make([]error, len(examples))

	workers := r.workers
	if workers > len(examples) {
		workers = len(examples)
	}
	if workers < 1 {
		workers = 1
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for exIdx := range jobs {
				preds[exIdx], errs[exIdx] = r.resolveExample(examples[exIdx], grouped[exIdx], feats, scores)
			}
		}()
	}
	for exIdx := range examples {
		jobs <- exIdx
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return preds, nil
}

// resolveExample scans the example's windows and picks the best answer,
// or the empty answer when nothing beats the null reference score.
func (r *Resolver) resolveExample(ex models.Example, featIdxs []int, feats []models.Feature, scores []models.ScoreVector) (models.Prediction, error) {
	// The null reference starts at zero and tracks the largest per-window
	// null score seen. This floor biases borderline examples toward
	// answering; it is kept as-is because downstream metric comparisons
	// depend on reproducing it exactly.
	nullScore := 0.0

	var best models.CandidateSpan
	haveCandidate := false

	for _, fi := range featIdxs {
		feat := feats[fi]
		sv := scores[fi]

		if len(sv.StartLogits) != len(feat.InputIDs) || len(sv.EndLogits) != len(feat.InputIDs) {
			return models.Prediction{}, fmt.Errorf(
				"feature %d of example %s has %d tokens but %d start and %d end logits",
				fi, ex.ID, len(feat.InputIDs), len(sv.StartLogits), len(sv.EndLogits))
		}

		clsIndex := indexOf(feat.InputIDs, r.classTokenID)
		if clsIndex < 0 {
			return models.Prediction{}, &MalformedFeatureError{
				ExampleID:    ex.ID,
				FeatureIndex: fi,
				ClassTokenID: r.classTokenID,
			}
		}
		if featNull := sv.StartLogits[clsIndex] + sv.EndLogits[clsIndex]; nullScore < featNull {
			nullScore = featNull
		}

		startIdxs := topIndices(sv.StartLogits, nBest)
		endIdxs := topIndices(sv.EndLogits, nBest)

		for _, start := range startIdxs {
			for _, end := range endIdxs {
				if start >= len(feat.OffsetMapping) || end >= len(feat.OffsetMapping) {
					continue
				}
				if feat.OffsetMapping[start].IsSentinel() || feat.OffsetMapping[end].IsSentinel() {
					continue
				}
				if end < start || end > start+maxAnswerLength-1 {
					continue
				}
				cand := models.CandidateSpan{
					StartIndex: start,
					EndIndex:   end,
					Score:      sv.StartLogits[start] + sv.EndLogits[end],
					Text:       ex.Context[feat.OffsetMapping[start].Start:feat.OffsetMapping[end].End],
				}
				if !haveCandidate || cand.Score > best.Score {
					best = cand
					haveCandidate = true
				}
			}
		}
	}

	// Rare degenerate case: no window produced a valid span. Recover
	// with an empty-text candidate instead of failing the run.
	if !haveCandidate {
		best = models.CandidateSpan{Text: "", Score: 0.0}
	}

	text := ""
	if best.Score > nullScore {
		text = best.Text
	}
	return models.Prediction{
		ID:                  ex.ID,
		PredictionText:      text,
		NoAnswerProbability: 0.0,
	}, nil
}

// topIndices returns the indices of the n largest values, descending.
func topIndices(values []float64, n int) []int {
	idxs := make([]int, len(values))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(a, b int) bool {
		return values[idxs[a]] > values[idxs[b]]
	})
	if len(idxs) > n {
		idxs = idxs[:n]
	}
	return idxs
}

func indexOf(ids []int, want int) int {
	for i, id := range ids {
		if id == want {
			return i
		}
	}
	return -1
}
