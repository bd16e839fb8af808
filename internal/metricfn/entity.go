package metricfn

import (
	"strings"

	"github.com/haasonsaas/evalharness/pkg/models"
)

// EntityF1 computes entity-level micro-averaged F1 over BIO-tagged
// token labels. An entity counts as correct only when its type and its
// full token extent both match. The "drop_misc" compute option removes
// MISC entities from both sides before scoring.
func EntityF1(preds []models.Prediction, labels []models.Label, opts map[string]any) (map[string]float64, error) {
	if err := checkAligned(preds, labels); err != nil {
		return nil, err
	}
	dropMisc := boolOpt(opts, "drop_misc")

	var tp, fp, fn int
	for i := range preds {
		predEntities := decodeEntities(preds[i].TokenLabels, dropMisc)
		goldEntities := decodeEntities(labels[i].TokenValues, dropMisc)

		matched := make([]bool, len(goldEntities))
		for _, pe := range predEntities {
			found := false
			for gi, ge := range goldEntities {
				if !matched[gi] && pe == ge {
					matched[gi] = true
					found = true
					break
				}
			}
			if found {
				tp++
			} else {
				fp++
			}
		}
		for gi := range goldEntities {
			if !matched[gi] {
				fn++
			}
		}
	}

	precision := 0.0
	if tp+fp > 0 {
		precision = float64(tp) / float64(tp+fp)
	}
	recall := 0.0
	if tp+fn > 0 {
		recall = float64(tp) / float64(tp+fn)
	}
	f1 := 0.0
	if precision+recall > 0 {
		f1 = 2 * precision * recall / (precision + recall)
	}
	return map[string]float64{
		"overall_precision": precision,
		"overall_recall":    recall,
		"overall_f1":        f1,
	}, nil
}

// entity is a decoded BIO span: type plus token extent.
type entity struct {
	kind  string
	start int
	end   int
}

// decodeEntities converts a BIO tag sequence into entities. A stray
// I- tag without a preceding B- opens a new entity, matching the
// lenient decoding most taggers use.
func decodeEntities(tags []string, dropMisc bool) []entity {
	var entities []entity
	var current *entity
	flush := func(end int) {
		if current != nil {
			current.end = end
			if !dropMisc || current.kind != "MISC" {
				entities = append(entities, *current)
			}
			current = nil
		}
	}
	for i, tag := range tags {
		switch {
		case strings.HasPrefix(tag, "B-"):
			flush(i)
			current = &entity{kind: tag[2:], start: i}
		case strings.HasPrefix(tag, "I-"):
			kind := tag[2:]
			if current == nil || current.kind != kind {
				flush(i)
				current = &entity{kind: kind, start: i}
			}
		default:
			flush(i)
		}
	}
	flush(len(tags))
	return entities
}
