package tasks

import (
	"reflect"
	"strings"
	"testing"
)

func TestRegistryNames(t *testing.T) {
	r := NewRegistry()
	want := []string{"ner", "qa", "sent"}
	if got := r.Names(); !reflect.DeepEqual(got, want) {
		t.Errorf("Names() = %v, want %v", got, want)
	}
}

func TestRegistryGetUnknown(t *testing.T) {
	r := NewRegistry()
	_, err := r.Get("summarization")
	if err == nil {
		t.Fatal("expected error for unknown task")
	}
	if !strings.Contains(err.Error(), "available") {
		t.Errorf("error should list available tasks: %v", err)
	}
}

func TestBuiltinConfigsAreWellFormed(t *testing.T) {
	for _, cfg := range NewRegistry().All() {
		if !cfg.Kind.Valid() {
			t.Errorf("task %s has invalid kind %q", cfg.Name, cfg.Kind)
		}
		if cfg.DatasetName == "" {
			t.Errorf("task %s has no dataset", cfg.Name)
		}
		if len(cfg.FeatureColumns) == 0 {
			t.Errorf("task %s has no feature columns", cfg.Name)
		}
		if len(cfg.Metrics) == 0 {
			t.Errorf("task %s has no metrics", cfg.Name)
		}
		for _, m := range cfg.Metrics {
			if m.ResultsKey == "" {
				t.Errorf("task %s metric %s has no results key", cfg.Name, m.Name)
			}
		}
		if cfg.Kind != QuestionAnswering && len(cfg.Labels) == 0 {
			t.Errorf("task %s declares no labels", cfg.Name)
		}
	}
}

func TestLabelIDAssignmentFollowsDeclarationOrder(t *testing.T) {
	r := NewRegistry()
	cfg, err := r.Get("ner")
	if err != nil {
		t.Fatal(err)
	}
	lm := NewLabelMap(cfg)
	names := cfg.LabelNames()
	if names[0] != "O" {
		t.Fatalf("expected O first, got %q", names[0])
	}
	for i, name := range names {
		id, err := lm.Canonicalize(name)
		if err != nil {
			t.Fatalf("Canonicalize(%q): %v", name, err)
		}
		if id != i {
			t.Errorf("label %q got id %d, want %d", name, id, i)
		}
	}
}

func TestNERSynonymsCoverDatasetVariants(t *testing.T) {
	cfg, err := NewRegistry().Get("ner")
	if err != nil {
		t.Fatal(err)
	}
	lm := NewLabelMap(cfg)

	cases := map[string]string{
		"B-PERSON":       "B-PER",
		"i-organisation": "I-ORG",
		"B-GPE_LOC":      "B-LOC",
		"b-miscellaneous": "B-MISC",
	}
	for raw, canonical := range cases {
		id, err := lm.Canonicalize(raw)
		if err != nil {
			t.Errorf("Canonicalize(%q): %v", raw, err)
			continue
		}
		if got := lm.Name(id); got != canonical {
			t.Errorf("Canonicalize(%q) resolved to %q, want %q", raw, got, canonical)
		}
	}
}
