package tasks

import (
	"errors"
	"strings"
	"testing"
)

func sentTaskConfig() *Config {
	return &Config{
		Name: "sent",
		Kind: SequenceClassification,
		Labels: []LabelConfig{
			{Name: "NEGATIVE", Synonyms: []string{"NEG", "NEGATIV", "LABEL_0"}},
			{Name: "NEUTRAL", Synonyms: []string{"NEU", "LABEL_1"}},
			{Name: "POSITIVE", Synonyms: []string{"POS", "POSITIV", "LABEL_2"}},
		},
	}
}

func TestCanonicalizeSynonyms(t *testing.T) {
	lm := NewLabelMap(sentTaskConfig())

	cases := []struct {
		raw  string
		want int
	}{
		{"NEGATIVE", 0},
		{"neg", 0},
		{"Negativ", 0},
		{"label_0", 0},
		{"NEUTRAL", 1},
		{"neu", 1},
		{"pos", 2},
		{"LABEL_2", 2},
	}
	for _, tc := range cases {
		got, err := lm.Canonicalize(tc.raw)
		if err != nil {
			t.Errorf("Canonicalize(%q): %v", tc.raw, err)
			continue
		}
		if got != tc.want {
			t.Errorf("Canonicalize(%q) = %d, want %d", tc.raw, got, tc.want)
		}
	}
}

func TestCanonicalizeIsIdempotent(t *testing.T) {
	lm := NewLabelMap(sentTaskConfig())

	// The canonical name an id maps back to must canonicalize to the
	// same id.
	for id := 0; id < lm.Len(); id++ {
		name := lm.Name(id)
		if name == "" {
			t.Fatalf("Name(%d) missing", id)
		}
		round, err := lm.Canonicalize(name)
		if err != nil {
			t.Fatalf("Canonicalize(%q): %v", name, err)
		}
		if round != id {
			t.Errorf("Canonicalize(Name(%d)) = %d", id, round)
		}
	}
}

func TestCanonicalizeUnknownLabel(t *testing.T) {
	lm := NewLabelMap(sentTaskConfig())

	_, err := lm.Canonicalize("ecstatic")
	if err == nil {
		t.Fatal("expected error for unknown label")
	}
	var missing *MissingLabelError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingLabelError, got %T", err)
	}
	if missing.Raw != "ECSTATIC" {
		t.Errorf("Raw = %q, want uppercased input", missing.Raw)
	}
	if missing.Task != "sent" {
		t.Errorf("Task = %q", missing.Task)
	}
	if !strings.Contains(err.Error(), "NEGATIVE") {
		t.Errorf("error should list known labels: %v", err)
	}
}

func TestNameOutOfRange(t *testing.T) {
	lm := NewLabelMap(sentTaskConfig())
	if got := lm.Name(-1); got != "" {
		t.Errorf("Name(-1) = %q", got)
	}
	if got := lm.Name(lm.Len()); got != "" {
		t.Errorf("Name(Len()) = %q", got)
	}
}
