package tasks

import (
	"fmt"
	"sort"
)

// Registry holds the built-in task configurations keyed by task name.
type Registry struct {
	configs map[string]*Config
}

// NewRegistry returns a registry populated with the built-in tasks.
func NewRegistry() *Registry {
	r := &Registry{configs: make(map[string]*Config)}
	for _, cfg := range []*Config{qaConfig(), sentConfig(), nerConfig()} {
		r.configs[cfg.Name] = cfg
	}
	return r
}

// Get returns the configuration for a task name.
func (r *Registry) Get(name string) (*Config, error) {
	cfg, ok := r.configs[name]
	if !ok {
		return nil, fmt.Errorf("unknown task %q (available: %v)", name, r.Names())
	}
	return cfg, nil
}

// Names returns the registered task names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.configs))
	for name := range r.configs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns every registered configuration, sorted by name.
func (r *Registry) All() []*Config {
	all := make([]*Config, 0, len(r.configs))
	for _, name := range r.Names() {
		all = append(all, r.configs[name])
	}
	return all
}

func qaConfig() *Config {
	return &Config{
		Name:           "qa",
		PrettyName:     "Extractive Question Answering",
		Kind:           QuestionAnswering,
		DatasetName:    "squad-v2",
		FeatureColumns: []string{"question", "context"},
		LabelColumn:    "answers",
		Metrics: []MetricConfig{
			{
				Name:       "exact_match",
				PrettyName: "Exact Match",
				ResultsKey: "exact",
			},
			{
				Name:       "qa_f1",
				PrettyName: "Token-level F1-score",
				ResultsKey: "f1",
			},
		},
		SplitNames: map[string]string{"train": "train", "test": "test", "val": "validation"},
	}
}

func sentConfig() *Config {
	return &Config{
		Name:           "sent",
		PrettyName:     "Sentiment Classification",
		Kind:           SequenceClassification,
		DatasetName:    "angry-tweets",
		FeatureColumns: []string{"text"},
		LabelColumn:    "label",
		Metrics: []MetricConfig{
			{
				Name:       "mcc",
				PrettyName: "Matthew's Correlation Coefficient",
				ResultsKey: "matthews_correlation",
			},
			{
				Name:           "macro_f1",
				PrettyName:     "Macro-average F1-score",
				ResultsKey:     "f1",
				ComputeOptions: map[string]any{"average": "macro"},
			},
		},
		Labels: []LabelConfig{
			{Name: "NEGATIVE", Synonyms: []string{"NEG", "NEGATIV", "LABEL_0"}},
			{Name: "NEUTRAL", Synonyms: []string{"NEU", "LABEL_1"}},
			{Name: "POSITIVE", Synonyms: []string{"POS", "POSITIV", "LABEL_2"}},
		},
		SplitNames: map[string]string{"train": "train", "test": "test"},
	}
}

func nerConfig() *Config {
	return &Config{
		Name:           "ner",
		PrettyName:     "Named Entity Recognition",
		Kind:           TokenClassification,
		DatasetName:    "dane",
		FeatureColumns: []string{"tokens"},
		LabelColumn:    "token_labels",
		Metrics: []MetricConfig{
			{
				Name:       "micro_f1",
				PrettyName: "Micro-average F1-score",
				ResultsKey: "overall_f1",
			},
			{
				Name:           "micro_f1_no_misc",
				PrettyName:     "Micro-average F1-score without MISC tags",
				ResultsKey:     "overall_f1",
				ComputeOptions: map[string]any{"drop_misc": true},
			},
		},
		Labels: []LabelConfig{
			{Name: "O"},
			{Name: "B-LOC", Synonyms: []string{
				"B-LOCATION", "B-PLACE", "B-GPELOC", "B-GPE_LOC", "B-GPE/LOC",
				"B-LOCGPE", "B-LOC_GPE", "B-LOC/GPE", "B-LOCORG", "B-LOC_ORG",
				"B-LOC/ORG", "B-ORGLOC", "B-ORG_LOC", "B-ORG/LOC", "B-LOCPRS",
				"B-LOC_PRS", "B-LOC/PRS", "B-PRSLOC", "B-PRS_LOC", "B-PRS/LOC",
			}},
			{Name: "I-LOC", Synonyms: []string{
				"I-LOCATION", "I-PLACE", "I-GPELOC", "I-GPE_LOC", "I-GPE/LOC",
				"I-LOCGPE", "I-LOC_GPE", "I-LOC/GPE", "I-LOCORG", "I-LOC_ORG",
				"I-LOC/ORG", "I-ORGLOC", "I-ORG_LOC", "I-ORG/LOC", "I-LOCPRS",
				"I-LOC_PRS", "I-LOC/PRS", "I-PRSLOC", "I-PRS_LOC", "I-PRS/LOC",
			}},
			{Name: "B-ORG", Synonyms: []string{
				"B-ORGANIZATION", "B-ORGANISATION", "B-INST", "B-GPEORG",
				"B-GPE_ORG", "B-GPE/ORG", "B-ORGGPE", "B-ORG_GPE", "B-ORG/GPE",
				"B-ORGPRS", "B-ORG_PRS", "B-ORG/PRS", "B-PRSORG", "B-PRS_ORG",
				"B-PRS/ORG", "B-OBJORG", "B-OBJ_ORG", "B-OBJ/ORG", "B-ORGOBJ",
				"B-ORG_OBJ", "B-ORG/OBJ",
			}},
			{Name: "I-ORG", Synonyms: []string{
				"I-ORGANIZATION", "I-ORGANISATION", "I-INST", "I-GPEORG",
				"I-GPE_ORG", "I-GPE/ORG", "I-ORGGPE", "I-ORG_GPE", "I-ORG/GPE",
				"I-ORGPRS", "I-ORG_PRS", "I-ORG/PRS", "I-PRSORG", "I-PRS_ORG",
				"I-PRS/ORG", "I-OBJORG", "I-OBJ_ORG", "I-OBJ/ORG", "I-ORGOBJ",
				"I-ORG_OBJ", "I-ORG/OBJ",
			}},
			{Name: "B-PER", Synonyms: []string{"B-PERSON"}},
			{Name: "I-PER", Synonyms: []string{"I-PERSON"}},
			{Name: "B-MISC", Synonyms: []string{"B-MISCELLANEOUS"}},
			{Name: "I-MISC", Synonyms: []string{"I-MISCELLANEOUS"}},
		},
		SplitNames: map[string]string{"train": "train", "test": "test", "val": "validation"},
	}
}
