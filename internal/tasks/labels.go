package tasks

import (
	"fmt"
	"sort"
	"strings"
)

// MissingLabelError reports a raw label with no canonical mapping.
// It carries the full accepted mapping so a failing run names exactly
// what the task would have accepted.
type MissingLabelError struct {
	// Raw is the uppercased label that had no mapping.
	Raw string

	// Task is the task name the lookup ran under.
	Task string

	// Known is the accepted synonym-to-canonical mapping.
	Known map[string]string
}

// Error implements the error interface.
func (e *MissingLabelError) Error() string {
	keys := make([]string, 0, len(e.Known))
	for k := range e.Known {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("task %s has no label mapping for %q (known: %s)",
		e.Task, e.Raw, strings.Join(keys, ", "))
}

// LabelMap resolves raw label strings to canonical label names and ids.
// It is built once per task from the declared label table and is
// read-only afterwards, so it is safe for concurrent use.
type LabelMap struct {
	task     string
	toID     map[string]int
	idToName []string
}

// NewLabelMap builds the lookup table for a task's label set. Every
// canonical name maps to itself, and every declared synonym maps to its
// canonical label. All lookup keys are uppercased.
func NewLabelMap(cfg *Config) *LabelMap {
	m := &LabelMap{
		task:     cfg.Name,
		toID:     make(map[string]int),
		idToName: make([]string, len(cfg.Labels)),
	}
	for id, label := range cfg.Labels {
		m.idToName[id] = label.Name
		m.toID[strings.ToUpper(label.Name)] = id
		for _, syn := range label.Synonyms {
			m.toID[strings.ToUpper(syn)] = id
		}
	}
	return m
}

// Canonicalize resolves a raw label to its canonical id. The lookup key
// is the uppercased raw string. An unmapped label returns a
// *MissingLabelError; it must surface as a task-level failure since a
// dropped label corrupts prediction/label alignment.
func (m *LabelMap) Canonicalize(raw string) (int, error) {
	key := strings.ToUpper(raw)
	id, ok := m.toID[key]
	if !ok {
		known := make(map[string]string, len(m.toID))
		for syn, synID := range m.toID {
			known[syn] = m.idToName[synID]
		}
		return 0, &MissingLabelError{Raw: key, Task: m.task, Known: known}
	}
	return id, nil
}

// Name returns the canonical label name for an id.
func (m *LabelMap) Name(id int) string {
	if id < 0 || id >= len(m.idToName) {
		return ""
	}
	return m.idToName[id]
}

// Len returns the number of canonical labels.
func (m *LabelMap) Len() int { return len(m.idToName) }
