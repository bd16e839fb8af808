// Package results persists evaluation reports so runs can be compared
// over time.
package results

import (
	"context"
	"sort"
	"sync"

	"github.com/haasonsaas/evalharness/internal/eval"
)

// Filter narrows a List call. Zero values match everything.
type Filter struct {
	// Task filters by task name.
	Task string

	// Model filters by model name.
	Model string

	// Limit caps the number of returned reports (0 means all).
	Limit int
}

// Store persists evaluation reports.
type Store interface {
	// Save persists one report.
	Save(ctx context.Context, report *eval.Report) error

	// Get returns a report by run id.
	Get(ctx context.Context, id string) (*eval.Report, error)

	// List returns reports matching the filter, newest first.
	List(ctx context.Context, filter Filter) ([]*eval.Report, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore keeps reports in memory. It backs tests and runs that do
// not configure a results database.
type MemoryStore struct {
	mu      sync.RWMutex
	reports map[string]*eval.Report
}

// NewMemoryStore returns a new in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{reports: make(map[string]*eval.Report)}
}

// Save persists one report.
func (s *MemoryStore) Save(_ context.Context, report *eval.Report) error {
	if report == nil || report.ID == "" {
		return ErrInvalidReport
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *report
	s.reports[report.ID] = &copied
	return nil
}

// Get returns a report by run id.
func (s *MemoryStore) Get(_ context.Context, id string) (*eval.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	report, ok := s.reports[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *report
	return &copied, nil
}

// List returns reports matching the filter, newest first.
func (s *MemoryStore) List(_ context.Context, filter Filter) ([]*eval.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	matched := make([]*eval.Report, 0, len(s.reports))
	for _, report := range s.reports {
		if filter.Task != "" && report.Task != filter.Task {
			continue
		}
		if filter.Model != "" && report.Model != filter.Model {
			continue
		}
		copied := *report
		matched = append(matched, &copied)
	}
	sort.Slice(matched, func(a, b int) bool {
		return matched[a].GeneratedAt.After(matched[b].GeneratedAt)
	})
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }
