package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver

	"github.com/haasonsaas/evalharness/internal/eval"
)

var (
	// ErrNotFound is returned when no report matches the given id.
	ErrNotFound = errors.New("report not found")

	// ErrInvalidReport is returned for a nil report or one without an id.
	ErrInvalidReport = errors.New("report must have an id")
)

// SQLiteStore persists reports in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the results database at path.
// An empty path uses an in-memory database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = ":memory:"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open results database: %w", err)
	}
	s := &SQLiteStore{db: db}
	if err := s.init(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteStore) init() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			task TEXT NOT NULL,
			model TEXT NOT NULL,
			dataset TEXT NOT NULL,
			generated_at DATETIME NOT NULL,
			report TEXT NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("create runs table: %w", err)
	}
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_runs_task ON runs(task)",
		"CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model)",
		"CREATE INDEX IF NOT EXISTS idx_runs_generated ON runs(generated_at)",
	}
	for _, idx := range indexes {
		if _, err := s.db.Exec(idx); err != nil {
			return fmt.Errorf("create index: %w", err)
		}
	}
	return nil
}

// Save persists one report.
func (s *SQLiteStore) Save(ctx context.Context, report *eval.Report) error {
	if report == nil || report.ID == "" {
		return ErrInvalidReport
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO runs (id, task, model, dataset, generated_at, report)
		VALUES (?, ?, ?, ?, ?, ?)
	`, report.ID, report.Task, report.Model, report.Dataset,
		report.GeneratedAt.UTC().Format(time.RFC3339Nano), string(payload))
	if err != nil {
		return fmt.Errorf("save report: %w", err)
	}
	return nil
}

// Get returns a report by run id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*eval.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, "SELECT report FROM runs WHERE id = ?", id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	var report eval.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("decode report: %w", err)
	}
	return &report, nil
}

// List returns reports matching the filter, newest first.
func (s *SQLiteStore) List(ctx context.Context, filter Filter) ([]*eval.Report, error) {
	query := "SELECT report FROM runs WHERE 1=1"
	args := []any{}
	if filter.Task != "" {
		query += " AND task = ?"
		args = append(args, filter.Task)
	}
	if filter.Model != "" {
		query += " AND model = ?"
		args = append(args, filter.Model)
	}
	query += " ORDER BY generated_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var reports []*eval.Report
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		var report eval.Report
		if err := json.Unmarshal([]byte(payload), &report); err != nil {
			return nil, fmt.Errorf("decode report: %w", err)
		}
		reports = append(reports, &report)
	}
	return reports, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
