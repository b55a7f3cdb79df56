package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/xiaot623/devteam/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Ensure SQLiteStore implements Store.
var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if dsn == ":memory:" || strings.Contains(dsn, "mode=memory") {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS requirements (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			text TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			run_id TEXT PRIMARY KEY,
			requirements TEXT NOT NULL,
			status TEXT NOT NULL,
			started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			ended_at DATETIME,
			error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at)`,
		`CREATE TABLE IF NOT EXISTS run_events (
			event_id TEXT PRIMARY KEY,
			run_id TEXT NOT NULL,
			ts INTEGER NOT NULL,
			kind TEXT NOT NULL,
			text TEXT NOT NULL,
			stage_id TEXT,
			agent TEXT,
			FOREIGN KEY (run_id) REFERENCES runs(run_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_run_events_run ON run_events(run_id, ts)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRequirements stores the latest requirement text, replacing any prior
// value.
func (s *SQLiteStore) SaveRequirements(ctx context.Context, text string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO requirements (id, text, updated_at) VALUES (1, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET text = excluded.text, updated_at = excluded.updated_at`,
		text, time.Now())
	if err != nil {
		return fmt.Errorf("failed to save requirements: %w", err)
	}
	return nil
}

// GetRequirements returns the stored requirement text, or "" when nothing
// has been saved yet.
func (s *SQLiteStore) GetRequirements(ctx context.Context) (string, error) {
	var text string
	err := s.db.QueryRowContext(ctx, `SELECT text FROM requirements WHERE id = 1`).Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get requirements: %w", err)
	}
	return text, nil
}

// CreateRun inserts a run record.
func (s *SQLiteStore) CreateRun(ctx context.Context, rec *RunRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, requirements, status, started_at) VALUES (?, ?, ?, ?)`,
		rec.RunID, rec.Requirements, rec.Status, rec.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}
	return nil
}

// UpdateRunCompleted marks a run terminal.
func (s *SQLiteStore) UpdateRunCompleted(ctx context.Context, runID string, status domain.RunStatus, errMsg string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE runs SET status = ?, ended_at = ?, error = ? WHERE run_id = ?`,
		status, time.Now(), nullable(errMsg), runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	return nil
}

// GetRun returns a run record, or nil if not found.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*RunRecord, error) {
	var rec RunRecord
	var endedAt sql.NullTime
	var errMsg sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT run_id, requirements, status, started_at, ended_at, error FROM runs WHERE run_id = ?`,
		runID).Scan(&rec.RunID, &rec.Requirements, &rec.Status, &rec.StartedAt, &endedAt, &errMsg)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if endedAt.Valid {
		rec.EndedAt = &endedAt.Time
	}
	rec.Error = errMsg.String
	return &rec, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, requirements, status, started_at, ended_at, error
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var rec RunRecord
		var endedAt sql.NullTime
		var errMsg sql.NullString
		if err := rows.Scan(&rec.RunID, &rec.Requirements, &rec.Status, &rec.StartedAt, &endedAt, &errMsg); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if endedAt.Valid {
			rec.EndedAt = &endedAt.Time
		}
		rec.Error = errMsg.String
		out = append(out, rec)
	}
	return out, rows.Err()
}

// CreateRunEvent inserts a run event.
func (s *SQLiteStore) CreateRunEvent(ctx context.Context, ev *RunEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO run_events (event_id, run_id, ts, kind, text, stage_id, agent) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ev.EventID, ev.RunID, ev.Ts, ev.Kind, ev.Text, nullable(ev.StageID), nullable(ev.Agent))
	if err != nil {
		return fmt.Errorf("failed to create run event: %w", err)
	}
	return nil
}

// GetRunEvents returns a run's events ordered by timestamp.
func (s *SQLiteStore) GetRunEvents(ctx context.Context, runID string) ([]RunEvent, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT event_id, run_id, ts, kind, text, stage_id, agent
		 FROM run_events WHERE run_id = ? ORDER BY ts, event_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run events: %w", err)
	}
	defer rows.Close()

	var out []RunEvent
	for rows.Next() {
		var ev RunEvent
		var stageID, agent sql.NullString
		if err := rows.Scan(&ev.EventID, &ev.RunID, &ev.Ts, &ev.Kind, &ev.Text, &stageID, &agent); err != nil {
			return nil, fmt.Errorf("failed to scan run event: %w", err)
		}
		ev.StageID = stageID.String
		ev.Agent = agent.String
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
