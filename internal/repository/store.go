// Package repository persists saved requirements and run history.
package repository

import (
	"context"
	"time"

	"github.com/xiaot623/devteam/internal/domain"
)

// RunRecord is the persisted summary of a pipeline run.
type RunRecord struct {
	RunID        string           `json:"run_id"`
	Requirements string           `json:"requirements"`
	Status       domain.RunStatus `json:"status"`
	StartedAt    time.Time        `json:"started_at"`
	EndedAt      *time.Time       `json:"ended_at,omitempty"`
	Error        string           `json:"error,omitempty"`
}

// RunEvent is one persisted lifecycle event of a run. Heartbeats are never
// persisted; they belong to live streams only.
type RunEvent struct {
	EventID string           `json:"event_id"`
	RunID   string           `json:"run_id"`
	Ts      int64            `json:"ts"`
	Kind    domain.EventKind `json:"kind"`
	Text    string           `json:"text"`
	StageID string           `json:"stage_id,omitempty"`
	Agent   string           `json:"agent,omitempty"`
}

// Store defines the persistence operations the service depends on. The
// pipeline core itself never touches the store.
type Store interface {
	SaveRequirements(ctx context.Context, text string) error
	GetRequirements(ctx context.Context) (string, error)

	CreateRun(ctx context.Context, rec *RunRecord) error
	UpdateRunCompleted(ctx context.Context, runID string, status domain.RunStatus, errMsg string) error
	GetRun(ctx context.Context, runID string) (*RunRecord, error)
	ListRuns(ctx context.Context, limit int) ([]RunRecord, error)

	CreateRunEvent(ctx context.Context, ev *RunEvent) error
	GetRunEvents(ctx context.Context, runID string) ([]RunEvent, error)

	Close() error
}
