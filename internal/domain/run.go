package domain

import "time"

// RunStatus represents the status of a pipeline run.
type RunStatus string

const (
	RunStatusPending   RunStatus = "PENDING"
	RunStatusRunning   RunStatus = "RUNNING"
	RunStatusCompleted RunStatus = "COMPLETED"
	RunStatusFailed    RunStatus = "FAILED"
	RunStatusCancelled RunStatus = "CANCELLED"
)

// IsTerminal reports whether the status is terminal.
func (s RunStatus) IsTerminal() bool {
	switch s {
	case RunStatusCompleted, RunStatusFailed, RunStatusCancelled:
		return true
	}
	return false
}

// CompleteResultKey is the synthesized aggregate entry in a run's result
// map. It is never a stage id and consumers must not iterate it as one.
const CompleteResultKey = "complete_result"

// PipelineRun is the state of a single pipeline execution. It is owned
// exclusively by the orchestrator invocation that created it and is never
// shared across runs.
type PipelineRun struct {
	RunID        string                 `json:"run_id"`
	Requirements string                 `json:"requirements"`
	Snapshot     []StageDefinition      `json:"snapshot"`
	Results      map[string]StageResult `json:"results"`
	Order        []string               `json:"order"`
	Status       RunStatus              `json:"status"`
	StartedAt    time.Time              `json:"started_at"`
	EndedAt      *time.Time             `json:"ended_at,omitempty"`
}

// StageResults returns the per-stage results in execution order. The
// complete_result entry is excluded.
func (r *PipelineRun) StageResults() []StageResult {
	out := make([]StageResult, 0, len(r.Order))
	for _, id := range r.Order {
		if id == CompleteResultKey {
			continue
		}
		if res, ok := r.Results[id]; ok {
			out = append(out, res)
		}
	}
	return out
}
