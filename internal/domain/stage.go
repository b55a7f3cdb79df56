// Package domain defines the core domain models for the generation pipeline.
package domain

// StageDefinition describes one step of the generation pipeline. Definitions
// are immutable; the registry hands out copies, never shared slices.
type StageDefinition struct {
	ID          string            `json:"id" yaml:"id"`
	Title       string            `json:"title" yaml:"title"`
	AgentName   string            `json:"agent_name" yaml:"agent_name"`
	Icon        string            `json:"icon" yaml:"icon"`
	Description string            `json:"description,omitempty" yaml:"description,omitempty"`
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	// Extra preserves unknown configuration keys so a round-trip through
	// reconfiguration does not silently drop them.
	Extra map[string]string `json:"extra,omitempty" yaml:",inline"`
}

// StageOutcome represents the outcome of a single stage execution.
type StageOutcome string

const (
	StageOutcomeSuccess StageOutcome = "SUCCESS"
	StageOutcomeFailure StageOutcome = "FAILURE"
)

// StageResult is the immutable record of one executed stage.
type StageResult struct {
	StageID   string       `json:"stage_id"`
	AgentName string       `json:"agent_name"`
	Output    string       `json:"output"`
	Outcome   StageOutcome `json:"outcome"`
	Err       string       `json:"error,omitempty"`
}

// Failed reports whether the stage ended in failure.
func (r StageResult) Failed() bool {
	return r.Outcome == StageOutcomeFailure
}
