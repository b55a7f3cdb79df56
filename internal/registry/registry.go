// Package registry holds the configurable set of pipeline stage definitions.
package registry

import (
	"fmt"
	"sync"

	"github.com/xiaot623/devteam/internal/domain"
)

// Registry is the stage registry. Reads return copies of the current
// definition list; Reconfigure swaps the whole list atomically so a reader
// never observes a partially-updated set. A pipeline run snapshots
// EnabledStages once at start, insulating it from later reconfiguration.
type Registry struct {
	mu     sync.RWMutex
	stages []domain.StageDefinition
}

// New creates a registry with the given initial definitions. The initial
// set is validated the same way Reconfigure validates.
func New(defs []domain.StageDefinition) (*Registry, error) {
	if err := validate(defs); err != nil {
		return nil, err
	}
	r := &Registry{}
	r.stages = cloneStages(defs)
	return r, nil
}

// Default creates a registry with the stock engineering team.
func Default() *Registry {
	r, err := New(DefaultTeam())
	if err != nil {
		// DefaultTeam is static and valid.
		panic(fmt.Sprintf("default team invalid: %v", err))
	}
	return r
}

// List returns all stage definitions in configured order, enabled or not.
func (r *Registry) List() []domain.StageDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return cloneStages(r.stages)
}

// EnabledStages returns only the enabled definitions, in configured order.
// The orchestrator calls this once per run to produce its snapshot.
func (r *Registry) EnabledStages() []domain.StageDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()

	enabled := make([]domain.StageDefinition, 0, len(r.stages))
	for _, s := range r.stages {
		if s.Enabled {
			enabled = append(enabled, cloneStage(s))
		}
	}
	return enabled
}

// Get returns the definition with the given id, or nil if unknown.
func (r *Registry) Get(id string) *domain.StageDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.stages {
		if s.ID == id {
			c := cloneStage(s)
			return &c
		}
	}
	return nil
}

// Reconfigure replaces the registry contents atomically. On validation
// failure the prior configuration remains in effect.
func (r *Registry) Reconfigure(defs []domain.StageDefinition) error {
	if err := validate(defs); err != nil {
		return err
	}
	next := cloneStages(defs)

	r.mu.Lock()
	r.stages = next
	r.mu.Unlock()
	return nil
}

func validate(defs []domain.StageDefinition) error {
	if len(defs) == 0 {
		return fmt.Errorf("stage configuration: %w", ErrEmptyConfiguration)
	}
	seen := make(map[string]bool, len(defs))
	for _, d := range defs {
		if d.ID == "" {
			return fmt.Errorf("stage configuration: %w", ErrMissingStageID)
		}
		if seen[d.ID] {
			return fmt.Errorf("stage %q: %w", d.ID, ErrDuplicateStageID)
		}
		seen[d.ID] = true
	}
	return nil
}

func cloneStage(s domain.StageDefinition) domain.StageDefinition {
	c := s
	if s.Extra != nil {
		c.Extra = make(map[string]string, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = v
		}
	}
	return c
}

func cloneStages(defs []domain.StageDefinition) []domain.StageDefinition {
	out := make([]domain.StageDefinition, len(defs))
	for i, d := range defs {
		out[i] = cloneStage(d)
	}
	return out
}
