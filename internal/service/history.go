package service

import (
	"context"
	"fmt"

	"github.com/xiaot623/devteam/internal/repository"
)

// GetRun returns a persisted run summary, or nil if unknown.
func (s *Service) GetRun(ctx context.Context, runID string) (*repository.RunRecord, error) {
	run, err := s.store.GetRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns the most recent persisted runs.
func (s *Service) ListRuns(ctx context.Context, limit int) ([]repository.RunRecord, error) {
	return s.store.ListRuns(ctx, limit)
}

// GetRunEvents returns a run's persisted lifecycle events in order.
func (s *Service) GetRunEvents(ctx context.Context, runID string) ([]repository.RunEvent, error) {
	return s.store.GetRunEvents(ctx, runID)
}
