package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/devteam/internal/domain"
	"github.com/xiaot623/devteam/internal/pipeline"
	"github.com/xiaot623/devteam/internal/repository"
)

// Generate runs the full generation pipeline. When requirements is empty
// the last saved requirement text is used. The run and its lifecycle
// events are persisted for later replay; persistence failures are logged
// and never fail the run.
func (s *Service) Generate(ctx context.Context, requirements string) (*domain.PipelineRun, error) {
	if requirements == "" {
		stored, err := s.store.GetRequirements(ctx)
		if err != nil {
			log.Printf("WARN: failed to load stored requirements: %v", err)
		} else {
			requirements = stored
		}
	}

	if s.policyEngine != nil && requirements != "" {
		decision, reason, err := s.policyEngine.Evaluate(ctx, map[string]interface{}{
			"requirements": requirements,
			"length":       len(requirements),
		})
		if err != nil {
			log.Printf("ERROR: policy evaluation failed: %v", err)
		} else if decision == "deny" {
			if reason == "" {
				reason = "rejected by policy"
			}
			return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, reason)
		}
	}

	recorder := &eventRecorder{bus: s.bus}
	orch := pipeline.New(s.registry, s.genClient, recorder, s.config.StageTimeout)

	run, runErr := orch.Run(ctx, requirements)
	if run != nil {
		s.persistRun(run, recorder.events(), runErr)
	}
	return run, runErr
}

// persistRun stores the run summary and its buffered lifecycle events.
func (s *Service) persistRun(run *domain.PipelineRun, events []domain.LogEvent, runErr error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}

	rec := &repository.RunRecord{
		RunID:        run.RunID,
		Requirements: run.Requirements,
		Status:       run.Status,
		StartedAt:    run.StartedAt,
	}
	if err := s.store.CreateRun(ctx, rec); err != nil {
		log.Printf("ERROR: failed to persist run %s: %v", run.RunID, err)
		return
	}

	for _, ev := range events {
		runEvent := &repository.RunEvent{
			EventID: "evt_" + uuid.New().String()[:8],
			RunID:   ev.RunID,
			Ts:      ev.Ts,
			Kind:    ev.Kind,
			Text:    ev.Text,
			StageID: ev.StageID,
			Agent:   ev.Agent,
		}
		if err := s.store.CreateRunEvent(ctx, runEvent); err != nil {
			log.Printf("ERROR: failed to persist event for run %s: %v", run.RunID, err)
		}
	}

	if err := s.store.UpdateRunCompleted(ctx, run.RunID, run.Status, errMsg); err != nil {
		log.Printf("ERROR: failed to finalize run %s: %v", run.RunID, err)
	}
}

// eventRecorder forwards pipeline events to the live bus and buffers them
// for post-run persistence. Heartbeats never pass through here; they are
// produced by the bus itself.
type eventRecorder struct {
	bus interface {
		Publish(ev domain.LogEvent)
	}
	mu  sync.Mutex
	buf []domain.LogEvent
}

func (r *eventRecorder) Publish(ev domain.LogEvent) {
	r.bus.Publish(ev)

	r.mu.Lock()
	r.buf = append(r.buf, ev)
	r.mu.Unlock()
}

func (r *eventRecorder) events() []domain.LogEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.LogEvent, len(r.buf))
	copy(out, r.buf)
	return out
}
