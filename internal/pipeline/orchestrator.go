// Package pipeline drives the sequential generation pipeline and reports
// its progress on the event bus.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/xiaot623/devteam/internal/adapter/generation"
	"github.com/xiaot623/devteam/internal/domain"
	"github.com/xiaot623/devteam/internal/registry"
)

// completeAgentName labels the synthesized complete_result entry.
const completeAgentName = "Engineering Team"

// previewLen bounds the output preview attached to agent_done events.
const previewLen = 120

// Publisher receives the lifecycle events a run emits. The event bus
// satisfies it; the service layer composes it with history persistence.
type Publisher interface {
	Publish(ev domain.LogEvent)
}

// Orchestrator executes pipeline runs. Stages run strictly sequentially
// within a run since later stages consume earlier outputs as context;
// separate runs may execute concurrently against the shared registry and
// publisher.
type Orchestrator struct {
	registry     *registry.Registry
	client       generation.Client
	publisher    Publisher
	stageTimeout time.Duration
}

// New creates an orchestrator.
func New(reg *registry.Registry, client generation.Client, pub Publisher, stageTimeout time.Duration) *Orchestrator {
	return &Orchestrator{
		registry:     reg,
		client:       client,
		publisher:    pub,
		stageTimeout: stageTimeout,
	}
}

// Run executes the pipeline for the given requirements and returns the
// completed run. Per-stage failures are recorded and do not abort the run;
// the returned error is non-nil only for input validation failures, an
// empty registry, or a run where every stage failed (the run is still
// returned in that last case).
//
// Cancelling ctx does not interrupt an in-flight generation call beyond
// its stage timeout, but no further stage is started afterwards.
func (o *Orchestrator) Run(ctx context.Context, requirements string) (*domain.PipelineRun, error) {
	if strings.TrimSpace(requirements) == "" {
		return nil, domain.ErrInvalidInput
	}

	snapshot := o.registry.EnabledStages()
	if len(snapshot) == 0 {
		return nil, domain.ErrNoStagesConfigured
	}

	run := &domain.PipelineRun{
		RunID:        "run_" + uuid.New().String()[:8],
		Requirements: requirements,
		Snapshot:     snapshot,
		Results:      make(map[string]domain.StageResult, len(snapshot)+1),
		Status:       domain.RunStatusRunning,
		StartedAt:    time.Now(),
	}

	log.Printf("INFO: run %s started with %d stages", run.RunID, len(snapshot))
	o.publish(run, domain.EventKindInfo, fmt.Sprintf("Starting code generation with %d stages", len(snapshot)), "", "")

	agg := NewAggregator(snapshot)
	cancelled := false

	for _, stage := range snapshot {
		if ctx.Err() != nil {
			cancelled = true
			break
		}
		o.executeStage(ctx, run, agg, stage)
	}

	for _, res := range agg.Ordered() {
		run.Results[res.StageID] = res
		run.Order = append(run.Order, res.StageID)
	}
	run.Results[domain.CompleteResultKey] = domain.StageResult{
		StageID:   domain.CompleteResultKey,
		AgentName: completeAgentName,
		Output:    agg.Complete(),
		Outcome:   domain.StageOutcomeSuccess,
	}

	now := time.Now()
	run.EndedAt = &now

	switch {
	case cancelled:
		run.Status = domain.RunStatusCancelled
		o.publish(run, domain.EventKindRunCancelled, "Code generation cancelled", "", "")
		log.Printf("INFO: run %s cancelled after %d stages", run.RunID, len(run.Order))
		return run, nil
	case agg.AllFailed():
		run.Status = domain.RunStatusFailed
		o.publish(run, domain.EventKindRunDone, "Code generation failed: no stage produced output", "", "")
		log.Printf("ERROR: run %s failed: all %d stages failed", run.RunID, len(run.Order))
		return run, domain.ErrAllStagesFailed
	default:
		run.Status = domain.RunStatusCompleted
		o.publish(run, domain.EventKindRunDone, fmt.Sprintf("Code generation completed with %d outputs", len(run.Order)), "", "")
		log.Printf("INFO: run %s completed with %d stage results", run.RunID, len(run.Order))
		return run, nil
	}
}

// executeStage runs one stage under its own timeout and records the
// outcome. No lock is held across the generation call.
func (o *Orchestrator) executeStage(ctx context.Context, run *domain.PipelineRun, agg *Aggregator, stage domain.StageDefinition) {
	o.publish(run, domain.EventKindAgentStart,
		fmt.Sprintf("Agent Started: %s (%s)", stage.AgentName, stage.Title), stage.ID, stage.AgentName)

	stageCtx := ctx
	if o.stageTimeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, o.stageTimeout)
		defer cancel()
	}

	output, err := o.client.Generate(stageCtx, stage, run.Requirements, agg.Ordered())
	if err != nil {
		log.Printf("WARN: run %s stage %s failed: %v", run.RunID, stage.ID, err)
		agg.Record(stage.ID, domain.StageResult{
			StageID:   stage.ID,
			AgentName: stage.AgentName,
			Outcome:   domain.StageOutcomeFailure,
			Err:       err.Error(),
		})
		o.publish(run, domain.EventKindAgentError,
			fmt.Sprintf("Agent Failed: %s (%s): %v", stage.AgentName, stage.Title, err), stage.ID, stage.AgentName)
		return
	}

	agg.Record(stage.ID, domain.StageResult{
		StageID:   stage.ID,
		AgentName: stage.AgentName,
		Output:    output,
		Outcome:   domain.StageOutcomeSuccess,
	})
	o.publish(run, domain.EventKindAgentDone,
		fmt.Sprintf("Agent Completed: %s (%s): %s", stage.AgentName, stage.Title, preview(output)), stage.ID, stage.AgentName)
}

func (o *Orchestrator) publish(run *domain.PipelineRun, kind domain.EventKind, text, stageID, agent string) {
	ev := domain.NewLogEvent(kind, text)
	ev.RunID = run.RunID
	ev.StageID = stageID
	ev.Agent = agent
	o.publisher.Publish(ev)
}

func preview(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > previewLen {
		return s[:previewLen] + "..."
	}
	return s
}
