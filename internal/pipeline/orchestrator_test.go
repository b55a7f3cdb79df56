package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/xiaot623/devteam/internal/adapter/generation"
	"github.com/xiaot623/devteam/internal/domain"
	"github.com/xiaot623/devteam/internal/registry"
)

// capturePublisher records published events in order.
type capturePublisher struct {
	mu     sync.Mutex
	events []domain.LogEvent
}

func (p *capturePublisher) Publish(ev domain.LogEvent) {
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
}

func (p *capturePublisher) kinds() []domain.EventKind {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventKind, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Kind
	}
	return out
}

func (p *capturePublisher) stageEvents() []domain.LogEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []domain.LogEvent
	for _, ev := range p.events {
		if ev.StageID != "" {
			out = append(out, ev)
		}
	}
	return out
}

func fourStageRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	r, err := registry.New([]domain.StageDefinition{
		{ID: "design", Title: "Technical Design", AgentName: "ChAIrlie", Enabled: true},
		{ID: "backend_code", Title: "Backend Code", AgentName: "Jimmy Backend", Enabled: true},
		{ID: "frontend_code", Title: "Frontend Code", AgentName: "Wally WebDev", Enabled: true},
		{ID: "tests", Title: "Test Suite", AgentName: "Bug Zapper", Enabled: true},
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	return r
}

func TestRunProducesResultPerStagePlusComplete(t *testing.T) {
	reg := fourStageRegistry(t)
	mock := generation.NewMockClient()
	pub := &capturePublisher{}

	run, err := New(reg, mock, pub, time.Second).Run(context.Background(), "Build a todo list")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if run.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", run.Status)
	}
	// Four stage entries plus exactly one complete_result.
	if len(run.Results) != 5 {
		t.Fatalf("expected 5 result entries, got %d", len(run.Results))
	}
	complete, ok := run.Results[domain.CompleteResultKey]
	if !ok {
		t.Fatal("missing complete_result entry")
	}
	if complete.Output == "" {
		t.Fatal("complete_result output is empty")
	}

	// Per-stage iteration never yields complete_result.
	for _, res := range run.StageResults() {
		if res.StageID == domain.CompleteResultKey {
			t.Fatal("complete_result leaked into per-stage results")
		}
	}
	if len(run.StageResults()) != 4 {
		t.Fatalf("expected 4 per-stage results, got %d", len(run.StageResults()))
	}
}

func TestRunRejectsEmptyRequirementsBeforeAnyStage(t *testing.T) {
	reg := fourStageRegistry(t)
	mock := generation.NewMockClient()
	pub := &capturePublisher{}

	for _, input := range []string{"", "   \n\t"} {
		run, err := New(reg, mock, pub, time.Second).Run(context.Background(), input)
		if !errors.Is(err, domain.ErrInvalidInput) {
			t.Fatalf("input %q: expected ErrInvalidInput, got %v", input, err)
		}
		if run != nil {
			t.Fatalf("input %q: expected nil run", input)
		}
	}

	if len(mock.Calls()) != 0 {
		t.Fatalf("generation client invoked on invalid input: %v", mock.Calls())
	}
	for _, k := range pub.kinds() {
		if k == domain.EventKindAgentStart {
			t.Fatal("agent_start published for invalid input")
		}
	}
}

func TestRunFailsWithNoEnabledStages(t *testing.T) {
	reg, err := registry.New([]domain.StageDefinition{
		{ID: "design", Title: "Design", Enabled: false},
	})
	if err != nil {
		t.Fatalf("registry.New: %v", err)
	}
	pub := &capturePublisher{}

	run, runErr := New(reg, generation.NewMockClient(), pub, time.Second).Run(context.Background(), "anything")
	if !errors.Is(runErr, domain.ErrNoStagesConfigured) {
		t.Fatalf("expected ErrNoStagesConfigured, got %v", runErr)
	}
	if run != nil {
		t.Fatal("expected nil run")
	}
	if len(pub.kinds()) != 0 {
		t.Fatalf("expected no events, got %d", len(pub.kinds()))
	}
}

func TestStageEventsAreStrictlyOrdered(t *testing.T) {
	reg := fourStageRegistry(t)
	pub := &capturePublisher{}

	if _, err := New(reg, generation.NewMockClient(), pub, time.Second).Run(context.Background(), "Build it"); err != nil {
		t.Fatalf("Run: %v", err)
	}

	want := []string{
		"design", "design",
		"backend_code", "backend_code",
		"frontend_code", "frontend_code",
		"tests", "tests",
	}
	got := pub.stageEvents()
	if len(got) != len(want) {
		t.Fatalf("expected %d stage events, got %d", len(want), len(got))
	}
	for i, ev := range got {
		if ev.StageID != want[i] {
			t.Fatalf("event %d: expected stage %s, got %s", i, want[i], ev.StageID)
		}
	}
	// Each pair is start then done.
	for i := 0; i < len(got); i += 2 {
		if got[i].Kind != domain.EventKindAgentStart || got[i+1].Kind != domain.EventKindAgentDone {
			t.Fatalf("pair %d: got kinds %s, %s", i/2, got[i].Kind, got[i+1].Kind)
		}
	}
}

func TestFailSoftContinuesPastFailedStage(t *testing.T) {
	reg := fourStageRegistry(t)
	mock := generation.NewMockClient()
	mock.FailStage("frontend_code", fmt.Errorf("model unavailable"))
	pub := &capturePublisher{}

	run, err := New(reg, mock, pub, time.Second).Run(context.Background(), "Build a todo list")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	// The example scenario: 4 stage entries, one failed, overall success.
	if run.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED with partial errors, got %s", run.Status)
	}
	if len(run.StageResults()) != 4 {
		t.Fatalf("expected 4 stage results, got %d", len(run.StageResults()))
	}

	failed := run.Results["frontend_code"]
	if !failed.Failed() || failed.Err == "" {
		t.Fatalf("expected recorded failure for frontend_code: %+v", failed)
	}

	// Stage after the failed one still executed.
	calls := mock.Calls()
	if calls[len(calls)-1] != "tests" {
		t.Fatalf("expected tests to run after frontend_code failure, calls: %v", calls)
	}

	// Aggregate concatenates only the three successful outputs.
	complete := run.Results[domain.CompleteResultKey].Output
	for _, id := range []string{"design", "backend_code", "tests"} {
		if !containsOutput(complete, run.Results[id].Output) {
			t.Fatalf("aggregate missing output of %s", id)
		}
	}

	var sawError bool
	for _, k := range pub.kinds() {
		if k == domain.EventKindAgentError {
			sawError = true
		}
	}
	if !sawError {
		t.Fatal("expected an agent_error event")
	}
}

func TestRunFailedOnlyWhenAllStagesFail(t *testing.T) {
	reg := fourStageRegistry(t)
	mock := generation.NewMockClient()
	for _, id := range []string{"design", "backend_code", "frontend_code", "tests"} {
		mock.FailStage(id, fmt.Errorf("down"))
	}

	run, err := New(reg, mock, &capturePublisher{}, time.Second).Run(context.Background(), "Build it")
	if !errors.Is(err, domain.ErrAllStagesFailed) {
		t.Fatalf("expected ErrAllStagesFailed, got %v", err)
	}
	if run == nil || run.Status != domain.RunStatusFailed {
		t.Fatalf("expected FAILED run, got %+v", run)
	}
	if run.Results[domain.CompleteResultKey].Output != "" {
		t.Fatal("expected empty aggregate when everything failed")
	}
}

func TestStageTimeoutIsFailSoft(t *testing.T) {
	reg := fourStageRegistry(t)
	mock := generation.NewMockClient()
	release := mock.BlockStage("backend_code")
	defer close(release)

	run, err := New(reg, mock, &capturePublisher{}, 50*time.Millisecond).Run(context.Background(), "Build it")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if !run.Results["backend_code"].Failed() {
		t.Fatal("expected timed-out stage to record a failure")
	}
	if run.Results["tests"].Failed() {
		t.Fatal("expected later stage to succeed after a timeout")
	}
	if run.Status != domain.RunStatusCompleted {
		t.Fatalf("expected COMPLETED, got %s", run.Status)
	}
}

func TestCancellationStopsFurtherStages(t *testing.T) {
	reg := fourStageRegistry(t)
	mock := generation.NewMockClient()
	release := mock.BlockStage("backend_code")
	pub := &capturePublisher{}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *domain.PipelineRun, 1)
	go func() {
		run, _ := New(reg, mock, pub, time.Second).Run(ctx, "Build it")
		done <- run
	}()

	// Wait for the pipeline to reach the blocked stage, then cancel.
	waitForCalls(t, mock, 2)
	cancel()
	close(release)

	run := <-done
	if run.Status != domain.RunStatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", run.Status)
	}
	for _, id := range mock.Calls() {
		if id == "frontend_code" || id == "tests" {
			t.Fatalf("stage %s started after cancellation", id)
		}
	}

	kinds := pub.kinds()
	if kinds[len(kinds)-1] != domain.EventKindRunCancelled {
		t.Fatalf("expected terminal run_cancelled event, got %s", kinds[len(kinds)-1])
	}
}

func TestMidRunReconfigureDoesNotShrinkSnapshot(t *testing.T) {
	reg := fourStageRegistry(t)
	mock := generation.NewMockClient()
	release := mock.BlockStage("design")

	done := make(chan *domain.PipelineRun, 1)
	go func() {
		run, _ := New(reg, mock, &capturePublisher{}, time.Second).Run(context.Background(), "Build it")
		done <- run
	}()

	waitForCalls(t, mock, 1)

	// Disable tests while the run is in flight.
	defs := reg.List()
	for i := range defs {
		if defs[i].ID == "tests" {
			defs[i].Enabled = false
		}
	}
	if err := reg.Reconfigure(defs); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	close(release)

	run := <-done
	if len(run.StageResults()) != 4 {
		t.Fatalf("in-flight run lost snapshotted stages: %d results", len(run.StageResults()))
	}
	if _, ok := run.Results["tests"]; !ok {
		t.Fatal("snapshotted tests stage did not run")
	}
}

func waitForCalls(t *testing.T, mock *generation.MockClient, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(mock.Calls()) >= n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d generation calls, got %v", n, mock.Calls())
}

func containsOutput(aggregate, output string) bool {
	return output != "" && strings.Contains(aggregate, output)
}
