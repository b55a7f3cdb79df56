package pipeline

import (
	"testing"

	"github.com/xiaot623/devteam/internal/domain"
)

func TestAggregatorCompleteIsDeterministic(t *testing.T) {
	snapshot := []domain.StageDefinition{
		{ID: "design", Title: "Technical Design"},
		{ID: "code", Title: "Backend Code"},
	}
	agg := NewAggregator(snapshot)
	agg.Record("design", domain.StageResult{StageID: "design", AgentName: "A", Output: "the design", Outcome: domain.StageOutcomeSuccess})
	agg.Record("code", domain.StageResult{StageID: "code", AgentName: "B", Output: "the code", Outcome: domain.StageOutcomeSuccess})

	first := agg.Complete()
	second := agg.Complete()
	if first != second {
		t.Fatal("Complete is not deterministic")
	}

	want := "## Technical Design (A)\n\nthe design\n\n---\n\n## Backend Code (B)\n\nthe code"
	if first != want {
		t.Fatalf("unexpected aggregate output:\n%q", first)
	}
}

func TestAggregatorSkipsFailedStages(t *testing.T) {
	agg := NewAggregator([]domain.StageDefinition{{ID: "a", Title: "A"}, {ID: "b", Title: "B"}})
	agg.Record("a", domain.StageResult{StageID: "a", AgentName: "X", Output: "ok", Outcome: domain.StageOutcomeSuccess})
	agg.Record("b", domain.StageResult{StageID: "b", AgentName: "Y", Outcome: domain.StageOutcomeFailure, Err: "boom"})

	got := agg.Complete()
	if got != "## A (X)\n\nok" {
		t.Fatalf("failed stage leaked into aggregate: %q", got)
	}
}

func TestAggregatorUnknownTitleFallsBackToStageID(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Record("mystery", domain.StageResult{StageID: "mystery", AgentName: "Z", Output: "out", Outcome: domain.StageOutcomeSuccess})

	if got := agg.Complete(); got != "## mystery (Z)\n\nout" {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestAggregatorPanicsOnDuplicateRecord(t *testing.T) {
	agg := NewAggregator(nil)
	agg.Record("a", domain.StageResult{StageID: "a"})

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on duplicate record")
		}
	}()
	agg.Record("a", domain.StageResult{StageID: "a"})
}

func TestAggregatorAllFailed(t *testing.T) {
	agg := NewAggregator(nil)
	if agg.AllFailed() {
		t.Fatal("empty aggregator must not report all-failed")
	}

	agg.Record("a", domain.StageResult{StageID: "a", Outcome: domain.StageOutcomeFailure})
	if !agg.AllFailed() {
		t.Fatal("expected all-failed with a single failure")
	}

	agg.Record("b", domain.StageResult{StageID: "b", Outcome: domain.StageOutcomeSuccess})
	if agg.AllFailed() {
		t.Fatal("one success must clear all-failed")
	}
}
