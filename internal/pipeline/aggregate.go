package pipeline

import (
	"fmt"
	"strings"

	"github.com/xiaot623/devteam/internal/domain"
)

// completeDelimiter separates stage sections in the synthesized
// complete_result output. Stable across runs so aggregation is
// deterministic.
const completeDelimiter = "\n\n---\n\n"

// Aggregator folds per-stage results into the run's keyed result set.
// Append-only: each stage id may be recorded at most once per run.
// Owned exclusively by one run, never shared.
type Aggregator struct {
	titles  map[string]string
	results []domain.StageResult
	seen    map[string]bool
}

// NewAggregator creates an aggregator for the given stage snapshot. The
// snapshot supplies the display titles used in the aggregate output.
func NewAggregator(snapshot []domain.StageDefinition) *Aggregator {
	titles := make(map[string]string, len(snapshot))
	for _, s := range snapshot {
		titles[s.ID] = s.Title
	}
	return &Aggregator{
		titles: titles,
		seen:   make(map[string]bool),
	}
}

// Record appends a stage result. Recording the same stage id twice is a
// programming error and panics.
func (a *Aggregator) Record(stageID string, res domain.StageResult) {
	if a.seen[stageID] {
		panic(fmt.Sprintf("aggregator: stage %q recorded twice", stageID))
	}
	a.seen[stageID] = true
	a.results = append(a.results, res)
}

// Ordered returns the recorded results in execution order.
func (a *Aggregator) Ordered() []domain.StageResult {
	out := make([]domain.StageResult, len(a.results))
	copy(out, a.results)
	return out
}

// AllFailed reports whether every recorded stage failed. False when
// nothing was recorded.
func (a *Aggregator) AllFailed() bool {
	if len(a.results) == 0 {
		return false
	}
	for _, r := range a.results {
		if !r.Failed() {
			return false
		}
	}
	return true
}

// Complete concatenates each successful stage's output under its title and
// agent header, in execution order. Pure function of the recorded results:
// re-running it yields byte-identical text.
func (a *Aggregator) Complete() string {
	sections := make([]string, 0, len(a.results))
	for _, r := range a.results {
		if r.Failed() {
			continue
		}
		title := a.titles[r.StageID]
		if title == "" {
			title = r.StageID
		}
		sections = append(sections, fmt.Sprintf("## %s (%s)\n\n%s", title, r.AgentName, r.Output))
	}
	return strings.Join(sections, completeDelimiter)
}
