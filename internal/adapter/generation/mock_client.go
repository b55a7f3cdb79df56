package generation

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/xiaot623/devteam/internal/domain"
)

// MockClient is a mock implementation of Client for local development and
// tests. Individual stages can be made to fail or block.
type MockClient struct {
	mu       sync.Mutex
	failures map[string]error
	delays   map[string]chan struct{}
	calls    []string
}

// NewMockClient creates a new mock generation client.
func NewMockClient() *MockClient {
	return &MockClient{
		failures: make(map[string]error),
		delays:   make(map[string]chan struct{}),
	}
}

// FailStage makes Generate return err for the given stage id.
func (m *MockClient) FailStage(stageID string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[stageID] = err
}

// BlockStage makes Generate for the given stage id wait until the returned
// channel is closed or the context expires.
func (m *MockClient) BlockStage(stageID string) chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	release := make(chan struct{})
	m.delays[stageID] = release
	return release
}

// Calls returns the stage ids Generate was invoked with, in order.
func (m *MockClient) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.calls))
	copy(out, m.calls)
	return out
}

// Generate returns canned per-stage output.
func (m *MockClient) Generate(ctx context.Context, stage domain.StageDefinition, requirements string, prior []domain.StageResult) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, stage.ID)
	failure := m.failures[stage.ID]
	release := m.delays[stage.ID]
	m.mu.Unlock()

	if release != nil {
		select {
		case <-release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if failure != nil {
		return "", failure
	}

	preview := requirements
	if len(preview) > 60 {
		preview = preview[:60]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[mock] %s output for: %s\n", stage.ID, preview)
	fmt.Fprintf(&sb, "Produced by %s with %d earlier outputs as context.\n", stage.AgentName, len(prior))
	return sb.String(), nil
}
