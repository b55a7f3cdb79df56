package v1

import (
	"context"
	"testing"
	"time"

	"github.com/xiaot623/devteam/internal/adapter/generation"
	"github.com/xiaot623/devteam/internal/bus"
	"github.com/xiaot623/devteam/internal/config"
	"github.com/xiaot623/devteam/internal/registry"
	"github.com/xiaot623/devteam/internal/service"
	"github.com/xiaot623/devteam/policy"
	"github.com/xiaot623/devteam/tests/helpers"
)

func newTestHandler(t *testing.T) (*Handler, *generation.MockClient, *bus.Bus) {
	t.Helper()

	db := helpers.NewTestSQLiteStore(t)
	reg := registry.Default()
	eventBus := bus.New(bus.WithHeartbeatInterval(0))
	t.Cleanup(eventBus.Close)

	mock := generation.NewMockClient()
	cfg := &config.Config{
		StageTimeout:          time.Second,
		MaxRequirementsLength: 10000,
	}

	policyEngine, err := policy.NewEngine(context.Background(), policy.DefaultPolicy)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	svc := service.New(db, reg, eventBus, mock, cfg, policyEngine)
	return NewHandler(svc), mock, eventBus
}
