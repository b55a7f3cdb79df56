// Package service wires the pipeline core to persistence, policy, and the
// event bus.
package service

import (
	"github.com/xiaot623/devteam/internal/adapter/generation"
	"github.com/xiaot623/devteam/internal/bus"
	"github.com/xiaot623/devteam/internal/config"
	"github.com/xiaot623/devteam/internal/registry"
	"github.com/xiaot623/devteam/internal/repository"
	"github.com/xiaot623/devteam/policy"
)

type Service struct {
	store        repository.Store
	registry     *registry.Registry
	bus          *bus.Bus
	genClient    generation.Client
	config       *config.Config
	policyEngine *policy.Engine
}

func New(store repository.Store, reg *registry.Registry, b *bus.Bus, genClient generation.Client, cfg *config.Config, policyEngine *policy.Engine) *Service {
	return &Service{
		store:        store,
		registry:     reg,
		bus:          b,
		genClient:    genClient,
		config:       cfg,
		policyEngine: policyEngine,
	}
}

// Bus returns the live event bus for stream transports.
func (s *Service) Bus() *bus.Bus {
	return s.bus
}

// GeneratorAvailable reports whether a generation client is configured.
func (s *Service) GeneratorAvailable() bool {
	return s.genClient != nil
}
