package service

import (
	"github.com/xiaot623/devteam/internal/domain"
)

// TeamConfig returns every configured stage, enabled or not, in order.
func (s *Service) TeamConfig() []domain.StageDefinition {
	return s.registry.List()
}

// ReconfigureTeam atomically replaces the stage registry. An in-flight run
// keeps the snapshot it captured at start.
func (s *Service) ReconfigureTeam(defs []domain.StageDefinition) error {
	return s.registry.Reconfigure(defs)
}
