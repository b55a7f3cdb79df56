package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/xiaot623/devteam/internal/domain"
)

// SaveRequirements validates and stores the latest requirement text.
func (s *Service) SaveRequirements(ctx context.Context, requirements string) error {
	trimmed := strings.TrimSpace(requirements)
	if trimmed == "" {
		return domain.ErrInvalidInput
	}
	if max := s.config.MaxRequirementsLength; max > 0 && len(requirements) > max {
		return fmt.Errorf("%w: requirements too long (max %d characters)", domain.ErrInvalidInput, max)
	}
	return s.store.SaveRequirements(ctx, trimmed)
}

// GetRequirements returns the stored requirement text ("" when none).
func (s *Service) GetRequirements(ctx context.Context) (string, error) {
	return s.store.GetRequirements(ctx)
}
