package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/devteam/internal/domain"
	"github.com/xiaot623/devteam/internal/registry"
)

// StageConfig is the wire shape of one stage in the team configuration.
type StageConfig struct {
	Name        string            `json:"name"`
	Title       string            `json:"title"`
	Icon        string            `json:"icon"`
	Description string            `json:"description"`
	Enabled     bool              `json:"enabled"`
	Extra       map[string]string `json:"extra,omitempty"`
}

// GetTeamConfig returns the full stage registry keyed by stage id.
// GET /team-config
func (h *Handler) GetTeamConfig(c echo.Context) error {
	stages := h.service.TeamConfig()

	teamConfig := make(map[string]StageConfig, len(stages))
	for _, s := range stages {
		teamConfig[s.ID] = StageConfig{
			Name:        s.AgentName,
			Title:       s.Title,
			Icon:        s.Icon,
			Description: s.Description,
			Enabled:     s.Enabled,
			Extra:       s.Extra,
		}
	}
	return c.JSON(http.StatusOK, teamConfig)
}

// ReconfigureRequest is the request to replace the stage registry.
type ReconfigureRequest struct {
	Stages []domain.StageDefinition `json:"stages"`
}

// ReconfigureTeam atomically replaces the stage registry.
// POST /team-config
func (h *Handler) ReconfigureTeam(c echo.Context) error {
	var req ReconfigureRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}

	if err := h.service.ReconfigureTeam(req.Stages); err != nil {
		if errors.Is(err, registry.ErrDuplicateStageID) ||
			errors.Is(err, registry.ErrEmptyConfiguration) ||
			errors.Is(err, registry.ErrMissingStageID) {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"ok":     true,
		"stages": len(req.Stages),
	})
}
