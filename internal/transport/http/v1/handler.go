// Package v1 provides the HTTP handlers for the devteam service.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/devteam/internal/service"
)

// Handler handles HTTP requests.
type Handler struct {
	service *service.Service
}

// NewHandler creates a new handler.
func NewHandler(service *service.Service) *Handler {
	return &Handler{
		service: service,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/team-config", h.GetTeamConfig)
	e.POST("/team-config", h.ReconfigureTeam)

	e.GET("/requirements", h.GetRequirements)
	e.POST("/requirements", h.SetRequirements)

	e.POST("/generate", h.Generate)

	e.GET("/logs", h.StreamLogs)

	e.GET("/runs", h.ListRuns)
	e.GET("/runs/:run_id/events", h.GetRunEvents)

	e.GET("/health", h.Health)
}

// Health returns health status.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":              "healthy",
		"message":             "Backend is running",
		"generator_available": h.service.GeneratorAvailable(),
		"subscribers":         h.service.Bus().SubscriberCount(),
	})
}
