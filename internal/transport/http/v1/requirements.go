package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/devteam/internal/domain"
)

// RequirementsRequest is the request to save requirements.
type RequirementsRequest struct {
	Requirements string `json:"requirements"`
}

// SetRequirements stores the latest requirement text.
// POST /requirements
func (h *Handler) SetRequirements(c echo.Context) error {
	ctx := c.Request().Context()

	var req RequirementsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"status":  "error",
			"message": "Missing requirements data",
		})
	}

	if err := h.service.SaveRequirements(ctx, req.Requirements); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"status":  "error",
				"message": err.Error(),
			})
		}
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":       "success",
		"requirements": strings.TrimSpace(req.Requirements),
	})
}

// GetRequirements returns the stored requirement text.
// GET /requirements
func (h *Handler) GetRequirements(c echo.Context) error {
	ctx := c.Request().Context()

	stored, err := h.service.GetRequirements(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{
			"status":  "error",
			"message": err.Error(),
		})
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":           "success",
		"requirements":     stored,
		"has_requirements": strings.TrimSpace(stored) != "",
	})
}
