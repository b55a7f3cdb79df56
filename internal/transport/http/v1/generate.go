package v1

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/xiaot623/devteam/internal/domain"
)

// GenerateRequest is the request to run the generation pipeline. When
// Requirements is empty the last saved text is used.
type GenerateRequest struct {
	Requirements string `json:"requirements"`
}

// StageOutput is the wire shape of one entry in the result map.
type StageOutput struct {
	Output string `json:"output"`
	Agent  string `json:"agent"`
	Error  string `json:"error,omitempty"`
}

// GenerateResponse is the response of a pipeline run.
type GenerateResponse struct {
	Status  string                 `json:"status"`
	RunID   string                 `json:"run_id,omitempty"`
	Outputs map[string]StageOutput `json:"outputs,omitempty"`
	Message string                 `json:"message,omitempty"`
}

// Generate runs the pipeline synchronously and returns the result map.
// POST /generate
func (h *Handler) Generate(c echo.Context) error {
	ctx := c.Request().Context()

	var req GenerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, GenerateResponse{
			Status:  "error",
			Message: "invalid request body",
		})
	}

	run, err := h.service.Generate(ctx, req.Requirements)
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.JSON(http.StatusBadRequest, GenerateResponse{
			Status:  "error",
			Message: "No requirements provided. Please save your requirements first.",
		})
	case errors.Is(err, domain.ErrNoStagesConfigured):
		return c.JSON(http.StatusBadRequest, GenerateResponse{
			Status:  "error",
			Message: err.Error(),
		})
	case errors.Is(err, domain.ErrAllStagesFailed):
		return c.JSON(http.StatusInternalServerError, GenerateResponse{
			Status:  "error",
			RunID:   run.RunID,
			Outputs: outputsFromRun(run),
			Message: "Code generation failed: " + err.Error(),
		})
	case err != nil:
		return c.JSON(http.StatusInternalServerError, GenerateResponse{
			Status:  "error",
			Message: err.Error(),
		})
	}

	return c.JSON(http.StatusOK, GenerateResponse{
		Status:  "success",
		RunID:   run.RunID,
		Outputs: outputsFromRun(run),
	})
}

func outputsFromRun(run *domain.PipelineRun) map[string]StageOutput {
	outputs := make(map[string]StageOutput, len(run.Results))
	for id, res := range run.Results {
		outputs[id] = StageOutput{
			Output: res.Output,
			Agent:  res.AgentName,
			Error:  res.Err,
		}
	}
	return outputs
}
