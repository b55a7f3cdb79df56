package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/xiaot623/devteam/internal/domain"
)

func TestGenerateSuccess(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t)

	body := `{"requirements":"Build a todo list"}`
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	assert.Equal(t, "success", resp.Status)
	// One entry per enabled stage plus complete_result.
	assert.Len(t, resp.Outputs, 5)

	complete, ok := resp.Outputs[domain.CompleteResultKey]
	if !ok {
		t.Fatal("missing complete_result entry")
	}
	assert.Equal(t, "Engineering Team", complete.Agent)
	assert.NotEmpty(t, complete.Output)
}

func TestGeneratePartialFailureStillSuccess(t *testing.T) {
	e := echo.New()
	h, mock, _ := newTestHandler(t)
	mock.FailStage("frontend_code", fmt.Errorf("model unavailable"))

	body := `{"requirements":"Build a todo list"}`
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp GenerateResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, "success", resp.Status)
	assert.NotEmpty(t, resp.Outputs["frontend_code"].Error)
	assert.Empty(t, resp.Outputs["frontend_code"].Output)
	assert.NotEmpty(t, resp.Outputs["tests"].Output)
}

func TestGenerateWithoutRequirements(t *testing.T) {
	e := echo.New()
	h, mock, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(`{}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, mock.Calls())
}

func TestGenerateAllStagesFailed(t *testing.T) {
	e := echo.New()
	h, mock, _ := newTestHandler(t)
	for _, id := range []string{"design", "backend_code", "frontend_code", "tests"} {
		mock.FailStage(id, fmt.Errorf("down"))
	}

	body := `{"requirements":"Build it"}`
	req := httptest.NewRequest(http.MethodPost, "/generate", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.Generate(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp GenerateResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, "error", resp.Status)
	// Per-stage entries still present so callers can see what failed.
	assert.Len(t, resp.Outputs, 5)
}
