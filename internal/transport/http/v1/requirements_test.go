package v1

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestSetAndGetRequirements(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t)

	body := `{"requirements":"Build a todo list"}`
	req := httptest.NewRequest(http.MethodPost, "/requirements", bytes.NewBufferString(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SetRequirements(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/requirements", nil)
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)

	if err := h.GetRequirements(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	assert.Equal(t, "Build a todo list", resp["requirements"])
	assert.Equal(t, true, resp["has_requirements"])
}

func TestSetRequirementsRejectsBlank(t *testing.T) {
	e := echo.New()
	h, _, _ := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/requirements", bytes.NewBufferString(`{"requirements":"   "}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := h.SetRequirements(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
