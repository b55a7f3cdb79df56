package v1

import (
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
)

// StreamLogs streams live pipeline log events via SSE.
// GET /logs
//
// Each event is one data line. Heartbeat lines carry the [HEARTBEAT]
// marker so clients can keep them out of rendered transcripts.
func (h *Handler) StreamLogs(c echo.Context) error {
	ctx := c.Request().Context()

	c.Response().Header().Set("Content-Type", "text/event-stream")
	c.Response().Header().Set("Cache-Control", "no-cache")
	c.Response().Header().Set("Connection", "keep-alive")
	c.Response().Header().Set("X-Accel-Buffering", "no")
	c.Response().WriteHeader(http.StatusOK)

	flusher, _ := c.Response().Writer.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	sub := h.service.Bus().Subscribe()
	defer h.service.Bus().Unsubscribe(sub)

	for {
		select {
		case <-ctx.Done():
			// Client disconnected
			return nil

		case ev, ok := <-sub.Events():
			if !ok {
				// Bus closed
				return nil
			}
			if _, err := fmt.Fprintf(c.Response().Writer, "data: %s\n\n", ev.Text); err != nil {
				log.Printf("ERROR: failed to write SSE event: %v", err)
				return nil
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}
