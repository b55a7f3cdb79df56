// Package ws streams live pipeline log events over WebSocket.
package ws

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/xiaot623/devteam/internal/bus"
)

const (
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
	pingInterval = 30 * time.Second
)

// Server handles WebSocket log stream connections.
type Server struct {
	bus      *bus.Bus
	upgrader websocket.Upgrader
}

// NewServer creates a new WebSocket server on the given event bus.
func NewServer(b *bus.Bus) *Server {
	return &Server{
		bus: b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
	}
}

// HandleWebSocket upgrades the connection and streams every event
// published after the upgrade. A connection that falls behind gets gap
// markers from the bus rather than slowing other consumers.
// GET /ws/logs
func (s *Server) HandleWebSocket(c echo.Context) error {
	conn, err := s.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Printf("ERROR: failed to upgrade WebSocket: %v", err)
		return err
	}

	sub := s.bus.Subscribe()

	go s.writePump(conn, sub)
	go s.readPump(conn, sub)

	return nil
}

// readPump drains client frames so close and pong handling work; the log
// stream is one-directional.
func (s *Server) readPump(conn *websocket.Conn, sub *bus.Subscriber) {
	defer func() {
		s.bus.Unsubscribe(sub)
		conn.Close()
	}()

	conn.SetReadLimit(1024)
	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("WARN: WebSocket read error: %v", err)
			}
			return
		}
	}
}

// writePump forwards bus events to the connection as JSON.
func (s *Server) writePump(conn *websocket.Conn, sub *bus.Subscriber) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.bus.Unsubscribe(sub)
		conn.Close()
	}()

	for {
		select {
		case ev, ok := <-sub.Events():
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteJSON(ev); err != nil {
				log.Printf("WARN: failed to write WebSocket event: %v", err)
				return
			}

		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
