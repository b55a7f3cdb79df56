// Package main provides a simple CLI client that tails the live log
// stream over WebSocket.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"github.com/gorilla/websocket"

	"github.com/xiaot623/devteam/internal/domain"
)

func main() {
	addr := flag.String("addr", "ws://localhost:5001/ws/logs", "WebSocket log stream address")
	showHeartbeats := flag.Bool("heartbeats", false, "include heartbeat events in the output")
	flag.Parse()

	conn, _, err := websocket.DefaultDialer.Dial(*addr, nil)
	if err != nil {
		log.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				log.Printf("read: %v", err)
				return
			}

			var ev domain.LogEvent
			if err := json.Unmarshal(data, &ev); err != nil {
				log.Printf("unmarshal: %v", err)
				continue
			}
			// Heartbeats prove the stream is alive but are noise in a
			// transcript.
			if ev.IsHeartbeat() && !*showHeartbeats {
				continue
			}

			ts := time.UnixMilli(ev.Ts).Format("15:04:05")
			fmt.Printf("[%s] %-13s %s\n", ts, ev.Kind, ev.Text)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("interrupted, closing connection")
		conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}
