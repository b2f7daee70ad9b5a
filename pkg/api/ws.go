package api

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const statusPushInterval = 2 * time.Second

var upgrader = websocket.Upgrader{
	// The settings page is served from this same device, same origin
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleStatusSocket pushes status snapshots to the settings page footer
// until the client goes away
func (s *Server) handleStatusSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Status socket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	// Drain client frames so pings and close messages are processed
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(statusPushInterval)
	defer ticker.Stop()

	for {
		if err := conn.WriteJSON(s.core.GetStatusSnapshot()); err != nil {
			return
		}
		<-ticker.C
	}
}
