package server

import (
	"net/http"

	log "github.com/sirupsen/logrus"
)

// handleWatch upgrades to a websocket and streams one JSON tick stat
// per simulation tick until the client goes away.
func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("watch: websocket upgrade: %v", err)
		return
	}
	defer conn.Close()

	stats, unsub := s.runner.Subscribe()
	defer unsub()

	// Reader loop only to detect the client closing.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	// Send the current snapshot first so the client can draw
	// immediately.
	if err := conn.WriteJSON(s.runner.State()); err != nil {
		log.Printf("watch: write snapshot: %v", err)
		return
	}

	for {
		select {
		case stat := <-stats:
			if err := conn.WriteJSON(stat); err != nil {
				log.Printf("watch: write stat: %v", err)
				return
			}
		case <-closed:
			return
		}
	}
}
