package main

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/unklstewy/aero-scope/internal/logging"
	"github.com/unklstewy/aero-scope/internal/stats"
	"github.com/unklstewy/aero-scope/pkg/flight"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

const wsWriteTimeout = 10 * time.Second

// wsMessage is the frame pushed to connected clients after every refresh.
type wsMessage struct {
	Type       string            `json:"type"`
	Flights    []flight.Record   `json:"flights,omitempty"`
	Statistics *stats.Statistics `json:"statistics,omitempty"`
	Error      string            `json:"error,omitempty"`
	LastUpdate string            `json:"lastUpdate,omitempty"`
}

// handleWebSocket streams tracker updates. The initial frame carries the
// current snapshot so new clients don't wait for the next refresh.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	log := logging.Component("websocket")

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("upgrade failed")
		return
	}
	defer conn.Close()

	initial := wsMessage{
		Type:       "snapshot",
		Flights:    s.tracker.Flights(),
		Statistics: s.tracker.Statistics(),
		LastUpdate: s.tracker.LastUpdate().Format(time.RFC3339),
	}
	if err := writeMessage(conn, initial); err != nil {
		return
	}

	// Drain client frames so control messages are processed and closed
	// connections are detected.
	clientGone := make(chan struct{})
	go func() {
		defer close(clientGone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	updates := s.tracker.Subscribe()
	defer s.tracker.Unsubscribe(updates)
	for {
		select {
		case <-clientGone:
			return
		case <-r.Context().Done():
			return
		case u := <-updates:
			msg := wsMessage{
				Type:       "update",
				Flights:    u.Flights,
				Statistics: u.Statistics,
				LastUpdate: u.LastUpdate.Format(time.RFC3339),
			}
			if u.Err != nil {
				msg.Error = u.Err.Error()
			}
			if err := writeMessage(conn, msg); err != nil {
				log.Debug().Err(err).Msg("client write failed")
				return
			}
		}
	}
}

func writeMessage(conn *websocket.Conn, msg wsMessage) error {
	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteJSON(msg)
}
