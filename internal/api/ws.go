package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const writeWait = 5 * time.Second

var wsUpgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleClockFeed streams every clock tick to the client as JSON until the
// client goes away.
func (s *Server) handleClockFeed(w http.ResponseWriter, r *http.Request) {
	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	sub := s.clock.Subscribe()
	defer s.clock.Unsubscribe(sub)
	s.log.Debug("clock feed connected", zap.String("remote", r.RemoteAddr))

	// Reads only detect the close; the feed is one-way.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	if err := s.send(conn, s.clock.Last()); err != nil {
		return
	}
	for {
		select {
		case <-gone:
			return
		case <-r.Context().Done():
			return
		case tick := <-sub.C:
			if err := s.send(conn, tick); err != nil {
				s.log.Debug("clock feed closed", zap.Error(err))
				return
			}
		}
	}
}

func (s *Server) send(conn *websocket.Conn, v any) error {
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(v)
}
