package server

import (
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const (
	wsWriteTimeout = 5 * time.Second
	wsPingInterval = 30 * time.Second
)

// handleStreamWS is the websocket mirror of the SSE endpoint: same
// per-lesson status snapshots, for clients that want a bidirectional
// transport with ping/pong keepalive.
func (s *Server) handleStreamWS(w http.ResponseWriter, r *http.Request) {
	id := lessonID(r)

	// Subscribe before reading the snapshot so a transition landing in
	// between is delivered rather than lost.
	ch := s.registry.Subscribe()
	defer s.registry.Unsubscribe(ch)

	info, err := s.registry.Info(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			if s.corsOrigin == "" {
				return true
			}
			return r.Header.Get("Origin") == s.corsOrigin
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("ws upgrade for lesson %s: %v", id, err)
		return
	}
	defer conn.Close()

	// Reader goroutine: we never expect client messages, but reading is
	// what surfaces close frames and pong responses.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	if err := conn.WriteJSON(info); err != nil {
		return
	}

	pingTicker := time.NewTicker(wsPingInterval)
	defer pingTicker.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-closed:
			return
		case <-pingTicker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteTimeout)); err != nil {
				return
			}
		case tr, ok := <-ch:
			if !ok {
				return
			}
			if tr.LessonID != id {
				continue
			}
			info, err := s.registry.Info(id)
			if err != nil {
				continue
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(info); err != nil {
				return
			}
		}
	}
}
