package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// handleStreamEvents pushes status snapshots for one lesson over SSE.
// The first event is the current state; subsequent events fire on every
// transition. Read-only with respect to status, like the polling path.
func (s *Server) handleStreamEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

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

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	if data, err := json.Marshal(info); err == nil {
		fmt.Fprintf(w, "data: %s\n\n", data)
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
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
			data, err := json.Marshal(info)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
	}
}
