package server

import (
	"encoding/json"
	"net/http"
	"time"

	"lessoncast/internal/models"
)

func (s *Server) handleStreamInfo(w http.ResponseWriter, r *http.Request) {
	info, err := s.registry.Info(lessonID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

type generateKeyResult struct {
	StreamKey string `json:"stream_key"`
	IngestURL string `json:"ingest_url"`
}

func (s *Server) handleGenerateKey(w http.ResponseWriter, r *http.Request) {
	key, err := s.registry.GenerateKey(lessonID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, generateKeyResult{
		StreamKey: key,
		IngestURL: s.registry.IngestURL(),
	})
}

type controlInput struct {
	Action models.ControlAction `json:"action"`
}

type controlResult struct {
	StreamStatus models.StreamStatus `json:"stream_status"`
}

func (s *Server) handleStreamControl(w http.ResponseWriter, r *http.Request) {
	var input controlInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if _, ok := input.Action.Status(); !ok {
		writeError(w, http.StatusBadRequest, "action must be start or end")
		return
	}
	status, err := s.registry.Control(lessonID(r), input.Action)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, controlResult{StreamStatus: status})
}

type scheduleInput struct {
	ScheduledStart time.Time `json:"scheduled_start"`
}

type scheduleResult struct {
	ScheduledStart time.Time `json:"scheduled_start"`
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	var input scheduleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if input.ScheduledStart.IsZero() {
		writeError(w, http.StatusBadRequest, "scheduled_start is required")
		return
	}
	id := lessonID(r)
	if err := s.registry.Schedule(id, input.ScheduledStart); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, scheduleResult{ScheduledStart: input.ScheduledStart.UTC()})
}

type streamKeyResult struct {
	StreamKey string `json:"stream_key"`
	MaskedKey string `json:"masked_key"`
	IngestURL string `json:"ingest_url"`
}

// handleStreamKey is the only place the raw key leaves the server, and
// it sits behind the instructor guard. Viewer surfaces get at most the
// masked form.
func (s *Server) handleStreamKey(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.store.GetLesson(lessonID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if lesson.StreamKey == "" {
		writeError(w, http.StatusNotFound, "no stream key generated")
		return
	}
	writeJSON(w, http.StatusOK, streamKeyResult{
		StreamKey: lesson.StreamKey,
		MaskedKey: lesson.MaskedStreamKey(),
		IngestURL: s.registry.IngestURL(),
	})
}
