package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"lessoncast/internal/models"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, models.ErrKeyExists):
		writeError(w, http.StatusConflict, "stream key already exists")
	case errors.Is(err, models.ErrNoStreamKey):
		writeError(w, http.StatusConflict, "no stream key generated")
	default:
		writeError(w, http.StatusInternalServerError, "internal")
	}
}
