package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"lessoncast/internal/models"
)

type contextKey string

const lessonIDContextKey contextKey = "lessonID"

// resolvePositional maps (course, moduleIndex, lessonIndex) routes onto
// the lesson's stable ID. Positional addresses shift under module
// edits; everything downstream of this middleware works on the ID.
func (s *Server) resolvePositional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		moduleIndex, err := strconv.Atoi(chi.URLParam(r, "moduleIndex"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid module index")
			return
		}
		lessonIndex, err := strconv.Atoi(chi.URLParam(r, "lessonIndex"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid lesson index")
			return
		}
		lesson, err := s.store.ResolveLesson(chi.URLParam(r, "courseID"), moduleIndex, lessonIndex)
		if err != nil {
			writeStoreError(w, err)
			return
		}
		ctx := context.WithValue(r.Context(), lessonIDContextKey, lesson.ID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func lessonID(r *http.Request) string {
	if id, ok := r.Context().Value(lessonIDContextKey).(string); ok {
		return id
	}
	return chi.URLParam(r, "id")
}

func (s *Server) handleListLessons(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if _, err := s.store.GetCourse(courseID); err != nil {
		writeStoreError(w, err)
		return
	}
	lessons, err := s.store.ListLessons(courseID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal")
		return
	}
	writeJSON(w, http.StatusOK, lessons)
}

func (s *Server) handleCreateLesson(w http.ResponseWriter, r *http.Request) {
	courseID := chi.URLParam(r, "courseID")
	if _, err := s.store.GetCourse(courseID); err != nil {
		writeStoreError(w, err)
		return
	}
	var input models.LessonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	lesson := input.ToLesson(courseID)
	if err := lesson.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.CreateLesson(lesson); err != nil {
		writeError(w, http.StatusBadRequest, "lesson position already taken")
		return
	}
	writeJSON(w, http.StatusCreated, lesson)
}

func (s *Server) handleGetLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.store.GetLesson(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleUpdateLesson(w http.ResponseWriter, r *http.Request) {
	lesson, err := s.store.GetLesson(chi.URLParam(r, "id"))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	var input models.LessonInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	lesson.ModuleIndex = input.ModuleIndex
	lesson.LessonIndex = input.LessonIndex
	lesson.Title = input.Title
	lesson.IsLiveStream = input.IsLiveStream
	if err := lesson.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.store.UpdateLesson(lesson); err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lesson)
}

func (s *Server) handleDeleteLesson(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteLesson(chi.URLParam(r, "id")); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
