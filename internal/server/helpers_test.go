package server

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"lessoncast/internal/models"
	"lessoncast/internal/registry"
	"lessoncast/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	_, f, _, _ := runtime.Caller(0)
	dir := filepath.Join(filepath.Dir(f), "..", "..", "migrations")
	if err := s.Migrate(os.DirFS(dir)); err != nil {
		t.Fatal(err)
	}
	return s
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *store.Store) {
	t.Helper()
	s := newTestStore(t)
	reg := registry.New(s, "cdn.example.com")
	return NewServer(s, reg, opts...), s
}

func createTestLesson(t *testing.T, s *store.Store) *models.Lesson {
	t.Helper()
	course := &models.Course{Title: "Go course"}
	if err := s.CreateCourse(course); err != nil {
		t.Fatal(err)
	}
	lesson := &models.Lesson{CourseID: course.ID, Title: "Live session", IsLiveStream: true}
	if err := s.CreateLesson(lesson); err != nil {
		t.Fatal(err)
	}
	return lesson
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
}

func mustStatus(t *testing.T, w *httptest.ResponseRecorder, want int) {
	t.Helper()
	if w.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, w.Code, w.Body.String())
	}
}
