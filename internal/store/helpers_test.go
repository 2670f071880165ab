package store

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"lessoncast/internal/models"
)

func migrationsDir() string {
	_, f, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(f), "..", "..", "migrations")
}

func newTestStoreWithMigrations(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("New(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	dir := migrationsDir()
	if _, err := os.Stat(dir); err != nil {
		t.Fatalf("migrations dir not found: %v", err)
	}
	if err := s.Migrate(os.DirFS(dir)); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	return s
}

func createTestLesson(t *testing.T, s *Store) *models.Lesson {
	t.Helper()
	course := &models.Course{Title: "Go from scratch"}
	if err := s.CreateCourse(course); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	lesson := &models.Lesson{
		CourseID:     course.ID,
		ModuleIndex:  0,
		LessonIndex:  0,
		Title:        "Live kickoff",
		IsLiveStream: true,
	}
	if err := s.CreateLesson(lesson); err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}
	return lesson
}
