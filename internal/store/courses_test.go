package store

import (
	"testing"

	"lessoncast/internal/models"
)

func TestCreateCourse(t *testing.T) {
	s := newTestStoreWithMigrations(t)

	c := &models.Course{Title: "Intro to Go", Description: "basics"}
	if err := s.CreateCourse(c); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}
	if c.ID == "" {
		t.Fatal("expected ID to be set")
	}
	if c.CreatedAt.IsZero() {
		t.Fatal("expected created_at to be set")
	}
}

func TestGetCourseNotFound(t *testing.T) {
	s := newTestStoreWithMigrations(t)

	_, err := s.GetCourse("missing")
	if err == nil {
		t.Fatal("expected error for non-existent course")
	}
}

func TestListCourses(t *testing.T) {
	s := newTestStoreWithMigrations(t)

	s.CreateCourse(&models.Course{Title: "A"})
	s.CreateCourse(&models.Course{Title: "B"})

	courses, err := s.ListCourses()
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(courses) != 2 {
		t.Fatalf("expected 2 courses, got %d", len(courses))
	}
}

func TestUpdateCourse(t *testing.T) {
	s := newTestStoreWithMigrations(t)

	c := &models.Course{Title: "Old"}
	s.CreateCourse(c)

	c.Title = "New"
	if err := s.UpdateCourse(c); err != nil {
		t.Fatalf("UpdateCourse: %v", err)
	}

	got, _ := s.GetCourse(c.ID)
	if got.Title != "New" {
		t.Fatalf("expected New, got %s", got.Title)
	}
}

func TestDeleteCourseCascadesLessons(t *testing.T) {
	s := newTestStoreWithMigrations(t)

	lesson := createTestLesson(t, s)
	if err := s.DeleteCourse(lesson.CourseID); err != nil {
		t.Fatalf("DeleteCourse: %v", err)
	}
	if _, err := s.GetLesson(lesson.ID); err == nil {
		t.Fatal("expected lesson to be deleted with its course")
	}
}
