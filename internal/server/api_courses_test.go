package server

import (
	"net/http"
	"testing"

	"lessoncast/internal/models"
)

func TestCourseLifecycle(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/courses", models.CourseInput{Title: "Go", Description: "desc"})
	mustStatus(t, w, http.StatusCreated)

	var course models.Course
	decodeBody(t, w, &course)
	if course.ID == "" {
		t.Fatal("expected course ID")
	}

	w = doJSON(t, srv, http.MethodGet, "/api/courses/"+course.ID, nil)
	mustStatus(t, w, http.StatusOK)

	w = doJSON(t, srv, http.MethodPost, "/api/courses/"+course.ID+"/lessons",
		models.LessonInput{Title: "Lesson 1", IsLiveStream: true})
	mustStatus(t, w, http.StatusCreated)

	var lesson models.Lesson
	decodeBody(t, w, &lesson)
	if lesson.StreamStatus != models.StreamOffline {
		t.Fatalf("expected offline, got %s", lesson.StreamStatus)
	}

	w = doJSON(t, srv, http.MethodGet, "/api/courses/"+course.ID+"/lessons", nil)
	mustStatus(t, w, http.StatusOK)

	var lessons []models.Lesson
	decodeBody(t, w, &lessons)
	if len(lessons) != 1 {
		t.Fatalf("expected 1 lesson, got %d", len(lessons))
	}

	w = doJSON(t, srv, http.MethodDelete, "/api/courses/"+course.ID, nil)
	mustStatus(t, w, http.StatusNoContent)

	w = doJSON(t, srv, http.MethodGet, "/api/lessons/"+lesson.ID, nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestCreateCourseValidation(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/courses", models.CourseInput{})
	mustStatus(t, w, http.StatusBadRequest)
}

func TestCreateLessonUnknownCourse(t *testing.T) {
	srv, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/courses/missing/lessons", models.LessonInput{Title: "x"})
	mustStatus(t, w, http.StatusNotFound)
}
