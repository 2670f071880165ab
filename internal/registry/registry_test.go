package registry

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"lessoncast/internal/models"
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

func newTestRegistry(t *testing.T) (*Registry, *models.Lesson) {
	t.Helper()
	s := newTestStore(t)
	course := &models.Course{Title: "course"}
	if err := s.CreateCourse(course); err != nil {
		t.Fatal(err)
	}
	lesson := &models.Lesson{CourseID: course.ID, Title: "live", IsLiveStream: true}
	if err := s.CreateLesson(lesson); err != nil {
		t.Fatal(err)
	}
	return New(s, "cdn.example.com"), lesson
}

func TestInfoBeforeGenerateKey(t *testing.T) {
	r, lesson := newTestRegistry(t)

	info, err := r.Info(lesson.ID)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if info.StreamKey != "" {
		t.Fatalf("expected no key, got %q", info.StreamKey)
	}
	if info.Status != models.StreamOffline {
		t.Fatalf("expected offline, got %s", info.Status)
	}
	if info.PlaybackURL != "" {
		t.Fatalf("expected no playback URL without a key, got %q", info.PlaybackURL)
	}
}

func TestGenerateKey(t *testing.T) {
	r, lesson := newTestRegistry(t)

	key, err := r.GenerateKey(lesson.ID)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if len(key) != 32 {
		t.Fatalf("expected 32 hex chars, got %d (%q)", len(key), key)
	}
	for _, c := range key {
		if !strings.ContainsRune("0123456789abcdef", c) {
			t.Fatalf("key is not lowercase hex: %q", key)
		}
	}

	info, _ := r.Info(lesson.ID)
	if info.Status != models.StreamOffline {
		t.Fatalf("expected offline after key generation, got %s", info.Status)
	}
	if info.PlaybackURL != "https://cdn.example.com/hls/"+key+".m3u8" {
		t.Fatalf("unexpected playback URL %q", info.PlaybackURL)
	}
}

func TestGenerateKeyConflict(t *testing.T) {
	r, lesson := newTestRegistry(t)

	first, err := r.GenerateKey(lesson.ID)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}

	_, err = r.GenerateKey(lesson.ID)
	if !errors.Is(err, models.ErrKeyExists) {
		t.Fatalf("expected ErrKeyExists, got %v", err)
	}

	info, _ := r.Info(lesson.ID)
	if info.StreamKey != first {
		t.Fatalf("first key must survive the conflicting call, got %q", info.StreamKey)
	}
}

func TestControlStartThenInfo(t *testing.T) {
	r, lesson := newTestRegistry(t)
	key, _ := r.GenerateKey(lesson.ID)

	status, err := r.Control(lesson.ID, models.ActionStart)
	if err != nil {
		t.Fatalf("Control: %v", err)
	}
	if status != models.StreamStarting {
		t.Fatalf("expected starting, got %s", status)
	}

	info, _ := r.Info(lesson.ID)
	if info.Status != models.StreamStarting {
		t.Fatalf("expected starting, got %s", info.Status)
	}
	if info.StreamKey != key {
		t.Fatal("control must not touch the key")
	}
	if info.ScheduledStart != nil {
		t.Fatal("control must not touch the schedule")
	}
}

func TestControlUnknownAction(t *testing.T) {
	r, lesson := newTestRegistry(t)
	r.GenerateKey(lesson.ID)

	if _, err := r.Control(lesson.ID, "pause"); err == nil {
		t.Fatal("expected error for unknown action")
	}
}

func TestControlNotFound(t *testing.T) {
	r, _ := newTestRegistry(t)

	_, err := r.Control("missing", models.ActionStart)
	if !errors.Is(err, models.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestScheduleEcho(t *testing.T) {
	r, lesson := newTestRegistry(t)

	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	if err := r.Schedule(lesson.ID, start); err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	info, _ := r.Info(lesson.ID)
	if info.ScheduledStart == nil || !info.ScheduledStart.Equal(start) {
		t.Fatalf("expected %v, got %v", start, info.ScheduledStart)
	}
	if info.Status != models.StreamOffline {
		t.Fatalf("schedule must not affect status, got %s", info.Status)
	}
}

func TestSubscribeReceivesTransitions(t *testing.T) {
	r, lesson := newTestRegistry(t)
	r.GenerateKey(lesson.ID)

	ch := r.Subscribe()
	defer r.Unsubscribe(ch)

	if _, err := r.SetStatus(lesson.ID, models.StreamLive); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	select {
	case tr := <-ch:
		if tr.LessonID != lesson.ID || tr.From != models.StreamOffline || tr.To != models.StreamLive {
			t.Fatalf("unexpected transition %+v", tr)
		}
	case <-time.After(time.Second):
		t.Fatal("expected a transition")
	}
}

func TestSetStatusSameValueDoesNotPublish(t *testing.T) {
	r, lesson := newTestRegistry(t)
	r.GenerateKey(lesson.ID)
	r.SetStatus(lesson.ID, models.StreamLive)

	ch := r.Subscribe()
	defer r.Unsubscribe(ch)

	if _, err := r.SetStatus(lesson.ID, models.StreamLive); err != nil {
		t.Fatalf("SetStatus: %v", err)
	}

	select {
	case tr := <-ch:
		t.Fatalf("unexpected transition %+v for unchanged status", tr)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestSetStatusInvalid(t *testing.T) {
	r, lesson := newTestRegistry(t)
	r.GenerateKey(lesson.ID)

	if _, err := r.SetStatus(lesson.ID, "paused"); err == nil {
		t.Fatal("expected error for invalid status value")
	}
}
