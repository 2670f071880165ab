package models

import (
	"errors"
	"strings"
	"time"
)

var ErrNotFound = errors.New("not found")

// ErrKeyExists is returned when a stream key is requested for a lesson
// that already has one. Keys are never silently replaced: overwriting
// would invalidate the credentials of an in-progress broadcast.
var ErrKeyExists = errors.New("stream key already exists")

// ErrNoStreamKey is returned for stream operations on a lesson that has
// never had a key generated. Status transitions are meaningless without
// an ingest credential to correlate them with.
var ErrNoStreamKey = errors.New("no stream key generated")

type StreamStatus string

const (
	StreamOffline  StreamStatus = "offline"
	StreamStarting StreamStatus = "starting"
	StreamLive     StreamStatus = "live"
	StreamEnded    StreamStatus = "ended"
)

func (st StreamStatus) Valid() bool {
	switch st {
	case StreamOffline, StreamStarting, StreamLive, StreamEnded:
		return true
	}
	return false
}

// ControlAction is the two-valued instructor intent accepted by the
// stream control endpoint.
type ControlAction string

const (
	ActionStart ControlAction = "start"
	ActionEnd   ControlAction = "end"
)

// Status maps the action onto the status it requests. The second return
// is false for unknown actions.
func (a ControlAction) Status() (StreamStatus, bool) {
	switch a {
	case ActionStart:
		return StreamStarting, true
	case ActionEnd:
		return StreamEnded, true
	}
	return "", false
}

type Course struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (c *Course) Validate() error {
	if c.Title == "" {
		return errors.New("title is required")
	}
	return nil
}

// Lesson is a unit of course content addressed both by its stable ID
// and positionally as (course, module index, lesson index). The stream
// key is an ingest credential and is never serialized; handlers that
// may show it use MaskedStreamKey or the auth-guarded key endpoint.
type Lesson struct {
	ID             string       `json:"id"`
	CourseID       string       `json:"course_id"`
	ModuleIndex    int          `json:"module_index"`
	LessonIndex    int          `json:"lesson_index"`
	Title          string       `json:"title"`
	IsLiveStream   bool         `json:"is_live_stream"`
	StreamKey      string       `json:"-"`
	StreamStatus   StreamStatus `json:"stream_status"`
	ScheduledStart *time.Time   `json:"scheduled_start,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

func (l *Lesson) Validate() error {
	if l.CourseID == "" {
		return errors.New("course_id is required")
	}
	if l.Title == "" {
		return errors.New("title is required")
	}
	if l.ModuleIndex < 0 || l.LessonIndex < 0 {
		return errors.New("module_index and lesson_index must be non-negative")
	}
	return nil
}

// MaskedStreamKey returns the key with all but the last four characters
// replaced, suitable for display.
func (l *Lesson) MaskedStreamKey() string {
	k := l.StreamKey
	if k == "" {
		return ""
	}
	if len(k) <= 4 {
		return strings.Repeat("*", len(k))
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}

type LessonInput struct {
	ModuleIndex  int    `json:"module_index"`
	LessonIndex  int    `json:"lesson_index"`
	Title        string `json:"title"`
	IsLiveStream bool   `json:"is_live_stream"`
}

func (in *LessonInput) ToLesson(courseID string) *Lesson {
	return &Lesson{
		CourseID:     courseID,
		ModuleIndex:  in.ModuleIndex,
		LessonIndex:  in.LessonIndex,
		Title:        in.Title,
		IsLiveStream: in.IsLiveStream,
		StreamStatus: StreamOffline,
	}
}

type CourseInput struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (in *CourseInput) ToCourse() *Course {
	return &Course{Title: in.Title, Description: in.Description}
}

// StreamInfo is the viewer-facing snapshot of a lesson's stream. The
// raw key is carried internally but excluded from serialization.
type StreamInfo struct {
	LessonID       string       `json:"lesson_id"`
	StreamKey      string       `json:"-"`
	Status         StreamStatus `json:"stream_status"`
	ScheduledStart *time.Time   `json:"scheduled_start,omitempty"`
	PlaybackURL    string       `json:"playback_url,omitempty"`
}

// StreamTransition records an observed status change on a lesson.
type StreamTransition struct {
	LessonID string       `json:"lesson_id"`
	From     StreamStatus `json:"from"`
	To       StreamStatus `json:"to"`
	At       time.Time    `json:"at"`
}
