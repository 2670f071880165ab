// Package registry is the single source of truth for per-lesson stream
// state: the ingest key, the lifecycle status, and the advisory
// schedule. The control API mutates through it and the status-query
// surface reads through it; transitions fan out to in-process
// subscribers feeding the push endpoints.
package registry

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"lessoncast/internal/metrics"
	"lessoncast/internal/models"
	"lessoncast/internal/store"
)

type Registry struct {
	store        *store.Store
	playbackHost string

	metrics *metrics.Metrics

	subMu       sync.Mutex
	subscribers map[chan models.StreamTransition]struct{}
}

type Option func(*Registry)

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// New builds a registry deriving playback URLs from playbackHost
// (host[:port], no scheme).
func New(s *store.Store, playbackHost string, opts ...Option) *Registry {
	r := &Registry{
		store:        s,
		playbackHost: playbackHost,
		subscribers:  make(map[chan models.StreamTransition]struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func generateStreamKey() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GenerateKey creates the lesson's stream key. One key per lesson
// lifetime: a second call fails with ErrKeyExists and leaves the stored
// key untouched. The fresh key starts the lesson at offline.
func (r *Registry) GenerateKey(lessonID string) (string, error) {
	key, err := generateStreamKey()
	if err != nil {
		return "", fmt.Errorf("generating stream key: %w", err)
	}
	if err := r.store.SetStreamKey(lessonID, key); err != nil {
		return "", err
	}
	if r.metrics != nil {
		r.metrics.IncKeysGenerated()
	}
	return key, nil
}

// SetStatus overwrites the lesson's status and returns it. No
// transition legality is enforced beyond requiring a key; the operator
// assertion is taken at face value. Writers race last-writer-wins.
func (r *Registry) SetStatus(lessonID string, status models.StreamStatus) (models.StreamStatus, error) {
	if !status.Valid() {
		return "", fmt.Errorf("invalid stream status %q", status)
	}
	prev, err := r.store.SetStreamStatus(lessonID, status)
	if err != nil {
		return "", err
	}
	if prev != status {
		if r.metrics != nil {
			r.metrics.IncTransition(string(status))
		}
		r.publish(models.StreamTransition{
			LessonID: lessonID,
			From:     prev,
			To:       status,
			At:       time.Now().UTC(),
		})
	}
	return status, nil
}

// Control maps the instructor's two-valued intent onto a status write.
func (r *Registry) Control(lessonID string, action models.ControlAction) (models.StreamStatus, error) {
	status, ok := action.Status()
	if !ok {
		return "", fmt.Errorf("unknown control action %q", action)
	}
	return r.SetStatus(lessonID, status)
}

// Schedule records the advisory start time. Purely informational; it
// never drives a transition.
func (r *Registry) Schedule(lessonID string, start time.Time) error {
	return r.store.SetScheduledStart(lessonID, start)
}

// Info returns the current stream snapshot. The playback URL is derived
// from the key and the playback-host convention, never stored.
func (r *Registry) Info(lessonID string) (models.StreamInfo, error) {
	lesson, err := r.store.GetLesson(lessonID)
	if err != nil {
		return models.StreamInfo{}, err
	}
	info := models.StreamInfo{
		LessonID:       lesson.ID,
		StreamKey:      lesson.StreamKey,
		Status:         lesson.StreamStatus,
		ScheduledStart: lesson.ScheduledStart,
	}
	if lesson.StreamKey != "" {
		info.PlaybackURL = r.PlaybackURL(lesson.StreamKey)
	}
	return info, nil
}

// PlaybackURL builds the HLS manifest URL for a stream key. Clients
// append their own cache-busting parameter on every load.
func (r *Registry) PlaybackURL(streamKey string) string {
	return fmt.Sprintf("https://%s/hls/%s.m3u8", r.playbackHost, streamKey)
}

// IngestURL is the RTMP push endpoint operators configure in their
// broadcasting software, paired with the stream key out-of-band.
func (r *Registry) IngestURL() string {
	return fmt.Sprintf("rtmp://%s/live", r.playbackHost)
}

// CountLive reports how many lessons currently assert live status.
func (r *Registry) CountLive() (int, error) {
	courses, err := r.store.ListCourses()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, c := range courses {
		lessons, err := r.store.ListLessons(c.ID)
		if err != nil {
			return 0, err
		}
		for _, l := range lessons {
			if l.StreamStatus == models.StreamLive {
				n++
			}
		}
	}
	return n, nil
}

// Subscribe returns a channel of status transitions across all lessons.
// Slow subscribers miss updates rather than block writers.
func (r *Registry) Subscribe() chan models.StreamTransition {
	ch := make(chan models.StreamTransition, 16)
	r.subMu.Lock()
	r.subscribers[ch] = struct{}{}
	r.subMu.Unlock()
	return ch
}

func (r *Registry) Unsubscribe(ch chan models.StreamTransition) {
	r.subMu.Lock()
	_, exists := r.subscribers[ch]
	delete(r.subscribers, ch)
	r.subMu.Unlock()
	if exists {
		close(ch)
	}
}

func (r *Registry) publish(tr models.StreamTransition) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for ch := range r.subscribers {
		select {
		case ch <- tr:
		default:
		}
	}
}
