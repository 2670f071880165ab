package server

import (
	"bufio"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"lessoncast/internal/models"
)

// sseEvents opens the event stream and forwards each data payload on a
// channel. The stream stays open until the test finishes.
func sseEvents(t *testing.T, url string) <-chan []byte {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected text/event-stream, got %q", ct)
	}

	events := make(chan []byte, 8)
	go func() {
		defer close(events)
		scanner := bufio.NewScanner(resp.Body)
		for scanner.Scan() {
			line := scanner.Bytes()
			if data, ok := bytes.CutPrefix(line, []byte("data: ")); ok {
				events <- append([]byte(nil), data...)
			}
		}
	}()
	return events
}

func waitEvent(t *testing.T, events <-chan []byte) []byte {
	t.Helper()
	select {
	case data, ok := <-events:
		if !ok {
			t.Fatal("event stream closed")
		}
		return data
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return nil
}

func decodeInfo(t *testing.T, data []byte) models.StreamInfo {
	t.Helper()
	if bytes.Contains(data, []byte("stream_key")) {
		t.Fatalf("raw stream key leaked into push payload: %s", data)
	}
	var info models.StreamInfo
	if err := json.Unmarshal(data, &info); err != nil {
		t.Fatalf("decoding push payload: %v", err)
	}
	return info
}

func TestStreamEventsSSE(t *testing.T) {
	srv, s := newTestServer(t)
	lesson := createTestLesson(t, s)
	mustStatus(t, doJSON(t, srv, "POST", "/api/lessons/"+lesson.ID+"/stream/generate-key", nil), http.StatusCreated)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	events := sseEvents(t, ts.URL+"/api/lessons/"+lesson.ID+"/stream/events")

	snap := decodeInfo(t, waitEvent(t, events))
	if snap.Status != models.StreamOffline {
		t.Fatalf("expected offline snapshot, got %q", snap.Status)
	}
	if snap.LessonID != lesson.ID {
		t.Fatalf("snapshot for wrong lesson: %q", snap.LessonID)
	}

	mustStatus(t, doJSON(t, srv, "POST", "/api/lessons/"+lesson.ID+"/stream/control",
		map[string]string{"action": "start"}), http.StatusOK)

	ev := decodeInfo(t, waitEvent(t, events))
	if ev.Status != models.StreamStarting {
		t.Fatalf("expected starting event, got %q", ev.Status)
	}
}

func TestStreamEventsUnknownLesson(t *testing.T) {
	srv, _ := newTestServer(t)
	w := doJSON(t, srv, "GET", "/api/lessons/nope/stream/events", nil)
	mustStatus(t, w, http.StatusNotFound)
}

func TestStreamWS(t *testing.T) {
	srv, s := newTestServer(t)
	lesson := createTestLesson(t, s)
	mustStatus(t, doJSON(t, srv, "POST", "/api/lessons/"+lesson.ID+"/stream/generate-key", nil), http.StatusCreated)

	ts := httptest.NewServer(srv)
	t.Cleanup(ts.Close)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/api/lessons/" + lesson.ID + "/stream/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { conn.Close() })

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	snap := decodeInfo(t, msg)
	if snap.Status != models.StreamOffline {
		t.Fatalf("expected offline snapshot, got %q", snap.Status)
	}

	mustStatus(t, doJSON(t, srv, "POST", "/api/lessons/"+lesson.ID+"/stream/control",
		map[string]string{"action": "start"}), http.StatusOK)

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, msg, err = conn.ReadMessage()
	if err != nil {
		t.Fatal(err)
	}
	ev := decodeInfo(t, msg)
	if ev.Status != models.StreamStarting {
		t.Fatalf("expected starting event, got %q", ev.Status)
	}
}
