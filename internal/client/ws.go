package client

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"lessoncast/internal/models"
)

// SubscribeStatus opens a websocket subscription for a lesson's status
// snapshots and keeps it alive until ctx is cancelled, reconnecting
// with exponential backoff on drops. The returned channel closes when
// ctx ends.
func (c *Client) SubscribeStatus(ctx context.Context, lessonID string) <-chan models.StreamInfo {
	ch := make(chan models.StreamInfo, 16)
	go c.wsLoop(ctx, lessonID, ch)
	return ch
}

func (c *Client) wsLoop(ctx context.Context, lessonID string, ch chan<- models.StreamInfo) {
	defer close(ch)
	backoff := time.Second

	for {
		err := c.wsConnect(ctx, lessonID, ch)
		if ctx.Err() != nil {
			return
		}
		if err != nil {
			log.Printf("status ws for lesson %s: %v", lessonID, err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff = min(backoff*2, 30*time.Second)
		}
	}
}

func (c *Client) wsConnect(ctx context.Context, lessonID string, ch chan<- models.StreamInfo) error {
	wsURL := strings.Replace(c.baseURL, "https://", "wss://", 1)
	wsURL = strings.Replace(wsURL, "http://", "ws://", 1)
	wsURL += "/api/lessons/" + lessonID + "/stream/ws"

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		return err
	}
	defer conn.Close()

	// Close the connection on cancellation so the read loop below
	// unblocks even when the server is quiet.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var info models.StreamInfo
		if err := json.Unmarshal(msg, &info); err != nil {
			log.Printf("status ws for lesson %s: bad payload: %v", lessonID, err)
			continue
		}
		select {
		case ch <- info:
		case <-ctx.Done():
			return nil
		}
	}
}
