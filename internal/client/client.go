// Package client is the viewer-side API client: the status source the
// polling loop reads from, plus an optional websocket subscription for
// push updates.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/time/rate"

	"lessoncast/internal/httputil"
	"lessoncast/internal/models"
)

type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

type Option func(*Client)

// WithRateLimit overrides the default request rate. Polling clients
// share one limiter so aggressive poll intervals cannot hammer the API.
func WithRateLimit(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	if err := httputil.ValidateBaseURL(baseURL); err != nil {
		return nil, err
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httputil.NewClient(),
		limiter: rate.NewLimiter(5, 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer httputil.DrainBody(resp)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return models.ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, httputil.MaxResponseBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

// Info fetches the current stream snapshot for a lesson. This is the
// poll the Status Polling Loop repeats; staleness is bounded by the
// caller's interval.
func (c *Client) Info(ctx context.Context, lessonID string) (models.StreamInfo, error) {
	var info models.StreamInfo
	if err := c.get(ctx, "/api/lessons/"+lessonID+"/stream/info", &info); err != nil {
		return models.StreamInfo{}, err
	}
	return info, nil
}
