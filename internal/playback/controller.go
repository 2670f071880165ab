package playback

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"lessoncast/internal/models"
)

// State tracks the controller through its lifetime.
type State int

const (
	StateIdle State = iota
	StateConnecting
	StatePlaying
	StateStale
	StateDisposed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StatePlaying:
		return "playing"
	case StateStale:
		return "stale"
	case StateDisposed:
		return "disposed"
	default:
		return "unknown"
	}
}

var (
	ErrDisposed = errors.New("playback session disposed")
	ErrNotLive  = errors.New("stream is not live")
)

const (
	defaultKeepAliveInterval = 30 * time.Second
	defaultRetryAttempts     = 2
	defaultRetryBackoff      = 500 * time.Millisecond
)

// Controller reacts to stream status updates by driving a Player. It
// satisfies poller.Listener, so it can sit directly behind a status
// poller or a push subscription.
type Controller struct {
	mu         sync.Mutex
	newPlayer  func() Player
	player     Player
	state      State
	lastStatus models.StreamStatus
	lastURL    string
	err        error

	now               func() time.Time
	sleep             func(time.Duration)
	keepAliveInterval time.Duration
	retryAttempts     int
	retryBackoff      time.Duration

	kaStop chan struct{}
}

type Option func(*Controller)

// WithClock overrides the time source used for cache busters.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithKeepAliveInterval overrides the live re-seek interval.
func WithKeepAliveInterval(d time.Duration) Option {
	return func(c *Controller) {
		c.keepAliveInterval = d
	}
}

// WithRetry sets how many times a failed connect is retried before the
// session goes stale, and the pause between attempts.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Controller) {
		c.retryAttempts = attempts
		c.retryBackoff = backoff
	}
}

// NewController builds a controller around a player factory. The
// factory runs at most once per session; later reconnects reuse the
// instance.
func NewController(newPlayer func() Player, opts ...Option) *Controller {
	c := &Controller{
		newPlayer:         newPlayer,
		state:             StateIdle,
		now:               time.Now,
		sleep:             time.Sleep,
		keepAliveInterval: defaultKeepAliveInterval,
		retryAttempts:     defaultRetryAttempts,
		retryBackoff:      defaultRetryBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StatusChanged applies a stream status update. Updates arriving after
// Close are dropped.
func (c *Controller) StatusChanged(prev models.StreamStatus, info models.StreamInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisposed {
		return
	}
	c.lastStatus = info.Status

	if info.Status == models.StreamLive {
		if c.state == StatePlaying {
			// Already attached to this stream.
			return
		}
		c.lastURL = info.PlaybackURL
		c.connectLocked()
		return
	}

	// Not live. Blank the source so the player stops hammering a dead
	// manifest, but keep the instance for the next live transition.
	c.stopKeepAliveLocked()
	if c.player != nil {
		c.player.Reset()
		c.state = StateStale
	}
}

// Reload forces a fresh connect attempt, for a viewer-facing retry
// button. It only makes sense while the stream is reported live.
func (c *Controller) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisposed {
		return ErrDisposed
	}
	if c.lastStatus != models.StreamLive {
		return ErrNotLive
	}
	c.connectLocked()
	return c.err
}

// Close tears the session down. It is safe to call more than once;
// after the first call every status update is ignored.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == StateDisposed {
		return
	}
	c.stopKeepAliveLocked()
	if c.player != nil {
		c.player.Dispose()
		c.player = nil
	}
	c.state = StateDisposed
}

// State reports the current session state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Err reports the error from the most recent connect attempt, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// LastStatus reports the most recently observed stream status.
func (c *Controller) LastStatus() models.StreamStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastStatus
}

// connectLocked runs a connect cycle: load a cache-busted manifest URL
// and start playback, retrying a bounded number of times. Caller holds
// c.mu.
func (c *Controller) connectLocked() {
	if c.lastURL == "" {
		c.err = errors.New("no playback URL for stream")
		c.state = StateStale
		return
	}
	if c.player == nil {
		c.player = c.newPlayer()
	}
	c.stopKeepAliveLocked()
	c.state = StateConnecting

	var err error
	for attempt := 0; ; attempt++ {
		err = c.loadAndPlay(c.cacheBusted(c.lastURL))
		if err == nil {
			break
		}
		if attempt >= c.retryAttempts {
			break
		}
		// Drop the lock across the backoff so Close and status updates
		// are not stuck behind a failing connect.
		c.mu.Unlock()
		c.sleep(c.retryBackoff)
		c.mu.Lock()
		if c.state != StateConnecting {
			// Closed or superseded while we slept.
			return
		}
	}
	if err != nil {
		c.err = fmt.Errorf("stream not available: %w", err)
		c.player.Reset()
		c.state = StateStale
		return
	}
	c.err = nil
	c.state = StatePlaying
	c.startKeepAliveLocked()
}

func (c *Controller) loadAndPlay(src string) error {
	if err := c.player.Load(src); err != nil {
		return err
	}
	return c.player.Play()
}

// cacheBusted appends a timestamp query parameter so CDNs and player
// caches cannot serve the manifest of a previous broadcast under the
// same key.
func (c *Controller) cacheBusted(src string) string {
	sep := "?"
	if strings.Contains(src, "?") {
		sep = "&"
	}
	return src + sep + "t=" + strconv.FormatInt(c.now().Unix(), 10)
}

func (c *Controller) startKeepAliveLocked() {
	if c.kaStop != nil {
		return
	}
	stop := make(chan struct{})
	c.kaStop = stop
	go c.keepAlive(stop)
}

func (c *Controller) stopKeepAliveLocked() {
	if c.kaStop != nil {
		close(c.kaStop)
		c.kaStop = nil
	}
}

func (c *Controller) keepAlive(stop chan struct{}) {
	ticker := time.NewTicker(c.keepAliveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.nudge()
		}
	}
}

// nudge re-seeks to the current position. Some HLS players stall on
// long-running live streams; a periodic seek-in-place unsticks them
// without a visible glitch.
func (c *Controller) nudge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != StatePlaying || c.player == nil {
		return
	}
	pos := c.player.CurrentTime()
	if pos == 0 {
		// Playback never advanced; seeking would not help.
		return
	}
	c.player.Seek(pos)
}
