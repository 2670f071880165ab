// Package poller implements the status polling loop: the only path by
// which a viewer learns of stream status changes after initial load.
// Staleness is bounded by the poll interval; transitions reach the
// listener only when the observed status actually changed.
package poller

import (
	"context"
	"log"
	"sync"
	"time"

	"lessoncast/internal/models"
)

// StatusSource is where the poller reads stream state from. The API
// client implements it; tests substitute fakes.
type StatusSource interface {
	Info(ctx context.Context, lessonID string) (models.StreamInfo, error)
}

// Listener receives observed status transitions. Implementations must
// tolerate delivery from the poll goroutine.
type Listener interface {
	StatusChanged(prev models.StreamStatus, info models.StreamInfo)
}

type Poller struct {
	source   StatusSource
	lessonID string
	interval time.Duration
	listener Listener

	mu      sync.Mutex
	last    models.StreamStatus
	known   bool
	stopped bool

	startOnce sync.Once
	cancel    context.CancelFunc
	done      chan struct{}

	triggerPoll chan struct{}
}

type Option func(*Poller)

func WithListener(l Listener) Option {
	return func(p *Poller) { p.listener = l }
}

func New(source StatusSource, lessonID string, interval time.Duration, opts ...Option) *Poller {
	p := &Poller{
		source:   source,
		lessonID: lessonID,
		interval: interval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Poller) Start(ctx context.Context) {
	p.startOnce.Do(func() {
		ctx, p.cancel = context.WithCancel(ctx)
		p.done = make(chan struct{})
		go p.run(ctx)
	})
}

// Stop cancels the loop and waits for it to exit. After Stop returns no
// listener call is in flight and none will follow; a tick raced with
// teardown is dropped silently.
func (p *Poller) Stop() {
	if p.cancel != nil && p.done != nil {
		p.mu.Lock()
		p.stopped = true
		p.mu.Unlock()
		p.cancel()
		<-p.done
	}
}

// Run blocks until ctx is cancelled. Convenience for errgroup callers.
func (p *Poller) Run(ctx context.Context) {
	p.Start(ctx)
	<-ctx.Done()
	p.Stop()
}

// Last returns the most recently observed status; the second return is
// false before the first successful poll.
func (p *Poller) Last() (models.StreamStatus, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last, p.known
}

func (p *Poller) run(ctx context.Context) {
	defer close(p.done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.poll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		case <-p.triggerPoll:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	info, err := p.source.Info(ctx, p.lessonID)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("polling lesson %s: %v", p.lessonID, err)
		}
		// Keep the last known status; a failed poll is not a transition.
		return
	}

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	prev, known := p.last, p.known
	changed := !known || info.Status != prev
	p.last = info.Status
	p.known = true
	p.mu.Unlock()

	// Unchanged status must not reach the listener: redundant player
	// operations are exactly what the change check exists to avoid.
	if changed && p.listener != nil {
		p.listener.StatusChanged(prev, info)
	}
}
