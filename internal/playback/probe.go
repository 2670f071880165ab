package playback

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"lessoncast/internal/httputil"
)

// ManifestProbe is a headless Player that verifies a stream is
// reachable by fetching its manifest. It simulates position by wall
// clock, which is enough for the controller's keep-alive logic. Used
// by the watcher command where no real media pipeline exists.
type ManifestProbe struct {
	mu        sync.Mutex
	http      *http.Client
	src       string
	playing   bool
	startedAt time.Time
	basePos   float64
}

func NewManifestProbe() *ManifestProbe {
	return &ManifestProbe{http: httputil.NewClient()}
}

func (p *ManifestProbe) Load(src string) error {
	resp, err := p.http.Get(src)
	if err != nil {
		return fmt.Errorf("fetching manifest: %w", err)
	}
	defer httputil.DrainBody(resp)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("manifest returned status %d", resp.StatusCode)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = src
	p.playing = false
	p.basePos = 0
	return nil
}

func (p *ManifestProbe) Play() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.src == "" {
		return fmt.Errorf("no source loaded")
	}
	p.playing = true
	p.startedAt = time.Now()
	return nil
}

func (p *ManifestProbe) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.src = ""
	p.playing = false
	p.basePos = 0
}

func (p *ManifestProbe) CurrentTime() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return p.basePos
	}
	return p.basePos + time.Since(p.startedAt).Seconds()
}

func (p *ManifestProbe) Seek(pos float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.basePos = pos
	p.startedAt = time.Now()
}

func (p *ManifestProbe) Dispose() {
	p.Reset()
	p.http.CloseIdleConnections()
}
