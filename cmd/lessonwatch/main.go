// lessonwatch follows a single lesson's stream status and probes the
// HLS manifest whenever it goes live, for checking an ingest setup
// end-to-end before class starts.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"lessoncast/internal/client"
	"lessoncast/internal/models"
	"lessoncast/internal/playback"
	"lessoncast/internal/poller"
)

func main() {
	_ = godotenv.Load()

	apiURL := envOr("API_URL", "http://localhost:7936")
	lessonID := os.Getenv("LESSON_ID")
	if lessonID == "" {
		log.Fatal("LESSON_ID is required")
	}
	interval := envDuration("POLL_INTERVAL", 5*time.Second)
	useWS := envBool("USE_WS")

	c, err := client.New(apiURL)
	if err != nil {
		log.Fatalf("invalid API_URL: %v", err)
	}

	ctrl := playback.NewController(func() playback.Player {
		return playback.NewManifestProbe()
	})
	defer ctrl.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if useWS {
		g.Go(func() error {
			watchPush(ctx, c, lessonID, ctrl)
			return nil
		})
	} else {
		p := poller.New(c, lessonID, interval, poller.WithListener(logging{ctrl}))
		g.Go(func() error {
			p.Run(ctx)
			return nil
		})
	}

	log.Printf("watching lesson %s via %s", lessonID, apiURL)
	if err := g.Wait(); err != nil {
		log.Fatal(err)
	}
	log.Printf("done (last state: %s)", ctrl.State())
}

// watchPush feeds websocket status snapshots into the controller,
// deduplicating the way the poller would.
func watchPush(ctx context.Context, c *client.Client, lessonID string, ctrl *playback.Controller) {
	var prev models.StreamStatus
	var known bool

	for info := range c.SubscribeStatus(ctx, lessonID) {
		if known && info.Status == prev {
			continue
		}
		log.Printf("lesson %s: %s -> %s", info.LessonID, prev, info.Status)
		ctrl.StatusChanged(prev, info)
		prev = info.Status
		known = true
	}
}

// logging wraps the playback controller so every transition the poller
// delivers also lands in the log.
type logging struct {
	ctrl *playback.Controller
}

func (l logging) StatusChanged(prev models.StreamStatus, info models.StreamInfo) {
	log.Printf("lesson %s: %s -> %s", info.LessonID, prev, info.Status)
	l.ctrl.StatusChanged(prev, info)
	if err := l.ctrl.Err(); err != nil {
		log.Printf("playback: %v", err)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", key, err)
	}
	return d
}

func envBool(key string) bool {
	b, _ := strconv.ParseBool(os.Getenv(key))
	return b
}
