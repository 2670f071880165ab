package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"lessoncast/internal/auth"
	"lessoncast/internal/metrics"
	"lessoncast/internal/registry"
	"lessoncast/internal/server"
	"lessoncast/internal/store"
	"lessoncast/migrations"
)

func main() {
	_ = godotenv.Load()

	dbPath := envOr("DB_PATH", "./data/lessoncast.db")
	listenAddr := envOr("LISTEN_ADDR", ":7936")
	playbackHost := envOr("PLAYBACK_HOST", "localhost:8088")
	corsOrigin := os.Getenv("CORS_ORIGIN")
	instructorToken := os.Getenv("INSTRUCTOR_TOKEN")

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		log.Fatal(err)
	}

	s, err := store.New(dbPath)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer s.Close()

	if err := s.Migrate(migrations.FS); err != nil {
		log.Fatalf("running migrations: %v", err)
	}

	tokenHash, err := instructorTokenHash(s, instructorToken)
	if err != nil {
		log.Fatalf("configuring instructor token: %v", err)
	}
	if tokenHash == "" {
		log.Println("INSTRUCTOR_TOKEN not set — instructor routes are unprotected")
	}

	m := metrics.New()
	reg := registry.New(s, playbackHost, registry.WithMetrics(m))

	opts := []server.Option{
		server.WithMetrics(m),
		server.WithInstructorTokenHash(tokenHash),
	}
	if corsOrigin != "" {
		opts = append(opts, server.WithCORSOrigin(corsOrigin))
	}
	srv := server.NewServer(s, reg, opts...)
	defer server.StopRateLimiter()

	httpServer := &http.Server{
		Addr:              listenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("LessonCast listening on %s", listenAddr)
		if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

// instructorTokenHash hashes the configured token and persists the hash
// so restarts without the env var keep the guard active. An explicit
// empty token clears it.
func instructorTokenHash(s *store.Store, token string) (string, error) {
	const settingKey = "instructor.token_hash"

	if token == "" {
		return s.GetSetting(settingKey)
	}
	if err := auth.ValidateToken(token); err != nil {
		return "", err
	}
	hash, err := auth.HashToken(token)
	if err != nil {
		return "", err
	}
	if err := s.SetSetting(settingKey, hash); err != nil {
		return "", err
	}
	return hash, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
