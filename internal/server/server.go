package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"lessoncast/internal/metrics"
	"lessoncast/internal/registry"
	"lessoncast/internal/store"
)

type Server struct {
	router     chi.Router
	store      *store.Store
	registry   *registry.Registry
	corsOrigin string
	metrics    *metrics.Metrics

	// argon2id hash of the instructor API token; empty disables the
	// guard on the control surface.
	instructorTokenHash string
}

type Option func(*Server)

func WithCORSOrigin(origin string) Option {
	return func(s *Server) { s.corsOrigin = origin }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

func WithInstructorTokenHash(hash string) Option {
	return func(s *Server) { s.instructorTokenHash = hash }
}

func NewServer(st *store.Store, reg *registry.Registry, opts ...Option) *Server {
	srv := &Server{
		router:   chi.NewRouter(),
		store:    st,
		registry: reg,
	}
	for _, o := range opts {
		o(srv)
	}
	srv.router.Use(middleware.Logger)
	srv.router.Use(middleware.Recoverer)
	srv.routes()
	return srv
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
