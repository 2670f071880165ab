package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) routes() {
	s.router.Get("/api/health", s.handleHealth)

	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler(s.refreshGauges))
	}

	s.router.Route("/api", func(r chi.Router) {
		r.Use(limitBody)
		r.Use(jsonContentType)
		r.Use(corsMiddleware(s.corsOrigin))
		if s.metrics != nil {
			r.Use(s.metrics.Middleware)
		}

		r.Get("/courses", s.handleListCourses)
		r.Get("/courses/{courseID}", s.handleGetCourse)
		r.Get("/courses/{courseID}/lessons", s.handleListLessons)
		r.Get("/lessons/{id}", s.handleGetLesson)

		// Viewer status query, by stable ID and positionally.
		r.Get("/lessons/{id}/stream/info", s.handleStreamInfo)
		r.With(s.resolvePositional).
			Get("/courses/{courseID}/modules/{moduleIndex}/lessons/{lessonIndex}/stream/info", s.handleStreamInfo)

		// Instructor surface: catalog mutations and the stream control
		// protocol. Control routes are rate limited on top of auth.
		r.Group(func(ir chi.Router) {
			ir.Use(s.requireInstructor)
			ir.Post("/courses", s.handleCreateCourse)
			ir.Put("/courses/{courseID}", s.handleUpdateCourse)
			ir.Delete("/courses/{courseID}", s.handleDeleteCourse)
			ir.Post("/courses/{courseID}/lessons", s.handleCreateLesson)
			ir.Put("/lessons/{id}", s.handleUpdateLesson)
			ir.Delete("/lessons/{id}", s.handleDeleteLesson)

			ir.Group(func(cr chi.Router) {
				cr.Use(rateLimit)
				cr.Post("/lessons/{id}/stream/generate-key", s.handleGenerateKey)
				cr.Post("/lessons/{id}/stream/control", s.handleStreamControl)
				cr.Post("/lessons/{id}/stream/schedule", s.handleSchedule)
				cr.With(s.resolvePositional).
					Post("/courses/{courseID}/modules/{moduleIndex}/lessons/{lessonIndex}/stream/generate-key", s.handleGenerateKey)
				cr.With(s.resolvePositional).
					Post("/courses/{courseID}/modules/{moduleIndex}/lessons/{lessonIndex}/stream/control", s.handleStreamControl)
				cr.With(s.resolvePositional).
					Post("/courses/{courseID}/modules/{moduleIndex}/lessons/{lessonIndex}/stream/schedule", s.handleSchedule)
			})

			ir.Get("/lessons/{id}/stream/key", s.handleStreamKey)
		})
	})

	// Push endpoints keep their own group: SSE and websocket responses
	// must not be wrapped by the JSON content-type middleware.
	s.router.Group(func(r chi.Router) {
		r.Use(corsMiddleware(s.corsOrigin))
		r.Get("/api/lessons/{id}/stream/events", s.handleStreamEvents)
		r.Get("/api/lessons/{id}/stream/ws", s.handleStreamWS)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(); err != nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"error"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) refreshGauges() {
	if n, err := s.registry.CountLive(); err == nil {
		s.metrics.SetLiveLessons(n)
	}
}
