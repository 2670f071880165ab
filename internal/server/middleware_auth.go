package server

import (
	"net/http"
	"strings"

	"lessoncast/internal/auth"
)

// requireInstructor guards the control surface with the configured
// bearer token. With no hash configured the guard is disabled (single
// operator deployments behind their own perimeter); when configured,
// unknown tokens are verified against a dummy hash so rejection timing
// does not leak whether a token exists.
func (s *Server) requireInstructor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.instructorTokenHash == "" {
			next.ServeHTTP(w, r)
			return
		}

		token := bearerToken(r)
		if token == "" {
			auth.VerifyToken("missing", auth.DummyHash)
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}

		ok, err := auth.VerifyToken(token, s.instructorTokenHash)
		if err != nil || !ok {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimSpace(h[len(prefix):])
}
