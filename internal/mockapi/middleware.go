package mockapi

import (
	"context"
	"net/http"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"event-admin-console/internal/session/domain"
)

type profileKey struct{}

// profileFrom returns the authenticated caller set by requireBearer.
func profileFrom(ctx context.Context) (domain.UserProfile, bool) {
	p, ok := ctx.Value(profileKey{}).(domain.UserProfile)
	return p, ok
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.DebugContext(r.Context(), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", chimiddleware.GetReqID(r.Context()),
		)
	})
}

// requireBearer rejects requests without a valid, unexpired access token with 401.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := extractBearerToken(r.Header.Get("Authorization"))
		if token == "" {
			writeError(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		p, err := s.auth.Authorize(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Unauthorized", &exception{ExceptionMessage: "access token is invalid or expired"})
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), profileKey{}, p)))
	})
}

// requireRole answers 403 unless the caller holds role.
func requireRole(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := profileFrom(r.Context())
			if !ok || p.RoleID != role {
				writeError(w, http.StatusForbidden, "Forbidden", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
