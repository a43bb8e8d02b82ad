package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"chorequest/internal/service"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const ActorContextKey ContextKey = "actor"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	authService *service.AuthService
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(authService *service.AuthService) *Middleware {
	return &Middleware{authService: authService}
}

// RequireAuth accepts either a guardian bearer token or a kid access token
// and puts the resulting actor on the request context.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		actor, ok := m.authenticate(r)
		if !ok {
			respondWithError(w, http.StatusUnauthorized, "authentication required", nil)
			return
		}
		ctx := context.WithValue(r.Context(), ActorContextKey, actor)
		next(w, r.WithContext(ctx))
	}
}

// RequireGuardian is RequireAuth restricted to guardian sessions.
func (m *Middleware) RequireGuardian(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		if ActorFromContext(r).IsKid() {
			respondWithError(w, http.StatusForbidden, "guardian account required", nil)
			return
		}
		next(w, r)
	})
}

func (m *Middleware) authenticate(r *http.Request) (service.Actor, bool) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		actor, err := m.authService.ParseToken(token)
		if err == nil {
			return actor, true
		}
	}

	// Kid sessions use the opaque access token from their login link.
	if token := r.Header.Get("X-Kid-Token"); token != "" {
		kid, err := m.authService.AuthenticateKid(token)
		if err == nil {
			return service.Actor{KidID: kid.ID}, true
		}
	}
	return service.Actor{}, false
}

// ActorFromContext returns the authenticated actor placed by RequireAuth.
func ActorFromContext(r *http.Request) service.Actor {
	actor, _ := r.Context().Value(ActorContextKey).(service.Actor)
	return actor
}

// Logging logs each request with its duration.
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}
