package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/dimeda/stretcher-service/internal/auth"
	"github.com/dimeda/stretcher-service/internal/config"
	"github.com/dimeda/stretcher-service/internal/models"
)

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// RoleContextKey holds the authenticated portal role.
	RoleContextKey contextKey = "role"
)

// AuthMiddleware validates session tokens on /api routes.
type AuthMiddleware struct {
	sessions *auth.Service
}

// NewAuthMiddleware creates an authentication middleware backed by the
// session service.
func NewAuthMiddleware(sessions *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{sessions: sessions}
}

// Authenticate validates the bearer token and stores the role in the request
// context. Login, check and logout stay open so the portals can establish a
// session in the first place.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shouldSkipAuth(r.URL.Path) || r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		token := TokenFromRequest(r)
		if token == "" {
			unauthorized(w)
			return
		}

		role, err := m.sessions.Validate(token)
		if err != nil {
			unauthorized(w)
			return
		}

		ctx := context.WithValue(r.Context(), RoleContextKey, role)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RoleFromContext returns the authenticated role, if any.
func RoleFromContext(ctx context.Context) (models.Role, bool) {
	role, ok := ctx.Value(RoleContextKey).(models.Role)
	return role, ok
}

// TokenFromRequest extracts the session token from the Authorization header
// or the legacy X-Auth-Token header.
func TokenFromRequest(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.Header.Get(config.AuthHeaderName)
}

func shouldSkipAuth(path string) bool {
	switch path {
	case "/api/auth/login",
		"/api/auth/technician-login",
		"/api/auth/customer-login",
		"/api/auth/check",
		"/api/auth/logout":
		return true
	}
	return false
}

func unauthorized(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": "Unauthorized. Please login."})
}
