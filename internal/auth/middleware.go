package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/geromendez199/AlfajorApp/pkg/models"
)

type contextKey struct{}

var claimsKey contextKey

// FromContext returns the authenticated staff claims set by Middleware.
func FromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey).(*Claims)
	return claims, ok
}

// Middleware validates the bearer token on every request and stores the
// claims in the request context. Role checks happen per route via
// RequireRoles.
type Middleware struct {
	tokens *TokenManager
	logger *logrus.Logger
}

func NewMiddleware(tokens *TokenManager, logger *logrus.Logger) *Middleware {
	return &Middleware{tokens: tokens, logger: logger}
}

func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := bearerToken(r)
		if raw == "" {
			respondUnauthorized(w, "missing token")
			return
		}
		claims, err := m.tokens.Parse(raw)
		if err != nil {
			m.logger.WithError(err).Debug("Rejected token")
			respondUnauthorized(w, "invalid token")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// RequireRoles gates a route to the given roles. It assumes Authenticate
// already ran on the route's chain.
func RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := FromContext(r.Context())
			if !ok {
				respondUnauthorized(w, "missing token")
				return
			}
			for _, role := range roles {
				if claims.Role == role {
					next.ServeHTTP(w, r)
					return
				}
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"success": false,
				"message": "insufficient role",
			})
		})
	}
}

// bearerToken accepts both "Authorization: Bearer <t>" and the bare
// "token" header the POS terminals send.
func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		return strings.TrimPrefix(h, "Bearer ")
	}
	if h := r.Header.Get("token"); h != "" {
		return h
	}
	// Browsers cannot set headers on websocket upgrades.
	return r.URL.Query().Get("token")
}

func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"message": message,
	})
}
