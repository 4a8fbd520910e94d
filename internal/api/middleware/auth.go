package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dom/blog-website/internal/domain"
	"github.com/dom/blog-website/internal/service"
	"go.uber.org/zap"
)

type contextKey string

const userKey contextKey = "user"

// Auth extracts the bearer token, resolves it through the auth service
// (signature check plus session liveness), and attaches the user to the
// request context. Everything else is a 401; no detail crosses the boundary.
func Auth(authService *service.AuthService, log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			user, err := authService.Authenticate(r.Context(), parts[1])
			if err != nil {
				log.Debug("request rejected", zap.Error(err))
				http.Error(w, "Unauthorized", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated principal attached by Auth.
func GetUser(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}
