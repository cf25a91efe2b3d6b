package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/km0-cafe/restaurant-service/internal/api"
	"github.com/km0-cafe/restaurant-service/internal/apperr"
	"github.com/km0-cafe/restaurant-service/internal/models"
	"github.com/km0-cafe/restaurant-service/internal/service"
)

// contextKey is a type for context keys
type contextKey string

const userKey contextKey = "user"

// Auth middleware authenticates requests: it extracts the bearer token,
// verifies it as an access token and attaches the resolved principal to
// the request context. The three 401 cases stay distinguishable for
// client UX: no token, bad token, expired token.
func Auth(authService *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				api.Error(w, apperr.New(apperr.KindAuthentication, "authorization header required"))
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
				api.Error(w, apperr.New(apperr.KindAuthentication, "no token provided"))
				return
			}

			userID, err := authService.VerifyToken(parts[1], service.TokenAccess)
			if err != nil {
				api.Error(w, err)
				return
			}

			// Token was valid but the subject may be gone, e.g. a
			// deleted account.
			user, err := authService.GetUser(r.Context(), userID)
			if err != nil {
				api.Error(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole gates a route on the attached principal's role. It runs
// only after Auth succeeded and does no further I/O.
func RequireRole(roles ...models.UserRole) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := GetUser(r.Context())
			if !ok {
				api.Error(w, apperr.New(apperr.KindAuthentication, "authentication required"))
				return
			}

			allowed := false
			for _, role := range roles {
				if user.Role == role {
					allowed = true
					break
				}
			}

			if !allowed {
				api.Error(w, apperr.New(apperr.KindAuthorization, "insufficient role"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUser extracts the authenticated principal from the context.
func GetUser(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userKey).(*models.User)
	return user, ok
}

// WithUser attaches a principal to the context; used by tests.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}
