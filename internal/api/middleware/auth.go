package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/taskdeck/taskdeck-api/internal/api/shared"
	"github.com/taskdeck/taskdeck-api/internal/domain"
)

// identityResolver is the part of the auth service the middleware needs.
type identityResolver interface {
	Resolve(ctx context.Context, tokenString string) (*domain.User, error)
}

// AuthMiddleware provides JWT authentication for routes.
// It is the only HTTP-facing consumer of the identity resolver; every
// protected handler receives the resolved user ID through the request context.
type AuthMiddleware struct {
	resolver identityResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with the given resolver.
func NewAuthMiddleware(resolver identityResolver) *AuthMiddleware {
	return &AuthMiddleware{
		resolver: resolver,
	}
}

// Authenticate validates bearer tokens from the Authorization header and adds
// the authenticated user's ID to the request context.
//
// Every rejection is a plain 401. The middleware never distinguishes a
// missing header from a forged token or a deleted account, so the response
// leaks nothing about which check failed.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Unauthorized")
			return
		}

		user, err := m.resolver.Resolve(r.Context(), parts[1])
		if err != nil {
			shared.RespondWithErrorAndLog(
				w,
				r,
				http.StatusUnauthorized,
				"Unauthorized",
				err,
			)
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, user.ID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID extracts the authenticated user's ID from the request context.
// Returns the user ID and a boolean indicating if it was found.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}
