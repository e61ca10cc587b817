package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/snapplace/server/internal/httputil"
)

type contextKey string

const (
	// UserIDContextKey is the key for the authenticated user's ID
	UserIDContextKey contextKey = "user_id"
	// SessionIDContextKey is the key for the authenticated session's ID
	SessionIDContextKey contextKey = "session_id"
)

// RequireAuth verifies the bearer token and checks that its session is still
// live in the store. A cryptographically valid token whose session has been
// revoked is rejected the same way as a garbage token.
func RequireAuth(tokens *PasetoService, sessions Sessions) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := extractToken(r)
			if tokenString == "" {
				httputil.RespondError(w, "Authentication required", http.StatusUnauthorized)
				return
			}

			claims, err := tokens.VerifyToken(tokenString)
			if err != nil {
				httputil.RespondError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			live, err := sessions.IsLive(r.Context(), claims.UserID, claims.SessionID)
			if err != nil {
				httputil.RespondError(w, "Failed to verify session", http.StatusInternalServerError)
				return
			}
			if !live {
				httputil.RespondError(w, "Invalid or expired token", http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserIDContextKey, claims.UserID)
			ctx = context.WithValue(ctx, SessionIDContextKey, claims.SessionID)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}

	if cookie, err := r.Cookie("access_token"); err == nil {
		return cookie.Value
	}

	return ""
}

// GetUserIDFromContext retrieves the authenticated user's ID placed there by
// RequireAuth.
func GetUserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIDContextKey).(uuid.UUID)
	return id, ok
}
