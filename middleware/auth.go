package middleware

import (
	"context"
	"net/http"

	"tinyroom/ledger"
	"tinyroom/models"
)

type contextKey string

const UserContextKey contextKey = "user"

// SessionToken extracts the session token from the X-Session-ID header or
// the session cookie
func SessionToken(r *http.Request) string {
	if token := r.Header.Get("X-Session-ID"); token != "" {
		return token
	}
	if cookie, err := r.Cookie("session"); err == nil {
		return cookie.Value
	}
	return ""
}

// Auth returns middleware that resolves the session and adds the user to
// the request context, rejecting requests without a valid session
func Auth(sessions *ledger.SessionStore) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := sessions.Resolve(SessionToken(r))
			if err != nil {
				http.Error(w, `{"error": "Unauthorized"}`, http.StatusUnauthorized)
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(r *http.Request) *models.User {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
