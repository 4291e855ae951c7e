package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/greenkart/storefront/internal/session"
)

// AuthMiddleware checks the request's bearer credential against the session
// store. Acquiring the token in the first place is the sign-in flow's job;
// this layer only consumes it.
func AuthMiddleware(sessions *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := r.Header.Get("X-User-ID")
			token := bearerToken(r)
			if userID == "" || token == "" {
				respondError(w, http.StatusUnauthorized, "unauthorized", "missing credentials")
				return
			}

			stored, err := sessions.Token(r.Context(), userID)
			if err != nil || stored != token {
				respondError(w, http.StatusUnauthorized, "unauthorized", "invalid or expired session")
				return
			}

			ctx := context.WithValue(r.Context(), "user_id", userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), "request_id", requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(auth, "Bearer ")
}
