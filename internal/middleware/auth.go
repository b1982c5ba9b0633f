package middleware

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/sakshee44566/CareerHub/internal/session"
)

// Authorizer validates a bearer token.
type Authorizer interface {
	Authorize(token string) (session.Session, error)
}

type contextKey string

const sessionContextKey contextKey = "session"

// RequireSession rejects requests whose bearer token the authorizer does not
// accept. The admitted session is stored in the request context.
func RequireSession(auth Authorizer) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := session.BearerToken(r.Header.Get("Authorization"))
			s, err := auth.Authorize(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			ctx := context.WithValue(r.Context(), sessionContextKey, s)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session admitted by RequireSession.
func SessionFrom(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionContextKey).(session.Session)
	return s, ok
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
