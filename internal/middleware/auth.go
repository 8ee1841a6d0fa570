package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/BorisDmv/posts-api/internal/auth"
)

// Authenticate resolves the bearer token into an actor on the request
// context and rejects the request with 401 when that fails.
func Authenticate(tokens *auth.Tokens) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := strings.TrimSpace(r.Header.Get("Authorization"))
			if len(authHeader) < 8 || !strings.EqualFold(authHeader[:7], "bearer ") {
				writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}

			actor, err := tokens.Parse(strings.TrimSpace(authHeader[7:]))
			if err != nil {
				writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithActor(r.Context(), actor)))
		})
	}
}

// RequireVerified must run after Authenticate.
func RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor, ok := auth.ActorFrom(r.Context())
		if !ok {
			writeMessage(w, http.StatusUnauthorized, "Unauthenticated.")
			return
		}
		if !actor.Verified {
			writeMessage(w, http.StatusForbidden, "Your email address is not verified.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"message": message})
}
