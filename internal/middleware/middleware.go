package middleware

import (
	"errors"
	"net/http"

	"github.com/CareerBridge/CB-Backend/internal/auth"
	"github.com/CareerBridge/CB-Backend/internal/utils"
)

// SessionResolver maps a client-held session token to the owning user.
// Implementations must treat an expired session as invalid.
type SessionResolver interface {
	Resolve(token string) (utils.SessionData, error)
}

// SessionMiddleware guards authenticated routes: it resolves the session
// cookie and injects the current user into the request context.
func SessionMiddleware(resolver SessionResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(auth.CookieName)
			if err != nil {
				http.Error(w, "Couldn't find cookie", http.StatusUnauthorized)
				return
			}

			user, err := resolver.Resolve(cookie.Value)
			if errors.Is(err, auth.ErrSessionExpired) {
				http.Error(w, "Session expired", http.StatusUnauthorized)
				return
			}
			if err != nil {
				http.Error(w, "Invalid session", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.WithCurrentUser(r.Context(), user)))
		})
	}
}

var allowed = map[string]struct{}{
	"http://localhost:5173":           {},
	"http://localhost:5174":           {},
	"https://app.careerbridge.io":     {},
	"https://staging.careerbridge.io": {},
}

func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Echo the origin back only if it's on our allow-list
		if _, ok := allowed[origin]; ok {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin") // important for caches
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods",
				"GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers",
				"Content-Type, Authorization")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
