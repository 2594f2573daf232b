package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// SetupRoutes mounts the auth endpoints. Logout is deliberately not
// behind the guard: a client with no valid session is simply already
// logged out.
func SetupRoutes(h *Handler, guard func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Post("/register", h.RegisterHandler)
	r.Post("/login", h.LoginHandler)
	r.Post("/logout", h.LogoutHandler)
	r.With(guard).Get("/me", h.MeHandler)

	return r
}
