package auth

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/CareerBridge/CB-Backend/internal/utils"
)

// Handler adapts the use cases to HTTP. Bodies are JSON in and out; every
// auth response is a {status, message} pair.
type Handler struct {
	service  *Service
	sessions *SessionService
}

func NewHandler(service *Service, sessions *SessionService) *Handler {
	return &Handler{service: service, sessions: sessions}
}

func (h *Handler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var input RegistrationInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeResult(w, http.StatusBadRequest, failure(KindValidation, "Invalid Request Format"))
		return
	}

	res := h.service.Register(w, input, clientMeta(r))
	writeResult(w, httpStatus(res, http.StatusCreated), res)
}

func (h *Handler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var input LoginInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeResult(w, http.StatusBadRequest, failure(KindValidation, "Invalid Request Format"))
		return
	}

	res := h.service.Login(w, input, clientMeta(r))
	writeResult(w, httpStatus(res, http.StatusOK), res)
}

// LogoutHandler invalidates the current session and clears the cookie.
// A missing cookie means the client is already logged out; either way the
// response is a redirect to the login page. Logout never visibly fails.
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(CookieName); err == nil {
		if err := h.sessions.Invalidate(cookie.Value); err != nil {
			log.Printf("[auth] session invalidation failed: %v", err)
		}
	}
	h.sessions.ClearCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

type MeResponse struct {
	UserID   uint   `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// MeHandler returns the current user as resolved by the session guard.
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	user, ok := utils.GetCurrentUser(r.Context())
	if !ok {
		http.Error(w, "Unauthorized: missing user in context", http.StatusUnauthorized)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(MeResponse{
		UserID:   user.UserID,
		Name:     user.Name,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role,
	}); err != nil {
		log.Printf("[auth] encoding /me response failed: %v", err)
	}
}

func writeResult(w http.ResponseWriter, code int, res Result) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(res); err != nil {
		log.Printf("[auth] encoding response failed: %v", err)
	}
}

// httpStatus maps a Result to a status code; okCode is used on success so
// registration can answer 201 while login answers 200.
func httpStatus(res Result, okCode int) int {
	if res.Status == StatusSuccess {
		return okCode
	}
	switch res.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func clientMeta(r *http.Request) ClientMeta {
	return ClientMeta{IP: clientIP(r), UserAgent: r.UserAgent()}
}

// clientIP prefers the first hop in X-Forwarded-For, falling back to the
// connection's remote address.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.Index(fwd, ","); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
