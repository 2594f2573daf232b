package auth

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/CareerBridge/CB-Backend/internal/utils"
)

// CookieName is the session cookie the client holds. Its value is the
// plaintext token; the server only ever stores the digest.
const CookieName = "session"

// ClientMeta is the request metadata recorded on each session row.
type ClientMeta struct {
	IP        string
	UserAgent string
}

// SessionService owns the session lifecycle: token generation, the stored
// row, and the client-facing cookie. The lifetime passed in drives both
// the cookie MaxAge and the row's expires_at so the two cannot diverge.
type SessionService struct {
	store        Store
	lifetime     time.Duration
	secureCookie bool

	// now is swapped out by tests to fabricate expired sessions.
	now func() time.Time
}

func NewSessionService(store Store, lifetime time.Duration, secureCookie bool) *SessionService {
	return &SessionService{
		store:        store,
		lifetime:     lifetime,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

// Issue creates a session for userID and hands the token to the client as
// a cookie. The store write happens first; if the resulting cookie would
// be rejected by the HTTP layer, the just-written row is deleted again so
// the two sides never disagree. The token itself never leaves this method
// except inside the Set-Cookie header.
func (s *SessionService) Issue(w http.ResponseWriter, userID uint, meta ClientMeta) error {
	token, err := GenerateSessionToken()
	if err != nil {
		return err
	}
	digest := DigestToken(token)

	session := &Session{
		ID:        digest,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.lifetime),
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}
	if err := s.store.InsertSession(session); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}

	return s.setCookieOrCompensate(w, s.sessionCookie(token, int(s.lifetime.Seconds())), digest)
}

// setCookieOrCompensate writes the cookie after the row already exists;
// a cookie the HTTP layer would reject triggers a compensating delete of
// the row, so store and client state never disagree.
func (s *SessionService) setCookieOrCompensate(w http.ResponseWriter, cookie *http.Cookie, digest string) error {
	if err := cookie.Valid(); err != nil {
		if delErr := s.store.DeleteSession(digest); delErr != nil {
			log.Printf("[auth] compensating session delete failed: %v", delErr)
		}
		return fmt.Errorf("session cookie invalid: %w", err)
	}
	http.SetCookie(w, cookie)
	return nil
}

// Resolve maps a client-held token to its owning user. Expiry is enforced
// here rather than left to callers: a row past its expires_at
// authenticates nobody even while the sweeper has not removed it yet.
// An empty token short-circuits without touching storage.
func (s *SessionService) Resolve(token string) (utils.SessionData, error) {
	if token == "" {
		return utils.SessionData{}, ErrNotFound
	}

	session, user, err := s.store.FindSessionWithUser(DigestToken(token))
	if err != nil {
		return utils.SessionData{}, err
	}
	if !s.now().Before(session.ExpiresAt) {
		return utils.SessionData{}, ErrSessionExpired
	}

	return utils.SessionData{
		UserID:    user.ID,
		Name:      user.Name,
		Username:  user.Username,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// Invalidate deletes the session for token. Deleting a session that is
// already gone is not an error, and an empty token is a no-op.
func (s *SessionService) Invalidate(token string) error {
	if token == "" {
		return nil
	}
	return s.store.DeleteSession(DigestToken(token))
}

// ClearCookie expires the session cookie on the client.
func (s *SessionService) ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, s.sessionCookie("", -1))
}

func (s *SessionService) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   s.secureCookie,
		SameSite: http.SameSiteLaxMode,
	}
}
