package auth

import (
	"errors"
	"log"
	"net/http"
)

const (
	StatusSuccess = "SUCCESS"
	StatusError   = "ERROR"
)

// Kind classifies an error Result for the HTTP layer. It never reaches
// the client; only Status and Message do.
type Kind int

const (
	KindNone Kind = iota
	KindValidation
	KindConflict
	KindAuthentication
	KindInfrastructure
)

// Result is what every use case returns. No error crosses this boundary;
// internal detail is logged server-side and the client sees a short
// message plus a success/failure flag.
type Result struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Kind    Kind   `json:"-"`
}

func success(message string) Result {
	return Result{Status: StatusSuccess, Message: message}
}

func failure(kind Kind, message string) Result {
	return Result{Status: StatusError, Message: message, Kind: kind}
}

const (
	msgEmailExists        = "Email already exists"
	msgUsernameExists     = "Username already exists"
	msgRegistrationOK     = "Registration Successful"
	msgRegistrationFailed = "Registration Failed"
	msgLoginOK            = "Login Successful"
	msgInvalidCredentials = "Invalid Credentials"
	msgUnknownError       = "Unknown Error Occurred"
)

// Service implements the registration and login use cases on top of the
// store, the password hasher, and the session service.
type Service struct {
	store    Store
	sessions *SessionService
}

func NewService(store Store, sessions *SessionService) *Service {
	return &Service{store: store, sessions: sessions}
}

// Register runs received → validated → uniqueness-checked → hashed →
// persisted → session-issued. The uniqueness pre-check only exists for
// the friendly message; the store's unique constraints are the real
// guarantee, so a constraint violation on insert maps back to the same
// conflict outcomes. Registration doubles as an implicit login.
func (s *Service) Register(w http.ResponseWriter, raw RegistrationInput, meta ClientMeta) Result {
	input, msg := ValidateRegistration(raw)
	if msg != "" {
		return failure(KindValidation, msg)
	}

	existing, err := s.store.FindUserByEmailOrUsername(input.Email, input.Username)
	if err != nil && !errors.Is(err, ErrNotFound) {
		log.Printf("[auth] registration uniqueness lookup failed: %v", err)
		return failure(KindInfrastructure, msgRegistrationFailed)
	}
	if existing != nil {
		return failure(KindConflict, conflictMessage(existing, input))
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		log.Printf("[auth] password hashing failed: %v", err)
		return failure(KindInfrastructure, msgRegistrationFailed)
	}

	user := &User{
		Name:         input.Name,
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
	}
	userID, err := s.store.InsertUser(user)
	if err != nil {
		var cv *ConstraintViolationError
		if errors.As(err, &cv) {
			// Another registration won the race between the pre-check and
			// the insert.
			return failure(KindConflict, s.conflictMessageFor(cv.Field, input))
		}
		log.Printf("[auth] user insert failed: %v", err)
		return failure(KindInfrastructure, msgRegistrationFailed)
	}

	if err := s.sessions.Issue(w, userID, meta); err != nil {
		// The account exists but got no session; a normal login recovers.
		log.Printf("[auth] session issue after registration failed: %v", err)
		return failure(KindInfrastructure, msgRegistrationFailed)
	}

	return success(msgRegistrationOK)
}

// Login verifies credentials and issues a fresh session. An unknown email
// and a wrong password produce byte-identical results so the response
// reveals nothing about which half failed.
func (s *Service) Login(w http.ResponseWriter, raw LoginInput, meta ClientMeta) Result {
	input, msg := ValidateLogin(raw)
	if msg != "" {
		return failure(KindValidation, msg)
	}

	user, err := s.store.FindUserByEmail(input.Email)
	if errors.Is(err, ErrNotFound) {
		return failure(KindAuthentication, msgInvalidCredentials)
	}
	if err != nil {
		log.Printf("[auth] login lookup failed: %v", err)
		return failure(KindInfrastructure, msgUnknownError)
	}

	ok, err := VerifyPassword(user.PasswordHash, input.Password)
	if err != nil {
		log.Printf("[auth] password verification failed for user %d: %v", user.ID, err)
		return failure(KindInfrastructure, msgUnknownError)
	}
	if !ok {
		return failure(KindAuthentication, msgInvalidCredentials)
	}

	if err := s.sessions.Issue(w, user.ID, meta); err != nil {
		log.Printf("[auth] session issue after login failed: %v", err)
		return failure(KindInfrastructure, msgUnknownError)
	}

	return success(msgLoginOK)
}

// conflictMessage names the colliding field, with email taking priority
// when both collide.
func conflictMessage(existing *User, input NormalizedRegistration) string {
	if existing.Email == input.Email {
		return msgEmailExists
	}
	return msgUsernameExists
}

// conflictMessageFor maps a constraint violation back to a user-facing
// message. When the constraint name was unrecognized, the uniqueness
// lookup is re-run to name the right field.
func (s *Service) conflictMessageFor(field string, input NormalizedRegistration) string {
	switch field {
	case "email":
		return msgEmailExists
	case "username":
		return msgUsernameExists
	}

	existing, err := s.store.FindUserByEmailOrUsername(input.Email, input.Username)
	if err != nil {
		log.Printf("[auth] conflict re-check failed: %v", err)
		return msgRegistrationFailed
	}
	return conflictMessage(existing, input)
}
