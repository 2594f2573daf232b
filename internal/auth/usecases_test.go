package auth

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestService(store Store) (*Service, *SessionService) {
	sessions := NewSessionService(store, time.Hour, false)
	return NewService(store, sessions), sessions
}

func validRegistration() RegistrationInput {
	return RegistrationInput{
		Name:     "Jordan Blake",
		Username: "jordanb",
		Email:    "Jordan.Blake@Example.com",
		Password: "Sup3rSecret!",
		Role:     RoleApplicant,
	}
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == CookieName {
			return c
		}
	}
	return nil
}

// TestRegisterSuccess verifies the happy path: one user row, one session
// row, a cookie whose token's digest matches the stored session key, and
// a normalized (lower-cased) email on the row.
func TestRegisterSuccess(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)
	rec := httptest.NewRecorder()

	res := service.Register(rec, validRegistration(), ClientMeta{IP: "203.0.113.9", UserAgent: "test-agent"})

	if res.Status != StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s: %s", res.Status, res.Message)
	}
	if store.userCount() != 1 {
		t.Errorf("expected exactly 1 user row, got %d", store.userCount())
	}
	if store.sessionCount() != 1 {
		t.Errorf("expected exactly 1 session row, got %d", store.sessionCount())
	}

	cookie := sessionCookie(t, rec)
	if cookie == nil {
		t.Fatal("expected a session cookie to be set")
	}
	if !cookie.HttpOnly {
		t.Error("session cookie must be HttpOnly")
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("cookie MaxAge = %d, want 3600", cookie.MaxAge)
	}

	session, user, err := store.FindSessionWithUser(DigestToken(cookie.Value))
	if err != nil {
		t.Fatalf("stored session key does not match cookie token digest: %v", err)
	}
	if user.Email != "jordan.blake@example.com" {
		t.Errorf("email not normalized: %q", user.Email)
	}
	if session.IP != "203.0.113.9" || session.UserAgent != "test-agent" {
		t.Errorf("client metadata not recorded: ip=%q ua=%q", session.IP, session.UserAgent)
	}
	if user.PasswordHash == "" || user.PasswordHash == "Sup3rSecret!" {
		t.Error("password hash missing or equal to plaintext")
	}
}

// TestRegisterDuplicateEmail verifies that reusing an existing email with
// a fresh username yields the email conflict message and no new user row.
func TestRegisterDuplicateEmail(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	if res := service.Register(httptest.NewRecorder(), validRegistration(), ClientMeta{}); res.Status != StatusSuccess {
		t.Fatalf("seed registration failed: %s", res.Message)
	}

	second := validRegistration()
	second.Username = "someoneelse"
	res := service.Register(httptest.NewRecorder(), second, ClientMeta{})

	if res.Status != StatusError || res.Message != "Email already exists" {
		t.Fatalf("expected email conflict, got %s: %s", res.Status, res.Message)
	}
	if store.userCount() != 1 {
		t.Errorf("conflict must not create a user row, have %d", store.userCount())
	}
}

// TestRegisterDuplicateUsername verifies the username conflict message
// when only the username collides.
func TestRegisterDuplicateUsername(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	if res := service.Register(httptest.NewRecorder(), validRegistration(), ClientMeta{}); res.Status != StatusSuccess {
		t.Fatalf("seed registration failed: %s", res.Message)
	}

	second := validRegistration()
	second.Email = "other@example.com"
	res := service.Register(httptest.NewRecorder(), second, ClientMeta{})

	if res.Status != StatusError || res.Message != "Username already exists" {
		t.Fatalf("expected username conflict, got %s: %s", res.Status, res.Message)
	}
}

// TestRegisterEmailPriorityOnDoubleCollision verifies that when both
// fields collide, the email message wins.
func TestRegisterEmailPriorityOnDoubleCollision(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	if res := service.Register(httptest.NewRecorder(), validRegistration(), ClientMeta{}); res.Status != StatusSuccess {
		t.Fatalf("seed registration failed: %s", res.Message)
	}

	res := service.Register(httptest.NewRecorder(), validRegistration(), ClientMeta{})
	if res.Message != "Email already exists" {
		t.Fatalf("expected email message on double collision, got %q", res.Message)
	}
}

// TestRegisterValidationFailure verifies that invalid input produces an
// ERROR with the first failing rule's message and no side effects.
func TestRegisterValidationFailure(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	input := validRegistration()
	input.Password = "weak"
	res := service.Register(httptest.NewRecorder(), input, ClientMeta{})

	if res.Status != StatusError {
		t.Fatal("expected ERROR for weak password")
	}
	if store.userCount() != 0 || store.sessionCount() != 0 {
		t.Error("validation failure must have no side effects")
	}
}

// TestRegisterConcurrentSameEmail races two registrations with the same
// email: exactly one succeeds, the other gets a conflict outcome, and the
// store ends with exactly one matching row.
func TestRegisterConcurrentSameEmail(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	inputs := [2]RegistrationInput{validRegistration(), validRegistration()}
	inputs[1].Username = "jordanb_alt"

	var wg sync.WaitGroup
	results := make([]Result, 2)
	for i := range inputs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = service.Register(httptest.NewRecorder(), inputs[i], ClientMeta{})
		}(i)
	}
	wg.Wait()

	successes, conflicts := 0, 0
	for _, res := range results {
		switch {
		case res.Status == StatusSuccess:
			successes++
		case res.Message == "Email already exists":
			conflicts++
		default:
			t.Errorf("unexpected result %s: %s", res.Status, res.Message)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Errorf("want 1 success and 1 conflict, got %d and %d", successes, conflicts)
	}
	if store.userCount() != 1 {
		t.Errorf("uniqueness must survive the race, have %d rows", store.userCount())
	}
}

// TestRegisterConstraintFallbackRecheck verifies that an insert-time
// violation with an unrecognized constraint name still resolves to the
// right conflict message via the re-lookup fallback.
func TestRegisterConstraintFallbackRecheck(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	if res := service.Register(httptest.NewRecorder(), validRegistration(), ClientMeta{}); res.Status != StatusSuccess {
		t.Fatalf("seed registration failed: %s", res.Message)
	}

	second := validRegistration()
	second.Username = "freshname"
	input, msg := ValidateRegistration(second)
	if msg != "" {
		t.Fatalf("unexpected validation error: %s", msg)
	}

	// An empty field simulates a renamed constraint the store could not
	// map back to a column; the service must re-check to name it.
	if got := service.conflictMessageFor("", input); got != "Email already exists" {
		t.Fatalf("expected re-check to name the email field, got %q", got)
	}
	if got := service.conflictMessageFor("username", input); got != "Username already exists" {
		t.Fatalf("expected username message, got %q", got)
	}
}

// TestLoginSuccessIssuesNewSession verifies that each login issues a
// session row distinct from any prior one.
func TestLoginSuccessIssuesNewSession(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	if res := service.Register(httptest.NewRecorder(), validRegistration(), ClientMeta{}); res.Status != StatusSuccess {
		t.Fatalf("registration failed: %s", res.Message)
	}

	login := LoginInput{Email: "jordan.blake@example.com", Password: "Sup3rSecret!"}
	rec := httptest.NewRecorder()
	res := service.Login(rec, login, ClientMeta{})

	if res.Status != StatusSuccess {
		t.Fatalf("expected SUCCESS, got %s: %s", res.Status, res.Message)
	}
	if store.sessionCount() != 2 {
		t.Errorf("expected a second, distinct session row, have %d", store.sessionCount())
	}
	if sessionCookie(t, rec) == nil {
		t.Error("login must set a session cookie")
	}
}

// TestLoginIndistinguishableFailures verifies that an unknown email and a
// wrong password produce byte-identical results.
func TestLoginIndistinguishableFailures(t *testing.T) {
	store := newFakeStore()
	service, _ := newTestService(store)

	if res := service.Register(httptest.NewRecorder(), validRegistration(), ClientMeta{}); res.Status != StatusSuccess {
		t.Fatalf("registration failed: %s", res.Message)
	}

	unknown := service.Login(httptest.NewRecorder(), LoginInput{
		Email: "nobody@example.com", Password: "Sup3rSecret!",
	}, ClientMeta{})
	wrongPass := service.Login(httptest.NewRecorder(), LoginInput{
		Email: "jordan.blake@example.com", Password: "WrongPass1!",
	}, ClientMeta{})

	if unknown != wrongPass {
		t.Errorf("failure results differ: %+v vs %+v", unknown, wrongPass)
	}
	if unknown.Message != "Invalid Credentials" {
		t.Errorf("message = %q, want %q", unknown.Message, "Invalid Credentials")
	}
}
