package auth

import (
	"sort"
	"sync"
	"time"
)

// fakeStore is an in-memory Store for unit tests. It enforces the same
// uniqueness constraints as the real schema so races between the
// pre-check and the insert surface the way postgres would surface them.
type fakeStore struct {
	mu       sync.Mutex
	nextID   uint
	users    map[uint]*User
	sessions map[string]*Session
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:   1,
		users:    make(map[uint]*User),
		sessions: make(map[string]*Session),
	}
}

// userIDs returns user IDs in insertion order for deterministic matching.
func (f *fakeStore) userIDs() []uint {
	ids := make([]uint, 0, len(f.users))
	for id := range f.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (f *fakeStore) FindUserByEmailOrUsername(email, username string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.userIDs() {
		u := f.users[id]
		if u.Email == email || u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) FindUserByEmail(email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, id := range f.userIDs() {
		if f.users[id].Email == email {
			cp := *f.users[id]
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (f *fakeStore) InsertUser(user *User) (uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == user.Email {
			return 0, &ConstraintViolationError{Field: "email"}
		}
		if existing.Username == user.Username {
			return 0, &ConstraintViolationError{Field: "username"}
		}
	}

	user.ID = f.nextID
	f.nextID++
	cp := *user
	f.users[user.ID] = &cp
	return user.ID, nil
}

func (f *fakeStore) InsertSession(session *Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	cp := *session
	f.sessions[session.ID] = &cp
	return nil
}

func (f *fakeStore) FindSessionWithUser(digest string) (*Session, *User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	session, ok := f.sessions[digest]
	if !ok {
		return nil, nil, ErrNotFound
	}
	user, ok := f.users[session.UserID]
	if !ok {
		return nil, nil, ErrNotFound
	}
	sc, uc := *session, *user
	return &sc, &uc, nil
}

func (f *fakeStore) DeleteSession(digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.sessions, digest)
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(before time.Time, limit int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var n int64
	for id, s := range f.sessions {
		if n == int64(limit) {
			break
		}
		if s.ExpiresAt.Before(before) {
			delete(f.sessions, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) userCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.users)
}

func (f *fakeStore) sessionCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sessions)
}
