package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// Store is the persistence boundary for user and session records.
// Lookups return ErrNotFound when no row matches; InsertUser returns a
// *ConstraintViolationError on a duplicate email or username.
type Store interface {
	FindUserByEmailOrUsername(email, username string) (*User, error)
	FindUserByEmail(email string) (*User, error)
	InsertUser(user *User) (uint, error)
	InsertSession(session *Session) error
	FindSessionWithUser(digest string) (*Session, *User, error)
	DeleteSession(digest string) error
	DeleteExpiredSessions(before time.Time, limit int) (int64, error)
}

type gormStore struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) FindUserByEmailOrUsername(email, username string) (*User, error) {
	var user User
	err := s.db.Where("email = ? OR username = ?", email, username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *gormStore) FindUserByEmail(email string) (*User, error) {
	var user User
	err := s.db.First(&user, "email = ?", email).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// pgUniqueViolation is the postgres error code for unique_violation.
const pgUniqueViolation = "23505"

func (s *gormStore) InsertUser(user *User) (uint, error) {
	if err := s.db.Create(user).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return 0, &ConstraintViolationError{Field: constraintField(pgErr.ConstraintName)}
		}
		return 0, err
	}
	return user.ID, nil
}

// constraintField maps a unique-index name back to the column that
// collided. The index names come from the gorm tags on User.
func constraintField(name string) string {
	switch {
	case strings.Contains(name, "email"):
		return "email"
	case strings.Contains(name, "username"):
		return "username"
	}
	return ""
}

func (s *gormStore) InsertSession(session *Session) error {
	return s.db.Create(session).Error
}

func (s *gormStore) FindSessionWithUser(digest string) (*Session, *User, error) {
	var row struct {
		SessionID        string
		UserID           uint
		ExpiresAt        time.Time
		IP               string
		UserAgent        string
		SessionCreatedAt time.Time
		ID               uint
		Name             string
		Username         string
		Email            string
		PasswordHash     string
		Role             string
	}

	err := s.db.
		Table("app_auth.sessions AS s").
		Select(`s.id AS session_id, s.user_id, s.expires_at, s.ip, s.user_agent,
			s.created_at AS session_created_at,
			u.id, u.name, u.username, u.email, u.password_hash, u.role`).
		Joins("INNER JOIN app_auth.users AS u ON u.id = s.user_id AND u.deleted_at IS NULL").
		Where("s.id = ?", digest).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	session := &Session{
		ID:        row.SessionID,
		UserID:    row.UserID,
		ExpiresAt: row.ExpiresAt,
		IP:        row.IP,
		UserAgent: row.UserAgent,
		CreatedAt: row.SessionCreatedAt,
	}
	user := &User{
		ID:           row.ID,
		Name:         row.Name,
		Username:     row.Username,
		Email:        row.Email,
		PasswordHash: row.PasswordHash,
		Role:         row.Role,
	}
	return session, user, nil
}

// DeleteSession is idempotent: deleting a digest with no row is not an
// error.
func (s *gormStore) DeleteSession(digest string) error {
	return s.db.Delete(&Session{}, "id = ?", digest).Error
}

// DeleteExpiredSessions removes at most limit rows whose expiry has
// passed and reports how many went away. Postgres has no DELETE ... LIMIT,
// hence the subquery.
func (s *gormStore) DeleteExpiredSessions(before time.Time, limit int) (int64, error) {
	res := s.db.Exec(`DELETE FROM app_auth.sessions
		WHERE id IN (SELECT id FROM app_auth.sessions WHERE expires_at < ? LIMIT ?)`,
		before, limit)
	return res.RowsAffected, res.Error
}
