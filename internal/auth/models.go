package auth

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleAdmin     = "admin"
	RoleApplicant = "applicant"
	RoleEmployer  = "employer"
)

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	Name         string         `gorm:"size:255;not null" json:"name"`
	Username     string         `gorm:"size:255;not null;uniqueIndex:idx_users_username" json:"username"`
	Email        string         `gorm:"size:255;not null;uniqueIndex:idx_users_email" json:"email"`
	PasswordHash string         `gorm:"not null" json:"-"`
	Role         string         `gorm:"size:32;not null;default:'applicant'" json:"role"`
	PhoneNumber  *string        `gorm:"size:255" json:"phone_number,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Session rows are keyed by the SHA-256 digest of the token, never the
// token itself. A user may hold any number of concurrent sessions.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64" json:"-"`
	UserID    uint      `gorm:"not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	IP        string    `gorm:"size:64" json:"-"`
	UserAgent string    `gorm:"size:512" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string    { return "app_auth.users" }
func (Session) TableName() string { return "app_auth.sessions" }
