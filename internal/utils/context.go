package utils

import (
	"context"
	"time"
)

// SessionData is the projection the session guard hands to downstream
// handlers: the owning user's identity plus the session's own metadata.
type SessionData struct {
	UserID    uint
	Name      string
	Username  string
	Email     string
	Role      string
	ExpiresAt time.Time
}

type contextKey string

const ContextUserKey contextKey = "currentUser"

func WithCurrentUser(ctx context.Context, u SessionData) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

func GetCurrentUser(ctx context.Context) (SessionData, bool) {
	u, ok := ctx.Value(ContextUserKey).(SessionData)
	return u, ok
}
