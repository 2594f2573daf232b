package auth

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by store lookups that matched no row.
var ErrNotFound = errors.New("record not found")

// ErrSessionExpired is returned by Resolve for a session row whose
// expires_at has passed but which the sweeper has not removed yet.
var ErrSessionExpired = errors.New("session expired")

// ConstraintViolationError reports which unique column an insert collided
// on, so the caller can produce the right conflict message. Field is
// "email", "username", or empty when the constraint was unrecognized.
type ConstraintViolationError struct {
	Field string
}

func (e *ConstraintViolationError) Error() string {
	if e.Field == "" {
		return "unique constraint violation"
	}
	return fmt.Sprintf("unique constraint violation on %s", e.Field)
}
