package application

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailTaken           = errors.New("email already in use")
	ErrSelfFollow           = errors.New("cannot follow yourself")
	ErrAlreadyFollowing     = errors.New("already following this user")
	ErrStorePersistence     = errors.New("store persistence failed")
	ErrPostNotFound         = errors.New("post not found")
	ErrForbidden            = errors.New("forbidden")
	ErrNotificationNotFound = errors.New("notification not found")
	ErrInvalidUpload        = errors.New("invalid upload")
	ErrStorageUnavailable   = errors.New("object storage not configured")
	ErrInvalidResetToken    = errors.New("invalid or expired reset token")
	ErrResetUnavailable     = errors.New("password reset unavailable")
	ErrMalformedEvent       = errors.New("malformed social event")
)

func userNotFound(id string) error {
	return fmt.Errorf("%w: %s", ErrUserNotFound, id)
}

// PersistenceError wraps a store failure during a graph write.
//
// Partial is set when the target record was written but the actor record was
// not and the reversing write could not be applied either, leaving the two
// records asymmetric. Compensated is set when that reversing write landed.
type PersistenceError struct {
	Op          string
	UserID      string
	Partial     bool
	Compensated bool
	Err         error
}

func (e *PersistenceError) Error() string {
	msg := fmt.Sprintf("%s: save user %s: %v", e.Op, e.UserID, e.Err)
	switch {
	case e.Partial:
		msg += " (graph left asymmetric)"
	case e.Compensated:
		msg += " (target write reverted)"
	}
	return msg
}

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *PersistenceError) Is(target error) bool { return target == ErrStorePersistence }
