package domain

import (
	"errors"
	"fmt"
)

// AuthErrorKind handshake failure reason
type AuthErrorKind string

const (
	// AuthMissingToken no credential on the handshake
	AuthMissingToken AuthErrorKind = "missing_token"
	// AuthInvalidToken credential failed verification
	AuthInvalidToken AuthErrorKind = "invalid_token"
	// AuthUserNotFound credential verified but no such user
	AuthUserNotFound AuthErrorKind = "user_not_found"
)

// AuthError aborts connection establishment; the connection is never registered
type AuthError struct {
	Kind AuthErrorKind
}

func (e *AuthError) Error() string {
	return "auth error: " + string(e.Kind)
}

var (
	// ErrAccessDenied action on a resource the identity doesn't own or isn't member of
	ErrAccessDenied = errors.New("access denied")
	// ErrNotFound unknown conversation, message or notification
	ErrNotFound = errors.New("not found")
)

// PersistenceFailure downstream store error, scoped to the originating action
type PersistenceFailure struct {
	Op  string
	Err error
}

func (e *PersistenceFailure) Error() string {
	return fmt.Sprintf("persistence failure on %s: %v", e.Op, e.Err)
}

func (e *PersistenceFailure) Unwrap() error {
	return e.Err
}
