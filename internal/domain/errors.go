package domain

import (
	"errors"
	"fmt"
)

// Domain errors - these represent business rule violations.
// They are distinct from infrastructure errors (filesystem, database, etc.).

var (
	// ErrUserNotFound indicates no account matches the given email.
	ErrUserNotFound = errors.New("user not found")

	// ErrUserAlreadyExists indicates an account with the same email exists.
	ErrUserAlreadyExists = errors.New("user already exists")

	// ErrInvalidCredentials indicates authentication failed. The same error
	// is returned whether the email is unknown or the password is wrong, so
	// callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrInvalidAPIKey indicates the shared-secret check failed.
	ErrInvalidAPIKey = errors.New("invalid API key")

	// ErrStoreCorrupt indicates the backing store exists but could not be
	// parsed. This is surfaced, never silently treated as an empty store.
	ErrStoreCorrupt = errors.New("credential store is corrupt")
)

// StoreError wraps a persistence failure with the path of the backing store.
type StoreError struct {
	// Err is the underlying error.
	Err error

	// Path identifies the backing store file.
	Path string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s (%s)", e.Err.Error(), e.Path)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error for errors.Is/errors.As.
func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a new StoreError with context.
func NewStoreError(err error, path string) *StoreError {
	return &StoreError{Err: err, Path: path}
}
