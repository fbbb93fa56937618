// Package domain contains the core business entities for Abernathy Accounts.
// These are pure Go structs with no external service dependencies, representing
// the fundamental concepts of the credential store.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered account in the credential store.
type User struct {
	// ID is the unique identifier for the user (assigned at registration).
	ID string `json:"id"`

	// Username is the display name. Free-form at registration; restricted
	// to alphanumeric characters when changed through a profile update.
	Username string `json:"username"`

	// Email is the unique email address identifying the account.
	Email string `json:"email"`

	// PasswordHash is the bcrypt hash of the user's password.
	// This must never be exposed in API responses.
	PasswordHash string `json:"-"`

	// CreatedAt is the timestamp when the account was registered.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the account was last modified.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates a new User with a fresh ID and timestamps.
func NewUser(username, email, passwordHash string) *User {
	now := time.Now().UTC()
	return &User{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}
