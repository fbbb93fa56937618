// Package repository defines data access interfaces for Abernathy Accounts.
// These interfaces abstract the credential store, allowing different backends
// (flat JSON file, embedded SQLite) while keeping the service layer clean.
package repository

import (
	"context"

	"github.com/prn-tf/abernathy-accounts/internal/domain"
)

// UserRepository defines the interface for credential store access.
//
// The store is the single owned resource of the system: every implementation
// must serialize its mutations so that the duplicate-email check and the
// append happen as one critical section, and at most one registration per
// email can succeed under concurrency.
type UserRepository interface {
	// Create appends a new user record.
	// Returns domain.ErrUserAlreadyExists if the email is taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByEmail retrieves a user by email.
	// Returns domain.ErrUserNotFound if no record matches.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// ExistsByEmail checks if a user with the given email exists.
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// List returns all user records in insertion order.
	List(ctx context.Context) ([]*domain.User, error)

	// UpdateUsername changes the username of the record matching email and
	// returns the updated record.
	// Returns domain.ErrUserNotFound if no record matches.
	UpdateUsername(ctx context.Context, email, username string) (*domain.User, error)
}
