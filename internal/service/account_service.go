// Package service provides business logic services for Abernathy Accounts.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/abernathy-accounts/internal/domain"
	"github.com/prn-tf/abernathy-accounts/internal/repository"
)

var (
	// emailPattern requires one non-whitespace, non-@ run, a literal @,
	// another such run, a literal dot, and one more such run.
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

	// usernamePattern is enforced on profile updates only. Registration
	// deliberately accepts free-form usernames.
	usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9]+$`)
)

// minPasswordLength is the minimum accepted password length at registration,
// counted in characters, not bytes.
const minPasswordLength = 8

// AccountService handles registration, authentication and profile operations.
type AccountService struct {
	users  repository.UserRepository
	logger zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(users repository.UserRepository, logger zerolog.Logger) *AccountService {
	return &AccountService{
		users:  users,
		logger: logger.With().Str("service", "account").Logger(),
	}
}

// RegisterInput contains the data needed to register an account.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// RegisterOutput contains the result of registering an account.
type RegisterOutput struct {
	User *domain.User
}

// Register creates a new account.
// The plaintext password is hashed with bcrypt and never stored or returned.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (*RegisterOutput, error) {
	if err := validateRegisterInput(input); err != nil {
		return nil, err
	}

	// Hash password
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to hash password")
		return nil, fmt.Errorf("%w: failed to hash password", ErrInternalError)
	}

	// Create user. Uniqueness is decided inside the repository's critical
	// section, so a concurrent registration for the same email cannot slip
	// past a check-then-append race here.
	user := domain.NewUser(input.Username, input.Email, string(passwordHash))

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return nil, fmt.Errorf("%w: email '%s'", ErrUserAlreadyExists, input.Email)
		}
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to create user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user registered")

	return &RegisterOutput{User: user}, nil
}

// Authenticate verifies credentials and returns the matching user.
// Unknown email and wrong password fail with the same ErrInvalidCredentials,
// so callers cannot tell which credential was wrong.
func (s *AccountService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// Log but don't expose whether the email exists
			s.logger.Debug().Str("email", email).Msg("unknown email during authentication")
			return nil, ErrInvalidCredentials
		}
		s.logger.Error().Err(err).Str("email", email).Msg("failed to look up user")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.logger.Debug().Str("email", email).Msg("invalid password during authentication")
		return nil, ErrInvalidCredentials
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("user authenticated")

	return user, nil
}

// Profiles returns every stored account record.
// Password hashes stay inside the domain struct and are stripped by the
// handler's JSON projection.
func (s *AccountService) Profiles(ctx context.Context) ([]*domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to list users")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}
	return users, nil
}

// UpdateUsernameInput contains the data needed to update a username.
type UpdateUsernameInput struct {
	Email       string
	NewUsername string
}

// UpdateUsernameOutput contains the result of a username update.
type UpdateUsernameOutput struct {
	User *domain.User
}

// UpdateUsername changes the display name of the account matching email.
// Unlike registration, the new username must be strictly alphanumeric.
func (s *AccountService) UpdateUsername(ctx context.Context, input UpdateUsernameInput) (*UpdateUsernameOutput, error) {
	if input.NewUsername == "" || !usernamePattern.MatchString(input.NewUsername) {
		return nil, ErrInvalidUsername
	}

	user, err := s.users.UpdateUsername(ctx, input.Email, input.NewUsername)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, fmt.Errorf("%w: email '%s'", ErrUserNotFound, input.Email)
		}
		s.logger.Error().Err(err).Str("email", input.Email).Msg("failed to update username")
		return nil, fmt.Errorf("%w: %v", ErrInternalError, err)
	}

	s.logger.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Msg("username updated")

	return &UpdateUsernameOutput{User: user}, nil
}

// validateRegisterInput validates the input for registering an account.
// Username format is deliberately unconstrained here; only profile updates
// restrict it.
func validateRegisterInput(input RegisterInput) error {
	if input.Username == "" || input.Email == "" || input.Password == "" {
		return ErrMissingFields
	}

	if !emailPattern.MatchString(input.Email) {
		return ErrInvalidEmail
	}

	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		return ErrInvalidPassword
	}

	return nil
}
