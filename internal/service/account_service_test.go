package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/prn-tf/abernathy-accounts/internal/domain"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	users     []*domain.User
	createErr error
	getErr    error
	listErr   error
}

func NewMockUserRepository() *MockUserRepository {
	return &MockUserRepository{}
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	if m.createErr != nil {
		return m.createErr
	}
	for _, u := range m.users {
		if u.Email == user.Email {
			return domain.ErrUserAlreadyExists
		}
	}
	m.users = append(m.users, user)
	return nil
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *MockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	for _, u := range m.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (m *MockUserRepository) List(ctx context.Context) ([]*domain.User, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.users, nil
}

func (m *MockUserRepository) UpdateUsername(ctx context.Context, email, username string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			u.Username = username
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func newTestService(repo *MockUserRepository) *AccountService {
	return NewAccountService(repo, zerolog.Nop())
}

func TestAccountService_Register(t *testing.T) {
	tests := []struct {
		name      string
		input     RegisterInput
		wantErr   error
		setupRepo func(*MockUserRepository)
	}{
		{
			name:    "success",
			input:   RegisterInput{Username: "alice", Email: "a@b.com", Password: "password1"},
			wantErr: nil,
		},
		{
			// Registration deliberately accepts free-form usernames; only
			// the profile-update path restricts them to alphanumerics.
			name:    "success with non-alphanumeric username",
			input:   RegisterInput{Username: "weird name!", Email: "w@x.org", Password: "password1"},
			wantErr: nil,
		},
		{
			name:    "missing username",
			input:   RegisterInput{Username: "", Email: "a@b.com", Password: "password1"},
			wantErr: ErrMissingFields,
		},
		{
			name:    "missing email",
			input:   RegisterInput{Username: "alice", Email: "", Password: "password1"},
			wantErr: ErrMissingFields,
		},
		{
			name:    "missing password",
			input:   RegisterInput{Username: "alice", Email: "a@b.com", Password: ""},
			wantErr: ErrMissingFields,
		},
		{
			name:    "email without at sign",
			input:   RegisterInput{Username: "alice", Email: "not-an-email", Password: "password1"},
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email without dot in domain",
			input:   RegisterInput{Username: "alice", Email: "a@bcom", Password: "password1"},
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "email with whitespace",
			input:   RegisterInput{Username: "alice", Email: "a b@c.com", Password: "password1"},
			wantErr: ErrInvalidEmail,
		},
		{
			name:    "password too short",
			input:   RegisterInput{Username: "alice", Email: "a@b.com", Password: "short"},
			wantErr: ErrInvalidPassword,
		},
		{
			// Length is counted in characters: 5 characters spanning 13
			// bytes is still too short.
			name:    "multibyte password too short",
			input:   RegisterInput{Username: "alice", Email: "a@b.com", Password: "秘密です1"},
			wantErr: ErrInvalidPassword,
		},
		{
			name:    "multibyte password long enough",
			input:   RegisterInput{Username: "alice", Email: "a@b.com", Password: "пароль12"},
			wantErr: nil,
		},
		{
			name:    "duplicate email",
			input:   RegisterInput{Username: "bob", Email: "a@b.com", Password: "password2"},
			wantErr: ErrUserAlreadyExists,
			setupRepo: func(m *MockUserRepository) {
				m.users = append(m.users, domain.NewUser("alice", "a@b.com", "hash"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			if tt.setupRepo != nil {
				tt.setupRepo(repo)
			}
			svc := newTestService(repo)

			output, err := svc.Register(context.Background(), tt.input)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("expected error %v, got nil", tt.wantErr)
				} else if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}

			if output.User == nil {
				t.Fatal("expected user in output")
			}
			if output.User.Username != tt.input.Username {
				t.Errorf("expected username %s, got %s", tt.input.Username, output.User.Username)
			}
			if output.User.PasswordHash == tt.input.Password {
				t.Error("password stored as plaintext")
			}
			if err := bcrypt.CompareHashAndPassword([]byte(output.User.PasswordHash), []byte(tt.input.Password)); err != nil {
				t.Errorf("stored hash does not verify against the password: %v", err)
			}
		})
	}
}

func TestAccountService_Authenticate(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password1"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	repo := NewMockUserRepository()
	repo.users = append(repo.users, domain.NewUser("alice", "a@b.com", string(hash)))
	svc := newTestService(repo)

	t.Run("success", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "a@b.com", "password1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if user.Username != "alice" || user.Email != "a@b.com" {
			t.Errorf("unexpected user: %+v", user)
		}
	})

	t.Run("wrong password and unknown email fail identically", func(t *testing.T) {
		_, wrongPwErr := svc.Authenticate(context.Background(), "a@b.com", "wrong")
		_, unknownErr := svc.Authenticate(context.Background(), "nobody@b.com", "password1")

		if !errors.Is(wrongPwErr, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for wrong password, got %v", wrongPwErr)
		}
		if !errors.Is(unknownErr, ErrInvalidCredentials) {
			t.Errorf("expected ErrInvalidCredentials for unknown email, got %v", unknownErr)
		}
		// Identical messages prevent account enumeration.
		if wrongPwErr.Error() != unknownErr.Error() {
			t.Errorf("error messages differ: %q vs %q", wrongPwErr.Error(), unknownErr.Error())
		}
	})
}

func TestAccountService_Profiles(t *testing.T) {
	repo := NewMockUserRepository()
	repo.users = append(repo.users,
		domain.NewUser("alice", "a@b.com", "hash-a"),
		domain.NewUser("bob", "b@c.com", "hash-b"),
	)
	svc := newTestService(repo)

	users, err := svc.Profiles(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestAccountService_UpdateUsername(t *testing.T) {
	tests := []struct {
		name    string
		input   UpdateUsernameInput
		wantErr error
	}{
		{
			name:    "success",
			input:   UpdateUsernameInput{Email: "a@b.com", NewUsername: "abc123"},
			wantErr: nil,
		},
		{
			name:    "empty username",
			input:   UpdateUsernameInput{Email: "a@b.com", NewUsername: ""},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "username with space",
			input:   UpdateUsernameInput{Email: "a@b.com", NewUsername: "abc 123"},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "username with symbol",
			input:   UpdateUsernameInput{Email: "a@b.com", NewUsername: "abc_123"},
			wantErr: ErrInvalidUsername,
		},
		{
			name:    "unknown email",
			input:   UpdateUsernameInput{Email: "nobody@b.com", NewUsername: "abc123"},
			wantErr: ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewMockUserRepository()
			repo.users = append(repo.users, domain.NewUser("alice", "a@b.com", "hash"))
			svc := newTestService(repo)

			output, err := svc.UpdateUsername(context.Background(), tt.input)

			if tt.wantErr != nil {
				if err == nil {
					t.Errorf("expected error %v, got nil", tt.wantErr)
				} else if !errors.Is(err, tt.wantErr) {
					t.Errorf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if output.User.Username != tt.input.NewUsername {
				t.Errorf("expected username %s, got %s", tt.input.NewUsername, output.User.Username)
			}
		})
	}
}
