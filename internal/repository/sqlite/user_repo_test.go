package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/domain"
)

func newTestRepo(t *testing.T) (*UserRepository, *DB) {
	t.Helper()
	ctx := context.Background()

	db, err := NewDB(ctx, DefaultConfig(filepath.Join(t.TempDir(), "accounts.db")), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return NewUserRepository(db), db
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	user := domain.NewUser("alice", "a@b.com", "hash")
	if err := repo.Create(ctx, user); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := repo.GetByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.ID != user.ID || got.Username != "alice" || got.PasswordHash != "hash" {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("timestamps not round-tripped")
	}

	if _, err := repo.GetByEmail(ctx, "nobody@b.com"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, domain.NewUser("alice", "a@b.com", "hash1")); err != nil {
		t.Fatalf("first Create: %v", err)
	}

	// The UNIQUE constraint must surface as the domain error, not a raw
	// driver error.
	err := repo.Create(ctx, domain.NewUser("bob", "a@b.com", "hash2"))
	if !errors.Is(err, domain.ErrUserAlreadyExists) {
		t.Fatalf("expected ErrUserAlreadyExists, got %v", err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 1 {
		t.Errorf("expected 1 record, got %d", len(users))
	}
}

func TestUserRepository_ExistsByEmail(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	exists, err := repo.ExistsByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("ExistsByEmail: %v", err)
	}
	if exists {
		t.Error("expected no record before Create")
	}

	if err := repo.Create(ctx, domain.NewUser("alice", "a@b.com", "hash")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	exists, err = repo.ExistsByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("ExistsByEmail: %v", err)
	}
	if !exists {
		t.Error("expected record after Create")
	}
}

func TestUserRepository_List(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	emails := []string{"a@b.com", "b@c.com", "c@d.com"}
	for _, email := range emails {
		if err := repo.Create(ctx, domain.NewUser("u", email, "hash")); err != nil {
			t.Fatalf("Create %s: %v", email, err)
		}
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != len(emails) {
		t.Fatalf("expected %d records, got %d", len(emails), len(users))
	}
	for i, email := range emails {
		if users[i].Email != email {
			t.Errorf("insertion order broken at %d: got %s, want %s", i, users[i].Email, email)
		}
	}
}

func TestUserRepository_UpdateUsername(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Create(ctx, domain.NewUser("alice", "a@b.com", "hash")); err != nil {
		t.Fatalf("Create: %v", err)
	}

	updated, err := repo.UpdateUsername(ctx, "a@b.com", "abc123")
	if err != nil {
		t.Fatalf("UpdateUsername: %v", err)
	}
	if updated.Username != "abc123" {
		t.Errorf("expected username abc123, got %s", updated.Username)
	}

	got, err := repo.GetByEmail(ctx, "a@b.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Username != "abc123" {
		t.Errorf("update not persisted: got %s", got.Username)
	}

	if _, err := repo.UpdateUsername(ctx, "nobody@b.com", "abc123"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestDB_PragmasApplied(t *testing.T) {
	_, db := newTestRepo(t)

	// DefaultConfig requests WAL; a silently dropped pragma would leave the
	// default journal mode in place.
	var mode string
	if err := db.QueryRowContext(context.Background(), `PRAGMA journal_mode`).Scan(&mode); err != nil {
		t.Fatalf("PRAGMA journal_mode: %v", err)
	}
	if !strings.EqualFold(mode, "wal") {
		t.Errorf("expected journal_mode wal, got %s", mode)
	}

	var fk int
	if err := db.QueryRowContext(context.Background(), `PRAGMA foreign_keys`).Scan(&fk); err != nil {
		t.Fatalf("PRAGMA foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys on, got %d", fk)
	}
}
