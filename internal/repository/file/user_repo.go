// Package file provides a flat-file credential store backend.
// The full set of user records is kept as one pretty-printed JSON array,
// reloaded on every operation and rewritten wholesale on every mutation.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/domain"
	"github.com/prn-tf/abernathy-accounts/internal/lock"
)

// Config holds settings for the file-backed store.
type Config struct {
	// Path is the location of the users JSON file.
	Path string

	// LockTTL is how long the cross-process store lock is held.
	LockTTL time.Duration

	// LockMaxRetries is the number of lock acquisition retries per mutation.
	LockMaxRetries int

	// LockRetryDelay is the wait between lock acquisition retries.
	LockRetryDelay time.Duration
}

// DefaultConfig returns a default file store configuration.
func DefaultConfig(path string) Config {
	return Config{
		Path:           path,
		LockTTL:        5 * time.Second,
		LockMaxRetries: 10,
		LockRetryDelay: 50 * time.Millisecond,
	}
}

// userRecord is the on-disk representation of a user.
// Unlike domain.User it carries the password hash, which only ever lives in
// the store file and is compared, never decoded.
type userRecord struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"passwordHash"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func toRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Username:     u.Username,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

// UserRepository implements the credential store on a flat JSON file.
//
// Concurrency discipline: the in-process RWMutex makes every load-mutate-save
// cycle one critical section, and reads never interleave with an in-flight
// write. The Locker extends the same guarantee across processes sharing the
// file. Writes are atomic replaces, so a crash mid-write cannot leave a
// truncated store.
type UserRepository struct {
	cfg    Config
	locker lock.Locker
	logger zerolog.Logger
	mu     sync.RWMutex
}

// NewUserRepository creates a file-backed user repository.
func NewUserRepository(cfg Config, locker lock.Locker, logger zerolog.Logger) *UserRepository {
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 5 * time.Second
	}
	if cfg.LockMaxRetries <= 0 {
		cfg.LockMaxRetries = 10
	}
	if cfg.LockRetryDelay <= 0 {
		cfg.LockRetryDelay = 50 * time.Millisecond
	}
	return &UserRepository{
		cfg:    cfg,
		locker: locker,
		logger: logger.With().Str("repository", "file").Logger(),
	}
}

// Create appends a new user record.
// The duplicate-email check and the append run inside one critical section,
// so at most one registration per email can succeed under concurrency.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.withStoreLock(ctx, func() error {
		records, err := r.load()
		if err != nil {
			return err
		}

		for _, rec := range records {
			if rec.Email == user.Email {
				return fmt.Errorf("%w: email '%s'", domain.ErrUserAlreadyExists, user.Email)
			}
		}

		records = append(records, toRecord(user))
		return r.save(records)
	})
}

// GetByEmail retrieves a user by email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	for _, rec := range records {
		if rec.Email == email {
			return rec.toDomain(), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// ExistsByEmail checks if a user with the given email exists.
func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// List returns all user records in insertion order.
func (r *UserRepository) List(ctx context.Context) ([]*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records, err := r.load()
	if err != nil {
		return nil, err
	}

	users := make([]*domain.User, 0, len(records))
	for _, rec := range records {
		users = append(users, rec.toDomain())
	}
	return users, nil
}

// UpdateUsername changes the username of the record matching email in place
// and rewrites the store.
func (r *UserRepository) UpdateUsername(ctx context.Context, email, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var updated *domain.User
	err := r.withStoreLock(ctx, func() error {
		records, err := r.load()
		if err != nil {
			return err
		}

		idx := -1
		for i, rec := range records {
			if rec.Email == email {
				idx = i
				break
			}
		}
		if idx == -1 {
			return domain.ErrUserNotFound
		}

		records[idx].Username = username
		records[idx].UpdatedAt = time.Now().UTC()

		if err := r.save(records); err != nil {
			return err
		}
		updated = records[idx].toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// withStoreLock runs fn while holding the cross-process store lock.
func (r *UserRepository) withStoreLock(ctx context.Context, fn func() error) error {
	key := lock.Keys.UserStore()

	acquired, err := r.locker.AcquireWithRetry(ctx, key, r.cfg.LockTTL, r.cfg.LockMaxRetries, r.cfg.LockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire store lock: %w", err)
	}
	if !acquired {
		return fmt.Errorf("%w: %s", lock.ErrNotAcquired, key)
	}
	defer func() {
		if _, err := r.locker.Release(context.WithoutCancel(ctx), key); err != nil {
			r.logger.Error().Err(err).Str("key", key).Msg("failed to release store lock")
		}
	}()

	return fn()
}

// load reads and parses the backing file.
// An absent file is an uninitialized store and yields an empty sequence; a
// present but unparsable file is a surfaced persistence error, never
// silently discarded.
func (r *UserRepository) load() ([]userRecord, error) {
	data, err := os.ReadFile(r.cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, domain.NewStoreError(fmt.Errorf("failed to read store: %w", err), r.cfg.Path)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var records []userRecord
	if err := json.Unmarshal(data, &records); err != nil {
		r.logger.Error().Err(err).Str("path", r.cfg.Path).Msg("store file is unparsable")
		return nil, domain.NewStoreError(fmt.Errorf("%w: %v", domain.ErrStoreCorrupt, err), r.cfg.Path)
	}
	return records, nil
}

// save serializes the full sequence and atomically replaces the backing file.
func (r *UserRepository) save(records []userRecord) error {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return domain.NewStoreError(fmt.Errorf("failed to encode store: %w", err), r.cfg.Path)
	}

	if err := writeFileAtomic(r.cfg.Path, data, 0o600); err != nil {
		return domain.NewStoreError(fmt.Errorf("failed to write store: %w", err), r.cfg.Path)
	}
	return nil
}

// writeFileAtomic writes data to a temporary file in the target directory,
// syncs it, and renames it over path. An interrupted write can therefore
// never leave a truncated store behind.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".users-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	if err := os.Rename(tmpName, path); err != nil {
		return err
	}

	if d, err := os.Open(dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}
