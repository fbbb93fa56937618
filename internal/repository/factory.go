package repository

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/config"
	"github.com/prn-tf/abernathy-accounts/internal/lock"
	"github.com/prn-tf/abernathy-accounts/internal/repository/file"
	"github.com/prn-tf/abernathy-accounts/internal/repository/sqlite"
)

// Store bundles the user repository with the resources behind it.
type Store struct {
	Users  UserRepository
	closer io.Closer
}

// Close releases the backend resources, if any.
func (s *Store) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// NewStore creates the credential store backend selected by configuration.
// The locker serializes mutations for the file backend; SQLite relies on its
// own single-writer discipline and UNIQUE constraint instead.
func NewStore(ctx context.Context, cfg config.StoreConfig, lockCfg config.LockConfig, locker lock.Locker, logger zerolog.Logger) (*Store, error) {
	switch cfg.Driver {
	case "file":
		repo := file.NewUserRepository(file.Config{
			Path:           cfg.Path,
			LockTTL:        lockCfg.TTL,
			LockMaxRetries: lockCfg.MaxRetries,
			LockRetryDelay: lockCfg.RetryDelay,
		}, locker, logger)
		return &Store{Users: repo}, nil

	case "sqlite":
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.SQLitePath,
			JournalMode:     cfg.JournalMode,
			BusyTimeout:     cfg.BusyTimeout,
			SynchronousMode: cfg.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to migrate sqlite store: %w", err)
		}
		return &Store{Users: sqlite.NewUserRepository(db), closer: db}, nil

	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
