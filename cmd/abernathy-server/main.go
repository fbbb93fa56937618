// Package main is the entry point for the Abernathy accounts server.
// Abernathy Accounts is a minimal credential-management service: it registers
// accounts, authenticates login attempts, and exposes profile records behind
// a shared-secret access gate.
package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/prn-tf/abernathy-accounts/internal/auth"
	"github.com/prn-tf/abernathy-accounts/internal/config"
	"github.com/prn-tf/abernathy-accounts/internal/handler"
	"github.com/prn-tf/abernathy-accounts/internal/lock"
	"github.com/prn-tf/abernathy-accounts/internal/metrics"
	"github.com/prn-tf/abernathy-accounts/internal/repository"
	"github.com/prn-tf/abernathy-accounts/internal/service"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)
	logger := setupLogger(cfg.Logging)

	logger.Info().
		Str("version", Version).
		Str("build_time", BuildTime).
		Str("git_commit", GitCommit).
		Msg("starting Abernathy accounts server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Locker serializing store mutations (memory for single-node, redis for
	// processes sharing one store file).
	locker, err := newLocker(ctx, cfg.Lock, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize locker")
	}

	store, err := repository.NewStore(ctx, cfg.Store, cfg.Lock, locker, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize credential store")
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error().Err(err).Msg("failed to close credential store")
		}
	}()

	var (
		registry *prometheus.Registry
		m        *metrics.Metrics
	)
	if cfg.Metrics.Enabled {
		registry = prometheus.NewRegistry()
		m = metrics.New(registry)
	}

	accounts := service.NewAccountService(store.Users, logger)
	gate := auth.NewGate(cfg.Auth.APIKey)
	accountHandler := handler.NewAccountHandler(accounts, m, logger)

	routerCfg := handler.RouterConfig{
		AccountHandler: accountHandler,
		Gate:           gate,
		Metrics:        m,
		MetricsEnabled: cfg.Metrics.Enabled,
		MetricsPath:    cfg.Metrics.Path,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		MaxBodySize:    cfg.Server.MaxBodySize,
		Logger:         logger,
	}
	if registry != nil {
		routerCfg.Gatherer = registry
	}

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      handler.NewRouter(routerCfg),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("store", cfg.Store.Driver).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown error")
	}
	logger.Info().Msg("server stopped")
}

// setupLogger configures zerolog from the logging config section.
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = zerolog.InfoLevel
	}

	out := os.Stdout
	if cfg.Output == "stderr" {
		out = os.Stderr
	}

	var logger zerolog.Logger
	if cfg.Format == "console" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: out, TimeFormat: cfg.TimeFormat})
	} else {
		logger = zerolog.New(out)
	}

	return logger.Level(level).With().Timestamp().Logger()
}

// newLocker builds the configured store lock backend.
func newLocker(ctx context.Context, cfg config.LockConfig, logger zerolog.Logger) (lock.Locker, error) {
	switch cfg.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:        cfg.RedisAddr(),
			Password:    cfg.RedisPassword,
			DB:          cfg.RedisDB,
			DialTimeout: cfg.DialTimeout,
		})
		pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return nil, err
		}
		logger.Info().Str("addr", cfg.RedisAddr()).Msg("using redis store lock")
		return lock.NewRedisLocker(client), nil

	case "noop":
		return lock.NewNoOpLocker(), nil

	default:
		return lock.NewMemoryLocker(), nil
	}
}
