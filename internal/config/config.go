// Package config provides configuration management for the Abernathy accounts server.
// Configuration can be loaded from YAML files and environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	Lock    LockConfig    `mapstructure:"lock"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Logging LoggingConfig `mapstructure:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodySize     int64         `mapstructure:"max_body_size"`
}

// Addr returns the listen address in host:port format.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// StoreConfig holds credential store settings.
// Supports a flat JSON file and an embedded SQLite backend.
type StoreConfig struct {
	// Driver specifies the store backend: "file" or "sqlite".
	Driver string `mapstructure:"driver"`

	// File settings (used when Driver is "file")
	Path string `mapstructure:"path"` // Path to the users JSON file

	// SQLite settings (used when Driver is "sqlite")
	SQLitePath      string `mapstructure:"sqlite_path"`
	JournalMode     string `mapstructure:"journal_mode"`     // WAL, DELETE, TRUNCATE, etc.
	BusyTimeout     int    `mapstructure:"busy_timeout"`     // Milliseconds to wait for locks
	SynchronousMode string `mapstructure:"synchronous_mode"` // NORMAL, FULL, OFF
}

// IsEmbedded returns true if using the embedded database (SQLite).
func (c StoreConfig) IsEmbedded() bool {
	return c.Driver == "sqlite"
}

// LockConfig holds store-mutation locking settings.
// Memory locks serve single-node deployments; Redis locks serialize writers
// that share one store file across processes.
type LockConfig struct {
	// Backend specifies the lock implementation: "memory", "redis" or "noop".
	Backend string `mapstructure:"backend"`

	// TTL is how long an acquired store lock is held before expiring.
	TTL time.Duration `mapstructure:"ttl"`

	// MaxRetries is the number of acquisition retries per mutation.
	MaxRetries int `mapstructure:"max_retries"`

	// RetryDelay is the wait between acquisition retries.
	RetryDelay time.Duration `mapstructure:"retry_delay"`

	// Redis settings (used when Backend is "redis")
	RedisHost     string        `mapstructure:"redis_host"`
	RedisPort     int           `mapstructure:"redis_port"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db"`
	DialTimeout   time.Duration `mapstructure:"dial_timeout"`
}

// RedisAddr returns the Redis address in host:port format.
func (c LockConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.RedisHost, c.RedisPort)
}

// AuthConfig holds authentication settings.
type AuthConfig struct {
	// APIKey is the pre-shared secret protecting profile endpoints.
	// It must be provided at runtime; there is no default.
	APIKey string `mapstructure:"api_key"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	TimeFormat string `mapstructure:"time_format"`
}

// MetricsConfig holds Prometheus metrics settings.
type MetricsConfig struct {
	// Enabled determines if metrics collection is active.
	Enabled bool `mapstructure:"enabled"`

	// Path is the URL path for the metrics endpoint.
	Path string `mapstructure:"path"`
}

// CORSConfig holds cross-origin request settings for browser clients.
type CORSConfig struct {
	// AllowedOrigins lists origins permitted to call the API.
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Load reads configuration from the specified file and environment variables.
// Environment variables take precedence over file values.
// Environment variables are prefixed with ABERNATHY_ and use _ as separator.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Environment variable configuration
	v.SetEnvPrefix("ABERNATHY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file configuration
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/abernathy")
	}

	// Read config file (optional - environment variables can be used instead)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is acceptable - use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)
	v.SetDefault("server.max_body_size", 1*1024*1024) // 1MB

	// Store defaults
	v.SetDefault("store.driver", "file")
	v.SetDefault("store.path", "./data/users.json")
	v.SetDefault("store.sqlite_path", "./data/accounts.db")
	v.SetDefault("store.journal_mode", "WAL")
	v.SetDefault("store.busy_timeout", 5000)
	v.SetDefault("store.synchronous_mode", "NORMAL")

	// Lock defaults
	v.SetDefault("lock.backend", "memory")
	v.SetDefault("lock.ttl", 5*time.Second)
	v.SetDefault("lock.max_retries", 10)
	v.SetDefault("lock.retry_delay", 50*time.Millisecond)
	v.SetDefault("lock.redis_host", "localhost")
	v.SetDefault("lock.redis_port", 6379)
	v.SetDefault("lock.redis_password", "")
	v.SetDefault("lock.redis_db", 0)
	v.SetDefault("lock.dial_timeout", 5*time.Second)

	// Auth defaults
	v.SetDefault("auth.api_key", "") // Must be provided

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")
	v.SetDefault("logging.time_format", time.RFC3339)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	// CORS defaults
	v.SetDefault("cors.allowed_origins", []string{"*"})
}

// Validate checks the configuration for required values and valid ranges.
func (c *Config) Validate() error {
	// Validate server configuration
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}

	// Validate store configuration
	validDrivers := map[string]bool{"file": true, "sqlite": true}
	if !validDrivers[c.Store.Driver] {
		return fmt.Errorf("store.driver must be 'file' or 'sqlite'")
	}

	if c.Store.Driver == "file" && c.Store.Path == "" {
		return fmt.Errorf("store.path is required for file driver")
	}
	if c.Store.Driver == "sqlite" && c.Store.SQLitePath == "" {
		return fmt.Errorf("store.sqlite_path is required for sqlite driver")
	}

	// Validate lock configuration
	validBackends := map[string]bool{"memory": true, "redis": true, "noop": true}
	if !validBackends[c.Lock.Backend] {
		return fmt.Errorf("lock.backend must be 'memory', 'redis' or 'noop'")
	}

	// Validate auth configuration
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}

	// Validate logging configuration
	validLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("logging.level must be one of: trace, debug, info, warn, error, fatal, panic")
	}

	return nil
}

// MustLoad loads configuration or panics on error.
// Useful for main function initialization.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}
	return cfg
}
