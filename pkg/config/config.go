// Package config reads runtime settings from the environment, after
// loading a .env file when one is present.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// DefaultUserID is the single local user when MOMENTUM_USER_ID is unset.
const DefaultUserID = "00000000-0000-0000-0000-000000000001"

// Config holds application configuration.
type Config struct {
	AppEnv   string
	LogLevel string
	UserID   string
	Timezone string

	DatabaseURL    string
	DatabaseDriver string
	SQLitePath     string
	LocalMode      bool

	RedisURL    string
	RabbitMQURL string

	OutboxPollInterval     time.Duration
	OutboxBatchSize        int
	OutboxMaxRetries       int
	OutboxStatsInterval    time.Duration
	OutboxRetentionDays    int
	OutboxCleanupInterval  time.Duration
	OutboxProcessorEnabled bool

	WorkerHealthAddr string

	MCPAddr      string
	MCPAuthToken string

	// Metrics engine
	DailyGoal          int
	RecoveryMinRecords int
	RecoveryDefault    int

	SourceBreakerFailures int
	SourceBreakerTimeout  time.Duration
	EventDedupTTL         time.Duration
}

// Load reads the environment. Unparseable values and settings that fail
// Validate are reported together.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var env envReader
	databaseURL := env.str("DATABASE_URL", "")
	localMode := env.boolean("MOMENTUM_LOCAL_MODE", databaseURL == "")
	driver := env.str("DATABASE_DRIVER", "auto")
	if localMode {
		driver = "sqlite"
	}

	cfg := &Config{
		AppEnv:   env.str("APP_ENV", "development"),
		LogLevel: env.str("LOG_LEVEL", "info"),
		UserID:   env.str("MOMENTUM_USER_ID", DefaultUserID),
		Timezone: env.str("MOMENTUM_TIMEZONE", "Local"),

		DatabaseURL:    databaseURL,
		DatabaseDriver: driver,
		SQLitePath:     env.str("MOMENTUM_SQLITE_PATH", defaultSQLitePath()),
		LocalMode:      localMode,

		RedisURL:    env.str("REDIS_URL", ""),
		RabbitMQURL: env.str("RABBITMQ_URL", ""),

		OutboxPollInterval:     env.duration("OUTBOX_POLL_INTERVAL", 100*time.Millisecond),
		OutboxBatchSize:        env.integer("OUTBOX_BATCH_SIZE", 100),
		OutboxMaxRetries:       env.integer("OUTBOX_MAX_RETRIES", 5),
		OutboxStatsInterval:    env.duration("OUTBOX_STATS_INTERVAL", 30*time.Second),
		OutboxRetentionDays:    env.integer("OUTBOX_RETENTION_DAYS", 14),
		OutboxCleanupInterval:  env.duration("OUTBOX_CLEANUP_INTERVAL", 24*time.Hour),
		OutboxProcessorEnabled: env.boolean("OUTBOX_PROCESSOR_ENABLED", true),

		WorkerHealthAddr: env.str("WORKER_HEALTH_ADDR", "0.0.0.0:8081"),

		MCPAddr:      env.str("MCP_ADDR", "0.0.0.0:8082"),
		MCPAuthToken: env.str("MCP_AUTH_TOKEN", ""),

		DailyGoal:          env.integer("MOMENTUM_DAILY_GOAL", 100),
		RecoveryMinRecords: env.integer("MOMENTUM_RECOVERY_MIN_RECORDS", 10),
		RecoveryDefault:    env.integer("MOMENTUM_RECOVERY_DEFAULT", 75),

		SourceBreakerFailures: env.integer("SOURCE_BREAKER_FAILURES", 5),
		SourceBreakerTimeout:  env.duration("SOURCE_BREAKER_TIMEOUT", 30*time.Second),
		EventDedupTTL:         env.duration("EVENT_DEDUP_TTL", 24*time.Hour),
	}

	if err := errors.Join(env.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that would otherwise fail later and far
// from their source.
func (c *Config) Validate() error {
	var errs []error
	if _, err := uuid.Parse(c.UserID); err != nil {
		errs = append(errs, fmt.Errorf("MOMENTUM_USER_ID: %w", err))
	}
	if _, err := c.loadLocation(); err != nil {
		errs = append(errs, fmt.Errorf("MOMENTUM_TIMEZONE: %w", err))
	}
	if c.DailyGoal <= 0 {
		errs = append(errs, fmt.Errorf("MOMENTUM_DAILY_GOAL must be positive, got %d", c.DailyGoal))
	}
	if c.RecoveryDefault < 0 || c.RecoveryDefault > 100 {
		errs = append(errs, fmt.Errorf("MOMENTUM_RECOVERY_DEFAULT must be within 0..100, got %d", c.RecoveryDefault))
	}
	if !c.LocalMode && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required when MOMENTUM_LOCAL_MODE is false"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsDevelopment() bool { return c.AppEnv == "development" }
func (c *Config) IsProduction() bool  { return c.AppEnv == "production" }

// IsLocalMode reports whether data lives in the local SQLite file.
func (c *Config) IsLocalMode() bool { return c.LocalMode }

// Location resolves the user's time zone. An unknown zone falls back to
// time.Local; Load has already rejected it.
func (c *Config) Location() *time.Location {
	loc, err := c.loadLocation()
	if err != nil {
		return time.Local
	}
	return loc
}

func (c *Config) loadLocation() (*time.Location, error) {
	if c.Timezone == "" || strings.EqualFold(c.Timezone, "Local") {
		return time.Local, nil
	}
	return time.LoadLocation(c.Timezone)
}

// envReader reads typed variables and remembers the ones that do not parse.
type envReader struct {
	errs []error
}

func (r *envReader) str(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func (r *envReader) integer(key string, def int) int {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not an integer", key, v))
		return def
	}
	return i
}

func (r *envReader) duration(key string, def time.Duration) time.Duration {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a duration", key, v))
		return def
	}
	return d
}

func (r *envReader) boolean(key string, def bool) bool {
	v := r.str(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		r.errs = append(r.errs, fmt.Errorf("%s: %q is not a boolean", key, v))
		return def
	}
	return b
}

func defaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".momentum", "data.db")
}
