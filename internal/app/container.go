package app

import (
	"context"
	"fmt"
	"log/slog"

	progressApp "github.com/felixgeelhaar/momentum/internal/progress/application"
	"github.com/felixgeelhaar/momentum/internal/progress/application/subscribers"
	progressDomain "github.com/felixgeelhaar/momentum/internal/progress/domain"
	progressCache "github.com/felixgeelhaar/momentum/internal/progress/infrastructure/cache"
	progressPersistence "github.com/felixgeelhaar/momentum/internal/progress/infrastructure/persistence"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database"
	_ "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database/postgres" // Register PostgreSQL driver
	_ "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database/sqlite"   // Register SQLite driver
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/migrations"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/momentum/pkg/config"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// maxDrainPasses bounds local event delivery. Activity events trigger
// evaluation, which enqueues unlock events; nothing consumes those further.
const maxDrainPasses = 3

// Container holds all application dependencies.
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Database
	DBConn   database.Connection
	DBDriver database.Driver

	// Redis (optional)
	RedisClient *redis.Client

	Repositories   progressApp.Repositories
	ActivitySource *progressPersistence.BreakerActivitySource
	Service        *progressApp.Service

	// Events
	EventPublisher      eventbus.Publisher
	EventBus            *eventbus.InProcessEventBus // local mode only
	OutboxProcessor     *outbox.Processor           // local mode only
	Deduper             subscribers.EventDeduper
	RecomputeSubscriber *subscribers.RecomputeSubscriber

	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry
}

// NewContainer creates the server-side container backed by PostgreSQL,
// RabbitMQ and (optionally) Redis.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.Driver(cfg.DatabaseDriver),
		URL:        cfg.DatabaseURL,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()
	logger.Info("connected to database", "driver", c.DBDriver)

	if err := migrate(ctx, conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Connect to Redis (optional in development)
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			if !cfg.IsDevelopment() {
				conn.Close()
				return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
			}
			logger.Warn("invalid Redis URL, event dedup will use in-memory fallback", "error", err)
		} else {
			redisClient := redis.NewClient(opt)
			if err := redisClient.Ping(ctx).Err(); err != nil {
				if !cfg.IsDevelopment() {
					conn.Close()
					return nil, fmt.Errorf("failed to connect to Redis: %w", err)
				}
				logger.Warn("Redis not available, event dedup will use in-memory fallback", "error", err)
			} else {
				c.RedisClient = redisClient
				logger.Info("connected to Redis")
			}
		}
	}

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, logger)
	if err != nil {
		// Fall back to noop publisher in development
		if !cfg.IsDevelopment() {
			c.Close()
			return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
		}
		logger.Warn("RabbitMQ not available, using noop publisher")
		c.EventPublisher = eventbus.NewNoopPublisher(logger)
	} else {
		c.EventPublisher = publisher
	}

	if err := c.wire(); err != nil {
		c.Close()
		return nil, err
	}

	logger.Info("container initialized", "driver", c.DBDriver)
	return c, nil
}

// NewLocalContainer creates a container for local mode with SQLite.
// Events are delivered in-process, so no Redis or RabbitMQ is required.
func NewLocalContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
	}

	conn, err := initSQLiteConnection(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite: %w", err)
	}
	c.DBConn = conn
	c.DBDriver = conn.Driver()

	c.EventBus = eventbus.NewInProcessEventBus(logger)
	c.EventPublisher = c.EventBus

	if err := c.wire(); err != nil {
		c.Close()
		return nil, err
	}

	c.EventBus.RegisterConsumer(c.RecomputeSubscriber)
	c.OutboxProcessor = c.NewOutboxProcessor()

	logger.Debug("local container initialized",
		"driver", "sqlite",
		"path", cfg.SQLitePath,
	)
	return c, nil
}

// Open picks the local or server container from the configuration.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if cfg.IsLocalMode() {
		return NewLocalContainer(ctx, cfg, logger)
	}
	return NewContainer(ctx, cfg, logger)
}

// wire builds the driver-independent part of the graph over c.DBConn.
func (c *Container) wire() error {
	cfg := c.Config

	repos, err := Repositories(c.DBConn)
	if err != nil {
		return fmt.Errorf("failed to create repositories: %w", err)
	}
	c.Repositories = repos

	c.ActivitySource = progressPersistence.NewBreakerActivitySource(repos.Activities, progressPersistence.BreakerConfig{
		FailureThreshold: uint32(max(cfg.SourceBreakerFailures, 0)),
		Timeout:          cfg.SourceBreakerTimeout,
	}, c.Logger.With("component", "activity_source"))

	c.Service = progressApp.NewService(repos, progressApp.Options{
		Clock:       progressDomain.NewClock(cfg.Location()),
		DefaultGoal: cfg.DailyGoal,
		Consistency: metrics.ConsistencyConfig{
			RecoveryMinRecords: cfg.RecoveryMinRecords,
			RecoveryDefault:    cfg.RecoveryDefault,
		},
		ActivitySource: c.ActivitySource,
	}, c.Logger)

	if c.RedisClient != nil {
		c.Deduper = progressCache.NewRedisDeduper(c.RedisClient, cfg.EventDedupTTL)
	} else {
		c.Deduper = subscribers.NewMemoryDeduper(cfg.EventDedupTTL)
	}
	c.RecomputeSubscriber = subscribers.NewRecomputeSubscriber(
		c.Service.EvaluateAchievements,
		c.Deduper,
		c.Logger.With("component", "recompute"),
	).WithMetrics(c.Metrics)

	c.Health.Register("database", observability.PingChecker("database", observability.HealthStatusUnhealthy, c.DBConn.Ping))
	if c.RedisClient != nil {
		c.Health.Register("redis", observability.PingChecker("redis", observability.HealthStatusDegraded, func(ctx context.Context) error {
			return c.RedisClient.Ping(ctx).Err()
		}))
	}
	c.Health.Register("outbox", func(ctx context.Context) observability.HealthCheckResult {
		backlog, err := repos.Outbox.Backlog(ctx)
		switch {
		case err != nil:
			return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: err.Error()}
		case backlog.Dead > 0:
			return observability.HealthCheckResult{
				Status:  observability.HealthStatusDegraded,
				Message: fmt.Sprintf("%d dead-lettered, %d pending", backlog.Dead, backlog.Pending),
			}
		}
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy, Message: fmt.Sprintf("%d pending", backlog.Pending)}
	})
	c.Health.Register("activity_source", func(context.Context) observability.HealthCheckResult {
		if c.ActivitySource.State() == gobreaker.StateOpen {
			return observability.HealthCheckResult{Status: observability.HealthStatusDegraded, Message: "circuit open"}
		}
		return observability.HealthCheckResult{Status: observability.HealthStatusHealthy}
	})
	return nil
}

// NewOutboxProcessor builds a processor that relays the outbox to the
// container's publisher.
func (c *Container) NewOutboxProcessor() *outbox.Processor {
	return outbox.NewProcessor(c.Repositories.Outbox, c.EventPublisher, processorConfig(c.Config), c.Logger.With("component", "outbox"))
}

// DeliverEvents publishes pending outbox messages to the in-process
// consumers. It is a no-op outside local mode, where the worker does this.
func (c *Container) DeliverEvents(ctx context.Context) error {
	if c.OutboxProcessor == nil {
		return nil
	}
	return c.OutboxProcessor.Drain(ctx, maxDrainPasses)
}

// Close cleans up all resources.
func (c *Container) Close() {
	if c.OutboxProcessor != nil {
		c.OutboxProcessor.Stop()
	}

	if c.EventPublisher != nil {
		if err := c.EventPublisher.Close(); err != nil {
			c.Logger.Warn("error closing event publisher", "error", err)
		}
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			c.Logger.Warn("error closing Redis connection", "error", err)
		} else {
			c.Logger.Info("Redis connection closed")
		}
	}

	if c.DBConn != nil {
		if err := c.DBConn.Close(); err != nil {
			c.Logger.Warn("error closing database connection", "driver", c.DBDriver, "error", err)
		} else {
			c.Logger.Debug("database connection closed", "driver", c.DBDriver)
		}
	}
}

// processorConfig overlays the configured outbox settings on the defaults.
func processorConfig(cfg *config.Config) outbox.ProcessorConfig {
	pc := outbox.DefaultProcessorConfig()
	if cfg.OutboxPollInterval > 0 {
		pc.PollInterval = cfg.OutboxPollInterval
	}
	if cfg.OutboxBatchSize > 0 {
		pc.BatchSize = cfg.OutboxBatchSize
	}
	if cfg.OutboxMaxRetries > 0 {
		pc.MaxRetries = cfg.OutboxMaxRetries
	}
	return pc
}

// sqliteConnection is a database.Connection that exposes DB().
type sqliteConnection interface {
	database.Connection
	dbHandle
}

// initSQLiteConnection opens the SQLite file and applies the schema.
func initSQLiteConnection(ctx context.Context, cfg *config.Config, logger *slog.Logger) (sqliteConnection, error) {
	conn, err := database.NewConnection(ctx, database.Config{
		Driver:     database.DriverSQLite,
		SQLitePath: cfg.SQLitePath,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create SQLite connection: %w", err)
	}

	sqliteConn, ok := conn.(sqliteConnection)
	if !ok {
		conn.Close()
		return nil, fmt.Errorf("expected SQLite connection with DB() method, got %T", conn)
	}

	logger.Debug("running SQLite migrations")
	if err := migrate(ctx, sqliteConn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return sqliteConn, nil
}

// migrate applies the schema for whichever backend conn is.
func migrate(ctx context.Context, conn database.Connection) error {
	switch c := conn.(type) {
	case poolHandle:
		return migrations.RunPostgresMigrations(ctx, c.Pool())
	case dbHandle:
		return migrations.RunSQLiteMigrations(ctx, c.DB())
	default:
		return fmt.Errorf("no migrations for %s", conn.Driver())
	}
}
