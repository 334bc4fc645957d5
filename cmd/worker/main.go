// Command momentum-worker relays the outbox to RabbitMQ and re-evaluates
// achievements for the events it consumes back.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixgeelhaar/momentum/internal/app"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/momentum/pkg/config"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"golang.org/x/sync/errgroup"
)

func main() {
	logger := observability.LoggerFor("worker", "info", false, false)
	if err := run(logger); err != nil {
		logger.Error("worker failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger = observability.LoggerFor("worker", cfg.LogLevel, cfg.IsDevelopment(), cfg.IsProduction())
	if cfg.IsLocalMode() {
		return errors.New("the worker needs DATABASE_URL; local mode delivers events in-process")
	}

	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initialize container: %w", err)
	}
	defer container.Close()

	processor := container.NewOutboxProcessor()
	if err := processor.Start(ctx); err != nil {
		return fmt.Errorf("start outbox processor: %w", err)
	}
	defer processor.Stop()

	g, ctx := errgroup.WithContext(ctx)

	consumer, err := eventbus.NewRabbitMQConsumer(eventbus.RabbitMQConsumerConfig{
		URL:    cfg.RabbitMQURL,
		Logger: logger.With("component", "consumer"),
	}, eventbus.NewConsumerRegistry(logger))
	switch {
	case err == nil:
		defer consumer.Close()
		consumer.RegisterConsumer(container.RecomputeSubscriber)
		g.Go(func() error { return ignoreCanceled(consumer.Start(ctx)) })
	case cfg.IsDevelopment():
		logger.Warn("RabbitMQ not available, achievements will not be re-evaluated", "error", err)
	default:
		return fmt.Errorf("start consumer: %w", err)
	}

	g.Go(func() error {
		every(ctx, cfg.OutboxCleanupInterval, func() { purgeOutbox(ctx, container, cfg, logger) })
		return nil
	})
	g.Go(func() error {
		every(ctx, cfg.OutboxStatsInterval, func() { logStats(container, processor.Stats(), logger) })
		return nil
	})

	if cfg.WorkerHealthAddr != "" {
		srv := &http.Server{
			Addr: cfg.WorkerHealthAddr,
			Handler: newHealthMux(healthSources{
				Outbox:  processor.Stats,
				Backlog: container.Repositories.Outbox.Backlog,
				Health:  container.Health,
				Metrics: container.Metrics,
			}),
			ReadHeaderTimeout: 5 * time.Second,
		}
		g.Go(func() error {
			logger.Info("health server starting", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("health server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	logger.Info("worker started", "rabbitmq", consumer != nil, "health_addr", cfg.WorkerHealthAddr)
	err = g.Wait()
	logger.Info("shutting down worker")
	return err
}

func purgeOutbox(ctx context.Context, container *app.Container, cfg *config.Config, logger *slog.Logger) {
	cutoff := time.Now().AddDate(0, 0, -cfg.OutboxRetentionDays)
	deleted, err := container.Repositories.Outbox.Purge(ctx, cutoff)
	if err != nil {
		logger.Error("outbox cleanup failed", "error", err)
		return
	}
	if deleted > 0 {
		logger.Info("outbox cleanup completed", "deleted", deleted, "retention_days", cfg.OutboxRetentionDays)
	}
}

func logStats(container *app.Container, relay outbox.Stats, logger *slog.Logger) {
	snapshot := container.Metrics.Snapshot()
	logger.Info("worker stats",
		"published", relay.Published,
		"failed", relay.Failed,
		"dead", relay.Dead,
		"lag_seconds", relay.LagSeconds,
		"last_error", relay.LastError,
		"recomputes", snapshot.Counters[observability.MetricRecomputeTotal],
		"recompute_errors", snapshot.Counters[observability.MetricRecomputeErrors],
	)
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// every runs fn on each tick until ctx ends. Non-positive intervals disable it.
func every(ctx context.Context, interval time.Duration, fn func()) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
