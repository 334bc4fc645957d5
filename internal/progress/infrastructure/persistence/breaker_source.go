package persistence

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/google/uuid"
	"github.com/sony/gobreaker/v2"
)

// ErrSourceUnavailable is returned while the breaker is open.
var ErrSourceUnavailable = errors.New("activity source unavailable")

// BreakerConfig configures the activity read breaker.
type BreakerConfig struct {
	// FailureThreshold trips the breaker after this many consecutive failures.
	FailureThreshold uint32
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MaxRequests is the number of probes allowed while half-open.
	MaxRequests uint32
}

// DefaultBreakerConfig returns the production defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 5,
		Timeout:          30 * time.Second,
		MaxRequests:      1,
	}
}

// ActivityReader is the read side of domain.ActivityRepository.
type ActivityReader interface {
	FindByUserAndDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Activity, error)
	FindByUserAndRange(ctx context.Context, userID uuid.UUID, from, to domain.Date) ([]*domain.Activity, error)
	FindByUser(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, error)
}

// BreakerActivitySource guards activity reads with a circuit breaker so
// the metrics views fail fast while the store is down.
type BreakerActivitySource struct {
	next    ActivityReader
	breaker *gobreaker.CircuitBreaker[[]*domain.Activity]
}

// NewBreakerActivitySource wraps next.
func NewBreakerActivitySource(next ActivityReader, cfg BreakerConfig, logger *slog.Logger) *BreakerActivitySource {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultBreakerConfig()
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = defaults.FailureThreshold
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.MaxRequests == 0 {
		cfg.MaxRequests = defaults.MaxRequests
	}

	settings := gobreaker.Settings{
		Name:        "activity_source",
		MaxRequests: cfg.MaxRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		// Cancellations come from the caller, not the store.
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Info("circuit breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
	}

	return &BreakerActivitySource{
		next:    next,
		breaker: gobreaker.NewCircuitBreaker[[]*domain.Activity](settings),
	}
}

// FindByUserAndDate implements services.ActivitySource.
func (s *BreakerActivitySource) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Activity, error) {
	return s.execute(func() ([]*domain.Activity, error) {
		return s.next.FindByUserAndDate(ctx, userID, date)
	})
}

// FindByUserAndRange implements services.ActivitySource.
func (s *BreakerActivitySource) FindByUserAndRange(ctx context.Context, userID uuid.UUID, from, to domain.Date) ([]*domain.Activity, error) {
	return s.execute(func() ([]*domain.Activity, error) {
		return s.next.FindByUserAndRange(ctx, userID, from, to)
	})
}

// FindByUser implements services.ActivitySource.
func (s *BreakerActivitySource) FindByUser(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	return s.execute(func() ([]*domain.Activity, error) {
		return s.next.FindByUser(ctx, userID, filter)
	})
}

// State reports the breaker state, for health checks.
func (s *BreakerActivitySource) State() gobreaker.State {
	return s.breaker.State()
}

func (s *BreakerActivitySource) execute(fn func() ([]*domain.Activity, error)) ([]*domain.Activity, error) {
	activities, err := s.breaker.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, ErrSourceUnavailable
	}
	return activities, err
}
