package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/google/uuid"
)

// ErrMissingUser is returned for events that name no user.
var ErrMissingUser = errors.New("event carries no user id")

// Evaluator re-runs achievement evaluation for a user.
type Evaluator interface {
	Handle(ctx context.Context, cmd commands.EvaluateAchievementsCommand) (*commands.EvaluateAchievementsResult, error)
}

// RecomputeSubscriber treats every activity or goal event as a signal to
// recompute the user's achievements. Events carry no state it relies on
// besides the user id, so ordering and redelivery do not matter.
type RecomputeSubscriber struct {
	evaluator Evaluator
	deduper   EventDeduper
	metrics   observability.Metrics
	logger    *slog.Logger
}

// NewRecomputeSubscriber creates a new recompute subscriber. A nil deduper
// handles every delivery.
func NewRecomputeSubscriber(evaluator Evaluator, deduper EventDeduper, logger *slog.Logger) *RecomputeSubscriber {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecomputeSubscriber{
		evaluator: evaluator,
		deduper:   deduper,
		metrics:   observability.NoopMetrics{},
		logger:    logger,
	}
}

// WithMetrics records recompute counts and latency into m.
func (s *RecomputeSubscriber) WithMetrics(m observability.Metrics) *RecomputeSubscriber {
	if m != nil {
		s.metrics = m
	}
	return s
}

// EventTypes returns the event types this subscriber handles.
func (s *RecomputeSubscriber) EventTypes() []string {
	return []string{
		domain.RoutingKeyActivityLogged,
		domain.RoutingKeyActivityDeleted,
		domain.RoutingKeyGoalUpdated,
	}
}

// Handle processes an event.
func (s *RecomputeSubscriber) Handle(ctx context.Context, event *eventbus.ConsumedEvent) error {
	s.metrics.Counter(observability.MetricEventsConsumed, 1, observability.T("routing_key", event.RoutingKey))
	if s.deduper != nil {
		first, err := s.deduper.FirstSeen(ctx, event.EventID)
		if err != nil {
			// Dedup is best effort.
			s.logger.Warn("event dedup failed", "event_id", event.EventID, "error", err)
		} else if !first {
			s.metrics.Counter(observability.MetricEventsDuplicate, 1, observability.T("routing_key", event.RoutingKey))
			s.logger.Debug("skipping duplicate event", "event_id", event.EventID, "routing_key", event.RoutingKey)
			return nil
		}
	}

	userID := userOf(event)
	if userID == uuid.Nil {
		s.logger.Warn("event without user id", "event_id", event.EventID, "routing_key", event.RoutingKey)
		return ErrMissingUser
	}

	ctx = observability.WithScope(ctx, observability.Scope{
		CorrelationID: event.Metadata.CorrelationID,
		RequestID:     event.EventID.String(),
		UserID:        userID.String(),
	})

	s.metrics.Counter(observability.MetricRecomputeTotal, 1)
	timer := observability.StartTimer(observability.MetricRecomputeDuration, nil, s.metrics)
	result, err := s.evaluator.Handle(ctx, commands.EvaluateAchievementsCommand{UserID: userID})
	timer.Stop(err, observability.MetricRecomputeErrors)
	if err != nil {
		s.logger.ErrorContext(ctx, "recompute failed",
			"routing_key", event.RoutingKey,
			"error", err,
		)
		s.release(ctx, event.EventID)
		return err
	}

	if len(result.Unlocked) > 0 {
		s.metrics.Counter(observability.MetricAchievementsUnlocked, int64(len(result.Unlocked)))
		s.logger.InfoContext(ctx, "achievements unlocked",
			"count", len(result.Unlocked),
		)
	}
	return nil
}

// release lets a failed event through the deduper on redelivery.
func (s *RecomputeSubscriber) release(ctx context.Context, eventID uuid.UUID) {
	if s.deduper == nil {
		return
	}
	if err := s.deduper.Forget(ctx, eventID); err != nil {
		s.logger.Warn("event dedup release failed", "event_id", eventID, "error", err)
	}
}

type userPayload struct {
	UserID uuid.UUID `json:"user_id"`
}

// userOf prefers the event metadata and falls back to the payload.
func userOf(event *eventbus.ConsumedEvent) uuid.UUID {
	if event.Metadata.UserID != uuid.Nil {
		return event.Metadata.UserID
	}
	var payload userPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		return uuid.Nil
	}
	return payload.UserID
}
