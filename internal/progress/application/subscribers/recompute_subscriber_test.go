package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/application/commands"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEvaluator struct {
	mock.Mock
}

func (m *mockEvaluator) Handle(ctx context.Context, cmd commands.EvaluateAchievementsCommand) (*commands.EvaluateAchievementsResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*commands.EvaluateAchievementsResult), args.Error(1)
}

type failingDeduper struct{}

func (failingDeduper) FirstSeen(context.Context, uuid.UUID) (bool, error) {
	return false, errors.New("redis: connection refused")
}

func (failingDeduper) Forget(context.Context, uuid.UUID) error {
	return errors.New("redis: connection refused")
}

func activityEvent(userID uuid.UUID, inMetadata bool) *eventbus.ConsumedEvent {
	payload, _ := json.Marshal(map[string]any{"user_id": userID, "points": 50})
	event := &eventbus.ConsumedEvent{
		EventID:    uuid.New(),
		RoutingKey: domain.RoutingKeyActivityLogged,
		OccurredAt: time.Now(),
		Payload:    payload,
	}
	if inMetadata {
		event.Metadata.UserID = userID
	}
	return event
}

func TestRecomputeSubscriber_EventTypes(t *testing.T) {
	s := NewRecomputeSubscriber(nil, nil, nil)

	assert.ElementsMatch(t, []string{
		"progress.activity.logged",
		"progress.activity.deleted",
		"progress.goal.updated",
	}, s.EventTypes())
}

func TestRecomputeSubscriber_Handle(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cmd := commands.EvaluateAchievementsCommand{UserID: userID}
	done := &commands.EvaluateAchievementsResult{Unlocked: []metrics.Unlock{{AchievementID: "first_steps", IsNew: true}}}

	t.Run("recomputes for the user in metadata", func(t *testing.T) {
		evaluator := new(mockEvaluator)
		evaluator.On("Handle", mock.Anything, cmd).Return(done, nil).Once()
		s := NewRecomputeSubscriber(evaluator, NewMemoryDeduper(time.Hour), nil)

		require.NoError(t, s.Handle(ctx, activityEvent(userID, true)))
		evaluator.AssertExpectations(t)
	})

	t.Run("falls back to the payload user", func(t *testing.T) {
		evaluator := new(mockEvaluator)
		evaluator.On("Handle", mock.Anything, cmd).Return(&commands.EvaluateAchievementsResult{}, nil).Once()
		s := NewRecomputeSubscriber(evaluator, nil, nil)

		require.NoError(t, s.Handle(ctx, activityEvent(userID, false)))
		evaluator.AssertExpectations(t)
	})

	t.Run("duplicate deliveries recompute once", func(t *testing.T) {
		evaluator := new(mockEvaluator)
		evaluator.On("Handle", mock.Anything, cmd).Return(done, nil).Once()
		s := NewRecomputeSubscriber(evaluator, NewMemoryDeduper(time.Hour), nil)
		event := activityEvent(userID, true)

		require.NoError(t, s.Handle(ctx, event))
		require.NoError(t, s.Handle(ctx, event))
		evaluator.AssertNumberOfCalls(t, "Handle", 1)
	})

	t.Run("dedup outage still recomputes", func(t *testing.T) {
		evaluator := new(mockEvaluator)
		evaluator.On("Handle", mock.Anything, cmd).Return(done, nil).Twice()
		s := NewRecomputeSubscriber(evaluator, failingDeduper{}, nil)
		event := activityEvent(userID, true)

		require.NoError(t, s.Handle(ctx, event))
		require.NoError(t, s.Handle(ctx, event))
		evaluator.AssertExpectations(t)
	})

	t.Run("event without user", func(t *testing.T) {
		s := NewRecomputeSubscriber(new(mockEvaluator), nil, nil)
		event := &eventbus.ConsumedEvent{EventID: uuid.New(), RoutingKey: domain.RoutingKeyGoalUpdated, Payload: json.RawMessage(`{}`)}

		assert.ErrorIs(t, s.Handle(ctx, event), ErrMissingUser)
	})

	t.Run("evaluation errors are returned for redelivery", func(t *testing.T) {
		evaluator := new(mockEvaluator)
		evaluator.On("Handle", mock.Anything, cmd).Return(nil, errors.New("database is locked"))
		s := NewRecomputeSubscriber(evaluator, nil, nil)

		assert.Error(t, s.Handle(ctx, activityEvent(userID, true)))
	})

	t.Run("failed event is retried on redelivery", func(t *testing.T) {
		evaluator := new(mockEvaluator)
		evaluator.On("Handle", mock.Anything, cmd).Return(nil, errors.New("database is locked")).Once()
		evaluator.On("Handle", mock.Anything, cmd).Return(done, nil).Once()
		s := NewRecomputeSubscriber(evaluator, NewMemoryDeduper(time.Hour), nil)
		event := activityEvent(userID, true)

		require.Error(t, s.Handle(ctx, event))
		require.NoError(t, s.Handle(ctx, event))
		require.NoError(t, s.Handle(ctx, event))
		evaluator.AssertNumberOfCalls(t, "Handle", 2)
	})
}

func TestRecomputeSubscriber_Metrics(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cmd := commands.EvaluateAchievementsCommand{UserID: userID}
	unlocked := &commands.EvaluateAchievementsResult{Unlocked: []metrics.Unlock{
		{AchievementID: "first_steps", IsNew: true},
		{AchievementID: "point_collector", IsNew: true},
	}}

	evaluator := new(mockEvaluator)
	evaluator.On("Handle", mock.Anything, cmd).Return(unlocked, nil).Once()
	evaluator.On("Handle", mock.Anything, cmd).Return(nil, errors.New("database is locked")).Once()

	m := observability.NewInMemoryMetrics()
	s := NewRecomputeSubscriber(evaluator, NewMemoryDeduper(time.Hour), nil).WithMetrics(m)

	event := activityEvent(userID, true)
	require.NoError(t, s.Handle(ctx, event))
	require.NoError(t, s.Handle(ctx, event))
	require.Error(t, s.Handle(ctx, activityEvent(userID, true)))

	assert.Equal(t, int64(2), m.GetCounter(observability.MetricRecomputeTotal))
	assert.Equal(t, int64(1), m.GetCounter(observability.MetricRecomputeErrors))
	assert.Equal(t, int64(2), m.GetCounter(observability.MetricAchievementsUnlocked))
	assert.Equal(t, int64(1), m.GetCounter(observability.MetricEventsDuplicate, observability.T("routing_key", domain.RoutingKeyActivityLogged)))
	assert.Equal(t, int64(2), m.GetTiming(observability.MetricRecomputeDuration).Count)
	assert.Equal(t, int64(3), m.GetCounter(observability.MetricEventsConsumed, observability.T("routing_key", domain.RoutingKeyActivityLogged)))
}

func TestMemoryDeduper_Expires(t *testing.T) {
	d := NewMemoryDeduper(time.Minute)
	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return clock }
	id := uuid.New()
	ctx := context.Background()

	first, err := d.FirstSeen(ctx, id)
	require.NoError(t, err)
	assert.True(t, first)

	again, _ := d.FirstSeen(ctx, id)
	assert.False(t, again)

	clock = clock.Add(2 * time.Minute)
	afterTTL, _ := d.FirstSeen(ctx, id)
	assert.True(t, afterTTL)

	require.NoError(t, d.Forget(ctx, id))
	forgotten, _ := d.FirstSeen(ctx, id)
	assert.True(t, forgotten)
}

func TestRecomputeSubscriber_ScopesTheEvaluation(t *testing.T) {
	userID := uuid.New()
	event := activityEvent(userID, true)
	event.Metadata.CorrelationID = uuid.NewString()

	evaluator := new(mockEvaluator)
	evaluator.On("Handle", mock.MatchedBy(func(ctx context.Context) bool {
		scope := observability.ScopeFrom(ctx)
		return scope.CorrelationID == event.Metadata.CorrelationID &&
			scope.RequestID == event.EventID.String() &&
			scope.UserID == userID.String()
	}), commands.EvaluateAchievementsCommand{UserID: userID}).Return(&commands.EvaluateAchievementsResult{}, nil).Once()

	s := NewRecomputeSubscriber(evaluator, nil, nil)
	require.NoError(t, s.Handle(context.Background(), event))
	evaluator.AssertExpectations(t)
}
