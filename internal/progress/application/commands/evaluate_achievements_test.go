package commands

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type evaluationMocks struct {
	activities   *mockActivityRepo
	achievements *mockAchievementRepo
	goals        *mockGoalRepo
	stats        *mockStatsRepo
	outbox       *mockOutboxRepo
	uow          *mockUnitOfWork
}

func newEvaluationMocks() (*evaluationMocks, EvaluationDeps) {
	m := &evaluationMocks{
		activities:   new(mockActivityRepo),
		achievements: new(mockAchievementRepo),
		goals:        new(mockGoalRepo),
		stats:        new(mockStatsRepo),
		outbox:       new(mockOutboxRepo),
		uow:          new(mockUnitOfWork),
	}
	return m, EvaluationDeps{
		Activities:   m.activities,
		Achievements: m.achievements,
		Goals:        m.goals,
		Stats:        m.stats,
		Outbox:       m.outbox,
		UnitOfWork:   m.uow,
	}
}

// upToToday is the history filter for fixedNow.
var upToToday = domain.ActivityFilter{To: domain.MustParseDate("2024-01-02")}

func TestEvaluateAchievementsHandler_Handle(t *testing.T) {
	userID := uuid.New()
	history := []*domain.Activity{
		storedActivity(userID, "2024-01-01", 50, domain.CategoryFitness),
		storedActivity(userID, "2024-01-02", 30, domain.CategoryMindset),
	}

	t.Run("persists new unlocks and the stats snapshot", func(t *testing.T) {
		m, deps := newEvaluationMocks()
		handler := NewEvaluateAchievementsHandler(deps, nil, nil, testClock(), 100)

		ctx := context.Background()
		txCtx := expectTx(m.uow, ctx, true)
		m.activities.On("FindByUser", txCtx, userID, upToToday).Return(history, nil)
		m.goals.On("FindByUser", txCtx, userID).Return(nil, nil)
		m.achievements.On("FindByUser", txCtx, userID).Return([]*domain.UnlockedAchievement{}, nil)
		m.achievements.On("Save", txCtx, mock.MatchedBy(func(u *domain.UnlockedAchievement) bool {
			return u.AchievementID() == "first_steps" && u.IsNew()
		})).Return(nil).Once()
		m.outbox.On("Append", txCtx, mock.Anything).Return(nil).Once()
		m.stats.On("Save", txCtx, mock.MatchedBy(func(s domain.StatsSnapshot) bool {
			return s.UserID == userID && s.Stats.CurrentStreak == 2 && s.Stats.TotalPoints == 80
		})).Return(nil)

		result, err := handler.Handle(ctx, EvaluateAchievementsCommand{UserID: userID})

		require.NoError(t, err)
		require.Len(t, result.Unlocked, 1)
		assert.Equal(t, "first_steps", result.Unlocked[0].AchievementID)
		assert.True(t, result.Unlocked[0].IsNew)
		assert.Equal(t, 100, result.Stats.DailyGoal)
		assert.Equal(t, 30, result.Stats.DailyPoints)

		m.achievements.AssertExpectations(t)
		m.outbox.AssertExpectations(t)
		m.stats.AssertExpectations(t)
		m.uow.AssertExpectations(t)
	})

	t.Run("already unlocked achievements are not saved again", func(t *testing.T) {
		m, deps := newEvaluationMocks()
		handler := NewEvaluateAchievementsHandler(deps, nil, nil, testClock(), 100)

		ctx := context.Background()
		txCtx := expectTx(m.uow, ctx, true)
		existing := domain.RehydrateUnlockedAchievement(uuid.New(), userID, "first_steps", fixedNow, false, fixedNow)
		m.activities.On("FindByUser", txCtx, userID, upToToday).Return(history, nil)
		m.goals.On("FindByUser", txCtx, userID).Return(domain.RehydrateDailyGoal(uuid.New(), userID, 200, fixedNow, fixedNow), nil)
		m.achievements.On("FindByUser", txCtx, userID).Return([]*domain.UnlockedAchievement{existing}, nil)
		m.stats.On("Save", txCtx, mock.Anything).Return(nil)

		result, err := handler.Handle(ctx, EvaluateAchievementsCommand{UserID: userID})

		require.NoError(t, err)
		assert.Empty(t, result.Unlocked)
		assert.Equal(t, 200, result.Stats.DailyGoal)
		m.achievements.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		m.outbox.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("fetch errors abort the run", func(t *testing.T) {
		m, deps := newEvaluationMocks()
		handler := NewEvaluateAchievementsHandler(deps, nil, nil, testClock(), 100)

		ctx := context.Background()
		txCtx := expectTx(m.uow, ctx, false)
		m.activities.On("FindByUser", txCtx, userID, upToToday).Return(nil, errors.New("connection reset"))

		_, err := handler.Handle(ctx, EvaluateAchievementsCommand{UserID: userID})

		assert.ErrorContains(t, err, "load activities")
		m.uow.AssertExpectations(t)
	})

	t.Run("future-dated records do not break the streak", func(t *testing.T) {
		m, deps := newEvaluationMocks()
		handler := NewEvaluateAchievementsHandler(deps, nil, nil, testClock(), 100)

		ctx := context.Background()
		txCtx := expectTx(m.uow, ctx, true)
		streak := []*domain.Activity{
			storedActivity(userID, "2023-12-31", 10, domain.CategoryFitness),
			storedActivity(userID, "2024-01-01", 10, domain.CategoryFitness),
			storedActivity(userID, "2024-01-02", 10, domain.CategoryFitness),
		}
		// The repository applies the filter; a 2024-01-05 record is outside it.
		m.activities.On("FindByUser", txCtx, userID, upToToday).Return(streak, nil)
		m.goals.On("FindByUser", txCtx, userID).Return(nil, nil)
		m.achievements.On("FindByUser", txCtx, userID).Return([]*domain.UnlockedAchievement{}, nil)
		m.achievements.On("Save", txCtx, mock.Anything).Return(nil)
		m.outbox.On("Append", txCtx, mock.Anything).Return(nil)
		m.stats.On("Save", txCtx, mock.Anything).Return(nil)

		result, err := handler.Handle(ctx, EvaluateAchievementsCommand{UserID: userID})

		require.NoError(t, err)
		assert.Equal(t, 3, result.Stats.CurrentStreak)
		ids := make([]string, 0, len(result.Unlocked))
		for _, u := range result.Unlocked {
			ids = append(ids, u.AchievementID)
		}
		assert.Contains(t, ids, "streak_3")
		m.activities.AssertExpectations(t)
	})
}
