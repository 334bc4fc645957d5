package commands

import (
	"context"
	"testing"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestMarkAchievementViewedHandler_Handle(t *testing.T) {
	userID := uuid.New()

	t.Run("clears the new flag once", func(t *testing.T) {
		repo := new(mockAchievementRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewMarkAchievementViewedHandler(repo, outboxRepo, uow)

		ctx := context.Background()
		txCtx := expectTx(uow, ctx, true)
		unlocked := domain.RehydrateUnlockedAchievement(uuid.New(), userID, "streak_3", fixedNow, true, fixedNow)
		repo.On("FindByUserAndAchievement", txCtx, userID, "streak_3").Return(unlocked, nil)
		repo.On("Save", txCtx, unlocked).Return(nil)
		outboxRepo.On("Append", txCtx, mock.Anything).Return(nil)

		result, err := handler.Handle(ctx, MarkAchievementViewedCommand{UserID: userID, AchievementID: "streak_3"})

		require.NoError(t, err)
		assert.False(t, result.AlreadyViewed)
		assert.False(t, unlocked.IsNew())
		repo.AssertExpectations(t)
	})

	t.Run("second view is reported, not failed", func(t *testing.T) {
		repo := new(mockAchievementRepo)
		outboxRepo := new(mockOutboxRepo)
		uow := new(mockUnitOfWork)
		handler := NewMarkAchievementViewedHandler(repo, outboxRepo, uow)

		ctx := context.Background()
		txCtx := expectTx(uow, ctx, true)
		seen := domain.RehydrateUnlockedAchievement(uuid.New(), userID, "streak_3", fixedNow, false, fixedNow)
		repo.On("FindByUserAndAchievement", txCtx, userID, "streak_3").Return(seen, nil)

		result, err := handler.Handle(ctx, MarkAchievementViewedCommand{UserID: userID, AchievementID: "streak_3"})

		require.NoError(t, err)
		assert.True(t, result.AlreadyViewed)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		outboxRepo.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("unknown achievement", func(t *testing.T) {
		repo := new(mockAchievementRepo)
		uow := new(mockUnitOfWork)
		handler := NewMarkAchievementViewedHandler(repo, new(mockOutboxRepo), uow)

		ctx := context.Background()
		txCtx := expectTx(uow, ctx, false)
		repo.On("FindByUserAndAchievement", txCtx, userID, "nope").Return(nil, nil)

		_, err := handler.Handle(ctx, MarkAchievementViewedCommand{UserID: userID, AchievementID: "nope"})

		assert.ErrorIs(t, err, domain.ErrAchievementNotFound)
	})
}
