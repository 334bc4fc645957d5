package queries

import (
	"context"
	"testing"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/progress/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAchievements []*domain.UnlockedAchievement

func (s stubAchievements) FindByUser(context.Context, uuid.UUID) ([]*domain.UnlockedAchievement, error) {
	return s, nil
}

func TestListAchievementsHandler_Handle(t *testing.T) {
	userID := uuid.New()
	at := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	unlocked := stubAchievements{
		domain.RehydrateUnlockedAchievement(uuid.New(), userID, "first_steps", at, true, at),
		domain.RehydrateUnlockedAchievement(uuid.New(), userID, "streak_3", at, false, at),
	}
	facade := services.NewMetricsFacade(nil, nil, unlocked, services.FacadeConfig{}, nil)
	handler := NewListAchievementsHandler(facade)
	ctx := context.Background()

	all, err := handler.Handle(ctx, ListAchievementsQuery{UserID: userID})
	require.NoError(t, err)
	assert.Len(t, all, metrics.DefaultCatalog().Len())
	assert.Equal(t, "first_steps", all[0].ID)

	onlyUnlocked, err := handler.Handle(ctx, ListAchievementsQuery{UserID: userID, OnlyUnlocked: true})
	require.NoError(t, err)
	assert.Len(t, onlyUnlocked, 2)

	onlyNew, err := handler.Handle(ctx, ListAchievementsQuery{UserID: userID, OnlyNew: true})
	require.NoError(t, err)
	require.Len(t, onlyNew, 1)
	assert.Equal(t, "first_steps", onlyNew[0].ID)
}
