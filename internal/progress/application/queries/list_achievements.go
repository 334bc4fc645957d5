package queries

import (
	"context"

	"github.com/felixgeelhaar/momentum/internal/progress/application/services"
	"github.com/google/uuid"
)

// ListAchievementsQuery contains the parameters for listing achievements.
type ListAchievementsQuery struct {
	UserID       uuid.UUID
	OnlyUnlocked bool
	OnlyNew      bool
}

// ListAchievementsHandler handles the ListAchievementsQuery.
type ListAchievementsHandler struct {
	facade *services.MetricsFacade
}

// NewListAchievementsHandler creates a new ListAchievementsHandler.
func NewListAchievementsHandler(facade *services.MetricsFacade) *ListAchievementsHandler {
	return &ListAchievementsHandler{facade: facade}
}

// Handle executes the ListAchievementsQuery. Entries keep catalog order.
func (h *ListAchievementsHandler) Handle(ctx context.Context, query ListAchievementsQuery) ([]services.AchievementView, error) {
	all, err := h.facade.Achievements(ctx, query.UserID)
	if err != nil {
		return nil, err
	}
	if !query.OnlyUnlocked && !query.OnlyNew {
		return all, nil
	}

	filtered := make([]services.AchievementView, 0, len(all))
	for _, v := range all {
		if query.OnlyUnlocked && !v.Unlocked {
			continue
		}
		if query.OnlyNew && !v.IsNew {
			continue
		}
		filtered = append(filtered, v)
	}
	return filtered, nil
}
