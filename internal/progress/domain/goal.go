package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/google/uuid"
)

// DailyGoal is the number of points a user aims for each day.
type DailyGoal struct {
	sharedDomain.Aggregate
	userID uuid.UUID
	points int
}

// NewDailyGoal creates a goal for a user.
func NewDailyGoal(userID uuid.UUID, points int) (*DailyGoal, error) {
	g := &DailyGoal{
		Aggregate: sharedDomain.NewAggregate(),
		userID:    userID,
	}
	if err := g.SetPoints(points); err != nil {
		return nil, err
	}
	return g, nil
}

// RehydrateDailyGoal recreates a goal from persisted state.
func RehydrateDailyGoal(id, userID uuid.UUID, points int, createdAt, updatedAt time.Time) *DailyGoal {
	return &DailyGoal{
		Aggregate: sharedDomain.RestoreAggregate(id, createdAt, updatedAt),
		userID:    userID,
		points:    points,
	}
}

// SetPoints changes the target.
func (g *DailyGoal) SetPoints(points int) error {
	if points <= 0 {
		return ErrInvalidGoal
	}
	g.points = points
	g.Touch()
	g.Record(NewGoalUpdated(g))
	return nil
}

func (g *DailyGoal) UserID() uuid.UUID { return g.userID }
func (g *DailyGoal) Points() int       { return g.points }
