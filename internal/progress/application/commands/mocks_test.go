package commands

import (
	"context"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockActivityRepo struct {
	mock.Mock
}

func (m *mockActivityRepo) Save(ctx context.Context, activity *domain.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *mockActivityRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Activity), args.Error(1)
}

func (m *mockActivityRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockActivityRepo) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Activity, error) {
	args := m.Called(ctx, userID, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *mockActivityRepo) FindByUserAndRange(ctx context.Context, userID uuid.UUID, from, to domain.Date) ([]*domain.Activity, error) {
	args := m.Called(ctx, userID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

func (m *mockActivityRepo) FindByUser(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	args := m.Called(ctx, userID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Activity), args.Error(1)
}

type mockAchievementRepo struct {
	mock.Mock
}

func (m *mockAchievementRepo) Save(ctx context.Context, unlocked *domain.UnlockedAchievement) error {
	args := m.Called(ctx, unlocked)
	return args.Error(0)
}

func (m *mockAchievementRepo) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UnlockedAchievement, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.UnlockedAchievement), args.Error(1)
}

func (m *mockAchievementRepo) FindByUserAndAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.UnlockedAchievement, error) {
	args := m.Called(ctx, userID, achievementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UnlockedAchievement), args.Error(1)
}

type mockGoalRepo struct {
	mock.Mock
}

func (m *mockGoalRepo) Save(ctx context.Context, goal *domain.DailyGoal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *mockGoalRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.DailyGoal, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DailyGoal), args.Error(1)
}

type mockStatsRepo struct {
	mock.Mock
}

func (m *mockStatsRepo) Save(ctx context.Context, snapshot domain.StatsSnapshot) error {
	args := m.Called(ctx, snapshot)
	return args.Error(0)
}

func (m *mockStatsRepo) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.StatsSnapshot, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StatsSnapshot), args.Error(1)
}

type mockOutboxRepo struct {
	mock.Mock
}

func (m *mockOutboxRepo) Append(ctx context.Context, msgs ...*outbox.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockOutboxRepo) Due(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *mockOutboxRepo) MarkPublished(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkFailed(ctx context.Context, id int64, reason string, retryAt time.Time) error {
	args := m.Called(ctx, id, reason, retryAt)
	return args.Error(0)
}

func (m *mockOutboxRepo) MarkDead(ctx context.Context, id int64, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}

func (m *mockOutboxRepo) Purge(ctx context.Context, before time.Time) (int64, error) {
	args := m.Called(ctx, before)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockOutboxRepo) Backlog(ctx context.Context) (outbox.Backlog, error) {
	args := m.Called(ctx)
	return args.Get(0).(outbox.Backlog), args.Error(1)
}

type mockUnitOfWork struct {
	mock.Mock
}

func (m *mockUnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	args := m.Called(ctx)
	return args.Get(0).(context.Context), args.Error(1)
}

func (m *mockUnitOfWork) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockUnitOfWork) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type txKey struct{}

// expectTx sets up a unit of work that begins, then commits or rolls back.
func expectTx(uow *mockUnitOfWork, ctx context.Context, commit bool) context.Context {
	txCtx := context.WithValue(ctx, txKey{}, "transaction")
	uow.On("Begin", ctx).Return(txCtx, nil)
	if commit {
		uow.On("Commit", txCtx).Return(nil)
	} else {
		uow.On("Rollback", txCtx).Return(nil)
	}
	return txCtx
}

var fixedNow = time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)

func testClock() domain.Clock {
	return domain.FixedClock(fixedNow)
}

func storedActivity(userID uuid.UUID, date string, points int, category domain.Category) *domain.Activity {
	return domain.RehydrateActivity(uuid.New(), userID, "Run", category, domain.IntensityNormal, points,
		domain.MustParseDate(date), domain.NewTimeOfDay(12, 0), 0, "", fixedNow, fixedNow)
}
