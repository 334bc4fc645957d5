package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAchievementRepository implements domain.AchievementRepository using PostgreSQL.
type PostgresAchievementRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresAchievementRepository creates a new PostgreSQL achievement repository.
func NewPostgresAchievementRepository(pool *pgxpool.Pool) *PostgresAchievementRepository {
	return &PostgresAchievementRepository{pool: pool}
}

// Save inserts an unlock or updates its viewed flag.
func (r *PostgresAchievementRepository) Save(ctx context.Context, unlocked *domain.UnlockedAchievement) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO unlocked_achievements (id, user_id, achievement_id, achieved_at, is_new, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			is_new = EXCLUDED.is_new,
			updated_at = EXCLUDED.updated_at
	`,
		unlocked.ID(),
		unlocked.UserID(),
		unlocked.AchievementID(),
		unlocked.AchievedAt(),
		unlocked.IsNew(),
		unlocked.UpdatedAt(),
	)
	return err
}

// FindByUser returns every unlock of a user, oldest first.
func (r *PostgresAchievementRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UnlockedAchievement, error) {
	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, `
		SELECT id, user_id, achievement_id, achieved_at, is_new, updated_at
		FROM unlocked_achievements
		WHERE user_id = $1
		ORDER BY achieved_at ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make([]*domain.UnlockedAchievement, 0)
	for rows.Next() {
		u, err := scanPostgresUnlocked(rows)
		if err != nil {
			return nil, err
		}
		unlocked = append(unlocked, u)
	}
	return unlocked, rows.Err()
}

// FindByUserAndAchievement returns the unlock, or nil when the user has not earned it.
func (r *PostgresAchievementRepository) FindByUserAndAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.UnlockedAchievement, error) {
	row := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, `
		SELECT id, user_id, achievement_id, achieved_at, is_new, updated_at
		FROM unlocked_achievements
		WHERE user_id = $1 AND achievement_id = $2
	`, userID, achievementID)

	u, err := scanPostgresUnlocked(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return u, err
}

func scanPostgresUnlocked(row pgx.Row) (*domain.UnlockedAchievement, error) {
	var (
		id, userID            uuid.UUID
		achievementID         string
		achievedAt, updatedAt time.Time
		isNew                 bool
	)
	if err := row.Scan(&id, &userID, &achievementID, &achievedAt, &isNew, &updatedAt); err != nil {
		return nil, err
	}
	return domain.RehydrateUnlockedAchievement(id, userID, achievementID, achievedAt, isNew, updatedAt), nil
}

// PostgresGoalRepository implements domain.GoalRepository using PostgreSQL.
type PostgresGoalRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresGoalRepository creates a new PostgreSQL goal repository.
func NewPostgresGoalRepository(pool *pgxpool.Pool) *PostgresGoalRepository {
	return &PostgresGoalRepository{pool: pool}
}

// Save upserts the user's goal.
func (r *PostgresGoalRepository) Save(ctx context.Context, goal *domain.DailyGoal) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO daily_goals (id, user_id, points, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			points = EXCLUDED.points,
			updated_at = EXCLUDED.updated_at
	`, goal.ID(), goal.UserID(), goal.Points(), goal.CreatedAt(), goal.UpdatedAt())
	return err
}

// FindByUser returns nil, nil when the user never set a goal.
func (r *PostgresGoalRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.DailyGoal, error) {
	var (
		id                   uuid.UUID
		points               int
		createdAt, updatedAt time.Time
	)
	err := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, `
		SELECT id, points, created_at, updated_at FROM daily_goals WHERE user_id = $1
	`, userID).Scan(&id, &points, &createdAt, &updatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return domain.RehydrateDailyGoal(id, userID, points, createdAt, updatedAt), nil
}

// PostgresStatsRepository implements domain.StatsRepository using PostgreSQL.
type PostgresStatsRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresStatsRepository creates a new PostgreSQL stats repository.
func NewPostgresStatsRepository(pool *pgxpool.Pool) *PostgresStatsRepository {
	return &PostgresStatsRepository{pool: pool}
}

// Save replaces the user's snapshot.
func (r *PostgresStatsRepository) Save(ctx context.Context, snapshot domain.StatsSnapshot) error {
	stats, err := json.Marshal(snapshot.Stats)
	if err != nil {
		return err
	}
	_, err = sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO user_stats (user_id, stats, computed_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE SET
			stats = EXCLUDED.stats,
			computed_at = EXCLUDED.computed_at
	`, snapshot.UserID, stats, snapshot.ComputedAt)
	return err
}

// FindByUser returns nil, nil when nothing was computed yet.
func (r *PostgresStatsRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.StatsSnapshot, error) {
	var (
		stats      []byte
		computedAt time.Time
	)
	err := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, `
		SELECT stats, computed_at FROM user_stats WHERE user_id = $1
	`, userID).Scan(&stats, &computedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := &domain.StatsSnapshot{UserID: userID, ComputedAt: computedAt}
	if err := json.Unmarshal(stats, &snapshot.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return snapshot, nil
}
