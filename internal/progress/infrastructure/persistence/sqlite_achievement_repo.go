package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteAchievementRepository implements domain.AchievementRepository using SQLite.
type SQLiteAchievementRepository struct {
	db *sql.DB
}

// NewSQLiteAchievementRepository creates a new SQLite achievement repository.
func NewSQLiteAchievementRepository(db *sql.DB) *SQLiteAchievementRepository {
	return &SQLiteAchievementRepository{db: db}
}

// Save inserts an unlock or updates its viewed flag.
func (r *SQLiteAchievementRepository) Save(ctx context.Context, unlocked *domain.UnlockedAchievement) error {
	_, err := sharedPersistence.SQLiteExec(ctx, r.db).ExecContext(ctx, `
		INSERT INTO unlocked_achievements (id, user_id, achievement_id, achieved_at, is_new, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			is_new = excluded.is_new,
			updated_at = excluded.updated_at
	`,
		unlocked.ID().String(),
		unlocked.UserID().String(),
		unlocked.AchievementID(),
		unlocked.AchievedAt().UTC().Format(time.RFC3339),
		boolToInt(unlocked.IsNew()),
		unlocked.UpdatedAt().UTC().Format(time.RFC3339),
	)
	return err
}

// FindByUser returns every unlock of a user, oldest first.
func (r *SQLiteAchievementRepository) FindByUser(ctx context.Context, userID uuid.UUID) ([]*domain.UnlockedAchievement, error) {
	rows, err := sharedPersistence.SQLiteExec(ctx, r.db).QueryContext(ctx, `
		SELECT id, user_id, achievement_id, achieved_at, is_new, updated_at
		FROM unlocked_achievements
		WHERE user_id = ?
		ORDER BY achieved_at ASC
	`, userID.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	unlocked := make([]*domain.UnlockedAchievement, 0)
	for rows.Next() {
		u, err := scanSQLiteUnlocked(rows)
		if err != nil {
			return nil, err
		}
		unlocked = append(unlocked, u)
	}
	return unlocked, rows.Err()
}

// FindByUserAndAchievement returns the unlock, or nil when the user has not earned it.
func (r *SQLiteAchievementRepository) FindByUserAndAchievement(ctx context.Context, userID uuid.UUID, achievementID string) (*domain.UnlockedAchievement, error) {
	row := sharedPersistence.SQLiteExec(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, user_id, achievement_id, achieved_at, is_new, updated_at
		FROM unlocked_achievements
		WHERE user_id = ? AND achievement_id = ?
	`, userID.String(), achievementID)

	u, err := scanSQLiteUnlocked(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return u, err
}

func scanSQLiteUnlocked(row rowScanner) (*domain.UnlockedAchievement, error) {
	var (
		id, userID, achievementID string
		achievedAt, updatedAt     string
		isNew                     int
	)
	if err := row.Scan(&id, &userID, &achievementID, &achievedAt, &isNew, &updatedAt); err != nil {
		return nil, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("achievement id: %w", err)
	}
	parsedUser, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("achievement user id: %w", err)
	}
	return domain.RehydrateUnlockedAchievement(
		parsedID,
		parsedUser,
		achievementID,
		parseSQLiteTime(achievedAt),
		isNew != 0,
		parseSQLiteTime(updatedAt),
	), nil
}

// SQLiteGoalRepository implements domain.GoalRepository using SQLite.
type SQLiteGoalRepository struct {
	db *sql.DB
}

// NewSQLiteGoalRepository creates a new SQLite goal repository.
func NewSQLiteGoalRepository(db *sql.DB) *SQLiteGoalRepository {
	return &SQLiteGoalRepository{db: db}
}

// Save upserts the user's goal. A user has at most one.
func (r *SQLiteGoalRepository) Save(ctx context.Context, goal *domain.DailyGoal) error {
	_, err := sharedPersistence.SQLiteExec(ctx, r.db).ExecContext(ctx, `
		INSERT INTO daily_goals (id, user_id, points, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			points = excluded.points,
			updated_at = excluded.updated_at
	`,
		goal.ID().String(),
		goal.UserID().String(),
		goal.Points(),
		goal.CreatedAt().UTC().Format(time.RFC3339),
		goal.UpdatedAt().UTC().Format(time.RFC3339),
	)
	return err
}

// FindByUser returns nil, nil when the user never set a goal.
func (r *SQLiteGoalRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.DailyGoal, error) {
	var (
		id                   string
		points               int
		createdAt, updatedAt string
	)
	err := sharedPersistence.SQLiteExec(ctx, r.db).QueryRowContext(ctx, `
		SELECT id, points, created_at, updated_at FROM daily_goals WHERE user_id = ?
	`, userID.String()).Scan(&id, &points, &createdAt, &updatedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("goal id: %w", err)
	}
	return domain.RehydrateDailyGoal(parsedID, userID, points, parseSQLiteTime(createdAt), parseSQLiteTime(updatedAt)), nil
}

// SQLiteStatsRepository implements domain.StatsRepository using SQLite.
type SQLiteStatsRepository struct {
	db *sql.DB
}

// NewSQLiteStatsRepository creates a new SQLite stats repository.
func NewSQLiteStatsRepository(db *sql.DB) *SQLiteStatsRepository {
	return &SQLiteStatsRepository{db: db}
}

// Save replaces the user's snapshot.
func (r *SQLiteStatsRepository) Save(ctx context.Context, snapshot domain.StatsSnapshot) error {
	stats, err := json.Marshal(snapshot.Stats)
	if err != nil {
		return err
	}
	_, err = sharedPersistence.SQLiteExec(ctx, r.db).ExecContext(ctx, `
		INSERT INTO user_stats (user_id, stats, computed_at)
		VALUES (?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			stats = excluded.stats,
			computed_at = excluded.computed_at
	`, snapshot.UserID.String(), string(stats), snapshot.ComputedAt.UTC().Format(time.RFC3339))
	return err
}

// FindByUser returns nil, nil when nothing was computed yet.
func (r *SQLiteStatsRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*domain.StatsSnapshot, error) {
	var stats, computedAt string
	err := sharedPersistence.SQLiteExec(ctx, r.db).QueryRowContext(ctx, `
		SELECT stats, computed_at FROM user_stats WHERE user_id = ?
	`, userID.String()).Scan(&stats, &computedAt)
	if database.IsNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	snapshot := &domain.StatsSnapshot{UserID: userID, ComputedAt: parseSQLiteTime(computedAt)}
	if err := json.Unmarshal([]byte(stats), &snapshot.Stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return snapshot, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
