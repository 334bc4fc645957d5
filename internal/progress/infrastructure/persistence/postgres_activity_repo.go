package persistence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const postgresActivityColumns = `id, user_id, name, category, intensity, points, activity_date,
	time_of_day, duration_mins, notes, created_at, updated_at`

// PostgresActivityRepository implements domain.ActivityRepository using PostgreSQL.
type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresActivityRepository creates a new PostgreSQL activity repository.
func NewPostgresActivityRepository(pool *pgxpool.Pool) *PostgresActivityRepository {
	return &PostgresActivityRepository{pool: pool}
}

// Save inserts the activity or updates its mutable details.
func (r *PostgresActivityRepository) Save(ctx context.Context, activity *domain.Activity) error {
	_, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `
		INSERT INTO activities (`+postgresActivityColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			duration_mins = EXCLUDED.duration_mins,
			notes = EXCLUDED.notes,
			updated_at = EXCLUDED.updated_at
	`,
		activity.ID(),
		activity.UserID(),
		activity.Name(),
		string(activity.Category()),
		string(activity.Intensity()),
		activity.Points(),
		activity.Date().Time(time.UTC),
		activity.TimeOfDay().String(),
		activity.DurationMins(),
		activity.Notes(),
		activity.CreatedAt(),
		activity.UpdatedAt(),
	)
	return err
}

// FindByID retrieves an activity, or nil when it does not exist.
func (r *PostgresActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	row := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx,
		`SELECT `+postgresActivityColumns+` FROM activities WHERE id = $1`, id)

	activity, err := scanPostgresActivity(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return activity, err
}

// Delete removes an activity.
func (r *PostgresActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, `DELETE FROM activities WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// FindByUserAndDate returns one day's activities ordered by time of day.
func (r *PostgresActivityRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Activity, error) {
	return r.FindByUser(ctx, userID, domain.ActivityFilter{From: date, To: date})
}

// FindByUserAndRange returns activities in [from, to].
func (r *PostgresActivityRepository) FindByUserAndRange(ctx context.Context, userID uuid.UUID, from, to domain.Date) ([]*domain.Activity, error) {
	return r.FindByUser(ctx, userID, domain.ActivityFilter{From: from, To: to})
}

// FindByUser returns the user's history in chronological order.
func (r *PostgresActivityRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + postgresActivityColumns + ` FROM activities WHERE user_id = $1`)
	args := []any{userID}

	if !filter.From.IsZero() {
		args = append(args, filter.From.Time(time.UTC))
		fmt.Fprintf(&query, ` AND activity_date >= $%d`, len(args))
	}
	if !filter.To.IsZero() {
		args = append(args, filter.To.Time(time.UTC))
		fmt.Fprintf(&query, ` AND activity_date <= $%d`, len(args))
	}
	if len(filter.Categories) > 0 {
		categories := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			categories[i] = string(c)
		}
		args = append(args, pq.Array(categories))
		fmt.Fprintf(&query, ` AND category = ANY($%d)`, len(args))
	}
	query.WriteString(` ORDER BY activity_date ASC, time_of_day ASC, created_at ASC`)

	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*domain.Activity, 0)
	for rows.Next() {
		activity, err := scanPostgresActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

// scanPostgresActivity maps one activities row onto the domain model.
func scanPostgresActivity(row pgx.Row) (*domain.Activity, error) {
	var (
		id, userID                uuid.UUID
		name, category, intensity string
		points, durationMins      int
		activityDate              time.Time
		timeOfDay, notes          string
		createdAt, updatedAt      time.Time
	)
	if err := row.Scan(&id, &userID, &name, &category, &intensity, &points, &activityDate,
		&timeOfDay, &durationMins, &notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	at, err := domain.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateActivity(
		id,
		userID,
		name,
		domain.Category(category),
		domain.Intensity(intensity),
		points,
		domain.DateOf(activityDate),
		at,
		durationMins,
		notes,
		createdAt,
		updatedAt,
	), nil
}
