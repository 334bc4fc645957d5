package persistence

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database"
	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

const sqliteActivityColumns = `id, user_id, name, category, intensity, points, activity_date,
	time_of_day, duration_mins, notes, created_at, updated_at`

// SQLiteActivityRepository implements domain.ActivityRepository using SQLite.
type SQLiteActivityRepository struct {
	db *sql.DB
}

// NewSQLiteActivityRepository creates a new SQLite activity repository.
func NewSQLiteActivityRepository(db *sql.DB) *SQLiteActivityRepository {
	return &SQLiteActivityRepository{db: db}
}

// Save inserts the activity or updates its mutable details.
func (r *SQLiteActivityRepository) Save(ctx context.Context, activity *domain.Activity) error {
	_, err := sharedPersistence.SQLiteExec(ctx, r.db).ExecContext(ctx, `
		INSERT INTO activities (`+sqliteActivityColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name,
			duration_mins = excluded.duration_mins,
			notes = excluded.notes,
			updated_at = excluded.updated_at
	`,
		activity.ID().String(),
		activity.UserID().String(),
		activity.Name(),
		string(activity.Category()),
		string(activity.Intensity()),
		activity.Points(),
		activity.Date().String(),
		activity.TimeOfDay().String(),
		activity.DurationMins(),
		activity.Notes(),
		activity.CreatedAt().UTC().Format(time.RFC3339),
		activity.UpdatedAt().UTC().Format(time.RFC3339),
	)
	return err
}

// FindByID retrieves an activity, or nil when it does not exist.
func (r *SQLiteActivityRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Activity, error) {
	row := sharedPersistence.SQLiteExec(ctx, r.db).QueryRowContext(ctx,
		`SELECT `+sqliteActivityColumns+` FROM activities WHERE id = ?`, id.String())

	activity, err := scanSQLiteActivity(row)
	if database.IsNoRows(err) {
		return nil, nil
	}
	return activity, err
}

// Delete removes an activity.
func (r *SQLiteActivityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := sharedPersistence.SQLiteExec(ctx, r.db).ExecContext(ctx,
		`DELETE FROM activities WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrActivityNotFound
	}
	return nil
}

// FindByUserAndDate returns one day's activities ordered by time of day.
func (r *SQLiteActivityRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date domain.Date) ([]*domain.Activity, error) {
	return r.FindByUser(ctx, userID, domain.ActivityFilter{From: date, To: date})
}

// FindByUserAndRange returns activities in [from, to].
func (r *SQLiteActivityRepository) FindByUserAndRange(ctx context.Context, userID uuid.UUID, from, to domain.Date) ([]*domain.Activity, error) {
	return r.FindByUser(ctx, userID, domain.ActivityFilter{From: from, To: to})
}

// FindByUser returns the user's history in chronological order.
func (r *SQLiteActivityRepository) FindByUser(ctx context.Context, userID uuid.UUID, filter domain.ActivityFilter) ([]*domain.Activity, error) {
	query := strings.Builder{}
	query.WriteString(`SELECT ` + sqliteActivityColumns + ` FROM activities WHERE user_id = ?`)
	args := []any{userID.String()}

	// ISO dates compare correctly as text.
	if !filter.From.IsZero() {
		query.WriteString(` AND activity_date >= ?`)
		args = append(args, filter.From.String())
	}
	if !filter.To.IsZero() {
		query.WriteString(` AND activity_date <= ?`)
		args = append(args, filter.To.String())
	}
	if len(filter.Categories) > 0 {
		placeholders := make([]string, len(filter.Categories))
		for i, c := range filter.Categories {
			placeholders[i] = "?"
			args = append(args, string(c))
		}
		query.WriteString(` AND category IN (` + strings.Join(placeholders, ", ") + `)`)
	}
	query.WriteString(` ORDER BY activity_date ASC, time_of_day ASC, created_at ASC`)

	rows, err := sharedPersistence.SQLiteExec(ctx, r.db).QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	activities := make([]*domain.Activity, 0)
	for rows.Next() {
		activity, err := scanSQLiteActivity(rows)
		if err != nil {
			return nil, err
		}
		activities = append(activities, activity)
	}
	return activities, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

// scanSQLiteActivity maps one activities row onto the domain model.
func scanSQLiteActivity(row rowScanner) (*domain.Activity, error) {
	var (
		id, userID, name, category, intensity string
		points, durationMins                  int
		activityDate, timeOfDay, notes        string
		createdAt, updatedAt                  string
	)
	if err := row.Scan(&id, &userID, &name, &category, &intensity, &points, &activityDate,
		&timeOfDay, &durationMins, &notes, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("activity id: %w", err)
	}
	parsedUser, err := uuid.Parse(userID)
	if err != nil {
		return nil, fmt.Errorf("activity user id: %w", err)
	}
	date, err := domain.ParseDate(activityDate)
	if err != nil {
		return nil, err
	}
	at, err := domain.ParseTimeOfDay(timeOfDay)
	if err != nil {
		return nil, err
	}

	return domain.RehydrateActivity(
		parsedID,
		parsedUser,
		name,
		domain.Category(category),
		domain.Intensity(intensity),
		points,
		date,
		at,
		durationMins,
		notes,
		parseSQLiteTime(createdAt),
		parseSQLiteTime(updatedAt),
	), nil
}

func parseSQLiteTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
