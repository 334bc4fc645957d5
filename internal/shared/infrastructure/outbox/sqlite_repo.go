package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// Timestamps are stored as fixed-width RFC3339 UTC strings so they compare
// correctly as text.
const sqliteTime = time.RFC3339

const sqliteColumns = `id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
	created_at, published_at, retry_at, attempts, last_error, dead_at, dead_reason`

// SQLiteRepository is the local-mode outbox.
type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLiteRepository creates an outbox over db.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

func (r *SQLiteRepository) stamp(t time.Time) string {
	return t.UTC().Format(sqliteTime)
}

func (r *SQLiteRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := sharedPersistence.SQLiteExec(ctx, r.db).ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Append stores msgs in one transaction.
func (r *SQLiteRepository) Append(ctx context.Context, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return sharedPersistence.SQLiteTx(ctx, r.db, func(exec sharedPersistence.SQLiteExecutor) error {
		for _, msg := range msgs {
			var metadata sql.NullString
			if len(msg.Metadata) > 0 {
				metadata = sql.NullString{String: string(msg.Metadata), Valid: true}
			}
			res, err := exec.ExecContext(ctx, `
				INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
				VALUES (?, ?, ?, ?, ?, ?, ?)`,
				msg.EventID.String(), msg.AggregateType, msg.AggregateID.String(), msg.RoutingKey,
				string(msg.Payload), metadata, r.stamp(msg.CreatedAt),
			)
			if err != nil {
				return fmt.Errorf("append %s: %w", msg.RoutingKey, err)
			}
			if msg.ID, err = res.LastInsertId(); err != nil {
				return err
			}
		}
		return nil
	})
}

// Due returns deliverable messages, oldest first.
func (r *SQLiteRepository) Due(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := sharedPersistence.SQLiteExec(ctx, r.db).QueryContext(ctx, `
		SELECT `+sqliteColumns+`
		FROM outbox
		WHERE published_at IS NULL AND dead_at IS NULL
		  AND (retry_at IS NULL OR retry_at <= ?)
		ORDER BY created_at, id
		LIMIT ?`, r.stamp(r.now()), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []*Message
	for rows.Next() {
		msg, err := scanSQLite(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, rows.Err()
}

func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `UPDATE outbox SET published_at = ? WHERE id = ?`, r.stamp(r.now()), id)
	return err
}

func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, reason string, retryAt time.Time) error {
	_, err := r.exec(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = ?, retry_at = ?
		WHERE id = ?`, reason, r.stamp(retryAt), id)
	return err
}

func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.exec(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = ?, dead_at = ?, dead_reason = ?
		WHERE id = ?`, reason, r.stamp(r.now()), reason, id)
	return err
}

func (r *SQLiteRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < ?`, r.stamp(before))
}

func (r *SQLiteRepository) Backlog(ctx context.Context) (Backlog, error) {
	var b Backlog
	err := sharedPersistence.SQLiteExec(ctx, r.db).QueryRowContext(ctx, backlogQuery).Scan(&b.Pending, &b.Dead)
	return b, err
}

const backlogQuery = `
	SELECT
		COALESCE(SUM(CASE WHEN published_at IS NULL AND dead_at IS NULL THEN 1 ELSE 0 END), 0),
		COALESCE(SUM(CASE WHEN dead_at IS NOT NULL THEN 1 ELSE 0 END), 0)
	FROM outbox`

func scanSQLite(rows *sql.Rows) (*Message, error) {
	var (
		msg                                  Message
		eventID, aggregateID, payload        string
		createdAt                            string
		metadata, publishedAt, retryAt, dead sql.NullString
	)
	if err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &aggregateID, &msg.RoutingKey, &payload, &metadata,
		&createdAt, &publishedAt, &retryAt, &msg.Attempts, &msg.LastError, &dead, &msg.DeadReason,
	); err != nil {
		return nil, err
	}

	var err error
	if msg.EventID, err = uuid.Parse(eventID); err != nil {
		return nil, fmt.Errorf("outbox %d: event id: %w", msg.ID, err)
	}
	if msg.AggregateID, err = uuid.Parse(aggregateID); err != nil {
		return nil, fmt.Errorf("outbox %d: aggregate id: %w", msg.ID, err)
	}
	if msg.CreatedAt, err = time.Parse(sqliteTime, createdAt); err != nil {
		return nil, fmt.Errorf("outbox %d: created_at: %w", msg.ID, err)
	}
	msg.Payload = json.RawMessage(payload)
	if metadata.Valid {
		msg.Metadata = json.RawMessage(metadata.String)
	}
	msg.PublishedAt = sqliteTimePtr(publishedAt)
	msg.RetryAt = sqliteTimePtr(retryAt)
	msg.DeadAt = sqliteTimePtr(dead)
	return &msg, nil
}

func sqliteTimePtr(s sql.NullString) *time.Time {
	if !s.Valid {
		return nil
	}
	t, err := time.Parse(sqliteTime, s.String)
	if err != nil {
		return nil
	}
	return &t
}
