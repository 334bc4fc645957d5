package outbox

import (
	"context"
	"fmt"
	"time"

	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresColumns = `id, event_id, aggregate_type, aggregate_id, routing_key, payload, metadata,
	created_at, published_at, retry_at, attempts, last_error, dead_at, dead_reason`

// PostgresRepository is the server-mode outbox.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates an outbox over pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	tag, err := sharedPersistence.Executor(ctx, r.pool).Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Append stores msgs in one transaction.
func (r *PostgresRepository) Append(ctx context.Context, msgs ...*Message) error {
	if len(msgs) == 0 {
		return nil
	}
	return sharedPersistence.PostgresTx(ctx, r.pool, func(exec sharedPersistence.DBExecutor) error {
		for _, msg := range msgs {
			err := exec.QueryRow(ctx, `
				INSERT INTO outbox (event_id, aggregate_type, aggregate_id, routing_key, payload, metadata, created_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				msg.EventID, msg.AggregateType, msg.AggregateID, msg.RoutingKey,
				[]byte(msg.Payload), nullJSON(msg.Metadata), msg.CreatedAt,
			).Scan(&msg.ID)
			if err != nil {
				return fmt.Errorf("append %s: %w", msg.RoutingKey, err)
			}
		}
		return nil
	})
}

// Due returns deliverable messages, oldest first. Rows another worker has
// locked are skipped.
func (r *PostgresRepository) Due(ctx context.Context, limit int) ([]*Message, error) {
	rows, err := sharedPersistence.Executor(ctx, r.pool).Query(ctx, `
		SELECT `+postgresColumns+`
		FROM outbox
		WHERE published_at IS NULL AND dead_at IS NULL
		  AND (retry_at IS NULL OR retry_at <= NOW())
		ORDER BY created_at, id
		LIMIT $1
		FOR UPDATE SKIP LOCKED`, limit)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanPostgres)
}

func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	_, err := r.exec(ctx, `UPDATE outbox SET published_at = NOW() WHERE id = $1`, id)
	return err
}

func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, reason string, retryAt time.Time) error {
	_, err := r.exec(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = $2, retry_at = $3
		WHERE id = $1`, id, reason, retryAt)
	return err
}

func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	_, err := r.exec(ctx, `
		UPDATE outbox SET attempts = attempts + 1, last_error = $2, dead_at = NOW(), dead_reason = $2
		WHERE id = $1`, id, reason)
	return err
}

func (r *PostgresRepository) Purge(ctx context.Context, before time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM outbox WHERE published_at IS NOT NULL AND published_at < $1`, before)
}

func (r *PostgresRepository) Backlog(ctx context.Context) (Backlog, error) {
	var b Backlog
	err := sharedPersistence.Executor(ctx, r.pool).QueryRow(ctx, backlogQuery).Scan(&b.Pending, &b.Dead)
	return b, err
}

func scanPostgres(row pgx.CollectableRow) (*Message, error) {
	var (
		msg               Message
		payload, metadata []byte
	)
	err := row.Scan(
		&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateID, &msg.RoutingKey, &payload, &metadata,
		&msg.CreatedAt, &msg.PublishedAt, &msg.RetryAt, &msg.Attempts, &msg.LastError, &msg.DeadAt, &msg.DeadReason,
	)
	if err != nil {
		return nil, err
	}
	msg.Payload = payload
	msg.Metadata = metadata
	return &msg, nil
}

func nullJSON(raw []byte) any {
	if len(raw) == 0 {
		return nil
	}
	return raw
}
