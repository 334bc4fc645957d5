package outbox

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/felixgeelhaar/momentum/internal/shared/application"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/migrations"
	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	_ "modernc.org/sqlite"
)

func setupOutboxDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "outbox.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migrations.RunSQLiteMigrations(context.Background(), db))
	return db
}

func appendEvents(t *testing.T, repo *SQLiteRepository, n int) []*Message {
	t.Helper()
	msgs := make([]*Message, 0, n)
	base := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		msg, err := NewMessage(newEvent(uuid.New()))
		require.NoError(t, err)
		msg.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		msgs = append(msgs, msg)
	}
	require.NoError(t, repo.Append(context.Background(), msgs...))
	return msgs
}

func TestSQLiteRepository_AppendAndDue(t *testing.T) {
	repo := NewSQLiteRepository(setupOutboxDB(t))
	ctx := context.Background()

	msgs := appendEvents(t, repo, 3)
	for _, msg := range msgs {
		assert.NotZero(t, msg.ID)
	}

	due, err := repo.Due(ctx, 2)
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.Equal(t, msgs[0].EventID, due[0].EventID)
	assert.Equal(t, msgs[1].EventID, due[1].EventID)
	assert.Equal(t, msgs[0].Meta().UserID, due[0].Meta().UserID)
	assert.JSONEq(t, string(msgs[0].Payload), string(due[0].Payload))
	assert.Equal(t, StatePending, due[0].State())
}

func TestSQLiteRepository_AppendDuplicateEvent(t *testing.T) {
	repo := NewSQLiteRepository(setupOutboxDB(t))
	msg, err := NewMessage(newEvent(uuid.New()))
	require.NoError(t, err)

	require.NoError(t, repo.Append(context.Background(), msg))
	dup := *msg
	assert.Error(t, repo.Append(context.Background(), &dup))
}

func TestSQLiteRepository_AppendJoinsUnitOfWork(t *testing.T) {
	db := setupOutboxDB(t)
	repo := NewSQLiteRepository(db)
	uow := sharedPersistence.NewSQLiteUnitOfWork(db)
	ctx := context.Background()
	failure := errors.New("activity insert failed")

	err := application.WithUnitOfWork(ctx, uow, func(ctx context.Context) error {
		msg, err := NewMessage(newEvent(uuid.New()))
		require.NoError(t, err)
		require.NoError(t, repo.Append(ctx, msg))
		return failure
	})
	assert.ErrorIs(t, err, failure)

	backlog, err := repo.Backlog(ctx)
	require.NoError(t, err)
	assert.Equal(t, Backlog{}, backlog)
}

func TestSQLiteRepository_Delivery(t *testing.T) {
	repo := NewSQLiteRepository(setupOutboxDB(t))
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return now }

	msgs := appendEvents(t, repo, 3)

	require.NoError(t, repo.MarkPublished(ctx, msgs[0].ID))
	require.NoError(t, repo.MarkFailed(ctx, msgs[1].ID, "broker down", now.Add(time.Minute)))
	require.NoError(t, repo.MarkDead(ctx, msgs[2].ID, "poison"))

	due, err := repo.Due(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due, "retry is not due yet")

	now = now.Add(2 * time.Minute)
	due, err = repo.Due(ctx, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, msgs[1].ID, due[0].ID)
	assert.Equal(t, 1, due[0].Attempts)
	assert.Equal(t, "broker down", due[0].LastError)
	assert.Equal(t, StateRetrying, due[0].State())

	backlog, err := repo.Backlog(ctx)
	require.NoError(t, err)
	assert.Equal(t, Backlog{Pending: 1, Dead: 1}, backlog)
}

func TestSQLiteRepository_Purge(t *testing.T) {
	repo := NewSQLiteRepository(setupOutboxDB(t))
	ctx := context.Background()
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return published }

	msgs := appendEvents(t, repo, 2)
	require.NoError(t, repo.MarkPublished(ctx, msgs[0].ID))

	n, err := repo.Purge(ctx, published)
	require.NoError(t, err)
	assert.Zero(t, n, "cutoff is exclusive")

	n, err = repo.Purge(ctx, published.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	backlog, err := repo.Backlog(ctx)
	require.NoError(t, err)
	assert.Equal(t, Backlog{Pending: 1}, backlog)
}
