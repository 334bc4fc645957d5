package persistence

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBExecutor is what pgxpool.Pool and pgx.Tx have in common.
type DBExecutor interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresUnitOfWork runs units of work as pgx transactions.
type PostgresUnitOfWork struct {
	txUnit[pgx.Tx]
}

// NewPostgresUnitOfWork creates a unit of work over pool.
func NewPostgresUnitOfWork(pool *pgxpool.Pool) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{pgxUnit(pool)}
}

func pgxUnit(pool *pgxpool.Pool) txUnit[pgx.Tx] {
	return txUnit[pgx.Tx]{
		begin:    func(ctx context.Context) (pgx.Tx, error) { return pool.Begin(ctx) },
		commit:   func(ctx context.Context, tx pgx.Tx) error { return tx.Commit(ctx) },
		rollback: func(ctx context.Context, tx pgx.Tx) error { return tx.Rollback(ctx) },
	}
}

// Executor returns the transaction in ctx, or pool outside one.
func Executor(ctx context.Context, pool *pgxpool.Pool) DBExecutor {
	if s, ok := scopeFrom[pgx.Tx](ctx); ok {
		return s.tx
	}
	return pool
}

// PostgresTx runs fn atomically: inside the transaction in ctx when there
// is one, otherwise in its own.
func PostgresTx(ctx context.Context, pool *pgxpool.Pool, fn func(DBExecutor) error) error {
	return inTx(ctx, pgxUnit(pool), func(tx pgx.Tx) error { return fn(tx) })
}
