package persistence

import (
	"context"
	"database/sql"
)

// SQLiteExecutor is what *sql.DB and *sql.Tx have in common.
type SQLiteExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteUnitOfWork runs units of work as database/sql transactions.
type SQLiteUnitOfWork struct {
	txUnit[*sql.Tx]
}

// NewSQLiteUnitOfWork creates a unit of work over db.
func NewSQLiteUnitOfWork(db *sql.DB) *SQLiteUnitOfWork {
	return &SQLiteUnitOfWork{sqlUnit(db)}
}

func sqlUnit(db *sql.DB) txUnit[*sql.Tx] {
	return txUnit[*sql.Tx]{
		begin:    func(ctx context.Context) (*sql.Tx, error) { return db.BeginTx(ctx, nil) },
		commit:   func(_ context.Context, tx *sql.Tx) error { return tx.Commit() },
		rollback: func(_ context.Context, tx *sql.Tx) error { return tx.Rollback() },
	}
}

// SQLiteExec returns the transaction in ctx, or db outside one.
func SQLiteExec(ctx context.Context, db *sql.DB) SQLiteExecutor {
	if s, ok := scopeFrom[*sql.Tx](ctx); ok {
		return s.tx
	}
	return db
}

// SQLiteTx runs fn atomically: inside the transaction in ctx when there is
// one, otherwise in its own.
func SQLiteTx(ctx context.Context, db *sql.DB, fn func(SQLiteExecutor) error) error {
	return inTx(ctx, sqlUnit(db), func(tx *sql.Tx) error { return fn(tx) })
}
