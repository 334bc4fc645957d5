// Package persistence carries a database transaction in a context, so
// repositories join the caller's unit of work without extra parameters.
package persistence

import (
	"context"
	"errors"
)

var errNoTx = errors.New("no transaction in context")

type txKey[T any] struct{}

// scope is the transaction in a context. Only the owner, the unit that
// began it, may finish it.
type scope[T any] struct {
	tx    T
	owner bool
}

func withScope[T any](ctx context.Context, tx T, owner bool) context.Context {
	return context.WithValue(ctx, txKey[T]{}, scope[T]{tx: tx, owner: owner})
}

func scopeFrom[T any](ctx context.Context) (scope[T], bool) {
	s, ok := ctx.Value(txKey[T]{}).(scope[T])
	return s, ok
}

// txUnit is a UnitOfWork over any transaction type. A Begin under an
// existing transaction joins it and leaves Commit and Rollback to the owner.
type txUnit[T any] struct {
	begin    func(context.Context) (T, error)
	commit   func(context.Context, T) error
	rollback func(context.Context, T) error
}

func (u txUnit[T]) Begin(ctx context.Context) (context.Context, error) {
	if s, ok := scopeFrom[T](ctx); ok {
		return withScope(ctx, s.tx, false), nil
	}
	tx, err := u.begin(ctx)
	if err != nil {
		return nil, err
	}
	return withScope(ctx, tx, true), nil
}

func (u txUnit[T]) Commit(ctx context.Context) error {
	return u.finish(ctx, u.commit)
}

func (u txUnit[T]) Rollback(ctx context.Context) error {
	return u.finish(ctx, u.rollback)
}

func (u txUnit[T]) finish(ctx context.Context, fn func(context.Context, T) error) error {
	s, ok := scopeFrom[T](ctx)
	if !ok {
		return errNoTx
	}
	if !s.owner {
		return nil
	}
	return fn(ctx, s.tx)
}

// inTx runs fn on the context's transaction, or on a new one committed
// when fn succeeds.
func inTx[T any](ctx context.Context, u txUnit[T], fn func(T) error) error {
	txCtx, err := u.Begin(ctx)
	if err != nil {
		return err
	}
	s, _ := scopeFrom[T](txCtx)
	if err := fn(s.tx); err != nil {
		_ = u.Rollback(txCtx)
		return err
	}
	return u.Commit(txCtx)
}
