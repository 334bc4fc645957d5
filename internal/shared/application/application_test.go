package application

import (
	"context"
	"errors"
	"testing"

	"github.com/felixgeelhaar/momentum/internal/shared/domain"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type txState string

type recordingUnit struct {
	calls     []string
	beginErr  error
	commitErr error
}

func (u *recordingUnit) Begin(ctx context.Context) (context.Context, error) {
	u.calls = append(u.calls, "begin")
	if u.beginErr != nil {
		return nil, u.beginErr
	}
	return context.WithValue(ctx, txState("tx"), true), nil
}

func (u *recordingUnit) Commit(context.Context) error {
	u.calls = append(u.calls, "commit")
	return u.commitErr
}

func (u *recordingUnit) Rollback(context.Context) error {
	u.calls = append(u.calls, "rollback")
	return nil
}

func TestWithUnitOfWork(t *testing.T) {
	ctx := context.Background()

	t.Run("commits on success with the transaction context", func(t *testing.T) {
		uow := &recordingUnit{}
		err := WithUnitOfWork(ctx, uow, func(txCtx context.Context) error {
			assert.Equal(t, true, txCtx.Value(txState("tx")))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"begin", "commit"}, uow.calls)
	})

	t.Run("rolls back and returns the callback error", func(t *testing.T) {
		uow := &recordingUnit{}
		boom := errors.New("save failed")
		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return boom })
		assert.Same(t, boom, err)
		assert.Equal(t, []string{"begin", "rollback"}, uow.calls)
	})

	t.Run("begin failure skips the callback", func(t *testing.T) {
		uow := &recordingUnit{beginErr: errors.New("database is locked")}
		called := false
		err := WithUnitOfWork(ctx, uow, func(context.Context) error { called = true; return nil })
		assert.ErrorIs(t, err, uow.beginErr)
		assert.False(t, called)
		assert.Equal(t, []string{"begin"}, uow.calls)
	})

	t.Run("commit failure rolls back", func(t *testing.T) {
		uow := &recordingUnit{commitErr: errors.New("disk full")}
		err := WithUnitOfWork(ctx, uow, func(context.Context) error { return nil })
		assert.ErrorIs(t, err, uow.commitErr)
		assert.Equal(t, []string{"begin", "commit", "rollback"}, uow.calls)
	})

	t.Run("panics roll back and propagate", func(t *testing.T) {
		uow := &recordingUnit{}
		assert.Panics(t, func() {
			_ = WithUnitOfWork(ctx, uow, func(context.Context) error { panic("bug") })
		})
		assert.Equal(t, []string{"begin", "rollback"}, uow.calls)
	})
}

type stampedEvent struct {
	domain.EventHeader
}

func TestStampEvents(t *testing.T) {
	userID := uuid.New()
	first := &stampedEvent{domain.NewEventHeader(uuid.New(), "Activity", "progress.activity.logged")}
	second := &stampedEvent{domain.NewEventHeader(uuid.New(), "UnlockedAchievement", "progress.achievement.unlocked")}

	meta := StampEvents(context.Background(), userID, []domain.DomainEvent{first, second})

	assert.Equal(t, userID, meta.UserID)
	assert.NotEqual(t, uuid.Nil, meta.CorrelationID)
	assert.NotEqual(t, uuid.Nil, meta.CausationID)
	assert.Equal(t, meta, first.Metadata())
	assert.Equal(t, meta, second.Metadata())
}

func TestStampEvents_ContinuesScope(t *testing.T) {
	correlation, request := uuid.New(), uuid.New()
	ctx := observability.WithScope(context.Background(), observability.Scope{
		CorrelationID: correlation.String(),
		RequestID:     request.String(),
	})
	event := &stampedEvent{domain.NewEventHeader(uuid.New(), "Activity", "progress.activity.logged")}

	meta := StampEvents(ctx, uuid.New(), []domain.DomainEvent{event})
	assert.Equal(t, correlation, meta.CorrelationID)
	assert.Equal(t, request, meta.CausationID)

	garbled := observability.WithScope(context.Background(), observability.Scope{CorrelationID: "not-a-uuid"})
	assert.NotEqual(t, uuid.Nil, StampEvents(garbled, uuid.New(), nil).CorrelationID)
}
