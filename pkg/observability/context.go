package observability

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// Log attribute names for the scope ids.
const (
	CorrelationIDKey = "correlation_id"
	RequestIDKey     = "request_id"
	UserIDKey        = "user_id"
)

// Scope names the unit of work a context belongs to. The logger adds its
// non-empty ids to every record logged with that context.
type Scope struct {
	CorrelationID string
	RequestID     string
	UserID        string
}

type scopeKey struct{}

// ScopeFrom returns the scope of ctx, or the zero Scope.
func ScopeFrom(ctx context.Context) Scope {
	if ctx == nil {
		return Scope{}
	}
	s, _ := ctx.Value(scopeKey{}).(Scope)
	return s
}

// WithScope replaces the scope of ctx.
func WithScope(ctx context.Context, s Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, s)
}

// NewRequestContext starts a request with a fresh request id. It continues
// correlationID, or starts a new correlation when that is empty. The user
// carries over.
func NewRequestContext(ctx context.Context, correlationID string) context.Context {
	s := ScopeFrom(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	s.CorrelationID = correlationID
	s.RequestID = uuid.NewString()
	return WithScope(ctx, s)
}

// WithUserID tags ctx with the acting user.
func WithUserID(ctx context.Context, userID string) context.Context {
	s := ScopeFrom(ctx)
	s.UserID = userID
	return WithScope(ctx, s)
}

func (s Scope) attrs() []slog.Attr {
	attrs := make([]slog.Attr, 0, 3)
	for _, kv := range [...]struct{ key, value string }{
		{CorrelationIDKey, s.CorrelationID},
		{RequestIDKey, s.RequestID},
		{UserIDKey, s.UserID},
	} {
		if kv.value != "" {
			attrs = append(attrs, slog.String(kv.key, kv.value))
		}
	}
	return attrs
}
