package cli

import (
	"context"

	internalApp "github.com/felixgeelhaar/momentum/internal/app"
	progressApp "github.com/felixgeelhaar/momentum/internal/progress/application"
	"github.com/felixgeelhaar/momentum/pkg/observability"
	"github.com/google/uuid"
)

// App holds the CLI application dependencies.
type App struct {
	Service *progressApp.Service

	// Current user (configured per environment)
	CurrentUserID uuid.UUID

	deliverEvents func(ctx context.Context) error
	health        *observability.HealthRegistry
}

// NewApp creates a new CLI application over the progress service.
func NewApp(service *progressApp.Service) *App {
	return &App{
		Service:       service,
		CurrentUserID: uuid.Nil,
	}
}

// NewAppFromContainer wires an app to the container's service, event
// delivery and health checks, acting as userID.
func NewAppFromContainer(c *internalApp.Container, userID uuid.UUID) *App {
	a := NewApp(c.Service)
	a.SetCurrentUserID(userID)
	a.SetEventDelivery(c.DeliverEvents)
	a.SetHealth(c.Health)
	return a
}

// SetCurrentUserID updates the current user ID.
func (a *App) SetCurrentUserID(id uuid.UUID) {
	a.CurrentUserID = id
}

// SetEventDelivery installs the hook that hands pending events to their
// consumers. Local mode uses it to evaluate achievements in-process.
func (a *App) SetEventDelivery(fn func(ctx context.Context) error) {
	a.deliverEvents = fn
}

// DeliverEvents runs the delivery hook, if any.
func (a *App) DeliverEvents(ctx context.Context) error {
	if a.deliverEvents == nil {
		return nil
	}
	return a.deliverEvents(ctx)
}

// SetHealth installs the registry checked by `momentum health`.
func (a *App) SetHealth(r *observability.HealthRegistry) {
	a.health = r
}

// CheckHealth runs the installed checks. Without a registry the app is
// reported healthy when the service is wired.
func (a *App) CheckHealth(ctx context.Context) observability.OverallHealth {
	if a.health == nil {
		status := observability.HealthStatusHealthy
		if a.Service == nil {
			status = observability.HealthStatusUnhealthy
		}
		return observability.OverallHealth{Status: status, Checks: map[string]observability.HealthCheckResult{}}
	}
	return a.health.Check(ctx)
}

// app is the global CLI application instance
var app *App

// SetApp sets the global CLI application instance.
func SetApp(a *App) {
	app = a
}

// GetApp returns the global CLI application instance.
func GetApp() *App {
	return app
}

// RequireApp returns the app or an error naming the missing capability.
func RequireApp(what string) (*App, error) {
	if app == nil || app.Service == nil {
		return nil, &ServiceUnavailableError{What: what}
	}
	return app, nil
}

// ServiceUnavailableError is returned when a command runs without storage.
type ServiceUnavailableError struct {
	What string
}

func (e *ServiceUnavailableError) Error() string {
	return e.What + " requires the progress service; check DATABASE_URL or local mode"
}
