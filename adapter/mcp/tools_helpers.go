package mcp

import (
	"fmt"

	"github.com/felixgeelhaar/momentum/adapter/cli"
	"github.com/felixgeelhaar/momentum/internal/progress/domain"
	"github.com/google/uuid"
)

// parseID reads a required uuid argument, naming the field in errors.
func parseID(field, value string) (uuid.UUID, error) {
	if value == "" {
		return uuid.Nil, fmt.Errorf("%s is required", field)
	}
	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%s: %w", field, err)
	}
	return id, nil
}

// dateOrToday parses a YYYY-MM-DD date; empty means the service's today.
func dateOrToday(app *cli.App, value string) (domain.Date, error) {
	if value == "" {
		return app.Service.Metrics.Today(), nil
	}
	return domain.ParseDate(value)
}

func requireService(app *cli.App, what string) error {
	if app == nil || app.Service == nil {
		return &cli.ServiceUnavailableError{What: what}
	}
	return nil
}
