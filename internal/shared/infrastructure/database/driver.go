package database

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Driver names a storage backend.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

func (d Driver) String() string { return string(d) }

// IsValid reports whether d is a supported backend.
func (d Driver) IsValid() bool {
	return d == DriverPostgres || d == DriverSQLite
}

// ParseDriver resolves a configured driver name. An empty name or "auto"
// is detected from dsn.
func ParseDriver(name, dsn string) (Driver, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return DetectDriver(dsn), nil
	case "postgres", "postgresql", "pg":
		return DriverPostgres, nil
	case "sqlite", "sqlite3":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unsupported database driver: %s", name)
	}
}

// DetectDriver guesses the backend from a connection string. No string at
// all means local SQLite; anything not recognisably SQLite is PostgreSQL.
func DetectDriver(dsn string) Driver {
	if dsn == "" {
		return DriverSQLite
	}
	if scheme, _, ok := strings.Cut(dsn, "://"); ok {
		switch strings.ToLower(scheme) {
		case "postgres", "postgresql":
			return DriverPostgres
		case "sqlite", "sqlite3":
			return DriverSQLite
		}
	}
	if strings.HasPrefix(dsn, "file:") {
		return DriverSQLite
	}
	path, _, _ := strings.Cut(dsn, "?")
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite", ".sqlite3":
		return DriverSQLite
	}
	return DriverPostgres
}

// IsNoRows reports a lookup that matched nothing, from either driver.
func IsNoRows(err error) bool {
	return err != nil && (errors.Is(err, sql.ErrNoRows) || errors.Is(err, pgx.ErrNoRows))
}
