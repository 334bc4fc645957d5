package database

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Config selects and configures a backend.
type Config struct {
	// Driver may be empty or "auto" to detect it from URL.
	Driver Driver
	URL    string

	// SQLitePath is used when URL is empty. Defaults to ~/.momentum/data.db.
	SQLitePath string

	// Pool settings apply to PostgreSQL only. Zero keeps the pgx default.
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
}

// Opener opens a connection for one driver.
type Opener func(ctx context.Context, cfg Config) (Connection, error)

var (
	openersMu sync.RWMutex
	openers   = map[Driver]Opener{}
)

// Register makes a driver available to NewConnection. The driver packages
// call it from init, so a binary only links the backends it imports.
func Register(driver Driver, open Opener) {
	openersMu.Lock()
	defer openersMu.Unlock()
	openers[driver] = open
}

// NewConnection opens the backend cfg names.
func NewConnection(ctx context.Context, cfg Config) (Connection, error) {
	driver, err := ParseDriver(string(cfg.Driver), cfg.URL)
	if err != nil {
		return nil, err
	}

	openersMu.RLock()
	open := openers[driver]
	openersMu.RUnlock()
	if open == nil {
		return nil, fmt.Errorf("database driver %s is not linked into this binary", driver)
	}
	return open(ctx, cfg)
}

// DefaultSQLitePath is the local-mode database under the home directory.
func DefaultSQLitePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".momentum", "data.db")
}

// EnsureDirectory creates the directory that will hold path.
func EnsureDirectory(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
