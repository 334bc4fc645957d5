package database

import "context"

// Connection is an open database handle. Repositories reach the concrete
// handle through DB() (SQLite) or Pool() (PostgreSQL).
type Connection interface {
	Driver() Driver
	Ping(ctx context.Context) error
	Close() error
}
