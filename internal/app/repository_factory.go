package app

import (
	"database/sql"
	"fmt"

	progressApp "github.com/felixgeelhaar/momentum/internal/progress/application"
	"github.com/felixgeelhaar/momentum/internal/progress/infrastructure/persistence"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/momentum/internal/shared/infrastructure/outbox"
	sharedPersistence "github.com/felixgeelhaar/momentum/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5/pgxpool"
)

type (
	poolHandle interface{ Pool() *pgxpool.Pool }
	dbHandle   interface{ DB() *sql.DB }
)

// Repositories builds the repository set over conn. The connection must
// expose the handle its driver needs: Pool() for postgres, DB() for sqlite.
func Repositories(conn database.Connection) (progressApp.Repositories, error) {
	switch driver := conn.Driver(); driver {
	case database.DriverPostgres:
		h, ok := conn.(poolHandle)
		if !ok {
			return progressApp.Repositories{}, fmt.Errorf("%s connection does not expose Pool()", driver)
		}
		return postgresRepositories(h.Pool()), nil
	case database.DriverSQLite:
		h, ok := conn.(dbHandle)
		if !ok {
			return progressApp.Repositories{}, fmt.Errorf("%s connection does not expose DB()", driver)
		}
		return sqliteRepositories(h.DB()), nil
	default:
		return progressApp.Repositories{}, fmt.Errorf("unsupported driver: %s", driver)
	}
}

func postgresRepositories(pool *pgxpool.Pool) progressApp.Repositories {
	return progressApp.Repositories{
		Activities:   persistence.NewPostgresActivityRepository(pool),
		Achievements: persistence.NewPostgresAchievementRepository(pool),
		Goals:        persistence.NewPostgresGoalRepository(pool),
		Stats:        persistence.NewPostgresStatsRepository(pool),
		Outbox:       outbox.NewPostgresRepository(pool),
		UnitOfWork:   sharedPersistence.NewPostgresUnitOfWork(pool),
	}
}

func sqliteRepositories(db *sql.DB) progressApp.Repositories {
	return progressApp.Repositories{
		Activities:   persistence.NewSQLiteActivityRepository(db),
		Achievements: persistence.NewSQLiteAchievementRepository(db),
		Goals:        persistence.NewSQLiteGoalRepository(db),
		Stats:        persistence.NewSQLiteStatsRepository(db),
		Outbox:       outbox.NewSQLiteRepository(db),
		UnitOfWork:   sharedPersistence.NewSQLiteUnitOfWork(db),
	}
}
