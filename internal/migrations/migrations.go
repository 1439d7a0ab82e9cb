package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"blogapi/internal/config"
	"blogapi/internal/utils"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

//go:embed mysql/*.sql sqlite/*.sql
var MigrationsFS embed.FS

// Run applies every pending migration for driver. It uses its own connection
// because closing the migrator closes the database it was given; an in-memory
// SQLite DSN therefore gets a schema only on that connection.
func Run(driver, dsn string) error {
	log := utils.Logger().With(zap.String("module", "MIGRATE"), zap.String("driver", driver))
	log.Info("running database migrations from embedded files")

	sourceInstance, err := iofs.New(MigrationsFS, driver)
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver: %w", err)
	}

	dsn, err = config.NormalizeDSN(driver, dsn)
	if err != nil {
		return err
	}
	migrateDB, err := sql.Open(driver, dsn)
	if err != nil {
		_ = sourceInstance.Close()
		return fmt.Errorf("failed to open database connection for migration: %w", err)
	}
	if err = migrateDB.Ping(); err != nil {
		_ = sourceInstance.Close()
		_ = migrateDB.Close()
		return fmt.Errorf("failed to ping database for migration: %w", err)
	}

	dbDriver, err := withInstance(driver, migrateDB)
	if err != nil {
		_ = sourceInstance.Close()
		_ = migrateDB.Close()
		return err
	}

	m, err := migrate.NewWithInstance("iofs", sourceInstance, driver, dbDriver)
	if err != nil {
		_ = dbDriver.Close()
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = migrateLogAdapter{log: log}

	err = m.Up()
	srcErr, dbErr := m.Close()
	if srcErr != nil {
		log.Warn("error closing migration source", zap.Error(srcErr))
	}
	if dbErr != nil {
		log.Warn("error closing migration database connection", zap.Error(dbErr))
	}

	switch {
	case errors.Is(err, migrate.ErrNoChange):
		log.Info("no database schema changes to apply")
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	default:
		log.Info("database migrations completed successfully")
	}
	return nil
}

func withInstance(driver string, db *sql.DB) (database.Driver, error) {
	switch driver {
	case config.DriverMySQL:
		d, err := migratemysql.WithInstance(db, &migratemysql.Config{})
		if err != nil {
			return nil, fmt.Errorf("could not create mysql driver instance: %w", err)
		}
		return d, nil
	case config.DriverSQLite:
		d, err := migratesqlite.WithInstance(db, &migratesqlite.Config{
			MigrationsTable: migratesqlite.DefaultMigrationsTable,
		})
		if err != nil {
			return nil, fmt.Errorf("could not create sqlite driver instance: %w", err)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("unsupported migration driver %q", driver)
	}
}

type migrateLogAdapter struct {
	log *zap.Logger
}

func (l migrateLogAdapter) Printf(format string, v ...any) {
	l.log.Sugar().Infof(strings.TrimRight(format, "\n"), v...)
}

func (l migrateLogAdapter) Verbose() bool {
	return l.log.Core().Enabled(zap.DebugLevel)
}
