package sql

import (
	stdsql "database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// MigrationsTable is the table golang-migrate keeps the schema version in.
const MigrationsTable = "batch_report_schema_migrations"

//go:embed migrations
var migrationFS embed.FS

// getDatabaseDriver retrieves a migrate/v4 Driver based on the database type.
func getDatabaseDriver(db *stdsql.DB, dbType string) (database.Driver, error) {
	switch dbType {
	case "postgres":
		return postgres.WithInstance(db, &postgres.Config{MigrationsTable: MigrationsTable})
	case "mysql":
		return mysql.WithInstance(db, &mysql.Config{MigrationsTable: MigrationsTable})
	case "sqlite":
		return sqlite3.WithInstance(db, &sqlite3.Config{MigrationsTable: MigrationsTable})
	default:
		return nil, fmt.Errorf("unsupported database type for migration: %s", dbType)
	}
}

// Migrate applies the pending report schema migrations for dbType ("sqlite", "mysql"
// or "postgres") on db. The database stays open afterwards.
func Migrate(db *stdsql.DB, dbType string) error {
	path := "migrations/" + dbType
	logger.Infof("Executing report schema migration (Path: %s, Table: %s)", path, MigrationsTable)

	sourceDriver, err := iofs.New(migrationFS, path)
	if err != nil {
		return fmt.Errorf("failed to create iofs source driver for path %s: %w", path, err)
	}
	defer sourceDriver.Close()

	dbDriver, err := getDatabaseDriver(db, dbType)
	if err != nil {
		return fmt.Errorf("failed to create database driver: %w", err)
	}

	// Not closed: closing the migrate instance would close db as well.
	m, err := migrate.NewWithInstance("iofs", sourceDriver, dbType, dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		if version, dirty, verr := m.Version(); verr == nil {
			logger.Errorf("Report schema migration failed at version %d (dirty: %t).", version, dirty)
		}
		return fmt.Errorf("report schema migration failed (DB: %s): %w", dbType, err)
	}
	logger.Infof("Report schema migration completed successfully.")
	return nil
}
