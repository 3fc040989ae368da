// Package database defines how the framework obtains database handles. Concrete
// providers live under gorm/ and register themselves per database type.
package database

import (
	"context"
	"database/sql"

	"gorm.io/gorm"

	dbconfig "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/config"
)

// DBProvider opens and caches connections for one database type.
type DBProvider interface {
	// Type returns the database type handled by this provider (e.g., "mysql", "sqlite").
	Type() string
	// GetConnection returns the connection named name, opening it with cfg on first use.
	GetConnection(name string, cfg dbconfig.DatabaseConfig) (*gorm.DB, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
}

// DBConnectionResolver resolves the named connections of the "database" configuration section.
type DBConnectionResolver interface {
	// ResolveDB returns the gorm handle of a named connection.
	ResolveDB(ctx context.Context, name string) (*gorm.DB, error)
	// ResolveSQLDB returns the database/sql handle underlying a named connection.
	ResolveSQLDB(ctx context.Context, name string) (*sql.DB, error)
	// DatabaseType returns the configured type of a named connection.
	DatabaseType(name string) (string, error)
}

// DBProviderGroup is the Fx value group holding every DBProvider.
const DBProviderGroup = "db_providers"
