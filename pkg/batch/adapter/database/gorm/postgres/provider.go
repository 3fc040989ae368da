// Package postgres provides a GORM DBProvider implementation for PostgreSQL databases.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm"
)

// init registers the PostgreSQL dialector factory with the GORM adapter.
func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString generates the DSN (Data Source Name) for PostgreSQL connections.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	sslmode := c.Sslmode
	if sslmode == "" {
		sslmode = "disable"
	}
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, sslmode)
	if c.Schema != "" {
		dsn += " search_path=" + c.Schema
	}
	return dsn
}

// NewProvider creates a new `database.DBProvider` for PostgreSQL.
//
// This function is intended to be used with `fx.Provide` to register the PostgreSQL DBProvider
// in the application's dependency injection graph.
func NewProvider() database.DBProvider {
	return gormadapter.NewBaseProvider("postgres")
}
