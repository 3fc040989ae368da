// Package sqlite provides a GORM DBProvider implementation for SQLite databases.
package sqlite

import (
	"errors"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/config"
	gormadapter "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm"
)

// init registers the SQLite dialector factory with the GORM adapter.
// This function is automatically called when the package is imported.
func init() {
	gormadapter.RegisterDialector("sqlite", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		if cfg.Database == "" {
			return nil, errors.New("SQLite database path cannot be empty")
		}
		return sqlite.Open(ConnectionString(cfg)), nil
	})
}

// ConnectionString generates the DSN for SQLite connections.
// The GORM SQLite dialector expects the file path directly.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	return c.Database
}

// NewProvider creates a new `database.DBProvider` for SQLite.
func NewProvider() database.DBProvider {
	return gormadapter.NewBaseProvider("sqlite")
}
