package gorm

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/fx"
	"gorm.io/gorm"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/config"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
)

// GormDBConnectionResolver is the GORM implementation of database.DBConnectionResolver.
type GormDBConnectionResolver struct {
	dbProviders map[string]database.DBProvider // DBProviders keyed by database type (e.g., "postgres", "mysql").
	cfg         *config.Config
}

// ResolverParams are the dependencies of NewGormDBConnectionResolver.
type ResolverParams struct {
	fx.In
	DBProviders []database.DBProvider `group:"db_providers"`
	Cfg         *config.Config
}

// NewGormDBConnectionResolver creates a new GormDBConnectionResolver.
//
// Parameters:
//
//	p: An Fx parameter struct containing the DBProviders and the application Config.
//
// Returns:
//
//	A new GormDBConnectionResolver instance.
func NewGormDBConnectionResolver(p ResolverParams) *GormDBConnectionResolver {
	providerMap := make(map[string]database.DBProvider, len(p.DBProviders))
	for _, provider := range p.DBProviders {
		providerMap[provider.Type()] = provider
	}
	return &GormDBConnectionResolver{
		dbProviders: providerMap,
		cfg:         p.Cfg,
	}
}

func (r *GormDBConnectionResolver) config(name string) (dbconfig.DatabaseConfig, error) {
	raw, ok := r.cfg.Surfin.AdapterConfigs[name]
	if !ok {
		return dbconfig.DatabaseConfig{}, fmt.Errorf("DBConnectionResolver: database configuration '%s' not found", name)
	}
	cfg, err := dbconfig.Decode(raw)
	if err != nil {
		return cfg, fmt.Errorf("DBConnectionResolver: connection '%s': %w", name, err)
	}
	return cfg, nil
}

// DatabaseType returns the configured type of the connection named name.
func (r *GormDBConnectionResolver) DatabaseType(name string) (string, error) {
	cfg, err := r.config(name)
	if err != nil {
		return "", err
	}
	return cfg.Type, nil
}

// ResolveDB resolves the gorm handle of the connection named name.
func (r *GormDBConnectionResolver) ResolveDB(ctx context.Context, name string) (*gorm.DB, error) {
	cfg, err := r.config(name)
	if err != nil {
		return nil, err
	}
	provider, ok := r.dbProviders[cfg.Type]
	if !ok {
		return nil, fmt.Errorf("DBConnectionResolver: no provider for database type '%s' (connection '%s')", cfg.Type, name)
	}
	db, err := provider.GetConnection(name, cfg)
	if err != nil {
		return nil, err
	}
	return db.WithContext(ctx), nil
}

// ResolveSQLDB resolves the database/sql handle underlying the connection named name.
func (r *GormDBConnectionResolver) ResolveSQLDB(ctx context.Context, name string) (*sql.DB, error) {
	db, err := r.ResolveDB(ctx, name)
	if err != nil {
		return nil, err
	}
	return db.DB()
}

// CloseAll closes the connections of every provider.
func (r *GormDBConnectionResolver) CloseAll() error {
	var result error
	for _, provider := range r.dbProviders {
		if err := provider.CloseAll(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result
}

var _ database.DBConnectionResolver = (*GormDBConnectionResolver)(nil)
