package gorm

import (
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"gorm.io/gorm"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
	dbconfig "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/config"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// DialectorFactory generates a gorm.Dialector from a dbconfig.DatabaseConfig.
type DialectorFactory func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error)

var (
	dialectorRegistry = make(map[string]DialectorFactory)
	dialectorMutex    sync.RWMutex
)

// RegisterDialector registers a DialectorFactory for the given database type.
func RegisterDialector(dbType string, factory DialectorFactory) {
	dialectorMutex.Lock()
	defer dialectorMutex.Unlock()
	if _, exists := dialectorRegistry[dbType]; exists {
		logger.Warnf("Dialector for type '%s' already registered. Overwriting.", dbType)
	}
	dialectorRegistry[dbType] = factory
}

// GetDialectorFactory retrieves the DialectorFactory corresponding to the specified DB type.
func GetDialectorFactory(dbType string) (DialectorFactory, error) {
	dialectorMutex.RLock()
	defer dialectorMutex.RUnlock()
	factory, ok := dialectorRegistry[dbType]
	if !ok {
		return nil, fmt.Errorf("no dialector registered for database type: %s", dbType)
	}
	return factory, nil
}

// BaseProvider implements database.DBProvider on top of the dialector registry.
// The per-type packages (mysql, postgres, sqlite) wrap it.
type BaseProvider struct {
	dbType string
	// Map to hold connections managed by this provider (name -> *gorm.DB)
	connections map[string]*gorm.DB
	mu          sync.Mutex
}

// NewBaseProvider creates a new BaseProvider for dbType.
func NewBaseProvider(dbType string) *BaseProvider {
	return &BaseProvider{
		dbType:      dbType,
		connections: make(map[string]*gorm.DB),
	}
}

// Type returns the database type.
func (p *BaseProvider) Type() string {
	return p.dbType
}

// GetConnection retrieves an existing connection or establishes a new one.
func (p *BaseProvider) GetConnection(name string, cfg dbconfig.DatabaseConfig) (*gorm.DB, error) {
	if cfg.Type != p.dbType {
		return nil, fmt.Errorf("provider type mismatch: expected '%s', got '%s' for connection '%s'", p.dbType, cfg.Type, name)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.connections[name]; ok {
		return db, nil
	}
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}
	p.connections[name] = db
	logger.Infof("Established new DB connection: %s (%s)", name, p.dbType)
	return db, nil
}

// CloseAll closes all connections managed by this provider.
func (p *BaseProvider) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result error
	for name, db := range p.connections {
		sqlDB, err := db.DB()
		if err == nil {
			logger.Infof("Closing database connection '%s'...", name)
			err = sqlDB.Close()
		}
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("close connection '%s': %w", name, err))
		}
		delete(p.connections, name)
	}
	return result
}

// Open establishes a GORM connection based on DatabaseConfig, using the dialector
// registered for its type, and applies the pool settings.
func Open(cfg dbconfig.DatabaseConfig) (*gorm.DB, error) {
	dialectorFactory, err := GetDialectorFactory(cfg.Type)
	if err != nil {
		return nil, fmt.Errorf("failed to get dialector factory for %s: %w", cfg.Type, err)
	}
	dialector, err := dialectorFactory(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create dialector for %s: %w", cfg.Type, err)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: NewGormLogger(cfg.LogLevel)})
	if err != nil {
		return nil, fmt.Errorf("failed to open GORM connection: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	if cfg.Pool.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.Pool.MaxOpenConns)
	}
	if cfg.Pool.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.Pool.MaxIdleConns)
	}
	if cfg.Pool.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.Pool.ConnMaxLifetimeMinutes) * time.Minute)
	}
	return db, nil
}

var _ database.DBProvider = (*BaseProvider)(nil)
