package gorm

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
	"github.com/tigerroll/surfin-record/pkg/batch/component/item"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

type tableWriterProperties struct {
	Connection string `yaml:"connection"`
	Table      string `yaml:"table"`
	ChunkSize  int    `yaml:"chunk_size"`
}

// NewTableWriterComponentBuilder creates a builder for a GormRecordWriter whose
// payloads are column maps (map[string]interface{}).
func NewTableWriterComponentBuilder(resolver database.DBConnectionResolver) jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		var props tableWriterProperties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		if props.Connection == "" || props.Table == "" {
			return nil, fmt.Errorf("gormTableWriter requires 'connection' and 'table' properties")
		}
		db, err := resolver.ResolveDB(context.Background(), props.Connection)
		if err != nil {
			return nil, err
		}
		return NewGormRecordWriter[map[string]interface{}](db, props.Table, props.ChunkSize), nil
	}
}

type queryReaderProperties struct {
	Connection string `yaml:"connection"`
	Query      string `yaml:"query"`
	// Name is the record source; it defaults to the connection name.
	Name string `yaml:"name"`
}

// NewQueryReaderComponentBuilder creates a builder for an item.SqlRecordReader over a
// named connection. Each row becomes a column map.
func NewQueryReaderComponentBuilder(resolver database.DBConnectionResolver) jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		var props queryReaderProperties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		if props.Connection == "" || props.Query == "" {
			return nil, fmt.Errorf("sqlQueryReader requires 'connection' and 'query' properties")
		}
		db, err := resolver.ResolveSQLDB(context.Background(), props.Connection)
		if err != nil {
			return nil, err
		}
		name := props.Name
		if name == "" {
			name = props.Connection
		}
		return item.NewSqlRecordReader(db, name, props.Query, nil, item.ColumnMapRowMapper), nil
	}
}

type componentBuilders struct {
	fx.In
	TableWriter jsl.ComponentBuilder `name:"gormTableWriter"`
	QueryReader jsl.ComponentBuilder `name:"sqlQueryReader"`
}

// RegisterComponentBuilders registers the database readers and writers with the JobFactory.
func RegisterComponentBuilders(jf *support.JobFactory, builders componentBuilders) {
	jf.RegisterComponentBuilder("gormTableWriter", builders.TableWriter)
	jf.RegisterComponentBuilder("sqlQueryReader", builders.QueryReader)
	logger.Debugf("Database components registered with JobFactory.")
}

// ComponentModule registers the database readers and writers as JSL components.
var ComponentModule = fx.Options(
	fx.Provide(fx.Annotate(NewTableWriterComponentBuilder, fx.ResultTags(`name:"gormTableWriter"`))),
	fx.Provide(fx.Annotate(NewQueryReaderComponentBuilder, fx.ResultTags(`name:"sqlQueryReader"`))),
	fx.Invoke(RegisterComponentBuilders),
)
