package main

import (
	"context"

	"go.uber.org/fx"

	gormadapter "github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm"
	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm/mysql"
	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm/postgres"
	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database/gorm/sqlite"
	"github.com/tigerroll/surfin-record/pkg/batch/component/item"
	"github.com/tigerroll/surfin-record/pkg/batch/component/stage"
	usecase "github.com/tigerroll/surfin-record/pkg/batch/core/application/usecase"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	bootstrap "github.com/tigerroll/surfin-record/pkg/batch/core/config/bootstrap"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/executor"
	inframetrics "github.com/tigerroll/surfin-record/pkg/batch/infrastructure/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository"
	listeners "github.com/tigerroll/surfin-record/pkg/batch/listener/all"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// GetApplicationOptions builds the uber-fx options of the application.
func GetApplicationOptions(appCtx context.Context, envFilePath string, embeddedConfig config.EmbeddedConfig, embeddedJSL jsl.JSLDefinitionBytes) []fx.Option {
	var options []fx.Option

	options = append(options, fx.Supply(
		embeddedConfig,
		embeddedJSL,
		fx.Annotate(envFilePath, fx.ResultTags(`name:"envFilePath"`)),
		fx.Annotate(appCtx, fx.As(new(context.Context)), fx.ResultTags(`name:"appCtx"`)),
	))
	options = append(options, logger.Module)
	options = append(options, config.Module)
	options = append(options, metrics.Module)
	options = append(options, inframetrics.Module)
	options = append(options, bootstrap.Module)
	options = append(options, support.Module)
	options = append(options, executor.Module)
	options = append(options, usecase.Module)

	// Databases: the resolver and one provider per supported dialect.
	options = append(options, gormadapter.Module)
	options = append(options, sqlite.Module)
	options = append(options, mysql.Module)
	options = append(options, postgres.Module)
	options = append(options, repository.Module)

	// JSL components.
	options = append(options, item.Module)
	options = append(options, stage.Module)
	options = append(options, gormadapter.ComponentModule)
	options = append(options, listeners.Module)

	options = append(options, fx.Invoke(fx.Annotate(startJobExecution, fx.ParamTags("", "", "", "", "", `name:"appCtx"`))))
	return options
}
