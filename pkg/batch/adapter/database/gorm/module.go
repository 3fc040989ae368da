package gorm

import (
	"context"

	"go.uber.org/fx"

	"github.com/tigerroll/surfin-record/pkg/batch/adapter/database"
)

// registerCloseHook closes every opened connection when the application stops.
func registerCloseHook(lc fx.Lifecycle, resolver *GormDBConnectionResolver) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return resolver.CloseAll()
		},
	})
}

// Module exports the resolver of the gorm adapter. The concrete DB providers come
// from the mysql, postgres and sqlite sub-packages.
var Module = fx.Options(
	fx.Provide(NewGormDBConnectionResolver),
	fx.Provide(func(r *GormDBConnectionResolver) database.DBConnectionResolver { return r }),
	fx.Invoke(registerCloseHook),
)
