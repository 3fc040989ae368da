package persistence

import (
	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// NewReportPersistenceListenerBuilder creates a ComponentBuilder for ReportPersistenceListener.
func NewReportPersistenceListenerBuilder(repo repository.JobReportRepository) jsl.ComponentBuilder {
	return func(_ *config.Config, _ map[string]string) (interface{}, error) {
		return NewReportPersistenceListener(repo), nil
	}
}

type persistenceListenerBuilders struct {
	fx.In
	Listener jsl.ComponentBuilder `name:"reportPersistenceListener"`
}

// RegisterPersistenceListener registers the persistence listener builder with the JobFactory.
func RegisterPersistenceListener(jf *support.JobFactory, builders persistenceListenerBuilders) {
	jf.RegisterComponentBuilder("reportPersistenceListener", builders.Listener)
	logger.Debugf("Persistence listener registered with JobFactory.")
}

// Module provides the persistence listener builder. The JobReportRepository comes
// from pkg/batch/infrastructure/repository.
var Module = fx.Options(
	fx.Provide(fx.Annotate(NewReportPersistenceListenerBuilder, fx.ResultTags(`name:"reportPersistenceListener"`))),
	fx.Invoke(RegisterPersistenceListener),
)
