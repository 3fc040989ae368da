// Package all aggregates the listener modules of the batch framework.
package all

import (
	"go.uber.org/fx"

	"github.com/tigerroll/surfin-record/pkg/batch/listener/logging"
	"github.com/tigerroll/surfin-record/pkg/batch/listener/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/listener/notification"
	"github.com/tigerroll/surfin-record/pkg/batch/listener/persistence"
	"github.com/tigerroll/surfin-record/pkg/batch/listener/tracing"
)

// Module aggregates all listener modules of the batch framework.
var Module = fx.Options(
	logging.Module,
	metrics.Module,
	tracing.Module,
	notification.Module,
	persistence.Module,
)
