package executor

import (
	"context"
	"time"

	"go.uber.org/fx"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// NewJobExecutorFromConfig creates the application's executor and shuts it down with
// the application, waiting up to ShutdownTimeoutSeconds for running jobs.
func NewJobExecutorFromConfig(lc fx.Lifecycle, cfg *config.Config) *JobExecutor {
	executorCfg := cfg.Surfin.Executor
	e := NewJobExecutor(executorCfg.MaxConcurrency)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			e.Shutdown()
			if executorCfg.ShutdownTimeoutSeconds > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, time.Duration(executorCfg.ShutdownTimeoutSeconds)*time.Second)
				defer cancel()
			}
			if err := e.AwaitTermination(ctx); err != nil {
				logger.Warnf("JobExecutor: %v", err)
				return err
			}
			return nil
		},
	})
	logger.Debugf("JobExecutor created (max concurrency: %d).", e.MaxConcurrency())
	return e
}

// Module provides the JobExecutor, also as a port.JobExecutor.
var Module = fx.Options(
	fx.Provide(NewJobExecutorFromConfig),
	fx.Provide(func(e *JobExecutor) port.JobExecutor { return e }),
)
