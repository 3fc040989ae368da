package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	_ "embed"

	"go.uber.org/fx"

	usecase "github.com/tigerroll/surfin-record/pkg/batch/core/application/usecase"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// embeddedConfig holds the application's YAML configuration.
//
//go:embed resources/application.yaml
var embeddedConfig []byte

// embeddedJSL holds the job definitions.
//
//go:embed resources/jobs.yaml
var embeddedJSL []byte

// startJobExecution runs the configured jobs once the application has started.
func startJobExecution(
	lc fx.Lifecycle,
	shutdowner fx.Shutdowner,
	operator usecase.JobOperator,
	explorer usecase.JobExplorer,
	cfg *config.Config,
	appCtx context.Context,
) {
	lc.Append(fx.Hook{
		OnStart: onStartJobExecution(operator, explorer, cfg, shutdowner, appCtx),
		OnStop:  onStopApplication(),
	})
}

// onStartJobExecution runs the jobs in the background and requests shutdown when they
// are done. The exit code is 1 unless every report is COMPLETED.
func onStartJobExecution(
	operator usecase.JobOperator,
	explorer usecase.JobExplorer,
	cfg *config.Config,
	shutdowner fx.Shutdowner,
	appCtx context.Context,
) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		jobIDs := cfg.Surfin.Batch.Jobs
		if len(jobIDs) == 0 {
			jobIDs = []string{cfg.Surfin.Batch.JobName}
		}

		go func() {
			exitCode := 0
			defer func() {
				if r := recover(); r != nil {
					logger.Errorf("Panic recovered in job execution: %v", r)
					exitCode = 1
				}
				logger.Infof("Requesting application shutdown after job completion.")
				if err := shutdowner.Shutdown(fx.ExitCode(exitCode)); err != nil {
					logger.Errorf("Failed to shutdown application: %v", err)
				}
			}()

			logger.Infof("Running jobs %v (flow: %s)...", jobIDs, cfg.Surfin.Batch.Flow)
			reports, err := operator.RunAll(appCtx, cfg.Surfin.Batch.Flow, jobIDs...)
			if err != nil {
				logger.Errorf("Failed to run jobs: %v", err)
				exitCode = 1
				return
			}
			for _, report := range reports {
				logger.Infof("%s", report)
				if report.Status() != model.StatusCompleted {
					exitCode = 1
				}
			}

			for _, id := range jobIDs {
				history, err := explorer.GetJobReports(context.Background(), id)
				if err != nil {
					logger.Warnf("Could not read the report history of '%s': %v", id, err)
					continue
				}
				logger.Infof("Job '%s' has %d persisted report(s).", id, len(history))
			}
		}()
		return nil
	}
}

// onStopApplication logs the application shutdown.
func onStopApplication() func(ctx context.Context) error {
	return func(ctx context.Context) error {
		logger.Infof("Application is shutting down.")
		return nil
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Warnf("Received signal '%v'. Attempting to stop the jobs...", sig)
		cancel()
	}()

	envFilePath := os.Getenv("ENV_FILE_PATH")
	if envFilePath == "" {
		envFilePath = ".env"
	}

	fxApp := fx.New(GetApplicationOptions(ctx, envFilePath, embeddedConfig, embeddedJSL)...)
	fxApp.Run()
	if fxApp.Err() != nil {
		logger.Fatalf("Application run failed: %v", fxApp.Err())
	}
	_ = logger.Sync()
}
