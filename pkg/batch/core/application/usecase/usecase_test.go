package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"

	"github.com/tigerroll/surfin-record/pkg/batch/component/item"
	usecase "github.com/tigerroll/surfin-record/pkg/batch/core/application/usecase"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	repository "github.com/tigerroll/surfin-record/pkg/batch/core/domain/repository"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/executor"
	"github.com/tigerroll/surfin-record/pkg/batch/infrastructure/repository/inmemory"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

const jobsJSL = `
id: first
reader:
  ref: valuesReader
  properties:
    values: "a,b,c"
writer:
  ref: noOpRecordWriter
---
id: second
reader:
  ref: valuesReader
  properties:
    values: "d,e"
writer:
  ref: noOpRecordWriter
`

type fixture struct {
	Launcher usecase.JobLauncher
	Operator usecase.JobOperator
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	defs, err := jsl.LoadDefinitions([]byte(jobsJSL))
	require.NoError(t, err)

	var f fixture
	app := fxtest.New(t,
		fx.NopLogger,
		fx.Supply(config.NewConfig(), defs),
		metrics.Module,
		support.Module,
		item.Module,
		executor.Module,
		fx.Provide(fx.Annotate(inmemory.NewInMemoryJobReportRepository, fx.As(new(repository.JobReportRepository)))),
		usecase.Module,
		fx.Populate(&f.Launcher, &f.Operator),
	)
	app.RequireStart()
	t.Cleanup(app.RequireStop)
	return f
}

// blockingJob runs until its context is cancelled.
type blockingJob struct {
	id      string
	started chan struct{}
}

func (j *blockingJob) Name() string        { return "blocking" }
func (j *blockingJob) ExecutionID() string { return j.id }
func (j *blockingJob) Call(ctx context.Context) *model.JobReport {
	close(j.started)
	<-ctx.Done()
	return model.NewJobReport(j.id, test.NewTestJobParameters("blocking", 1, -1), model.JobMetrics{}, model.StatusAborted, ctx.Err())
}

func TestJobLauncher_LaunchFromDefinition(t *testing.T) {
	f := newFixture(t)

	execution, err := f.Launcher.Launch(context.Background(), "first")
	require.NoError(t, err)
	assert.Equal(t, "first", execution.JobName)

	report, err := execution.Future.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, execution.ExecutionID, report.ExecutionID())
	assert.Equal(t, int64(3), report.Metrics().WriteCount)

	_, err = f.Launcher.Launch(context.Background(), "missing")
	assert.ErrorIs(t, err, exception.ErrJobMisconfigured)
}

func TestJobOperator_StopCancelsRunningExecution(t *testing.T) {
	f := newFixture(t)
	job := &blockingJob{id: model.NewID(), started: make(chan struct{})}

	execution, err := f.Launcher.Submit(context.Background(), job)
	require.NoError(t, err)
	<-job.started
	assert.Equal(t, []string{job.id}, f.Operator.Running())

	require.NoError(t, f.Operator.Stop(job.id))
	report, err := execution.Future.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, model.StatusAborted, report.Status())

	assert.Eventually(t, func() bool { return len(f.Operator.Running()) == 0 }, time.Second, 10*time.Millisecond)
	assert.ErrorIs(t, f.Operator.Stop(job.id), usecase.ErrJobNotRunning)
}

func TestJobOperator_RunAll(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	assert.Equal(t, []string{"first", "second"}, f.Operator.GetJobNames())

	reports, err := f.Operator.RunAll(ctx, usecase.FlowParallel, "first", "second")
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.Equal(t, "first", reports[0].JobName())
	assert.Equal(t, "second", reports[1].JobName())

	reports, err = f.Operator.RunAll(ctx, usecase.FlowSequential, "first", "second")
	require.NoError(t, err)
	require.Len(t, reports, 1)
	assert.Equal(t, "second", reports[0].JobName())
	assert.Equal(t, model.StatusCompleted, reports[0].Status())

	_, err = f.Operator.RunAll(ctx, "round-robin", "first")
	assert.ErrorIs(t, err, exception.ErrJobMisconfigured)
	_, err = f.Operator.RunAll(ctx, usecase.FlowParallel, "first", "nope")
	assert.ErrorIs(t, err, exception.ErrJobMisconfigured)
	_, err = f.Operator.RunAll(ctx, usecase.FlowParallel)
	assert.Error(t, err)
}

func TestJobExplorer(t *testing.T) {
	repo := inmemory.NewInMemoryJobReportRepository()
	explorer := usecase.NewSimpleJobExplorer(repo)
	ctx := context.Background()

	report := test.NewTestReport("import", model.StatusCompleted, 1, 1, 0, 0)
	require.NoError(t, repo.SaveJobReport(ctx, report))

	found, err := explorer.GetJobReport(ctx, report.ExecutionID())
	require.NoError(t, err)
	assert.Equal(t, report.ExecutionID(), found.ExecutionID())

	latest, err := explorer.GetLastJobReport(ctx, "import")
	require.NoError(t, err)
	assert.Equal(t, report.ExecutionID(), latest.ExecutionID())

	all, err := explorer.GetJobReports(ctx, "import")
	require.NoError(t, err)
	assert.Len(t, all, 1)
}
