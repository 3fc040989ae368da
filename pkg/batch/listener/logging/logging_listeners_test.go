package logging_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/listener/logging"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

func TestLoggingListenerBuilders_BindProperties(t *testing.T) {
	c, err := logging.NewLoggingPipelineListenerBuilder()(config.NewConfig(), map[string]string{
		"prefix":  "[import] ",
		"records": "true",
	})
	require.NoError(t, err)
	pipeline, ok := c.(port.PipelineListener)
	require.True(t, ok)

	ctx := context.Background()
	in := test.NewTestRecord(1, "a")
	out := test.NewTestRecord(1, "A")
	assert.Same(t, in, pipeline.BeforeRecordProcessing(ctx, in))
	pipeline.AfterRecordProcessing(ctx, in, out)
	pipeline.AfterRecordProcessing(ctx, in, nil)
	pipeline.OnRecordProcessingException(ctx, in, errors.New("bad"))

	_, err = logging.NewLoggingJobListenerBuilder()(config.NewConfig(), map[string]string{"records": "sometimes"})
	assert.Error(t, err)
}

func TestLoggingListeners_AllHooks(t *testing.T) {
	ctx := context.Background()
	props := logging.Properties{Records: true}
	batch := test.NewTestBatch(1, test.NewTestRecords("a")...)

	job := logging.NewLoggingJobListener(props)
	job.BeforeJob(ctx, model.NewJobParameters())
	job.AfterJob(ctx, test.NewTestReport("import", model.StatusCompleted, 1, 1, 0, 0))
	job.AfterJob(ctx, test.NewTestReport("import", model.StatusFailed, 1, 0, 0, 1))

	b := logging.NewLoggingBatchListener(props)
	b.BeforeBatchReading(ctx)
	b.AfterBatchProcessing(ctx, batch)
	b.AfterBatchWriting(ctx, batch)
	b.OnBatchWritingException(ctx, batch, errors.New("x"))

	r := logging.NewLoggingRecordReaderListener(props)
	r.BeforeRecordReading(ctx)
	r.AfterRecordReading(ctx, test.NewTestRecord(1, "a"))
	r.AfterRecordReading(ctx, nil)
	r.OnRecordReadingException(ctx, errors.New("x"))

	w := logging.NewLoggingRecordWriterListener(props)
	w.BeforeRecordWriting(ctx, batch)
	w.AfterRecordWriting(ctx, batch)
	w.OnRecordWritingException(ctx, batch, errors.New("x"))
}
