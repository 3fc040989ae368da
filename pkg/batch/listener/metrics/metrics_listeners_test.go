package metrics_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	listenermetrics "github.com/tigerroll/surfin-record/pkg/batch/listener/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

func TestMetricsListener_RecordsJobDuration(t *testing.T) {
	recorder := new(test.MockMetricRecorder)
	recorder.On("RecordDuration", mock.Anything, listenermetrics.JobDurationName, time.Second,
		map[string]string{"job_name": "import", "status": "FAILED"}).Once()

	l := listenermetrics.NewMetricsListener(recorder)
	l.AfterJob(context.Background(), test.NewTestReport("import", model.StatusFailed, 3, 0, 0, 3))

	recorder.AssertExpectations(t)
}

func TestMetricsListener_RecordsBatchWriteOutcome(t *testing.T) {
	recorder := new(test.MockMetricRecorder)
	recorder.On("RecordDuration", mock.Anything, listenermetrics.BatchWriteDurationName, mock.AnythingOfType("time.Duration"),
		map[string]string{"job_name": "test", "outcome": "success"}).Once()
	recorder.On("RecordDuration", mock.Anything, listenermetrics.BatchWriteDurationName, mock.AnythingOfType("time.Duration"),
		map[string]string{"job_name": "test", "outcome": "failure"}).Once()

	ctx := context.Background()
	l := listenermetrics.NewMetricsListener(recorder)

	ok := test.NewTestBatch(1, test.NewTestRecords(1, 2)...)
	failed := test.NewTestBatch(2, test.NewTestRecords(3)...)
	l.BeforeRecordWriting(ctx, ok)
	l.BeforeRecordWriting(ctx, failed)
	l.AfterRecordWriting(ctx, ok)
	l.OnRecordWritingException(ctx, failed, errors.New("disk full"))

	// Without a matching start there is nothing to measure.
	l.AfterRecordWriting(ctx, test.NewTestBatch(3))

	recorder.AssertExpectations(t)
}
