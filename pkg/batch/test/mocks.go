package test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	port "github.com/tigerroll/surfin-record/pkg/batch/core/application/port"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
)

// MockRecordReader is a testify mock of port.RecordReader.
type MockRecordReader struct {
	mock.Mock
}

func (m *MockRecordReader) Open(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRecordReader) ReadRecord(ctx context.Context) (*model.AnyRecord, error) {
	args := m.Called(ctx)
	record, _ := args.Get(0).(*model.AnyRecord)
	return record, args.Error(1)
}

func (m *MockRecordReader) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockRecordWriter is a testify mock of port.RecordWriter.
type MockRecordWriter struct {
	mock.Mock
}

func (m *MockRecordWriter) Open(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockRecordWriter) WriteRecords(ctx context.Context, batch model.Batch) error {
	return m.Called(ctx, batch).Error(0)
}

func (m *MockRecordWriter) Close(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockJob is a testify mock of port.Job.
type MockJob struct {
	mock.Mock
}

func (m *MockJob) Name() string {
	return m.Called().String(0)
}

func (m *MockJob) Call(ctx context.Context) *model.JobReport {
	report, _ := m.Called(ctx).Get(0).(*model.JobReport)
	return report
}

// MockMetricRecorder is a testify mock of metrics.MetricRecorder.
type MockMetricRecorder struct {
	mock.Mock
}

func (m *MockMetricRecorder) RecordJobStart(ctx context.Context, parameters model.JobParameters) {
	m.Called(ctx, parameters)
}

func (m *MockMetricRecorder) RecordJobEnd(ctx context.Context, report *model.JobReport) {
	m.Called(ctx, report)
}

func (m *MockMetricRecorder) RecordRecordRead(ctx context.Context, jobName string) {
	m.Called(ctx, jobName)
}

func (m *MockMetricRecorder) RecordRecordFilter(ctx context.Context, jobName string) {
	m.Called(ctx, jobName)
}

func (m *MockMetricRecorder) RecordRecordError(ctx context.Context, jobName string, reason string) {
	m.Called(ctx, jobName, reason)
}

func (m *MockMetricRecorder) RecordBatchWrite(ctx context.Context, jobName string, count int, duration time.Duration) {
	m.Called(ctx, jobName, count, duration)
}

func (m *MockMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	m.Called(ctx, name, duration, tags)
}

// MockTracer is a testify mock of metrics.Tracer. Span starts return ctx and a no-op end.
type MockTracer struct {
	mock.Mock
}

func (m *MockTracer) StartJobSpan(ctx context.Context, parameters model.JobParameters) (context.Context, func()) {
	m.Called(ctx, parameters)
	return ctx, func() {}
}

func (m *MockTracer) StartBatchSpan(ctx context.Context, jobName string, batchNumber int64) (context.Context, func()) {
	m.Called(ctx, jobName, batchNumber)
	return ctx, func() {}
}

func (m *MockTracer) RecordError(ctx context.Context, module string, err error) {
	m.Called(ctx, module, err)
}

func (m *MockTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	m.Called(ctx, name, attributes)
}

var (
	_ port.RecordReader      = (*MockRecordReader)(nil)
	_ port.RecordWriter      = (*MockRecordWriter)(nil)
	_ port.Job               = (*MockJob)(nil)
	_ metrics.MetricRecorder = (*MockMetricRecorder)(nil)
	_ metrics.Tracer         = (*MockTracer)(nil)
)
