package metrics

import (
	"context"
	"sync"
	"time"

	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// MetricEvent represents a metric event to be recorded asynchronously.
type MetricEvent struct {
	Type       string
	Parameters model.JobParameters
	Report     *model.JobReport
	JobName    string
	Name       string            // For duration metrics
	Reason     string            // For error events
	Count      int               // For batch writes
	Duration   time.Duration     // For batch writes and durations
	Tags       map[string]string // For duration metric tags
}

// Metric event type constants
const (
	MetricEventTypeJobStart       = "job_start"
	MetricEventTypeJobEnd         = "job_end"
	MetricEventTypeRecordRead     = "record_read"
	MetricEventTypeRecordFilter   = "record_filter"
	MetricEventTypeRecordError    = "record_error"
	MetricEventTypeBatchWrite     = "batch_write"
	MetricEventTypeRecordDuration = "record_duration"
)

// DefaultAsyncBufferSize is the event queue size used when none is configured.
const DefaultAsyncBufferSize = 100

// AsyncMetricRecorder asynchronously records metrics by pushing events to a channel
// and processing them in a separate goroutine. Events are dropped, with a warning,
// while the queue is full, so a slow backend never slows jobs down.
type AsyncMetricRecorder struct {
	eventQueue   chan MetricEvent
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
	syncRecorder metrics.MetricRecorder // The concrete instance that performs actual metric recording
}

// NewAsyncMetricRecorder creates a new asynchronous metric recorder.
// bufferSize: The buffer size for the event queue. If 0 or less, a default value is used.
// syncRec: The synchronous recorder that performs the actual metric recording.
func NewAsyncMetricRecorder(bufferSize int, syncRec metrics.MetricRecorder) *AsyncMetricRecorder {
	if bufferSize <= 0 {
		bufferSize = DefaultAsyncBufferSize
	}
	r := &AsyncMetricRecorder{
		eventQueue:   make(chan MetricEvent, bufferSize),
		stopCh:       make(chan struct{}),
		syncRecorder: syncRec,
	}
	r.wg.Add(1)
	go r.run()
	logger.Debugf("AsyncMetricRecorder: Worker goroutine started (buffer size: %d).", bufferSize)
	return r
}

// run reads events from the queue until Close is called, then drains what is left.
func (r *AsyncMetricRecorder) run() {
	defer r.wg.Done()
	for {
		select {
		case event := <-r.eventQueue:
			r.processEvent(event)
		case <-r.stopCh:
			remainingEvents := len(r.eventQueue)
			for i := 0; i < remainingEvents; i++ {
				r.processEvent(<-r.eventQueue)
			}
			logger.Debugf("AsyncMetricRecorder: Worker goroutine stopped. Processed %d remaining events.", remainingEvents)
			return
		}
	}
}

func (r *AsyncMetricRecorder) processEvent(event MetricEvent) {
	// Events outlive the job's context, so they are recorded under a fresh one.
	ctx := context.Background()
	switch event.Type {
	case MetricEventTypeJobStart:
		r.syncRecorder.RecordJobStart(ctx, event.Parameters)
	case MetricEventTypeJobEnd:
		r.syncRecorder.RecordJobEnd(ctx, event.Report)
	case MetricEventTypeRecordRead:
		r.syncRecorder.RecordRecordRead(ctx, event.JobName)
	case MetricEventTypeRecordFilter:
		r.syncRecorder.RecordRecordFilter(ctx, event.JobName)
	case MetricEventTypeRecordError:
		r.syncRecorder.RecordRecordError(ctx, event.JobName, event.Reason)
	case MetricEventTypeBatchWrite:
		r.syncRecorder.RecordBatchWrite(ctx, event.JobName, event.Count, event.Duration)
	case MetricEventTypeRecordDuration:
		r.syncRecorder.RecordDuration(ctx, event.Name, event.Duration, event.Tags)
	default:
		logger.Warnf("AsyncMetricRecorder: Unknown metric event type: %s", event.Type)
	}
}

// Close stops the recorder after processing the events still queued. It is safe to
// call more than once.
func (r *AsyncMetricRecorder) Close() {
	r.stopOnce.Do(func() {
		logger.Debugf("AsyncMetricRecorder: Sending shutdown signal...")
		close(r.stopCh)
	})
	r.wg.Wait()
}

// sendEvent sends an event to the queue, logging a warning if the queue is full.
func (r *AsyncMetricRecorder) sendEvent(event MetricEvent, id string) {
	select {
	case r.eventQueue <- event:
	default:
		logger.Warnf("AsyncMetricRecorder: Event queue is full (type: %s, ID: %s). Event discarded.", event.Type, id)
	}
}

func (r *AsyncMetricRecorder) RecordJobStart(ctx context.Context, parameters model.JobParameters) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeJobStart, Parameters: parameters}, parameters.Name)
}

func (r *AsyncMetricRecorder) RecordJobEnd(ctx context.Context, report *model.JobReport) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeJobEnd, Report: report}, report.ExecutionID())
}

func (r *AsyncMetricRecorder) RecordRecordRead(ctx context.Context, jobName string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeRecordRead, JobName: jobName}, jobName)
}

func (r *AsyncMetricRecorder) RecordRecordFilter(ctx context.Context, jobName string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeRecordFilter, JobName: jobName}, jobName)
}

func (r *AsyncMetricRecorder) RecordRecordError(ctx context.Context, jobName string, reason string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeRecordError, JobName: jobName, Reason: reason}, jobName)
}

func (r *AsyncMetricRecorder) RecordBatchWrite(ctx context.Context, jobName string, count int, duration time.Duration) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeBatchWrite, JobName: jobName, Count: count, Duration: duration}, jobName)
}

// RecordDuration asynchronously records the execution time event of a specific operation.
func (r *AsyncMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.sendEvent(MetricEvent{Type: MetricEventTypeRecordDuration, Name: name, Duration: duration, Tags: tags}, name)
}

// Ensures AsyncMetricRecorder implements the metrics.MetricRecorder interface at compile time.
var _ metrics.MetricRecorder = (*AsyncMetricRecorder)(nil)

// NewAsyncMetricRecorderWrapper applies the async setting to a configured recorder.
// When cfg.Surfin.Metrics.Async is set it wraps syncRecorder and closes the wrapper on
// shutdown; otherwise syncRecorder is returned unchanged.
func NewAsyncMetricRecorderWrapper(lc fx.Lifecycle, cfg *config.Config, syncRecorder metrics.MetricRecorder) metrics.MetricRecorder {
	if !cfg.Surfin.Metrics.Async {
		return syncRecorder
	}
	asyncRecorder := NewAsyncMetricRecorder(cfg.Surfin.Batch.MetricsAsyncBufferSize, syncRecorder)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			asyncRecorder.Close()
			return nil
		},
	})
	logger.Debugf("MetricRecorder decorated with asynchronous wrapper.")
	return asyncRecorder
}
