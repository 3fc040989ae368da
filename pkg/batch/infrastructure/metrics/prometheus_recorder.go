package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	metrics "github.com/tigerroll/surfin-record/pkg/batch/core/metrics"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Job metrics
	jobStartedCounter  *prometheus.CounterVec
	jobStatusCounter   *prometheus.CounterVec
	jobDurationSeconds *prometheus.HistogramVec

	// Record metrics
	recordReadCount   *prometheus.CounterVec
	recordFilterCount *prometheus.CounterVec
	recordErrorCount  *prometheus.CounterVec
	recordWriteCount  *prometheus.CounterVec

	// Batch and generic durations
	batchWriteSeconds *prometheus.HistogramVec
	durationSeconds   *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a recorder with its own registry. Metric names are
// prefixed with namespace when it is not empty.
func NewPrometheusRecorder(namespace string) *PrometheusRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobStartedCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_started_total",
			Help:      "Total number of job runs started.",
		}, []string{"job_name"}),
		jobStatusCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "job_status_total",
			Help:      "Total number of finished job runs by status.",
		}, []string{"job_name", "status"}),
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "job_duration_seconds",
			Help:      "Duration of job runs.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_name", "status"}),
		recordReadCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_read_total",
			Help:      "Total records read by job.",
		}, []string{"job_name"}),
		recordFilterCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_filter_total",
			Help:      "Total records filtered by job.",
		}, []string{"job_name"}),
		recordErrorCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_error_total",
			Help:      "Total error events by job and failing module.",
		}, []string{"job_name", "reason"}),
		recordWriteCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "record_write_total",
			Help:      "Total records written by job.",
		}, []string{"job_name"}),
		batchWriteSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_write_duration_seconds",
			Help:      "Time spent writing one batch.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"job_name"}),
		durationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of named operations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"name"}),
	}

	registry.MustRegister(
		r.jobStartedCounter,
		r.jobStatusCounter,
		r.jobDurationSeconds,
		r.recordReadCount,
		r.recordFilterCount,
		r.recordErrorCount,
		r.recordWriteCount,
		r.batchWriteSeconds,
		r.durationSeconds,
	)
	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// RecordJobStart records the start of a job run.
func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, parameters model.JobParameters) {
	r.jobStartedCounter.WithLabelValues(parameters.Name).Inc()
	logger.Debugf("Metrics: Job '%s' started.", parameters.Name)
}

// RecordJobEnd records the status and duration of a finished run.
func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, report *model.JobReport) {
	status := report.Status().String()
	r.jobStatusCounter.WithLabelValues(report.JobName(), status).Inc()
	duration := report.Metrics().Duration().Seconds()
	r.jobDurationSeconds.WithLabelValues(report.JobName(), status).Observe(duration)
	logger.Debugf("Metrics: Job '%s' ended. Duration: %.3fs", report.JobName(), duration)
}

func (r *PrometheusRecorder) RecordRecordRead(ctx context.Context, jobName string) {
	r.recordReadCount.WithLabelValues(jobName).Inc()
}

func (r *PrometheusRecorder) RecordRecordFilter(ctx context.Context, jobName string) {
	r.recordFilterCount.WithLabelValues(jobName).Inc()
}

func (r *PrometheusRecorder) RecordRecordError(ctx context.Context, jobName string, reason string) {
	r.recordErrorCount.WithLabelValues(jobName, reason).Inc()
}

// RecordBatchWrite adds the batch's records to the write counter and observes the
// writer's latency.
func (r *PrometheusRecorder) RecordBatchWrite(ctx context.Context, jobName string, count int, duration time.Duration) {
	r.recordWriteCount.WithLabelValues(jobName).Add(float64(count))
	r.batchWriteSeconds.WithLabelValues(jobName).Observe(duration.Seconds())
}

// RecordDuration observes a named duration. Tags are not used as labels, since
// Prometheus requires a fixed label set per metric.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.durationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
