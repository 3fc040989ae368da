package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// JobReport is the outcome of one job run. It is built once, when the run ends,
// and never changes afterwards.
type JobReport struct {
	executionID string
	parameters  JobParameters
	metrics     JobMetrics
	status      JobStatus
	lastError   error
}

// NewJobReport creates a report.
func NewJobReport(executionID string, parameters JobParameters, metrics JobMetrics, status JobStatus, lastError error) *JobReport {
	return &JobReport{
		executionID: executionID,
		parameters:  parameters,
		metrics:     metrics,
		status:      status,
		lastError:   lastError,
	}
}

// ExecutionID returns the unique identifier of the run.
func (r *JobReport) ExecutionID() string { return r.executionID }

// JobName returns the name of the job that produced the report.
func (r *JobReport) JobName() string { return r.parameters.Name }

// Parameters returns the parameters the job ran with.
func (r *JobReport) Parameters() JobParameters { return r.parameters }

// Metrics returns the counters of the run.
func (r *JobReport) Metrics() JobMetrics { return r.metrics }

// Status returns the terminal status of the run.
func (r *JobReport) Status() JobStatus { return r.status }

// LastError returns the error that ended the run, if any.
func (r *JobReport) LastError() error { return r.lastError }

// Succeeded reports whether the run completed.
func (r *JobReport) Succeeded() bool { return r.status == StatusCompleted }

// String renders the report for humans and scripts.
func (r *JobReport) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Job Report:\n===========\n")
	fmt.Fprintf(&sb, "Parameters:\n")
	fmt.Fprintf(&sb, "\tName = %s\n", r.parameters.Name)
	fmt.Fprintf(&sb, "\tExecution Id = %s\n", r.executionID)
	fmt.Fprintf(&sb, "\tBatch size = %d\n", r.parameters.BatchSize)
	if r.parameters.IsErrorThresholdUnbounded() {
		fmt.Fprintf(&sb, "\tError threshold = N/A\n")
	} else {
		fmt.Fprintf(&sb, "\tError threshold = %d\n", r.parameters.ErrorThreshold)
	}
	fmt.Fprintf(&sb, "\tMonitoring enabled = %t\n", r.parameters.MonitoringEnabled)
	fmt.Fprintf(&sb, "Metrics:\n")
	fmt.Fprintf(&sb, "\tStart time = %s\n", formatTime(r.metrics.StartTime))
	fmt.Fprintf(&sb, "\tEnd time = %s\n", formatTime(r.metrics.EndTime))
	fmt.Fprintf(&sb, "\tDuration = %s\n", r.metrics.Duration())
	fmt.Fprintf(&sb, "\tRead count = %d\n", r.metrics.ReadCount)
	fmt.Fprintf(&sb, "\tWrite count = %d\n", r.metrics.WriteCount)
	fmt.Fprintf(&sb, "\tFilter count = %d\n", r.metrics.FilterCount)
	fmt.Fprintf(&sb, "\tError count = %d\n", r.metrics.ErrorCount)
	fmt.Fprintf(&sb, "Status = %s", r.status)
	if r.lastError != nil {
		fmt.Fprintf(&sb, "\nLast error = %v", r.lastError)
	}
	return sb.String()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.Format(time.RFC3339Nano)
}

// MergeReports folds the reports of jobs that ran together (for example in a parallel
// flow) into one report named name. Counts are summed, the time window spans all runs,
// the worst status wins (FAILED over ABORTED over COMPLETED) and the last errors are
// combined.
func MergeReports(name string, reports ...*JobReport) *JobReport {
	params := NewJobParameters()
	params.Name = name
	merged := JobMetrics{}
	status := StatusCompleted
	var errs *multierror.Error

	for i, r := range reports {
		if r == nil {
			continue
		}
		if i == 0 {
			params.BatchSize = r.parameters.BatchSize
			params.ErrorThreshold = r.parameters.ErrorThreshold
		}
		params.MonitoringEnabled = params.MonitoringEnabled || r.parameters.MonitoringEnabled

		m := r.metrics
		merged.ReadCount += m.ReadCount
		merged.WriteCount += m.WriteCount
		merged.FilterCount += m.FilterCount
		merged.ErrorCount += m.ErrorCount
		if !m.StartTime.IsZero() && (merged.StartTime.IsZero() || m.StartTime.Before(merged.StartTime)) {
			merged.StartTime = m.StartTime
		}
		if m.EndTime.After(merged.EndTime) {
			merged.EndTime = m.EndTime
		}
		if r.status.severity() > status.severity() {
			status = r.status
		}
		if r.lastError != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", r.parameters.Name, r.lastError))
		}
	}
	return NewJobReport(NewID(), params, merged, status, errs.ErrorOrNil())
}
