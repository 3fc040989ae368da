// Package flow composes jobs: in sequence, conditionally, repeatedly, in parallel,
// and as producer/worker pipelines. Every flow is itself a port.Job, so flows nest.
package flow

import (
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// ReportPredicate is a condition over the report of a finished job.
type ReportPredicate func(report *model.JobReport) bool

// HasStatus matches reports with the given status.
func HasStatus(status model.JobStatus) ReportPredicate {
	return func(report *model.JobReport) bool { return report != nil && report.Status() == status }
}

// Completed matches COMPLETED reports.
func Completed() ReportPredicate { return HasStatus(model.StatusCompleted) }

// Failed matches FAILED reports.
func Failed() ReportPredicate { return HasStatus(model.StatusFailed) }

// ErrorCountGreaterThan matches reports with more than n record errors.
func ErrorCountGreaterThan(n int64) ReportPredicate {
	return func(report *model.JobReport) bool { return report != nil && report.Metrics().ErrorCount > n }
}

// WroteRecords matches reports of jobs that wrote at least one record.
func WroteRecords() ReportPredicate {
	return func(report *model.JobReport) bool { return report != nil && report.Metrics().WriteCount > 0 }
}

// Not negates p.
func Not(p ReportPredicate) ReportPredicate {
	return func(report *model.JobReport) bool { return !p(report) }
}
