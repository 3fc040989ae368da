// Package test provides shared fixtures and testify mocks for the framework's tests.
package test

import (
	"time"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// NewTestRecord creates a record with the given number and payload, sourced from "test".
func NewTestRecord(number int64, payload any) *model.AnyRecord {
	return model.NewRecord[any](model.NewHeader(number, "test", time.Now()), payload)
}

// NewTestRecords creates one record per payload, numbered from 1.
func NewTestRecords(payloads ...any) []*model.AnyRecord {
	records := make([]*model.AnyRecord, len(payloads))
	for i, p := range payloads {
		records[i] = NewTestRecord(int64(i+1), p)
	}
	return records
}

// NewTestBatch creates a batch numbered number holding records.
func NewTestBatch(number int64, records ...*model.AnyRecord) model.Batch {
	return model.NewBatch(model.NewHeader(number, "test", time.Now()), records...)
}

// NewTestJobParameters creates JobParameters for testing.
func NewTestJobParameters(name string, batchSize int, errorThreshold int64) model.JobParameters {
	p := model.NewJobParameters()
	p.Name = name
	p.BatchSize = batchSize
	p.ErrorThreshold = errorThreshold
	return p
}

// NewTestReport creates a report with the given status and counts. Start and end
// times are one second apart.
func NewTestReport(name string, status model.JobStatus, read, written, filtered, errors int64) *model.JobReport {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	metrics := model.JobMetrics{
		ReadCount:   read,
		WriteCount:  written,
		FilterCount: filtered,
		ErrorCount:  errors,
		StartTime:   start,
		EndTime:     start.Add(time.Second),
	}
	return model.NewJobReport(model.NewID(), NewTestJobParameters(name, model.DefaultBatchSize, model.UnboundedErrorThreshold), metrics, status, nil)
}
