package sql

import (
	"errors"
	"time"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// JobReportEntity is the persisted form of a model.JobReport.
type JobReportEntity struct {
	ExecutionID       string `gorm:"primaryKey;size:36"`
	JobName           string `gorm:"size:255;index:idx_batch_job_report_job_name,priority:1"`
	BatchSize         int
	ErrorThreshold    int64
	MonitoringEnabled bool
	Status            string `gorm:"size:16"`
	ReadCount         int64
	WriteCount        int64
	FilterCount       int64
	ErrorCount        int64
	StartTime         *time.Time `gorm:"index:idx_batch_job_report_job_name,priority:2"`
	EndTime           *time.Time
	LastError         *string
}

func (JobReportEntity) TableName() string {
	return "batch_job_report"
}

func fromDomainJobReport(r *model.JobReport) *JobReportEntity {
	p := r.Parameters()
	m := r.Metrics()
	entity := &JobReportEntity{
		ExecutionID:       r.ExecutionID(),
		JobName:           p.Name,
		BatchSize:         p.BatchSize,
		ErrorThreshold:    p.ErrorThreshold,
		MonitoringEnabled: p.MonitoringEnabled,
		Status:            r.Status().String(),
		ReadCount:         m.ReadCount,
		WriteCount:        m.WriteCount,
		FilterCount:       m.FilterCount,
		ErrorCount:        m.ErrorCount,
		StartTime:         optionalTime(m.StartTime),
		EndTime:           optionalTime(m.EndTime),
	}
	if err := r.LastError(); err != nil {
		msg := err.Error()
		entity.LastError = &msg
	}
	return entity
}

// toDomainJobReport restores a report. The last error comes back as a plain error
// carrying the stored message.
func toDomainJobReport(e *JobReportEntity) *model.JobReport {
	params := model.JobParameters{
		Name:              e.JobName,
		BatchSize:         e.BatchSize,
		ErrorThreshold:    e.ErrorThreshold,
		MonitoringEnabled: e.MonitoringEnabled,
	}
	metrics := model.JobMetrics{
		ReadCount:   e.ReadCount,
		WriteCount:  e.WriteCount,
		FilterCount: e.FilterCount,
		ErrorCount:  e.ErrorCount,
	}
	if e.StartTime != nil {
		metrics.StartTime = *e.StartTime
	}
	if e.EndTime != nil {
		metrics.EndTime = *e.EndTime
	}
	var lastErr error
	if e.LastError != nil {
		lastErr = errors.New(*e.LastError)
	}
	return model.NewJobReport(e.ExecutionID, params, metrics, model.JobStatus(e.Status), lastErr)
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
