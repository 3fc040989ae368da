package model

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

const (
	// DefaultJobName is the name given to jobs built without one.
	DefaultJobName = "job"
	// DefaultBatchSize is the number of records per batch when none is configured.
	DefaultBatchSize = 20
	// UnboundedErrorThreshold disables the error threshold: every record error is tolerated.
	UnboundedErrorThreshold int64 = -1
)

// JobParameters are the settings a job is constructed with. They are fixed once the
// job is built; jobs and reports hold copies.
type JobParameters struct {
	// Name identifies the job in logs, metrics and reports.
	Name string `yaml:"name" json:"name"`
	// BatchSize is the maximum number of records per batch.
	BatchSize int `yaml:"batch_size" json:"batchSize"`
	// ErrorThreshold is the number of record errors tolerated; the job fails once
	// its error count is strictly greater. UnboundedErrorThreshold disables the check.
	ErrorThreshold int64 `yaml:"error_threshold" json:"errorThreshold"`
	// MonitoringEnabled turns on metric recording for the job.
	MonitoringEnabled bool `yaml:"monitoring_enabled" json:"monitoringEnabled"`
}

// NewJobParameters returns the default parameters.
func NewJobParameters() JobParameters {
	return JobParameters{
		Name:           DefaultJobName,
		BatchSize:      DefaultBatchSize,
		ErrorThreshold: UnboundedErrorThreshold,
	}
}

// IsErrorThresholdUnbounded reports whether record errors can never fail the job.
func (p JobParameters) IsErrorThresholdUnbounded() bool {
	return p.ErrorThreshold == UnboundedErrorThreshold
}

// Validate checks the invariants of the parameters.
func (p JobParameters) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("job name must not be empty")
	}
	if p.BatchSize < 1 {
		return fmt.Errorf("batch size must be at least 1, got %d", p.BatchSize)
	}
	if p.ErrorThreshold < 0 && p.ErrorThreshold != UnboundedErrorThreshold {
		return fmt.Errorf("error threshold must be non-negative or unbounded, got %d", p.ErrorThreshold)
	}
	return nil
}

func (p JobParameters) String() string {
	threshold := "unbounded"
	if !p.IsErrorThresholdUnbounded() {
		threshold = strconv.FormatInt(p.ErrorThreshold, 10)
	}
	return fmt.Sprintf("JobParameters{name=%q, batchSize=%d, errorThreshold=%s, monitoringEnabled=%t}",
		p.Name, p.BatchSize, threshold, p.MonitoringEnabled)
}

// NewID generates a new unique identifier for a job execution.
func NewID() string {
	return uuid.New().String()
}
