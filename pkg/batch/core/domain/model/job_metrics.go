package model

import "time"

// JobMetrics are the counters of a single job run. The owning job is the only
// writer; everyone else receives copies.
type JobMetrics struct {
	ReadCount   int64     `json:"readCount"`
	WriteCount  int64     `json:"writeCount"`
	FilterCount int64     `json:"filterCount"`
	ErrorCount  int64     `json:"errorCount"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
}

// Duration returns the elapsed time of the run, or zero if it has not ended.
func (m JobMetrics) Duration() time.Duration {
	if m.EndTime.IsZero() || m.StartTime.IsZero() {
		return 0
	}
	return m.EndTime.Sub(m.StartTime)
}
