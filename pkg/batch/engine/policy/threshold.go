// Package policy holds the decision rules the engine applies to failures:
// when record errors become fatal to a job, and when an operation is retried.
package policy

import (
	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// ErrorThresholdPolicy decides whether a job must stop because of record errors.
type ErrorThresholdPolicy interface {
	// IsExceeded is evaluated after every error event with the cumulative error count.
	//
	// errorCount: The number of error events so far in the run.
	// Returns: true if the job must fail.
	IsExceeded(errorCount int64) bool
	// Threshold returns the configured threshold, or model.UnboundedErrorThreshold.
	Threshold() int64
}

// NewErrorThresholdPolicy creates the policy for a threshold. The job fails once the
// error count is strictly greater than threshold; model.UnboundedErrorThreshold
// tolerates every error.
func NewErrorThresholdPolicy(threshold int64) ErrorThresholdPolicy {
	if threshold == model.UnboundedErrorThreshold {
		return unboundedPolicy{}
	}
	return strictThresholdPolicy{threshold: threshold}
}

type strictThresholdPolicy struct {
	threshold int64
}

func (p strictThresholdPolicy) IsExceeded(errorCount int64) bool {
	return errorCount > p.threshold
}

func (p strictThresholdPolicy) Threshold() int64 { return p.threshold }

type unboundedPolicy struct{}

func (unboundedPolicy) IsExceeded(int64) bool { return false }

func (unboundedPolicy) Threshold() int64 { return model.UnboundedErrorThreshold }

var (
	_ ErrorThresholdPolicy = strictThresholdPolicy{}
	_ ErrorThresholdPolicy = unboundedPolicy{}
)
