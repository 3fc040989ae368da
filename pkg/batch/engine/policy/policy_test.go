package policy_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/engine/policy"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

func TestErrorThresholdPolicy_IsStrict(t *testing.T) {
	p := policy.NewErrorThresholdPolicy(2)

	assert.False(t, p.IsExceeded(0))
	assert.False(t, p.IsExceeded(2))
	assert.True(t, p.IsExceeded(3))
	assert.Equal(t, int64(2), p.Threshold())
}

func TestErrorThresholdPolicy_ZeroToleratesNothing(t *testing.T) {
	p := policy.NewErrorThresholdPolicy(0)
	assert.True(t, p.IsExceeded(1))
}

func TestErrorThresholdPolicy_Unbounded(t *testing.T) {
	p := policy.NewErrorThresholdPolicy(model.UnboundedErrorThreshold)
	assert.False(t, p.IsExceeded(1<<40))
	assert.Equal(t, model.UnboundedErrorThreshold, p.Threshold())
}

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	p := policy.NewRetryPolicy(policy.RetryConfig{MaxAttempts: 3, RetryableErrors: []string{"connection refused"}})

	assert.True(t, p.ShouldRetry(exception.NewBatchError("reader", "flaky", nil, false, true)))
	assert.True(t, p.ShouldRetry(errors.New("dial: connection refused")))
	assert.False(t, p.ShouldRetry(errors.New("syntax error")))
	assert.False(t, p.ShouldRetry(context.Canceled))
	assert.False(t, p.ShouldRetry(nil))
}

func TestRetryPolicy_BackoffGrowsUpToMax(t *testing.T) {
	p := policy.NewRetryPolicy(policy.RetryConfig{
		MaxAttempts:     5,
		InitialInterval: 10 * time.Millisecond,
		MaxInterval:     30 * time.Millisecond,
		Factor:          2,
	})

	assert.Equal(t, 10*time.Millisecond, p.BackoffInterval(1))
	assert.Equal(t, 20*time.Millisecond, p.BackoffInterval(2))
	assert.Equal(t, 30*time.Millisecond, p.BackoffInterval(3))
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	p := policy.NewRetryPolicy(policy.RetryConfig{MaxAttempts: 3, InitialInterval: time.Millisecond})
	calls := 0

	err := policy.Retry(context.Background(), p, "read", func(ctx context.Context) error {
		calls++
		if calls < 3 {
			return exception.NewBatchError("reader", "flaky", nil, false, true)
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestRetry_GivesUpOnNonRetryable(t *testing.T) {
	p := policy.NewRetryPolicy(policy.RetryConfig{MaxAttempts: 5})
	boom := errors.New("boom")
	calls := 0

	err := policy.Retry(context.Background(), p, "write", func(ctx context.Context) error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}
