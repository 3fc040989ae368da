package policy

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// RetryPolicy decides whether a failed operation is attempted again.
type RetryPolicy interface {
	// ShouldRetry determines if a given error is retryable.
	ShouldRetry(err error) bool
	// BackoffInterval returns the wait before the given retry attempt (starting from 1).
	BackoffInterval(attempt int) time.Duration
	// MaxAttempts returns the maximum number of attempts, the first one included.
	MaxAttempts() int
}

// RetryConfig holds the settings of the default retry policy.
type RetryConfig struct {
	MaxAttempts     int           `yaml:"max_attempts"`
	InitialInterval time.Duration `yaml:"initial_interval"`
	MaxInterval     time.Duration `yaml:"max_interval"`
	Factor          float64       `yaml:"factor"`
	// RetryableErrors lists error names (see exception.IsErrorOfType) that are retried
	// in addition to errors flagged retryable.
	RetryableErrors []string `yaml:"retryable_errors"`
}

// NewRetryPolicy creates the default policy: a BatchError's retryable flag or a match
// against cfg.RetryableErrors makes an error retryable, and the interval grows by
// cfg.Factor up to cfg.MaxInterval.
func NewRetryPolicy(cfg RetryConfig) RetryPolicy {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	if cfg.Factor < 1 {
		cfg.Factor = 1
	}
	return &defaultRetryPolicy{cfg: cfg}
}

type defaultRetryPolicy struct {
	cfg RetryConfig
}

func (p *defaultRetryPolicy) MaxAttempts() int { return p.cfg.MaxAttempts }

func (p *defaultRetryPolicy) ShouldRetry(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	var be *exception.BatchError
	if errors.As(err, &be) && be.IsRetryable() {
		return true
	}
	for _, name := range p.cfg.RetryableErrors {
		if exception.IsErrorOfType(err, name) {
			return true
		}
	}
	return false
}

func (p *defaultRetryPolicy) BackoffInterval(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	interval := time.Duration(float64(p.cfg.InitialInterval) * math.Pow(p.cfg.Factor, float64(attempt-1)))
	if p.cfg.MaxInterval > 0 && interval > p.cfg.MaxInterval {
		return p.cfg.MaxInterval
	}
	return interval
}

// Retry runs op until it succeeds, the policy refuses another attempt, or ctx is done.
// The last error is returned.
func Retry(ctx context.Context, p RetryPolicy, name string, op func(ctx context.Context) error) error {
	var err error
	for attempt := 1; ; attempt++ {
		if err = op(ctx); err == nil {
			return nil
		}
		if attempt >= p.MaxAttempts() || !p.ShouldRetry(err) {
			return err
		}
		wait := p.BackoffInterval(attempt)
		logger.Warnf("%s failed (attempt %d/%d), retrying in %s: %v", name, attempt, p.MaxAttempts(), wait, err)
		select {
		case <-ctx.Done():
			return errors.Join(err, ctx.Err())
		case <-time.After(wait):
		}
	}
}

var _ RetryPolicy = (*defaultRetryPolicy)(nil)
