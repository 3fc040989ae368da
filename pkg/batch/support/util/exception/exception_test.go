package exception_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tigerroll/surfin-record/pkg/batch/support/util/exception"
)

func TestNewBatchErrorf_ExtractsTrailingFlagsAndError(t *testing.T) {
	cause := errors.New("disk full")
	err := exception.NewBatchErrorf("writer", "insert into %s failed", "people", true, false, cause)

	assert.Equal(t, "writer", err.Module)
	assert.Equal(t, "insert into people failed", err.Message)
	assert.True(t, err.IsSkippable())
	assert.False(t, err.IsRetryable())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "[writer] insert into people failed: disk full", err.Error())
}

func TestNewRecordError_MatchesKindAndCause(t *testing.T) {
	cause := errors.New("age must be positive")
	err := exception.NewRecordError("validator", exception.ErrRecordValidation, 7, cause)

	assert.ErrorIs(t, err, exception.ErrRecordValidation)
	assert.ErrorIs(t, err, cause)
	assert.True(t, exception.IsRecordScoped(err))
	assert.False(t, exception.IsFatal(err))
	assert.Equal(t, "record #7", exception.ExtractErrorMessage(err))
}

func TestIsRecordScoped_IgnoresJobLevelErrors(t *testing.T) {
	assert.False(t, exception.IsRecordScoped(exception.ErrRecordWriting))
	assert.False(t, exception.IsRecordScoped(exception.ErrErrorThresholdExceeded))
	assert.False(t, exception.IsRecordScoped(nil))
}

func TestIsTemporary(t *testing.T) {
	assert.True(t, exception.IsTemporary(exception.NewBatchError("reader", "flaky", nil, false, true)))
	assert.False(t, exception.IsTemporary(exception.NewBatchError("reader", "broken", nil, false, false)))
	assert.True(t, exception.IsTemporary(fmt.Errorf("read: %w", context.DeadlineExceeded)))
	assert.True(t, exception.IsTemporary(errors.New("dial tcp: connection refused")))
	assert.False(t, exception.IsTemporary(nil))
}

func TestIsErrorOfType(t *testing.T) {
	wrapped := fmt.Errorf("reading: %w", io.EOF)
	assert.True(t, exception.IsErrorOfType(wrapped, "io.EOF"))
	assert.True(t, exception.IsErrorOfType(exception.NewBatchError("x", "m", nil, false, false), "exception.BatchError"))
	assert.True(t, exception.IsErrorOfType(errors.New("socket timeout"), "timeout"))
	assert.False(t, exception.IsErrorOfType(errors.New("boom"), "io.EOF"))
}

func TestRegisterErrorType(t *testing.T) {
	custom := errors.New("custom")
	exception.RegisterErrorType("CustomError", custom)
	assert.True(t, exception.IsErrorTypeRegistered("CustomError"))
	assert.True(t, exception.IsErrorOfType(fmt.Errorf("wrap: %w", custom), "CustomError"))
	assert.Panics(t, func() { exception.RegisterErrorType("", custom) })
}
