// Package exception provides the error types shared by the record batch framework.
// Errors raised while a job runs are wrapped in BatchError so that the module that
// failed (reader, mapper, writer, ...) travels with the original cause, and the
// sentinel values below classify them for threshold and retry decisions.
package exception

import (
	"context"
	"errors"
	"fmt"
	"io"
	"reflect"
	"runtime"
	"strings"
	"sync"
)

// Sentinel errors classifying failures inside a job run.
var (
	// ErrRecordReading marks a failure raised by a reader while producing a record.
	ErrRecordReading = errors.New("record reading failed")
	// ErrRecordFiltering marks a failure raised by a filter stage.
	ErrRecordFiltering = errors.New("record filtering failed")
	// ErrRecordMapping marks a failure raised by a mapper stage.
	ErrRecordMapping = errors.New("record mapping failed")
	// ErrRecordValidation marks a record rejected by a validator stage.
	ErrRecordValidation = errors.New("record validation failed")
	// ErrRecordProcessing marks a failure raised by a processor stage.
	ErrRecordProcessing = errors.New("record processing failed")
	// ErrRecordWriting marks a failure raised by a writer for a whole batch.
	ErrRecordWriting = errors.New("batch writing failed")
	// ErrErrorThresholdExceeded is reported when a job's error count goes past its threshold.
	ErrErrorThresholdExceeded = errors.New("error threshold exceeded")
	// ErrJobAborted is reported when a job's context is cancelled while it runs.
	ErrJobAborted = errors.New("job aborted")
	// ErrJobAlreadyExecuted is reported when Call is invoked twice on the same job.
	ErrJobAlreadyExecuted = errors.New("job already executed")
	// ErrJobMisconfigured is reported when a job is built with invalid parameters or missing components.
	ErrJobMisconfigured = errors.New("job misconfigured")
)

// errorRegistry maps names used in configuration files to error instances.
var errorRegistry = make(map[string]error)

var registryMutex sync.RWMutex

// RegisterErrorType registers an error under a name so configuration can refer to it.
// It panics if name is empty or prototype is nil.
func RegisterErrorType(name string, prototype error) {
	registryMutex.Lock()
	defer registryMutex.Unlock()

	if name == "" {
		panic("Error type name cannot be empty")
	}
	if prototype == nil {
		panic(fmt.Sprintf("Cannot register nil prototype for name: %s", name))
	}
	errorRegistry[name] = prototype
}

// IsErrorTypeRegistered checks if the specified error type name is registered.
func IsErrorTypeRegistered(name string) bool {
	registryMutex.RLock()
	defer registryMutex.RUnlock()
	_, ok := errorRegistry[name]
	return ok
}

// BatchError is the error type raised by framework components.
// It holds the module where the error occurred, a message, the wrapped original error,
// and flags indicating whether it is retryable or skippable.
type BatchError struct {
	// Module indicates where the error occurred (e.g., "reader", "mapper", "writer", "config").
	Module string
	// Message is a concise description of the error.
	Message string
	// OriginalErr is the wrapped original error.
	OriginalErr error
	isRetryable bool
	isSkippable bool
	// StackTrace is the stack trace captured at construction time.
	StackTrace string
}

// NewBatchError creates a new BatchError instance.
//
// Parameters:
//
//	module: The module where the error occurred.
//	message: The error message.
//	originalErr: The original error to wrap.
//	isSkippable: Whether this error is skippable.
//	isRetryable: Whether this error is retryable.
func NewBatchError(module, message string, originalErr error, isSkippable, isRetryable bool) *BatchError {
	return &BatchError{
		Module:      module,
		Message:     message,
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  captureStack(),
	}
}

// NewBatchErrorf creates a new BatchError using a format string.
// Trailing arguments are inspected from the end in the order
// [isSkippable bool], [isRetryable bool], [originalErr error]; the rest feed fmt.Sprintf.
//
//	NewBatchErrorf("writer", "insert into %s failed", "people", false, true, err)
func NewBatchErrorf(module, format string, a ...interface{}) *BatchError {
	var originalErr error
	isRetryable := false
	isSkippable := false
	args := a

	if len(args) > 0 {
		if err, ok := args[len(args)-1].(error); ok {
			originalErr = err
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		if b, ok := args[len(args)-1].(bool); ok {
			isRetryable = b
			args = args[:len(args)-1]
		}
	}
	if len(args) > 0 {
		if b, ok := args[len(args)-1].(bool); ok {
			isSkippable = b
			args = args[:len(args)-1]
		}
	}

	return &BatchError{
		Module:      module,
		Message:     fmt.Sprintf(format, args...),
		OriginalErr: originalErr,
		isRetryable: isRetryable,
		isSkippable: isSkippable,
		StackTrace:  captureStack(),
	}
}

func captureStack() string {
	buf := make([]byte, 2048)
	n := runtime.Stack(buf, false)
	return string(buf[:n])
}

// NewRecordError wraps a record-scoped failure so that it matches kind with errors.Is
// while keeping cause reachable through errors.Unwrap. Record errors are skippable:
// the job drops the record and carries on unless its error threshold is exceeded.
func NewRecordError(module string, kind error, recordNumber int64, cause error) *BatchError {
	return NewBatchError(module, fmt.Sprintf("record #%d", recordNumber), errors.Join(kind, cause), true, false)
}

// Error implements the error interface.
func (e *BatchError) Error() string {
	if e.OriginalErr != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Module, e.Message, e.OriginalErr)
	}
	return fmt.Sprintf("[%s] %s", e.Module, e.Message)
}

// Unwrap returns the original error for errors.Unwrap.
func (e *BatchError) Unwrap() error {
	return e.OriginalErr
}

// IsRetryable returns whether this error is retryable.
func (e *BatchError) IsRetryable() bool {
	return e.isRetryable
}

// IsSkippable returns whether this error is skippable.
func (e *BatchError) IsSkippable() bool {
	return e.isSkippable
}

// IsBatchError determines if err is, or wraps, a BatchError.
func IsBatchError(err error) bool {
	var be *BatchError
	return errors.As(err, &be)
}

// IsRecordScoped reports whether err is a record-level failure that the job
// tolerates up to its error threshold.
func IsRecordScoped(err error) bool {
	return errors.Is(err, ErrRecordFiltering) ||
		errors.Is(err, ErrRecordMapping) ||
		errors.Is(err, ErrRecordValidation) ||
		errors.Is(err, ErrRecordProcessing)
}

// IsTemporary determines if an error is worth retrying.
// A BatchError's retryable flag takes precedence over message inspection.
func IsTemporary(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.IsRetryable()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset")
}

// IsFatal determines if an error can neither be retried nor skipped.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	var be *BatchError
	if errors.As(err, &be) {
		return !be.IsRetryable() && !be.IsSkippable()
	}
	return !IsTemporary(err)
}

// IsErrorOfType checks if an error matches a registered name, a substring of its
// message, or the name of its Go type anywhere in the wrap chain.
func IsErrorOfType(err error, errorTypeName string) bool {
	if err == nil {
		return false
	}

	registryMutex.RLock()
	target, ok := errorRegistry[errorTypeName]
	registryMutex.RUnlock()
	if ok && errors.Is(err, target) {
		return true
	}

	for current := err; current != nil; current = errors.Unwrap(current) {
		if strings.Contains(current.Error(), errorTypeName) {
			return true
		}
		if t := reflect.TypeOf(current); t != nil {
			if t.String() == errorTypeName || (t.Kind() == reflect.Ptr && t.Elem().String() == errorTypeName) {
				return true
			}
		}
	}
	return false
}

// ExtractErrorMessage returns the Message of a BatchError, or err.Error() otherwise.
func ExtractErrorMessage(err error) string {
	if err == nil {
		return ""
	}
	var be *BatchError
	if errors.As(err, &be) {
		return be.Message
	}
	return err.Error()
}

func init() {
	RegisterErrorType("io.EOF", io.EOF)
	RegisterErrorType("io.ErrUnexpectedEOF", io.ErrUnexpectedEOF)
	RegisterErrorType("context.DeadlineExceeded", context.DeadlineExceeded)
	RegisterErrorType("context.Canceled", context.Canceled)
	RegisterErrorType("RecordReadingException", ErrRecordReading)
	RegisterErrorType("RecordWritingException", ErrRecordWriting)
}
