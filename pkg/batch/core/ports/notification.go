package ports

import (
	"context"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
)

// Notifier is an abstract interface for notifying external systems about job results.
type Notifier interface {
	// NotifyJobCompletion notifies about the end of a job (completed, failed or aborted).
	NotifyJobCompletion(ctx context.Context, report *model.JobReport)
}
