package notification_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/listener/notification"
	"github.com/tigerroll/surfin-record/pkg/batch/test"
)

type capturingNotifier struct {
	mu      sync.Mutex
	reports []*model.JobReport
}

func (n *capturingNotifier) NotifyJobCompletion(_ context.Context, report *model.JobReport) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.reports = append(n.reports, report)
}

func TestNotificationListener_Policies(t *testing.T) {
	completed := test.NewTestReport("import", model.StatusCompleted, 3, 3, 0, 0)
	failed := test.NewTestReport("import", model.StatusFailed, 3, 0, 0, 3)

	tests := []struct {
		policy string
		want   []*model.JobReport
	}{
		{policy: "", want: []*model.JobReport{completed, failed}},
		{policy: notification.NotifyAlways, want: []*model.JobReport{completed, failed}},
		{policy: notification.NotifyOnFailure, want: []*model.JobReport{failed}},
	}
	for _, tt := range tests {
		t.Run("policy="+tt.policy, func(t *testing.T) {
			notifier := &capturingNotifier{}
			l, err := notification.NewNotificationListener(notifier, tt.policy)
			require.NoError(t, err)

			l.AfterJob(context.Background(), completed)
			l.AfterJob(context.Background(), failed)
			assert.Equal(t, tt.want, notifier.reports)
		})
	}
}

func TestNotificationListener_UnknownPolicy(t *testing.T) {
	_, err := notification.NewNotificationListener(&capturingNotifier{}, "weekly")
	assert.ErrorContains(t, err, "weekly")
}

func TestFormatMessage(t *testing.T) {
	msg := notification.FormatMessage(test.NewTestReport("import", model.StatusCompleted, 5, 4, 1, 0))
	assert.Contains(t, msg, "Job 'import'")
	assert.Contains(t, msg, "Status: COMPLETED")
	assert.Contains(t, msg, "Duration: 1s")
	assert.Contains(t, msg, "Read: 5, Written: 4, Filtered: 1, Errors: 0")
	assert.NotContains(t, msg, "LastError")

	// Smoke test of the logging notifier.
	notification.NewLoggingNotifier().NotifyJobCompletion(context.Background(), test.NewTestReport("import", model.StatusFailed, 1, 0, 0, 1))
}
