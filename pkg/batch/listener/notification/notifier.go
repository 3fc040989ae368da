package notification

import (
	"context"
	"fmt"

	model "github.com/tigerroll/surfin-record/pkg/batch/core/domain/model"
	"github.com/tigerroll/surfin-record/pkg/batch/core/ports"
	"github.com/tigerroll/surfin-record/pkg/batch/listener"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

// LoggingNotifier is a Notifier that only logs notifications.
type LoggingNotifier struct{}

// NewLoggingNotifier creates a new instance of LoggingNotifier.
func NewLoggingNotifier() *LoggingNotifier {
	logger.Infof("Notification: Initializing Logging Notifier.")
	return &LoggingNotifier{}
}

// NotifyJobCompletion logs a one-line summary of the report.
func (n *LoggingNotifier) NotifyJobCompletion(ctx context.Context, report *model.JobReport) {
	message := FormatMessage(report)
	if report.Succeeded() {
		logger.Infof("%s", message)
	} else {
		logger.Warnf("%s", message)
	}
}

// FormatMessage renders the notification text for a report.
func FormatMessage(report *model.JobReport) string {
	m := report.Metrics()
	message := fmt.Sprintf(
		"Job Notification: Job '%s' (ID: %s) finished with Status: %s. Duration: %s, Read: %d, Written: %d, Filtered: %d, Errors: %d",
		report.JobName(),
		report.ExecutionID(),
		report.Status(),
		m.Duration(),
		m.ReadCount,
		m.WriteCount,
		m.FilterCount,
		m.ErrorCount,
	)
	if err := report.LastError(); err != nil {
		message += fmt.Sprintf(", LastError: %v", err)
	}
	return message
}

var _ ports.Notifier = (*LoggingNotifier)(nil)

// Notification policies for NotificationListener.
const (
	NotifyAlways    = "always"
	NotifyOnFailure = "failure"
)

// NotificationListener sends the final report of a job to a Notifier.
type NotificationListener struct {
	listener.NoOpJobListener
	notifier ports.Notifier
	policy   string
}

// NewNotificationListener creates a listener notifying according to policy
// (NotifyAlways or NotifyOnFailure).
func NewNotificationListener(notifier ports.Notifier, policy string) (*NotificationListener, error) {
	switch policy {
	case "":
		policy = NotifyAlways
	case NotifyAlways, NotifyOnFailure:
	default:
		return nil, fmt.Errorf("unknown notification policy %q", policy)
	}
	return &NotificationListener{notifier: notifier, policy: policy}, nil
}

// AfterJob calls the Notifier unless the policy excludes successful jobs.
func (l *NotificationListener) AfterJob(ctx context.Context, report *model.JobReport) {
	if l.policy == NotifyOnFailure && report.Succeeded() {
		return
	}
	l.notifier.NotifyJobCompletion(ctx, report)
}
