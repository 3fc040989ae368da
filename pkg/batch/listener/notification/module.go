package notification

import (
	"go.uber.org/fx"

	config "github.com/tigerroll/surfin-record/pkg/batch/core/config"
	jsl "github.com/tigerroll/surfin-record/pkg/batch/core/config/jsl"
	support "github.com/tigerroll/surfin-record/pkg/batch/core/config/support"
	"github.com/tigerroll/surfin-record/pkg/batch/core/ports"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/configbinder"
	"github.com/tigerroll/surfin-record/pkg/batch/support/util/logger"
)

type notificationProperties struct {
	Policy string `yaml:"policy"`
}

// NewNotificationJobListenerBuilder creates a ComponentBuilder for NotificationListener.
func NewNotificationJobListenerBuilder(notifier ports.Notifier) jsl.ComponentBuilder {
	return func(_ *config.Config, properties map[string]string) (interface{}, error) {
		var props notificationProperties
		if err := configbinder.BindStringProperties(properties, &props); err != nil {
			return nil, err
		}
		return NewNotificationListener(notifier, props.Policy)
	}
}

// NotificationListenerParams defines the dependencies that RegisterNotificationListener receives from Fx.
type NotificationListenerParams struct {
	fx.In
	JobFactory *support.JobFactory
	Builder    jsl.ComponentBuilder `name:"notificationJobListener"`
}

// RegisterNotificationListener registers the notification listener builder with the JobFactory.
func RegisterNotificationListener(p NotificationListenerParams) {
	p.JobFactory.RegisterComponentBuilder("notificationJobListener", p.Builder)
	logger.Debugf("Notification listener registered with JobFactory.")
}

// Module provides notification-related components.
var Module = fx.Options(
	// 1. Provides a concrete implementation of Notifier.
	fx.Provide(fx.Annotate(
		NewLoggingNotifier,
		fx.As(new(ports.Notifier)),
	)),

	// 2. Provides listener builders.
	fx.Provide(fx.Annotate(NewNotificationJobListenerBuilder, fx.ResultTags(`name:"notificationJobListener"`))),

	// 3. Registers listeners with JobFactory.
	fx.Invoke(RegisterNotificationListener),
)
