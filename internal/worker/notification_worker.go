package worker

import (
	"go.uber.org/zap"

	"github.com/cityfeedback/feedback-service/internal/events"
	"github.com/cityfeedback/feedback-service/internal/service"
)

// Subscribers lists the event consumers started with the process.
type Subscribers struct {
	Dispatcher    events.Dispatcher
	Notifications *service.NotificationService
	// Forwarder is nil when Redis is disabled.
	Forwarder *events.RedisForwarder
	Logger    *zap.Logger
}

// StartNotificationWorker registers notification handlers and the Redis fan-out.
func StartNotificationWorker(subs Subscribers) {
	if subs.Notifications != nil {
		subs.Notifications.RegisterHandlers()
	}
	if subs.Forwarder != nil && subs.Dispatcher != nil {
		subs.Dispatcher.SubscribeAll(subs.Forwarder.Handle)
		if subs.Logger != nil {
			subs.Logger.Info("forwarding domain events to redis")
		}
	}
}
