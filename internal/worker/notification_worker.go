package worker

import (
	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/service"
)

// StartNotificationWorker attaches the notification service to the event
// dispatcher and returns the event types it now handles.
func StartNotificationWorker(notificationService *service.NotificationService, logger *zap.Logger) []events.EventType {
	if notificationService == nil {
		logger.Info("notification worker disabled")
		return nil
	}
	subscribed := notificationService.RegisterHandlers()

	names := make([]string, len(subscribed))
	for i, eventType := range subscribed {
		names[i] = string(eventType)
	}
	logger.Info("notification worker started", zap.Strings("events", names))
	return subscribed
}
