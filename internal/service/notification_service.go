package service

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/config"
	"github.com/spec-kit/improvement-board/internal/events"
)

// NotificationService handles emitting notifications for domain events.
// Notifications are log entries only; nothing is delivered over the network.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to item events and returns the event types it
// listens to. Updates are not notified.
func (n *NotificationService) RegisterHandlers() []events.EventType {
	if n.dispatcher == nil {
		return nil
	}
	handlers := map[events.EventType]events.EventHandler{
		events.EventItemCreated:       n.handleItemCreated,
		events.EventItemStatusChanged: n.handleItemStatusChanged,
		events.EventItemDeleted:       n.handleItemDeleted,
		events.EventItemsImported:     n.handleItemsImported,
	}
	subscribed := make([]events.EventType, 0, len(handlers))
	for eventType, handler := range handlers {
		n.dispatcher.Subscribe(eventType, handler)
		subscribed = append(subscribed, eventType)
	}
	sort.Slice(subscribed, func(i, j int) bool { return subscribed[i] < subscribed[j] })
	return subscribed
}

func (n *NotificationService) handleItemCreated(ctx context.Context, event events.Event) error {
	n.logger.Info("ItemCreated", zap.String("item_id", event.ItemID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleItemStatusChanged(ctx context.Context, event events.Event) error {
	n.logger.Info("ItemStatusChanged", zap.String("item_id", event.ItemID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleItemDeleted(ctx context.Context, event events.Event) error {
	n.logger.Info("ItemDeleted", zap.String("item_id", event.ItemID), zap.String("actor", event.Actor.UserID))
	return nil
}

func (n *NotificationService) handleItemsImported(ctx context.Context, event events.Event) error {
	n.logger.Info("ItemsImported", zap.String("actor", event.Actor.UserID), zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

// sendWebhookNotificationStub records, at debug level, the webhook call that
// would be made for event. It never contacts the configured URL.
func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("item_id", event.ItemID),
		zap.String("event_type", string(event.Type)))
}
