package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/improvement-board/internal/config"
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/events"
)

func TestNotificationServiceLogsItemEvents(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher(logger)
	svc := NewNotificationService(dispatcher, logger, config.NotificationConfig{WebhookURL: "https://hooks.example.com"})
	svc.RegisterHandlers()

	actor := domain.Actor{ID: "u1", Role: domain.RoleAdmin}
	ctx := context.Background()
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventItemStatusChanged, "i1", actor, time.Now(),
		events.ItemStatusChangedPayload{OldStatus: domain.StatusIdea, NewStatus: domain.StatusDone})))
	require.NoError(t, dispatcher.Publish(ctx, events.New(events.EventItemUpdated, "i1", actor, time.Now(),
		events.ItemUpdatedPayload{Fields: []string{"title"}})))

	assert.Equal(t, 1, logs.FilterMessage("ItemStatusChanged").Len())
	assert.Equal(t, 1, logs.FilterMessage("sendWebhookNotificationStub").Len())
	assert.Zero(t, logs.FilterMessage("ItemUpdated").Len(), "updates are not notified")
}

func TestNotificationServiceWithoutWebhookOnlyLogsEvent(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	logger := zap.New(core)
	dispatcher := events.NewInMemoryDispatcher(logger)
	NewNotificationService(dispatcher, logger, config.NotificationConfig{}).RegisterHandlers()

	actor := domain.Actor{ID: "u1", Role: domain.RoleEmployee}
	require.NoError(t, dispatcher.Publish(context.Background(), events.New(events.EventItemCreated, "i1", actor, time.Now(),
		events.ItemCreatedPayload{Title: "새 과제"})))

	assert.Equal(t, 1, logs.FilterMessage("ItemCreated").Len())
	assert.Zero(t, logs.FilterMessage("sendWebhookNotificationStub").Len())
}
