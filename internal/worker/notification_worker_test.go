package worker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spec-kit/improvement-board/internal/config"
	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/service"
)

func TestStartNotificationWorker(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	svc := service.NewNotificationService(events.NewInMemoryDispatcher(logger), logger, config.NotificationConfig{})

	subscribed := StartNotificationWorker(svc, logger)

	assert.Equal(t, []events.EventType{
		events.EventItemCreated,
		events.EventItemDeleted,
		events.EventItemStatusChanged,
		events.EventItemsImported,
	}, subscribed)
	assert.NotContains(t, subscribed, events.EventItemUpdated)
	assert.Equal(t, 1, logs.FilterMessage("notification worker started").Len())
}

func TestStartNotificationWorkerDisabled(t *testing.T) {
	assert.Nil(t, StartNotificationWorker(nil, zap.NewNop()))
}
