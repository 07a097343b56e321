package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/spec-kit/improvement-board/internal/domain"
)

func TestPublishInvokesEveryHandlerDespiteFailures(t *testing.T) {
	d := NewInMemoryDispatcher(zaptest.NewLogger(t))

	var calls []string
	d.Subscribe(EventItemCreated, func(context.Context, Event) error {
		calls = append(calls, "first")
		return errors.New("boom")
	})
	d.Subscribe(EventItemCreated, func(_ context.Context, e Event) error {
		calls = append(calls, "second")
		assert.Equal(t, "item-1", e.ItemID)
		return nil
	})
	d.Subscribe(EventItemDeleted, func(context.Context, Event) error {
		calls = append(calls, "other")
		return nil
	})

	actor := domain.Actor{ID: "u1", Role: domain.RoleEmployee}
	err := d.Publish(context.Background(), New(EventItemCreated, "item-1", actor, time.Now(), ItemCreatedPayload{Title: "x"}))
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, calls)
}
