package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/improvement-board/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventItemCreated       EventType = "item_created"
	EventItemUpdated       EventType = "item_updated"
	EventItemStatusChanged EventType = "item_status_changed"
	EventItemDeleted       EventType = "item_deleted"
	EventItemsImported     EventType = "items_imported"
)

// Actor identifies who triggered an event.
type Actor struct {
	UserID string      `json:"user_id"`
	Role   domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ItemID    string      `json:"item_id,omitempty"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// New stamps an event with a fresh id.
func New(eventType EventType, itemID string, actor domain.Actor, at time.Time, payload interface{}) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		ItemID:    itemID,
		Actor:     Actor{UserID: actor.ID, Role: actor.Role},
		Timestamp: at,
		Payload:   payload,
	}
}

// ItemCreatedPayload payload.
type ItemCreatedPayload struct {
	DepartmentID string `json:"department_id"`
	Title        string `json:"title"`
	Imported     bool   `json:"imported"`
}

// ItemUpdatedPayload payload.
type ItemUpdatedPayload struct {
	Fields []string `json:"fields"`
}

// ItemStatusChangedPayload payload.
type ItemStatusChangedPayload struct {
	OldStatus domain.ItemStatus `json:"old_status"`
	NewStatus domain.ItemStatus `json:"new_status"`
	Note      string            `json:"note,omitempty"`
}

// ItemDeletedPayload payload.
type ItemDeletedPayload struct {
	Title string `json:"title"`
}

// ItemsImportedPayload payload.
type ItemsImportedPayload struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Errors  int `json:"errors"`
}
