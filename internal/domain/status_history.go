package domain

import "time"

// StatusHistory is an immutable record of one status transition.
type StatusHistory struct {
	ID          string
	ItemID      string
	FromStatus  *ItemStatus
	ToStatus    ItemStatus
	ChangedBy   string
	ChangerName string
	Note        *string
	ChangedAt   time.Time
}
