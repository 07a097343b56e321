package domain

import "time"

// ItemStatus enumerates lifecycle states for improvement items.
type ItemStatus string

const (
	StatusIdea       ItemStatus = "IDEA"
	StatusReviewing  ItemStatus = "REVIEWING"
	StatusInProgress ItemStatus = "IN_PROGRESS"
	StatusOnHold     ItemStatus = "ON_HOLD"
	StatusDone       ItemStatus = "DONE"
)

// Statuses lists every status in lifecycle order.
var Statuses = []ItemStatus{StatusIdea, StatusReviewing, StatusInProgress, StatusOnHold, StatusDone}

// Valid reports whether s is a known status.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusIdea, StatusReviewing, StatusInProgress, StatusOnHold, StatusDone:
		return true
	}
	return false
}

// StatusInfo is the display metadata for a status.
type StatusInfo struct {
	Icon  string
	Label string
	Color string
}

var statusInfo = map[ItemStatus]StatusInfo{
	StatusIdea:       {Icon: "💡", Label: "신규", Color: "#FCD34D"},
	StatusReviewing:  {Icon: "👀", Label: "검토 중", Color: "#60A5FA"},
	StatusInProgress: {Icon: "🛠️", Label: "진행 중", Color: "#34D399"},
	StatusOnHold:     {Icon: "⏸️", Label: "미선정", Color: "#9CA3AF"},
	StatusDone:       {Icon: "✅", Label: "완료", Color: "#2DD4BF"},
}

// Info returns display metadata for the status.
func (s ItemStatus) Info() StatusInfo {
	return statusInfo[s]
}

// StaleAfter is how long an item may go without updates before it is stale.
const StaleAfter = 30 * 24 * time.Hour

// Item is an improvement suggestion owned by a department.
type Item struct {
	ID           string
	Title        string
	Description  *string
	DepartmentID string
	CreatedBy    string
	AssignedTo   *string
	Status       ItemStatus
	GitURL       *string
	WebURL       *string
	IsDeleted    bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsStale reports whether the item has not been updated within StaleAfter of now.
func (i *Item) IsStale(now time.Time) bool {
	return now.Sub(i.UpdatedAt) > StaleAfter
}

// ItemListing is an item joined with the names needed for display.
type ItemListing struct {
	Item
	DepartmentName  string
	DepartmentCode  string
	DepartmentColor string
	CreatorName     string
	AssigneeName    *string
	AttachmentCount int
}

// DaysSince returns whole days elapsed between t and now.
func DaysSince(t, now time.Time) int {
	d := now.Sub(t)
	if d < 0 {
		d = -d
	}
	return int(d / (24 * time.Hour))
}
