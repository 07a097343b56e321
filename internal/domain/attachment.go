package domain

import "time"

// Attachment stores metadata for a file attached to an item.
type Attachment struct {
	ID         string
	ItemID     string
	FileName   string
	FileSize   int64
	MimeType   string
	UploadedAt time.Time
}
