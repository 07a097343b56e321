package dto

import (
	"time"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/service"
)

// CreateItemRequest payload.
type CreateItemRequest struct {
	Title              string   `json:"title" validate:"required,max=100"`
	Description        *string  `json:"description"`
	AssignedTo         *string  `json:"assignedTo" validate:"omitempty,uuid"`
	RelatedDepartments []string `json:"relatedDepartments" validate:"omitempty,dive,uuid"`
}

// UpdateItemRequest is a partial update. An empty assignedTo clears the
// assignee.
type UpdateItemRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=100"`
	Description *string `json:"description"`
	AssignedTo  *string `json:"assignedTo" validate:"omitempty,uuid"`
	GitURL      *string `json:"gitUrl"`
	WebURL      *string `json:"webUrl"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=IDEA REVIEWING IN_PROGRESS ON_HOLD DONE"`
	Note   *string `json:"note"`
}

// UpdateURLsRequest payload. Absent or null links are cleared.
type UpdateURLsRequest struct {
	GitURL *string `json:"gitUrl"`
	WebURL *string `json:"webUrl"`
}

// PersonRef names a user.
type PersonRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ItemSummary is a list row.
type ItemSummary struct {
	ID              string             `json:"id"`
	Title           string             `json:"title"`
	Description     *string            `json:"description"`
	Status          domain.ItemStatus  `json:"status"`
	StatusIcon      string             `json:"statusIcon"`
	StatusLabel     string             `json:"statusLabel"`
	Department      DepartmentResponse `json:"department"`
	CreatedBy       PersonRef          `json:"createdBy"`
	AssignedTo      *PersonRef         `json:"assignedTo"`
	GitURL          *string            `json:"gitUrl"`
	WebURL          *string            `json:"webUrl"`
	AttachmentCount int                `json:"attachmentCount"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
	DaysSinceUpdate int                `json:"daysSinceUpdate"`
}

// ItemListResponse is one page of items.
type ItemListResponse struct {
	Items      []ItemSummary      `json:"items"`
	Pagination service.Pagination `json:"pagination"`
}

// AttachmentResponse is attachment metadata.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	FileName   string    `json:"fileName"`
	FileSize   int64     `json:"fileSize"`
	MimeType   string    `json:"mimeType"`
	UploadedAt time.Time `json:"uploadedAt"`
}

// StatusHistoryResponse is one transition, newest first in a detail.
type StatusHistoryResponse struct {
	ID         string             `json:"id"`
	FromStatus *domain.ItemStatus `json:"fromStatus"`
	ToStatus   domain.ItemStatus  `json:"toStatus"`
	ChangedBy  PersonRef          `json:"changedBy"`
	Note       *string            `json:"note"`
	ChangedAt  time.Time          `json:"changedAt"`
}

// ItemDetailResponse is the full item view.
type ItemDetailResponse struct {
	ItemSummary
	RelatedDepartments []DepartmentResponse    `json:"relatedDepartments"`
	Attachments        []AttachmentResponse    `json:"attachments"`
	StatusHistory      []StatusHistoryResponse `json:"statusHistory"`
}

// StatusChangeResponse is returned by a status update.
type StatusChangeResponse struct {
	ItemSummary
	History StatusHistoryResponse `json:"history"`
}

// NewItemSummary maps a listing evaluated at now.
func NewItemSummary(l domain.ItemListing, now time.Time) ItemSummary {
	info := l.Status.Info()
	summary := ItemSummary{
		ID:          l.ID,
		Title:       l.Title,
		Description: l.Description,
		Status:      l.Status,
		StatusIcon:  info.Icon,
		StatusLabel: info.Label,
		Department: DepartmentResponse{
			ID:    l.DepartmentID,
			Name:  l.DepartmentName,
			Code:  l.DepartmentCode,
			Color: l.DepartmentColor,
		},
		CreatedBy:       PersonRef{ID: l.CreatedBy, Name: l.CreatorName},
		GitURL:          l.GitURL,
		WebURL:          l.WebURL,
		AttachmentCount: l.AttachmentCount,
		CreatedAt:       l.CreatedAt,
		UpdatedAt:       l.UpdatedAt,
		DaysSinceUpdate: domain.DaysSince(l.UpdatedAt, now),
	}
	if l.AssignedTo != nil {
		ref := PersonRef{ID: *l.AssignedTo}
		if l.AssigneeName != nil {
			ref.Name = *l.AssigneeName
		}
		summary.AssignedTo = &ref
	}
	return summary
}

// NewItemListResponse maps a page.
func NewItemListResponse(page *service.ItemPage) ItemListResponse {
	items := make([]ItemSummary, 0, len(page.Items))
	for _, l := range page.Items {
		items = append(items, NewItemSummary(l, page.Now))
	}
	return ItemListResponse{Items: items, Pagination: page.Pagination}
}

// NewStatusHistoryResponse maps a history entry.
func NewStatusHistoryResponse(h domain.StatusHistory) StatusHistoryResponse {
	return StatusHistoryResponse{
		ID:         h.ID,
		FromStatus: h.FromStatus,
		ToStatus:   h.ToStatus,
		ChangedBy:  PersonRef{ID: h.ChangedBy, Name: h.ChangerName},
		Note:       h.Note,
		ChangedAt:  h.ChangedAt,
	}
}

// NewItemDetailResponse maps a detail.
func NewItemDetailResponse(d *service.ItemDetail) ItemDetailResponse {
	resp := ItemDetailResponse{
		ItemSummary:        NewItemSummary(d.Item, d.Now),
		RelatedDepartments: NewDepartmentResponses(d.Related),
		Attachments:        make([]AttachmentResponse, 0, len(d.Attachments)),
		StatusHistory:      make([]StatusHistoryResponse, 0, len(d.History)),
	}
	resp.Department = NewDepartmentResponse(d.Department)
	for _, a := range d.Attachments {
		resp.Attachments = append(resp.Attachments, AttachmentResponse{
			ID:         a.ID,
			FileName:   a.FileName,
			FileSize:   a.FileSize,
			MimeType:   a.MimeType,
			UploadedAt: a.UploadedAt,
		})
	}
	for _, h := range d.History {
		resp.StatusHistory = append(resp.StatusHistory, NewStatusHistoryResponse(h))
	}
	return resp
}
