package dto

import (
	"github.com/spec-kit/improvement-board/internal/importer"
	"github.com/spec-kit/improvement-board/internal/service"
)

// UploadPreviewResponse lists what a commit would create.
type UploadPreviewResponse struct {
	Sheets     []string             `json:"sheets"`
	Preview    []importer.Candidate `json:"preview"`
	TotalItems int                  `json:"totalItems"`
	Errors     []string             `json:"errors"`
}

// UploadResultResponse reports a committed import.
type UploadResultResponse struct {
	Message string   `json:"message"`
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Errors  []string `json:"errors"`
}

// NewUploadPreviewResponse maps a preview.
func NewUploadPreviewResponse(p *service.ImportPreview) UploadPreviewResponse {
	resp := UploadPreviewResponse{
		Sheets:     p.Sheets,
		Preview:    p.Candidates,
		TotalItems: len(p.Candidates),
		Errors:     p.Errors,
	}
	if resp.Preview == nil {
		resp.Preview = []importer.Candidate{}
	}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	return resp
}
