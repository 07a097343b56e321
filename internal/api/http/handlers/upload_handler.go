package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/api/dto"
	"github.com/spec-kit/improvement-board/internal/service"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// UploadHandler accepts spreadsheet imports.
type UploadHandler struct {
	imports  *service.ImportService
	maxBytes int64
}

// NewUploadHandler constructs handler.
func NewUploadHandler(imports *service.ImportService, maxBytes int64) *UploadHandler {
	return &UploadHandler{imports: imports, maxBytes: maxBytes}
}

type upload struct {
	name   string
	data   []byte
	sheets []string
}

// Preview POST /upload/preview.
func (h *UploadHandler) Preview(c *fiber.Ctx) error {
	u, err := h.read(c)
	if err != nil {
		return err
	}
	preview, err := h.imports.Preview(c.UserContext(), u.data, u.name, u.sheets)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUploadPreviewResponse(preview))
}

// Commit POST /upload/excel.
func (h *UploadHandler) Commit(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	u, err := h.read(c)
	if err != nil {
		return err
	}
	report, err := h.imports.Commit(c.UserContext(), u.data, u.name, u.sheets, p.Actor())
	if err != nil {
		return err
	}
	errs := report.Errors
	if errs == nil {
		errs = []string{}
	}
	return respond(c, fiber.StatusOK, dto.UploadResultResponse{
		Message: fmt.Sprintf("%d개 항목이 등록되었습니다.", report.Created),
		Created: report.Created,
		Skipped: report.Skipped,
		Errors:  errs,
	})
}

func (h *UploadHandler) read(c *fiber.Ctx) (*upload, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, apperrors.NewValidationError("file is required", []apperrors.FieldError{
			{Field: "file", Message: "is required"},
		})
	}
	if h.maxBytes > 0 && fh.Size > h.maxBytes {
		return nil, apperrors.NewFileTooLarge(h.maxBytes)
	}
	switch strings.ToLower(filepath.Ext(fh.Filename)) {
	case ".xlsx", ".xls":
	default:
		return nil, apperrors.NewUnsupportedFileType("only .xlsx and .xls files can be uploaded")
	}

	var sheets []string
	if raw := c.FormValue("sheets"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &sheets); err != nil {
			return nil, apperrors.NewValidationError("invalid sheets", []apperrors.FieldError{
				{Field: "sheets", Message: "must be a JSON array of sheet names"},
			})
		}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &upload{name: fh.Filename, data: data, sheets: sheets}, nil
}
