package handlers

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/api/dto"
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
	"github.com/spec-kit/improvement-board/internal/service"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// ItemsHandler manages improvement item endpoints.
type ItemsHandler struct {
	service *service.ItemService
	now     func() time.Time
}

// NewItemsHandler constructs handler.
func NewItemsHandler(itemService *service.ItemService) *ItemsHandler {
	return &ItemsHandler{service: itemService, now: time.Now}
}

// List GET /items.
func (h *ItemsHandler) List(c *fiber.Ctx) error {
	params, err := parseItemQuery(c)
	if err != nil {
		return err
	}
	page, err := h.service.List(c.UserContext(), params)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewItemListResponse(page))
}

// Get GET /items/:id.
func (h *ItemsHandler) Get(c *fiber.Ctx) error {
	detail, err := h.service.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewItemDetailResponse(detail))
}

// Create POST /items.
func (h *ItemsHandler) Create(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.CreateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	item, err := h.service.Create(c.UserContext(), service.CreateItemInput{
		Title:              req.Title,
		Description:        req.Description,
		AssignedTo:         req.AssignedTo,
		RelatedDepartments: req.RelatedDepartments,
	}, p.Actor())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewItemSummary(*item, h.now()))
}

// Update PATCH /items/:id.
func (h *ItemsHandler) Update(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateItemRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	item, err := h.service.Update(c.UserContext(), c.Params("id"), service.UpdateItemInput{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
		GitURL:      req.GitURL,
		WebURL:      req.WebURL,
	}, p.Actor())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewItemSummary(*item, h.now()))
}

// UpdateStatus PATCH /items/:id/status.
func (h *ItemsHandler) UpdateStatus(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	item, entry, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), domain.ItemStatus(req.Status), req.Note, p.Actor())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.StatusChangeResponse{
		ItemSummary: dto.NewItemSummary(*item, h.now()),
		History:     dto.NewStatusHistoryResponse(*entry),
	})
}

// UpdateURLs PATCH /items/:id/urls.
func (h *ItemsHandler) UpdateURLs(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.UpdateURLsRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	item, err := h.service.UpdateURLs(c.UserContext(), c.Params("id"), req.GitURL, req.WebURL, p.Actor())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewItemSummary(*item, h.now()))
}

// Delete DELETE /items/:id.
func (h *ItemsHandler) Delete(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.UserContext(), c.Params("id"), p.Actor()); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.MessageResponse{Message: "삭제되었습니다"})
}

func parseItemQuery(c *fiber.Ctx) (service.ListItemsParams, error) {
	var errs []apperrors.FieldError
	params := service.ListItemsParams{
		Page:  parsePositive(c.Query("page"), "page", &errs),
		Limit: parsePositive(c.Query("limit"), "limit", &errs),
		Sort:  repository.ItemSort(c.Query("sort")),
		Order: c.Query("order"),
	}
	if params.Limit > service.MaxPageSize {
		errs = append(errs, apperrors.FieldError{Field: "limit", Message: "must be at most 100"})
	}
	if dept := c.Query("departmentId"); dept != "" {
		params.DepartmentID = &dept
	}
	if status := c.Query("status"); status != "" {
		s := domain.ItemStatus(status)
		params.Status = &s
	}
	if stale := c.Query("staleOnly"); stale != "" {
		v, err := strconv.ParseBool(stale)
		if err != nil {
			errs = append(errs, apperrors.FieldError{Field: "staleOnly", Message: "must be a boolean"})
		}
		params.StaleOnly = v
	}
	if len(errs) > 0 {
		return params, apperrors.NewValidationError("invalid list parameters", errs)
	}
	return params, nil
}
