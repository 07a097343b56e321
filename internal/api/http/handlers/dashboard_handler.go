package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/api/dto"
	"github.com/spec-kit/improvement-board/internal/service"
)

// DashboardHandler serves the board summary.
type DashboardHandler struct {
	dashboard *service.DashboardService
}

// NewDashboardHandler constructs handler.
func NewDashboardHandler(dashboard *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard}
}

// Summary GET /dashboard/summary.
func (h *DashboardHandler) Summary(c *fiber.Ctx) error {
	summary, err := h.dashboard.Summary(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewDashboardResponse(summary))
}
