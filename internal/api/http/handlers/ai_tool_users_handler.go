package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/api/dto"
	"github.com/spec-kit/improvement-board/internal/service"
)

// AIToolUsersHandler serves the AI tool license roster.
type AIToolUsersHandler struct {
	roster *service.AIToolService
}

// NewAIToolUsersHandler constructs handler.
func NewAIToolUsersHandler(roster *service.AIToolService) *AIToolUsersHandler {
	return &AIToolUsersHandler{roster: roster}
}

// List GET /ai-tool-users.
func (h *AIToolUsersHandler) List(c *fiber.Ctx) error {
	users, err := h.roster.List(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewAIToolUserPayloads(users))
}

// Save POST /ai-tool-users replaces the roster.
func (h *AIToolUsersHandler) Save(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	var req dto.SaveAIToolUsersRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}
	users, err := h.roster.ReplaceAll(c.UserContext(), req.Domain(), p.Actor())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewAIToolUserPayloads(users))
}
