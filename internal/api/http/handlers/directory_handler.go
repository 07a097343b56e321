package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/api/dto"
	"github.com/spec-kit/improvement-board/internal/service"
)

// DirectoryHandler serves department and user lookups.
type DirectoryHandler struct {
	directory *service.DirectoryService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(directory *service.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directory: directory}
}

// Departments GET /departments.
func (h *DirectoryHandler) Departments(c *fiber.Ctx) error {
	depts, err := h.directory.ListDepartments(c.UserContext())
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewDepartmentResponses(depts))
}

// Users GET /users?departmentId=.
func (h *DirectoryHandler) Users(c *fiber.Ctx) error {
	var departmentID *string
	if dept := c.Query("departmentId"); dept != "" {
		departmentID = &dept
	}
	users, err := h.directory.ListUsers(c.UserContext(), departmentID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUserResponses(users))
}

// Me GET /users/me.
func (h *DirectoryHandler) Me(c *fiber.Ctx) error {
	p, err := principal(c)
	if err != nil {
		return err
	}
	profile, err := h.directory.GetUser(c.UserContext(), p.User.ID)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewUserResponse(*profile))
}
