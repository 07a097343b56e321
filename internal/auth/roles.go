package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/domain"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// RequireRoles ensures the principal has one of the allowed roles.
func RequireRoles(allowed ...domain.Role) fiber.Handler {
	allowedSet := make(map[domain.Role]struct{}, len(allowed))
	for _, role := range allowed {
		allowedSet[role] = struct{}{}
	}

	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if _, exists := allowedSet[principal.User.Role]; !exists {
			return apperrors.NewForbidden("permission denied")
		}
		return c.Next()
	}
}

// ItemWriters are the roles allowed to submit and edit items.
var ItemWriters = []domain.Role{domain.RoleEmployee, domain.RoleDeptManager, domain.RoleAdmin}

// Importers are the roles allowed to run spreadsheet imports.
var Importers = []domain.Role{domain.RoleAdmin, domain.RoleDeptManager}
