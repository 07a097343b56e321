package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/auth"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// respond writes the success envelope.
func respond(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{"success": true, "data": data})
}

func principal(c *fiber.Ctx) (*auth.Principal, error) {
	p, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return p, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	return nil
}

// parsePositive reads an optional positive integer query value. Zero means
// the value was absent.
func parsePositive(val, field string, errs *[]apperrors.FieldError) int {
	if val == "" {
		return 0
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		*errs = append(*errs, apperrors.FieldError{Field: field, Message: "must be a positive integer"})
		return 0
	}
	return parsed
}
