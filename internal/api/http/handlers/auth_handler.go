package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/improvement-board/internal/api/dto"
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/service"
)

// CookieConfig describes the refresh token cookie.
type CookieConfig struct {
	Name   string
	Path   string
	Secure bool
}

// AuthHandler exposes login, logout and refresh.
type AuthHandler struct {
	auth   *service.AuthService
	cookie CookieConfig
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService, cookie CookieConfig) *AuthHandler {
	if cookie.Name == "" {
		cookie.Name = "refreshToken"
	}
	if cookie.Path == "" {
		cookie.Path = "/"
	}
	return &AuthHandler{auth: authService, cookie: cookie}
}

// Login handles POST /auth/login.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	if err := dto.Validate(req); err != nil {
		return err
	}

	session, err := h.auth.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, session)
	return respond(c, fiber.StatusOK, dto.NewSessionResponse(session))
}

// Refresh handles POST /auth/refresh using the refresh cookie.
func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	session, err := h.auth.Refresh(c.UserContext(), c.Cookies(h.cookie.Name))
	if err != nil {
		return err
	}
	h.setRefreshCookie(c, session)
	return respond(c, fiber.StatusOK, dto.NewSessionResponse(session))
}

// Logout handles POST /auth/logout. It always succeeds.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	h.auth.Logout(c.UserContext(), c.Cookies(h.cookie.Name))
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    "",
		Path:     h.cookie.Path,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return respond(c, fiber.StatusOK, dto.MessageResponse{Message: "로그아웃되었습니다"})
}

func (h *AuthHandler) setRefreshCookie(c *fiber.Ctx, session *domain.Session) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie.Name,
		Value:    session.RefreshToken,
		Path:     h.cookie.Path,
		Expires:  session.RefreshExpiresAt,
		HTTPOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
