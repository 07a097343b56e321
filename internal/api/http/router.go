package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/improvement-board/internal/api/http/handlers"
	"github.com/spec-kit/improvement-board/internal/auth"
	"github.com/spec-kit/improvement-board/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	BasePath       string
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Items          *handlers.ItemsHandler
	Directory      *handlers.DirectoryHandler
	Dashboard      *handlers.DashboardHandler
	Upload         *handlers.UploadHandler
	AIToolUsers    *handlers.AIToolUsersHandler
	AuthMiddleware *auth.AuthMiddleware
	Metrics        *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group(cfg.BasePath)

	authGroup := api.Group("/auth")
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Post("/refresh", cfg.Auth.Refresh)

	// Registered after the auth routes so the bearer check never runs for them.
	protected := api.Group("", cfg.AuthMiddleware.Handle)
	writers := auth.RequireRoles(auth.ItemWriters...)

	items := protected.Group("/items")
	items.Get("/", cfg.Items.List)
	items.Get("/:id", cfg.Items.Get)
	items.Post("/", writers, cfg.Items.Create)
	items.Patch("/:id", writers, cfg.Items.Update)
	items.Patch("/:id/status", writers, cfg.Items.UpdateStatus)
	items.Patch("/:id/urls", writers, cfg.Items.UpdateURLs)
	items.Delete("/:id", writers, cfg.Items.Delete)

	protected.Get("/departments", cfg.Directory.Departments)
	protected.Get("/users", cfg.Directory.Users)
	protected.Get("/users/me", cfg.Directory.Me)

	protected.Get("/dashboard/summary", cfg.Dashboard.Summary)

	upload := protected.Group("/upload", auth.RequireRoles(auth.Importers...))
	upload.Post("/preview", cfg.Upload.Preview)
	upload.Post("/excel", cfg.Upload.Commit)

	protected.Get("/ai-tool-users", cfg.AIToolUsers.List)
	protected.Post("/ai-tool-users", cfg.AIToolUsers.Save)
}
