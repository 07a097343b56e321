package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/improvement-board/internal/api/http"
	"github.com/spec-kit/improvement-board/internal/api/http/handlers"
	"github.com/spec-kit/improvement-board/internal/auth"
	"github.com/spec-kit/improvement-board/internal/config"
	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/observability"
	"github.com/spec-kit/improvement-board/internal/persistence"
	"github.com/spec-kit/improvement-board/internal/repository"
	"github.com/spec-kit/improvement-board/internal/repository/memory"
	"github.com/spec-kit/improvement-board/internal/seed"
	"github.com/spec-kit/improvement-board/internal/service"
	"github.com/spec-kit/improvement-board/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var repos repository.Set
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgresSet(pool)
	} else {
		store := memory.New()
		repos = store.Repositories()
		if _, err := seed.Run(ctx, seed.Repositories{
			Departments: repos.Departments,
			Users:       repos.Users,
			Items:       repos.Items,
		}, cfg.Auth.BcryptCost, logger); err != nil {
			logger.Fatal("failed to seed in-memory store", zap.Error(err))
		}
		pg = nil
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)
	worker.StartNotificationWorker(service.NewNotificationService(dispatcher, logger, cfg.Notification), logger)

	authService := service.NewAuthService(cfg.Auth, service.AuthDependencies{
		UserRepo: repos.Users,
		Revoker:  service.RevokerFromRedis(redis),
		Logger:   logger,
	})
	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), repos.Users)

	itemService := service.NewItemService(service.ItemDependencies{
		Items:       repos.Items,
		History:     repos.StatusHistory,
		Departments: repos.Departments,
		Users:       repos.Users,
		Attachments: repos.Attachments,
		Dispatcher:  dispatcher,
		Metrics:     metrics,
		Logger:      logger,
	})
	importService := service.NewImportService(service.ImportDependencies{
		Items:             repos.Items,
		Departments:       repos.Departments,
		Dispatcher:        dispatcher,
		Metrics:           metrics,
		Logger:            logger,
		StrictDepartments: cfg.Upload.StrictDepartments,
	})

	app := fiber.New(fiber.Config{
		AppName:   cfg.App.Name,
		BodyLimit: int(cfg.Upload.MaxBytes) + 1<<20,
	})
	httptransport.RegisterMiddlewares(app, logger, metrics, httptransport.MiddlewareConfig{
		Timeout:    time.Duration(cfg.App.RequestTimeoutSeconds) * time.Second,
		CORSOrigin: cfg.App.CORSOrigin,
	})

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		BasePath: cfg.App.BasePath,
		Health:   handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth: handlers.NewAuthHandler(authService, handlers.CookieConfig{
			Name:   cfg.Auth.RefreshCookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		Items:          handlers.NewItemsHandler(itemService),
		Directory:      handlers.NewDirectoryHandler(service.NewDirectoryService(repos.Departments, repos.Users)),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(repos.Items, repos.Departments, nil)),
		Upload:         handlers.NewUploadHandler(importService, cfg.Upload.MaxBytes),
		AIToolUsers:    handlers.NewAIToolUsersHandler(service.NewAIToolService(repos.AIToolUsers, logger)),
		AuthMiddleware: authMiddleware,
		Metrics:        metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
