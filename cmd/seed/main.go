package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/config"
	"github.com/spec-kit/improvement-board/internal/observability"
	"github.com/spec-kit/improvement-board/internal/persistence"
	"github.com/spec-kit/improvement-board/internal/repository"
	"github.com/spec-kit/improvement-board/internal/seed"
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

	if cfg.Postgres.DSN == "" {
		logger.Fatal("POSTGRES_DSN is required for seeding")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), cfg.Postgres.MigrationsDir, logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	repos := repository.NewPostgresSet(pg.PoolHandle())
	result, err := seed.Run(ctx, seed.Repositories{
		Departments: repos.Departments,
		Users:       repos.Users,
		Items:       repos.Items,
	}, cfg.Auth.BcryptCost, logger)
	if err != nil {
		logger.Fatal("seed failed", zap.Error(err))
	}
	logger.Info("demo accounts ready",
		zap.Int("users", len(result.Users)),
		zap.String("password", seed.DefaultPassword),
	)
}
