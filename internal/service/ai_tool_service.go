package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// AIToolService manages the AI tool license roster.
type AIToolService struct {
	repo   repository.AIToolUserRepository
	logger *zap.Logger
}

// NewAIToolService constructs the service.
func NewAIToolService(repo repository.AIToolUserRepository, logger *zap.Logger) *AIToolService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AIToolService{repo: repo, logger: logger}
}

// List returns the roster ordered by id.
func (s *AIToolService) List(ctx context.Context) ([]domain.AIToolUser, error) {
	users, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// ReplaceAll swaps the whole roster and returns the stored result.
func (s *AIToolService) ReplaceAll(ctx context.Context, users []domain.AIToolUser, actor domain.Actor) ([]domain.AIToolUser, error) {
	if err := s.repo.ReplaceAll(ctx, users); err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	s.logger.Info("ai tool roster replaced", zap.String("actor", actor.ID), zap.Int("count", len(users)))
	return s.List(ctx)
}
