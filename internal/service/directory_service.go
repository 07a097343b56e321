package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// DirectoryService serves department and user lookups.
type DirectoryService struct {
	departments repository.DepartmentRepository
	users       repository.UserRepository
}

// NewDirectoryService constructs the service.
func NewDirectoryService(departments repository.DepartmentRepository, users repository.UserRepository) *DirectoryService {
	return &DirectoryService{departments: departments, users: users}
}

// ListDepartments returns active departments ordered by code.
func (s *DirectoryService) ListDepartments(ctx context.Context) ([]domain.Department, error) {
	depts, err := s.departments.ListActive(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return depts, nil
}

// ListUsers returns active users ordered by name, optionally for one department.
func (s *DirectoryService) ListUsers(ctx context.Context, departmentID *string) ([]domain.UserProfile, error) {
	if departmentID != nil && !isUUID(*departmentID) {
		return nil, apperrors.NewValidationError("invalid filter", []apperrors.FieldError{
			{Field: "departmentId", Message: "must be a valid id"},
		})
	}
	users, err := s.users.ListActive(ctx, departmentID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return users, nil
}

// GetUser returns a user's profile.
func (s *DirectoryService) GetUser(ctx context.Context, id string) (*domain.UserProfile, error) {
	if !isUUID(id) {
		return nil, apperrors.NewNotFound("user")
	}
	profile, err := s.users.GetProfile(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user")
		}
		return nil, apperrors.NewInternalError(err)
	}
	return profile, nil
}
