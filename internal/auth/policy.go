package auth

import (
	"github.com/spec-kit/improvement-board/internal/domain"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// CanCreate reports whether the actor may submit new items.
func CanCreate(actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleEmployee, domain.RoleDeptManager, domain.RoleAdmin:
		return true
	}
	return false
}

// CanModify reports whether the actor may update, re-status, re-link or
// delete the item.
func CanModify(item *domain.Item, actor domain.Actor) bool {
	switch actor.Role {
	case domain.RoleAdmin:
		return true
	case domain.RoleExecutive:
		return false
	case domain.RoleDeptManager:
		return item.DepartmentID == actor.DepartmentID
	case domain.RoleEmployee:
		return item.CreatedBy == actor.ID
	}
	return false
}

// EnsureCanModify returns a FORBIDDEN error when CanModify denies access.
func EnsureCanModify(item *domain.Item, actor domain.Actor) error {
	if CanModify(item, actor) {
		return nil
	}
	switch actor.Role {
	case domain.RoleDeptManager:
		return apperrors.NewForbidden("only items of your own department can be modified")
	case domain.RoleEmployee:
		return apperrors.NewForbidden("only items you created can be modified")
	}
	return apperrors.NewForbidden("permission denied")
}

// EnsureCanCreate returns a FORBIDDEN error when CanCreate denies access.
func EnsureCanCreate(actor domain.Actor) error {
	if CanCreate(actor) {
		return nil
	}
	return apperrors.NewForbidden("permission denied")
}
