package auth

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spec-kit/improvement-board/internal/domain"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

func TestCanModifyTruthTable(t *testing.T) {
	const (
		actorID  = "actor"
		actorDep = "dept-a"
	)

	expected := func(role domain.Role, sameDept, own bool) bool {
		switch role {
		case domain.RoleAdmin:
			return true
		case domain.RoleExecutive:
			return false
		case domain.RoleDeptManager:
			return sameDept
		default:
			return own
		}
	}

	for _, role := range domain.Roles {
		for _, sameDept := range []bool{true, false} {
			for _, own := range []bool{true, false} {
				item := &domain.Item{DepartmentID: "dept-b", CreatedBy: "someone-else"}
				if sameDept {
					item.DepartmentID = actorDep
				}
				if own {
					item.CreatedBy = actorID
				}
				actor := domain.Actor{ID: actorID, Role: role, DepartmentID: actorDep}

				name := fmt.Sprintf("%s/sameDept=%v/own=%v", role, sameDept, own)
				want := expected(role, sameDept, own)
				assert.Equal(t, want, CanModify(item, actor), name)

				err := EnsureCanModify(item, actor)
				if want {
					assert.NoError(t, err, name)
				} else {
					assert.True(t, apperrors.IsCode(err, apperrors.CodeForbidden), name)
				}
			}
		}
	}
}

func TestCanModifyUnknownRole(t *testing.T) {
	item := &domain.Item{DepartmentID: "d", CreatedBy: "u"}
	assert.False(t, CanModify(item, domain.Actor{ID: "u", Role: "GUEST", DepartmentID: "d"}))
}

func TestCanCreate(t *testing.T) {
	assert.True(t, CanCreate(domain.Actor{Role: domain.RoleEmployee}))
	assert.True(t, CanCreate(domain.Actor{Role: domain.RoleDeptManager}))
	assert.True(t, CanCreate(domain.Actor{Role: domain.RoleAdmin}))
	assert.False(t, CanCreate(domain.Actor{Role: domain.RoleExecutive}))
	assert.True(t, apperrors.IsCode(EnsureCanCreate(domain.Actor{Role: domain.RoleExecutive}), apperrors.CodeForbidden))
}
