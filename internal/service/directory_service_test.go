package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/improvement-board/internal/domain"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

func TestListDepartmentsAndUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	depts, err := env.directory.ListDepartments(ctx)
	require.NoError(t, err)
	assert.Len(t, depts, 8)

	all, err := env.directory.ListUsers(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 12)

	prod := env.dept("PROD").ID
	prodUsers, err := env.directory.ListUsers(ctx, &prod)
	require.NoError(t, err)
	require.Len(t, prodUsers, 2)
	for _, p := range prodUsers {
		assert.Equal(t, "PROD", p.Department.Code)
	}

	bad := "dept"
	_, err = env.directory.ListUsers(ctx, &bad)
	assert.True(t, apperrors.IsCode(err, apperrors.CodeValidation))
}

func TestGetUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	qa := env.seeded.Users["qa.manager@company.com"]
	profile, err := env.directory.GetUser(ctx, qa.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeptManager, profile.User.Role)
	assert.Equal(t, "QA", profile.Department.Code)

	_, err = env.directory.GetUser(ctx, "missing")
	assert.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestAIToolRosterReplacement(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	svc := NewAIToolService(env.store.AIToolUsers(), nil)

	initial, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, initial)

	stored, err := svc.ReplaceAll(ctx, []domain.AIToolUser{
		{ID: 7, Division: "연구본부", Name: "박연구", Tools: domain.AITools{Claude: true}},
		{Division: "생산본부", Name: "최생산", Tools: domain.AITools{ChatGPT: true, Cursor: true}},
	}, env.actor("admin@company.com"))
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Equal(t, 7, stored[0].ID)
	assert.Equal(t, 8, stored[1].ID)
	assert.True(t, stored[1].Tools.Cursor)

	replaced, err := svc.ReplaceAll(ctx, nil, env.actor("admin@company.com"))
	require.NoError(t, err)
	assert.Empty(t, replaced)
}
