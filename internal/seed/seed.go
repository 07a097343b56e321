// Package seed loads the demo organization: eight divisions, their staff and
// a handful of improvement items.
package seed

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/auth"
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "password123"

// Repositories are the stores the seeder writes to.
type Repositories struct {
	Departments repository.DepartmentRepository
	Users       repository.UserRepository
	Items       repository.ItemRepository
}

// Result indexes what was seeded.
type Result struct {
	Departments map[string]domain.Department // by code
	Users       map[string]domain.User       // by email
	Items       int
}

var departments = []domain.Department{
	{Name: "관리본부", Code: "MGMT", Color: "#8B5CF6"},
	{Name: "연구본부", Code: "RND", Color: "#3B82F6"},
	{Name: "생산기술본부", Code: "PTECH", Color: "#06B6D4"},
	{Name: "생산본부", Code: "PROD", Color: "#F59E0B"},
	{Name: "구매본부", Code: "PURCH", Color: "#10B981"},
	{Name: "전자부품사업본부", Code: "ELEC", Color: "#EC4899"},
	{Name: "영업본부", Code: "SALES", Color: "#EF4444"},
	{Name: "품질본부", Code: "QA", Color: "#14B8A6"},
}

type seedUser struct {
	employeeID string
	name       string
	email      string
	dept       string
	role       domain.Role
}

var users = []seedUser{
	{"EMP001", "김관리", "admin@company.com", "MGMT", domain.RoleAdmin},
	{"EMP002", "이경영", "exec@company.com", "MGMT", domain.RoleExecutive},
	{"EMP003", "박연구", "rnd.manager@company.com", "RND", domain.RoleDeptManager},
	{"EMP004", "최생산", "prod.manager@company.com", "PROD", domain.RoleDeptManager},
	{"EMP005", "정품질", "qa.manager@company.com", "QA", domain.RoleDeptManager},
	{"EMP006", "홍길동", "hong@company.com", "PROD", domain.RoleEmployee},
	{"EMP007", "김영희", "kim@company.com", "QA", domain.RoleEmployee},
	{"EMP008", "이철수", "lee@company.com", "SALES", domain.RoleEmployee},
	{"EMP009", "박수진", "park@company.com", "RND", domain.RoleEmployee},
	{"EMP010", "조민수", "cho@company.com", "PURCH", domain.RoleEmployee},
	{"EMP011", "강현우", "kang@company.com", "ELEC", domain.RoleEmployee},
	{"EMP012", "윤서연", "yoon@company.com", "PTECH", domain.RoleEmployee},
}

type seedTransition struct {
	to   domain.ItemStatus
	by   string
	note string
}

type seedItem struct {
	title       string
	description string
	creator     string
	ageDays     int
	transitions []seedTransition
}

var items = []seedItem{
	{
		title:       "포장 라인 작업대 높이 조절",
		description: "작업대 높이가 낮아서 장시간 서서 일하면 허리에 무리가 갑니다.",
		creator:     "hong@company.com",
	},
	{
		title:       "생산 일정 공유 게시판 필요",
		description: "매일 아침 생산 일정을 확인하려면 사무실까지 가야 합니다.",
		creator:     "prod.manager@company.com",
		transitions: []seedTransition{
			{to: domain.StatusReviewing, by: "prod.manager@company.com"},
			{to: domain.StatusInProgress, by: "prod.manager@company.com", note: "연구본부와 협의 시작"},
		},
	},
	{
		title:       "불량품 분류 기준 표준화",
		description: "검수 담당자마다 기준이 달라요. 명확한 가이드라인이 있으면 좋겠습니다.",
		creator:     "kim@company.com",
		transitions: []seedTransition{
			{to: domain.StatusReviewing, by: "qa.manager@company.com", note: "품질본부 전체 회의에서 논의 예정"},
		},
	},
	{
		title:       "측정 장비 교체 주기 알림",
		description: "측정 장비 교정 주기를 놓치는 경우가 있어요.",
		creator:     "qa.manager@company.com",
		transitions: []seedTransition{
			{to: domain.StatusInProgress, by: "qa.manager@company.com"},
			{to: domain.StatusDone, by: "qa.manager@company.com", note: "알림 시스템 구축 완료"},
		},
	},
	{
		title:       "견적서 양식 현대화",
		description: "현재 견적서 양식이 너무 오래됐어요.",
		creator:     "lee@company.com",
		transitions: []seedTransition{
			{to: domain.StatusReviewing, by: "lee@company.com"},
			{to: domain.StatusOnHold, by: "lee@company.com", note: "브랜드 리뉴얼 프로젝트와 연계 예정"},
		},
	},
	{
		title:       "협력사 평가 기준 개선",
		description: "현재 협력사 평가 기준이 너무 단순해요.",
		creator:     "cho@company.com",
		ageDays:     45,
	},
}

// Run seeds departments, users and items. Departments and users that already
// exist (by code or email) are reused, and items are only created when their
// title is new in the department, so Run can be repeated.
func Run(ctx context.Context, repos Repositories, bcryptCost int, logger *zap.Logger) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &Result{
		Departments: make(map[string]domain.Department, len(departments)),
		Users:       make(map[string]domain.User, len(users)),
	}

	for _, d := range departments {
		dept, err := ensureDepartment(ctx, repos.Departments, d)
		if err != nil {
			return nil, err
		}
		result.Departments[dept.Code] = *dept
	}

	hash, err := auth.HashPassword(DefaultPassword, bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash seed password: %w", err)
	}
	for _, u := range users {
		user, err := ensureUser(ctx, repos.Users, u, result.Departments[u.dept].ID, hash)
		if err != nil {
			return nil, err
		}
		result.Users[user.Email] = *user
	}

	now := time.Now()
	for _, it := range items {
		creator := result.Users[it.creator]
		exists, err := repos.Items.ExistsByTitle(ctx, creator.DepartmentID, it.title)
		if err != nil {
			return nil, fmt.Errorf("check item %q: %w", it.title, err)
		}
		if exists {
			continue
		}

		description := it.description
		item := &domain.Item{
			Title:        it.title,
			Description:  &description,
			DepartmentID: creator.DepartmentID,
			CreatedBy:    creator.ID,
			Status:       domain.StatusIdea,
		}
		if it.ageDays > 0 {
			item.CreatedAt = now.AddDate(0, 0, -it.ageDays)
			item.UpdatedAt = item.CreatedAt
		}
		initial := &domain.StatusHistory{ToStatus: domain.StatusIdea, ChangedBy: creator.ID}
		if err := repos.Items.Create(ctx, item, nil, initial); err != nil {
			return nil, fmt.Errorf("create item %q: %w", it.title, err)
		}

		for _, tr := range it.transitions {
			entry := &domain.StatusHistory{ToStatus: tr.to, ChangedBy: result.Users[tr.by].ID}
			if tr.note != "" {
				note := tr.note
				entry.Note = &note
			}
			if err := repos.Items.UpdateStatus(ctx, item, entry); err != nil {
				return nil, fmt.Errorf("advance item %q: %w", it.title, err)
			}
		}
		result.Items++
	}

	logger.Info("seed complete",
		zap.Int("departments", len(result.Departments)),
		zap.Int("users", len(result.Users)),
		zap.Int("items", result.Items),
	)
	return result, nil
}

func ensureDepartment(ctx context.Context, repo repository.DepartmentRepository, d domain.Department) (*domain.Department, error) {
	existing, err := repo.GetByCode(ctx, d.Code)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup department %s: %w", d.Code, err)
	}
	d.IsActive = true
	if err := repo.Create(ctx, &d); err != nil {
		return nil, fmt.Errorf("create department %s: %w", d.Code, err)
	}
	return &d, nil
}

func ensureUser(ctx context.Context, repo repository.UserRepository, u seedUser, departmentID, hash string) (*domain.User, error) {
	existing, err := repo.GetByEmail(ctx, u.email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup user %s: %w", u.email, err)
	}
	user := &domain.User{
		EmployeeID:   u.employeeID,
		Name:         u.name,
		Email:        u.email,
		PasswordHash: hash,
		Role:         u.role,
		DepartmentID: departmentID,
		IsActive:     true,
	}
	if err := repo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user %s: %w", u.email, err)
	}
	return user, nil
}
