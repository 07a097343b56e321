package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/improvement-board/internal/domain"
)

type departmentRepository struct{ s *Store }

func (r *departmentRepository) Create(_ context.Context, dept *domain.Department) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, d := range s.departments {
		if d.Code == dept.Code {
			return fmt.Errorf("department code %q already exists", dept.Code)
		}
	}
	now := s.now()
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	dept.CreatedAt = now
	dept.UpdatedAt = now
	s.departments[dept.ID] = *dept
	return nil
}

func (r *departmentRepository) GetByID(_ context.Context, id string) (*domain.Department, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.departments[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

func (r *departmentRepository) GetByCode(_ context.Context, code string) (*domain.Department, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.departments {
		if d.Code == code {
			return &d, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *departmentRepository) ListActive(_ context.Context) ([]domain.Department, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Department{}
	for _, d := range s.departments {
		if d.IsActive {
			result = append(result, d)
		}
	}
	sortDepartments(result)
	return result, nil
}

func (r *departmentRepository) ListByItem(_ context.Context, itemID string) ([]domain.Department, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Department{}
	for _, id := range s.related[itemID] {
		if d, ok := s.departments[id]; ok {
			result = append(result, d)
		}
	}
	sortDepartments(result)
	return result, nil
}

func (r *departmentRepository) CountExisting(_ context.Context, ids []string) (int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, id := range ids {
		if _, ok := s.departments[id]; ok {
			count++
		}
	}
	return count, nil
}

func (r *departmentRepository) FindByNameOrFragment(_ context.Context, name, fragment string) (*domain.Department, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	all := make([]domain.Department, 0, len(s.departments))
	for _, d := range s.departments {
		all = append(all, d)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].IsActive != all[j].IsActive {
			return all[i].IsActive
		}
		return all[i].Code < all[j].Code
	})

	for _, d := range all {
		if d.Name == name {
			return &d, nil
		}
	}
	if fragment = normalize(fragment); fragment != "" {
		for _, d := range all {
			if strings.Contains(d.Name, fragment) {
				return &d, nil
			}
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *departmentRepository) First(_ context.Context) (*domain.Department, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	var first *domain.Department
	for _, d := range s.departments {
		d := d
		switch {
		case first == nil:
			first = &d
		case d.IsActive != first.IsActive:
			if d.IsActive {
				first = &d
			}
		case d.Code < first.Code:
			first = &d
		}
	}
	if first == nil {
		return nil, pgx.ErrNoRows
	}
	return first, nil
}

func (r *departmentRepository) CountItems(_ context.Context) ([]domain.DepartmentCount, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, item := range s.items {
		if !item.IsDeleted {
			counts[item.DepartmentID]++
		}
	}

	active := []domain.Department{}
	for _, d := range s.departments {
		if d.IsActive {
			active = append(active, d)
		}
	}
	sortDepartments(active)

	result := make([]domain.DepartmentCount, 0, len(active))
	for _, d := range active {
		result = append(result, domain.DepartmentCount{Department: d, Count: counts[d.ID]})
	}
	return result, nil
}

type userRepository struct{ s *Store }

func (r *userRepository) Create(_ context.Context, user *domain.User) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email || u.EmployeeID == user.EmployeeID {
			return fmt.Errorf("user %q already exists", user.Email)
		}
	}
	if _, ok := s.departments[user.DepartmentID]; !ok {
		return fmt.Errorf("department %q does not exist", user.DepartmentID)
	}
	now := s.now()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (r *userRepository) GetByID(_ context.Context, id string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r *userRepository) GetProfile(_ context.Context, id string) (*domain.UserProfile, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &domain.UserProfile{User: u, Department: s.departments[u.DepartmentID]}, nil
}

func (r *userRepository) ListActive(_ context.Context, departmentID *string) ([]domain.UserProfile, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.UserProfile{}
	for _, u := range s.users {
		if !u.IsActive {
			continue
		}
		if departmentID != nil && u.DepartmentID != *departmentID {
			continue
		}
		result = append(result, domain.UserProfile{User: u, Department: s.departments[u.DepartmentID]})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].User.Name != result[j].User.Name {
			return result[i].User.Name < result[j].User.Name
		}
		return result[i].User.ID < result[j].User.ID
	})
	return result, nil
}

type attachmentRepository struct{ s *Store }

func (r *attachmentRepository) ListByItem(_ context.Context, itemID string) ([]domain.Attachment, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.Attachment{}
	for _, a := range s.attachments {
		if a.ItemID == itemID {
			result = append(result, a)
		}
	}
	return result, nil
}

type aiToolUserRepository struct{ s *Store }

func (r *aiToolUserRepository) List(_ context.Context) ([]domain.AIToolUser, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := append([]domain.AIToolUser{}, s.aiTools...)
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (r *aiToolUserRepository) ReplaceAll(_ context.Context, users []domain.AIToolUser) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	next := 1
	for _, u := range users {
		if u.ID >= next {
			next = u.ID + 1
		}
	}
	roster := make([]domain.AIToolUser, 0, len(users))
	for _, u := range users {
		if u.ID <= 0 {
			u.ID = next
			next++
		}
		roster = append(roster, u)
	}
	s.aiTools = roster
	return nil
}
