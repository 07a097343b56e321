package service

import (
	"context"
	"time"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

// StaleItemLimit caps the stale items listed on the dashboard.
const StaleItemLimit = 5

// DashboardService aggregates board-wide counts.
type DashboardService struct {
	items       repository.ItemRepository
	departments repository.DepartmentRepository
	now         func() time.Time
}

// NewDashboardService constructs the service. A nil clock means time.Now.
func NewDashboardService(items repository.ItemRepository, departments repository.DepartmentRepository, clock func() time.Time) *DashboardService {
	if clock == nil {
		clock = time.Now
	}
	return &DashboardService{items: items, departments: departments, now: clock}
}

// StaleItem is an item that has not moved for longer than domain.StaleAfter.
type StaleItem struct {
	ID              string
	Title           string
	DaysSinceUpdate int
	DepartmentName  string
}

// Summary is the dashboard payload.
type Summary struct {
	Total        int
	ByStatus     map[domain.ItemStatus]int
	ByDepartment []domain.DepartmentCount
	StaleItems   []StaleItem
}

// Summary computes the dashboard aggregates at the current time.
func (s *DashboardService) Summary(ctx context.Context) (*Summary, error) {
	total, err := s.items.CountActive(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	counts, err := s.items.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	byStatus := make(map[domain.ItemStatus]int, len(domain.Statuses))
	for _, status := range domain.Statuses {
		byStatus[status] = counts[status]
	}

	byDepartment, err := s.departments.CountItems(ctx)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	now := s.now()
	staleListings, err := s.items.ListStale(ctx, now.Add(-domain.StaleAfter), StaleItemLimit)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	stale := make([]StaleItem, 0, len(staleListings))
	for _, l := range staleListings {
		stale = append(stale, StaleItem{
			ID:              l.ID,
			Title:           l.Title,
			DaysSinceUpdate: domain.DaysSince(l.UpdatedAt, now),
			DepartmentName:  l.DepartmentName,
		})
	}

	return &Summary{
		Total:        total,
		ByStatus:     byStatus,
		ByDepartment: byDepartment,
		StaleItems:   stale,
	}, nil
}
