package memory

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
)

type itemRepository struct{ s *Store }

func (r *itemRepository) Create(_ context.Context, item *domain.Item, relatedDepartmentIDs []string, initial *domain.StatusHistory) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	item.ID = uuid.NewString()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	if item.UpdatedAt.IsZero() {
		item.UpdatedAt = item.CreatedAt
	}
	s.items[item.ID] = *item

	seen := make(map[string]struct{}, len(relatedDepartmentIDs))
	for _, id := range relatedDepartmentIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		s.related[item.ID] = append(s.related[item.ID], id)
	}

	initial.ItemID = item.ID
	s.appendHistory(initial)
	return nil
}

func (r *itemRepository) GetByID(_ context.Context, id string) (*domain.ItemListing, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, err := s.activeItem(id)
	if err != nil {
		return nil, err
	}
	l := s.listing(item)
	return &l, nil
}

func (r *itemRepository) List(_ context.Context, filter repository.ItemFilter) ([]domain.ItemListing, int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]domain.Item, 0, len(s.items))
	for _, item := range s.items {
		if item.IsDeleted {
			continue
		}
		if filter.DepartmentID != nil && item.DepartmentID != *filter.DepartmentID {
			continue
		}
		if filter.Status != nil && item.Status != *filter.Status {
			continue
		}
		if filter.UpdatedBefore != nil && !item.UpdatedAt.Before(*filter.UpdatedBefore) {
			continue
		}
		matched = append(matched, item)
	}

	key := func(item domain.Item) time.Time {
		if filter.Sort == repository.SortUpdatedAt {
			return item.UpdatedAt
		}
		return item.CreatedAt
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		ka, kb := key(a), key(b)
		if !ka.Equal(kb) {
			if filter.Ascending {
				return ka.Before(kb)
			}
			return ka.After(kb)
		}
		if filter.Ascending {
			return a.ID < b.ID
		}
		return a.ID > b.ID
	})

	total := len(matched)
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset > total {
		offset = total
	}
	end := offset + limit
	if end > total {
		end = total
	}

	result := make([]domain.ItemListing, 0, end-offset)
	for _, item := range matched[offset:end] {
		result = append(result, s.listing(item))
	}
	return result, total, nil
}

func (r *itemRepository) Update(_ context.Context, item *domain.Item) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.activeItem(item.ID)
	if err != nil {
		return err
	}
	stored.Title = item.Title
	stored.Description = item.Description
	stored.AssignedTo = item.AssignedTo
	stored.GitURL = item.GitURL
	stored.WebURL = item.WebURL
	stored.UpdatedAt = s.now()
	s.items[item.ID] = stored

	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *itemRepository) UpdateStatus(_ context.Context, item *domain.Item, entry *domain.StatusHistory) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.activeItem(item.ID)
	if err != nil {
		return err
	}
	previous := stored.Status
	stored.Status = entry.ToStatus
	stored.UpdatedAt = s.now()
	s.items[item.ID] = stored

	entry.ItemID = item.ID
	entry.FromStatus = &previous
	s.appendHistory(entry)

	item.Status = stored.Status
	item.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *itemRepository) SoftDelete(_ context.Context, id string) error {
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.activeItem(id)
	if err != nil {
		return err
	}
	stored.IsDeleted = true
	stored.UpdatedAt = s.now()
	s.items[id] = stored
	return nil
}

func (r *itemRepository) ExistsByTitle(_ context.Context, departmentID, title string) (bool, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.items {
		if item.DepartmentID == departmentID && item.Title == title {
			return true, nil
		}
	}
	return false, nil
}

func (r *itemRepository) CountActive(_ context.Context) (int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, item := range s.items {
		if !item.IsDeleted {
			total++
		}
	}
	return total, nil
}

func (r *itemRepository) CountByStatus(_ context.Context) (map[domain.ItemStatus]int, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[domain.ItemStatus]int)
	for _, item := range s.items {
		if !item.IsDeleted {
			result[item.Status]++
		}
	}
	return result, nil
}

func (r *itemRepository) ListStale(_ context.Context, updatedBefore time.Time, limit int) ([]domain.ItemListing, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	stale := []domain.Item{}
	for _, item := range s.items {
		if item.IsDeleted || item.Status == domain.StatusDone || !item.UpdatedAt.Before(updatedBefore) {
			continue
		}
		stale = append(stale, item)
	}
	sort.Slice(stale, func(i, j int) bool { return stale[i].UpdatedAt.Before(stale[j].UpdatedAt) })
	if limit > 0 && len(stale) > limit {
		stale = stale[:limit]
	}

	result := make([]domain.ItemListing, 0, len(stale))
	for _, item := range stale {
		result = append(result, s.listing(item))
	}
	return result, nil
}

// appendHistory must be called with the write lock held.
func (s *Store) appendHistory(entry *domain.StatusHistory) {
	entry.ID = uuid.NewString()
	entry.ChangedAt = s.now()
	if u, ok := s.users[entry.ChangedBy]; ok {
		entry.ChangerName = u.Name
	}
	s.history = append(s.history, *entry)
}

type statusHistoryRepository struct{ s *Store }

func (r *statusHistoryRepository) ListByItem(_ context.Context, itemID string) ([]domain.StatusHistory, error) {
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []domain.StatusHistory{}
	for i := len(s.history) - 1; i >= 0; i-- {
		h := s.history[i]
		if h.ItemID != itemID {
			continue
		}
		if u, ok := s.users[h.ChangedBy]; ok {
			h.ChangerName = u.Name
		}
		result = append(result, h)
	}
	return result, nil
}
