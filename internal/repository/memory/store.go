// Package memory provides map-backed implementations of the repository
// interfaces. It is used when no Postgres DSN is configured and by tests.
package memory

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
)

// Store holds every table in memory behind a single lock. Multi-row writes
// happen under the write lock, which gives them the same all-or-nothing
// visibility as the Postgres transactions.
type Store struct {
	mu sync.RWMutex

	departments map[string]domain.Department
	users       map[string]domain.User
	items       map[string]domain.Item
	related     map[string][]string
	history     []domain.StatusHistory
	attachments []domain.Attachment
	aiTools     []domain.AIToolUser

	now func() time.Time
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the clock used for created/updated timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		departments: make(map[string]domain.Department),
		users:       make(map[string]domain.User),
		items:       make(map[string]domain.Item),
		related:     make(map[string][]string),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetClock replaces the timestamp clock after construction.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Repositories returns every repository view of the store.
func (s *Store) Repositories() repository.Set {
	return repository.Set{
		Items:         s.Items(),
		StatusHistory: s.StatusHistory(),
		Departments:   s.Departments(),
		Users:         s.Users(),
		Attachments:   s.Attachments(),
		AIToolUsers:   s.AIToolUsers(),
	}
}

// Items returns the item repository view.
func (s *Store) Items() repository.ItemRepository { return &itemRepository{s} }

// StatusHistory returns the status history repository view.
func (s *Store) StatusHistory() repository.StatusHistoryRepository {
	return &statusHistoryRepository{s}
}

// Departments returns the department repository view.
func (s *Store) Departments() repository.DepartmentRepository { return &departmentRepository{s} }

// Users returns the user repository view.
func (s *Store) Users() repository.UserRepository { return &userRepository{s} }

// Attachments returns the attachment repository view.
func (s *Store) Attachments() repository.AttachmentRepository { return &attachmentRepository{s} }

// AIToolUsers returns the AI tool roster repository view.
func (s *Store) AIToolUsers() repository.AIToolUserRepository { return &aiToolUserRepository{s} }

// AddAttachment records attachment metadata. Attachments have no write path
// in the API, so seeding and tests go through here.
func (s *Store) AddAttachment(a domain.Attachment) domain.Attachment {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.UploadedAt.IsZero() {
		a.UploadedAt = s.now()
	}
	s.attachments = append(s.attachments, a)
	return a
}

func (s *Store) listing(item domain.Item) domain.ItemListing {
	l := domain.ItemListing{Item: item}
	if d, ok := s.departments[item.DepartmentID]; ok {
		l.DepartmentName = d.Name
		l.DepartmentCode = d.Code
		l.DepartmentColor = d.Color
	}
	if u, ok := s.users[item.CreatedBy]; ok {
		l.CreatorName = u.Name
	}
	if item.AssignedTo != nil {
		if u, ok := s.users[*item.AssignedTo]; ok {
			name := u.Name
			l.AssigneeName = &name
		}
	}
	for _, a := range s.attachments {
		if a.ItemID == item.ID {
			l.AttachmentCount++
		}
	}
	return l
}

func (s *Store) activeItem(id string) (domain.Item, error) {
	item, ok := s.items[id]
	if !ok || item.IsDeleted {
		return domain.Item{}, pgx.ErrNoRows
	}
	return item, nil
}

func sortDepartments(depts []domain.Department) {
	sort.Slice(depts, func(i, j int) bool { return depts[i].Code < depts[j].Code })
}

func normalize(s string) string {
	return strings.TrimSpace(s)
}
