package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/improvement-board/internal/auth"
	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/observability"
	"github.com/spec-kit/improvement-board/internal/repository"
	apperrors "github.com/spec-kit/improvement-board/pkg/util"
)

const (
	// DefaultPageSize is used when the caller does not pass a limit.
	DefaultPageSize = 20
	// MaxPageSize caps the page size.
	MaxPageSize = 100
	// MaxTitleLength is the longest accepted title, in characters.
	MaxTitleLength = 100
)

// ItemService implements the improvement item lifecycle.
type ItemService struct {
	items       repository.ItemRepository
	history     repository.StatusHistoryRepository
	departments repository.DepartmentRepository
	users       repository.UserRepository
	attachments repository.AttachmentRepository
	dispatcher  events.Dispatcher
	metrics     *observability.Metrics
	logger      *zap.Logger
	now         func() time.Time
}

// ItemDependencies wires ItemService.
type ItemDependencies struct {
	Items       repository.ItemRepository
	History     repository.StatusHistoryRepository
	Departments repository.DepartmentRepository
	Users       repository.UserRepository
	Attachments repository.AttachmentRepository
	Dispatcher  events.Dispatcher
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	Clock       func() time.Time
}

// NewItemService constructs the service.
func NewItemService(deps ItemDependencies) *ItemService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ItemService{
		items:       deps.Items,
		history:     deps.History,
		departments: deps.Departments,
		users:       deps.Users,
		attachments: deps.Attachments,
		dispatcher:  deps.Dispatcher,
		metrics:     deps.Metrics,
		logger:      logger,
		now:         clock,
	}
}

// ListItemsParams are the list filters and paging options.
type ListItemsParams struct {
	Page         int
	Limit        int
	DepartmentID *string
	Status       *domain.ItemStatus
	Sort         repository.ItemSort
	Order        string
	StaleOnly    bool
}

// Pagination describes a page of results.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

// ItemPage is one page of listings.
type ItemPage struct {
	Items      []domain.ItemListing
	Pagination Pagination
	Now        time.Time
}

// ItemDetail is an item with everything the detail view shows.
type ItemDetail struct {
	Item        domain.ItemListing
	Department  domain.Department
	Related     []domain.Department
	Attachments []domain.Attachment
	History     []domain.StatusHistory
	Now         time.Time
}

// CreateItemInput carries fields for a new item.
type CreateItemInput struct {
	Title              string
	Description        *string
	AssignedTo         *string
	RelatedDepartments []string
}

// UpdateItemInput is a partial update; nil fields are left unchanged. An
// empty AssignedTo clears the assignee.
type UpdateItemInput struct {
	Title       *string
	Description *string
	AssignedTo  *string
	GitURL      *string
	WebURL      *string
}

// List returns a page of non-deleted items.
func (s *ItemService) List(ctx context.Context, params ListItemsParams) (*ItemPage, error) {
	var fieldErrs []apperrors.FieldError
	if params.DepartmentID != nil && !isUUID(*params.DepartmentID) {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "departmentId", Message: "must be a valid id"})
	}
	if params.Status != nil && !params.Status.Valid() {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "status", Message: "unknown status"})
	}
	if params.Sort != "" && params.Sort != repository.SortCreatedAt && params.Sort != repository.SortUpdatedAt {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "sort", Message: "must be createdAt or updatedAt"})
	}
	order := strings.ToLower(params.Order)
	if order != "" && order != "asc" && order != "desc" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "order", Message: "must be asc or desc"})
	}
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError("invalid list parameters", fieldErrs)
	}

	page := params.Page
	if page < 1 {
		page = 1
	}
	limit := params.Limit
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	now := s.now()
	filter := repository.ItemFilter{
		DepartmentID: params.DepartmentID,
		Status:       params.Status,
		Sort:         params.Sort,
		Ascending:    order == "asc",
		Limit:        limit,
		Offset:       (page - 1) * limit,
	}
	if filter.Sort == "" {
		filter.Sort = repository.SortCreatedAt
	}
	if params.StaleOnly {
		cutoff := now.Add(-domain.StaleAfter)
		filter.UpdatedBefore = &cutoff
	}

	listings, total, err := s.items.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &ItemPage{
		Items: listings,
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: (total + limit - 1) / limit,
		},
		Now: now,
	}, nil
}

// Get returns the full detail of a non-deleted item.
func (s *ItemService) Get(ctx context.Context, id string) (*ItemDetail, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	dept, err := s.departments.GetByID(ctx, listing.DepartmentID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	related, err := s.departments.ListByItem(ctx, listing.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	attachments, err := s.attachments.ListByItem(ctx, listing.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	history, err := s.history.ListByItem(ctx, listing.ID)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	return &ItemDetail{
		Item:        *listing,
		Department:  *dept,
		Related:     related,
		Attachments: attachments,
		History:     history,
		Now:         s.now(),
	}, nil
}

// Create submits a new item owned by the actor's department. The initial
// status is always IDEA regardless of input.
func (s *ItemService) Create(ctx context.Context, input CreateItemInput, actor domain.Actor) (*domain.ItemListing, error) {
	if err := auth.EnsureCanCreate(actor); err != nil {
		return nil, err
	}

	var fieldErrs []apperrors.FieldError
	title := strings.TrimSpace(input.Title)
	if msg := validateTitle(title); msg != "" {
		fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "title", Message: msg})
	}
	assignee, errs := s.checkAssignee(ctx, input.AssignedTo)
	fieldErrs = append(fieldErrs, errs...)
	related, errs := s.checkRelatedDepartments(ctx, input.RelatedDepartments)
	fieldErrs = append(fieldErrs, errs...)
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError("invalid item", fieldErrs)
	}

	item := &domain.Item{
		Title:        title,
		Description:  nonEmpty(input.Description),
		DepartmentID: actor.DepartmentID,
		CreatedBy:    actor.ID,
		AssignedTo:   assignee,
		Status:       domain.StatusIdea,
	}
	initial := &domain.StatusHistory{ToStatus: domain.StatusIdea, ChangedBy: actor.ID}
	if err := s.items.Create(ctx, item, related, initial); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	s.metrics.ItemCreated()
	s.publish(ctx, events.New(events.EventItemCreated, item.ID, actor, s.now(), events.ItemCreatedPayload{
		DepartmentID: item.DepartmentID,
		Title:        item.Title,
	}))

	return s.load(ctx, item.ID)
}

// Update applies a partial update after the policy check. Status is never
// touched here.
func (s *ItemService) Update(ctx context.Context, id string, input UpdateItemInput, actor domain.Actor) (*domain.ItemListing, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.EnsureCanModify(&listing.Item, actor); err != nil {
		return nil, err
	}

	item := listing.Item
	var (
		fieldErrs []apperrors.FieldError
		changed   []string
	)
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if msg := validateTitle(title); msg != "" {
			fieldErrs = append(fieldErrs, apperrors.FieldError{Field: "title", Message: msg})
		}
		item.Title = title
		changed = append(changed, "title")
	}
	if input.Description != nil {
		item.Description = nonEmpty(input.Description)
		changed = append(changed, "description")
	}
	if input.AssignedTo != nil {
		assignee, errs := s.checkAssignee(ctx, input.AssignedTo)
		fieldErrs = append(fieldErrs, errs...)
		item.AssignedTo = assignee
		changed = append(changed, "assignedTo")
	}
	if input.GitURL != nil {
		item.GitURL = nonEmpty(input.GitURL)
		changed = append(changed, "gitUrl")
	}
	if input.WebURL != nil {
		item.WebURL = nonEmpty(input.WebURL)
		changed = append(changed, "webUrl")
	}
	if len(fieldErrs) > 0 {
		return nil, apperrors.NewValidationError("invalid item", fieldErrs)
	}

	if err := s.items.Update(ctx, &item); err != nil {
		return nil, s.storeError(err)
	}
	s.publish(ctx, events.New(events.EventItemUpdated, item.ID, actor, s.now(), events.ItemUpdatedPayload{Fields: changed}))
	return s.load(ctx, item.ID)
}

// UpdateStatus moves the item to status and appends a history entry in the
// same transaction.
func (s *ItemService) UpdateStatus(ctx context.Context, id string, status domain.ItemStatus, note *string, actor domain.Actor) (*domain.ItemListing, *domain.StatusHistory, error) {
	if !status.Valid() {
		return nil, nil, apperrors.NewValidationError("invalid status", []apperrors.FieldError{
			{Field: "status", Message: "unknown status"},
		})
	}
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if err := auth.EnsureCanModify(&listing.Item, actor); err != nil {
		return nil, nil, err
	}

	item := listing.Item
	entry := &domain.StatusHistory{ToStatus: status, ChangedBy: actor.ID, Note: nonEmpty(note)}
	if err := s.items.UpdateStatus(ctx, &item, entry); err != nil {
		return nil, nil, s.storeError(err)
	}

	s.metrics.StatusChanged(string(status))
	payload := events.ItemStatusChangedPayload{NewStatus: status}
	if entry.FromStatus != nil {
		payload.OldStatus = *entry.FromStatus
	}
	if entry.Note != nil {
		payload.Note = *entry.Note
	}
	s.publish(ctx, events.New(events.EventItemStatusChanged, item.ID, actor, s.now(), payload))

	updated, err := s.load(ctx, item.ID)
	if err != nil {
		return nil, nil, err
	}
	return updated, entry, nil
}

// UpdateURLs overwrites both links. A nil or empty value clears the link.
func (s *ItemService) UpdateURLs(ctx context.Context, id string, gitURL, webURL *string, actor domain.Actor) (*domain.ItemListing, error) {
	listing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := auth.EnsureCanModify(&listing.Item, actor); err != nil {
		return nil, err
	}

	item := listing.Item
	item.GitURL = nonEmpty(gitURL)
	item.WebURL = nonEmpty(webURL)
	if err := s.items.Update(ctx, &item); err != nil {
		return nil, s.storeError(err)
	}
	s.publish(ctx, events.New(events.EventItemUpdated, item.ID, actor, s.now(), events.ItemUpdatedPayload{
		Fields: []string{"gitUrl", "webUrl"},
	}))
	return s.load(ctx, item.ID)
}

// Delete soft-deletes the item after the policy check.
func (s *ItemService) Delete(ctx context.Context, id string, actor domain.Actor) error {
	listing, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.EnsureCanModify(&listing.Item, actor); err != nil {
		return err
	}
	if err := s.items.SoftDelete(ctx, listing.ID); err != nil {
		return s.storeError(err)
	}
	s.publish(ctx, events.New(events.EventItemDeleted, listing.ID, actor, s.now(), events.ItemDeletedPayload{Title: listing.Title}))
	return nil
}

func (s *ItemService) load(ctx context.Context, id string) (*domain.ItemListing, error) {
	if !isUUID(id) {
		return nil, apperrors.NewNotFound("item")
	}
	listing, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, s.storeError(err)
	}
	return listing, nil
}

func (s *ItemService) storeError(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperrors.NewNotFound("item")
	}
	return apperrors.NewInternalError(err)
}

func (s *ItemService) checkAssignee(ctx context.Context, assignedTo *string) (*string, []apperrors.FieldError) {
	if assignedTo == nil || strings.TrimSpace(*assignedTo) == "" {
		return nil, nil
	}
	id := strings.TrimSpace(*assignedTo)
	invalid := []apperrors.FieldError{{Field: "assignedTo", Message: "must reference an existing user"}}
	if !isUUID(id) {
		return nil, invalid
	}
	if _, err := s.users.GetByID(ctx, id); err != nil {
		return nil, invalid
	}
	return &id, nil
}

func (s *ItemService) checkRelatedDepartments(ctx context.Context, ids []string) ([]string, []apperrors.FieldError) {
	if len(ids) == 0 {
		return nil, nil
	}
	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if !isUUID(id) {
			return nil, []apperrors.FieldError{{Field: "relatedDepartments", Message: "must contain valid department ids"}}
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	count, err := s.departments.CountExisting(ctx, unique)
	if err != nil || count != len(unique) {
		return nil, []apperrors.FieldError{{Field: "relatedDepartments", Message: "must reference existing departments"}}
	}
	return unique, nil
}

func (s *ItemService) publish(ctx context.Context, event events.Event) {
	publish(ctx, s.dispatcher, s.logger, event)
}

// publish hands event to dispatcher. The mutation has already been committed,
// so a failure is logged and not returned.
func publish(ctx context.Context, dispatcher events.Dispatcher, logger *zap.Logger, event events.Event) {
	if dispatcher == nil {
		return
	}
	if err := dispatcher.Publish(ctx, event); err != nil {
		logger.Warn("publish event", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func validateTitle(title string) string {
	if title == "" {
		return "title is required"
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "title must be at most 100 characters"
	}
	return ""
}

func nonEmpty(val *string) *string {
	if val == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*val)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func isUUID(val string) bool {
	_, err := uuid.Parse(val)
	return err == nil
}
