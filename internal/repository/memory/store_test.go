package memory

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/repository"
)

type fixture struct {
	store *Store
	clock time.Time
	dept  domain.Department
	other domain.Department
	user  domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clock: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}
	f.store = New(WithClock(func() time.Time { return f.clock }))

	ctx := context.Background()
	f.dept = domain.Department{Name: "생산팀", Code: "PROD", Color: "#111111", IsActive: true}
	require.NoError(t, f.store.Departments().Create(ctx, &f.dept))
	f.other = domain.Department{Name: "품질팀", Code: "QA", Color: "#222222", IsActive: true}
	require.NoError(t, f.store.Departments().Create(ctx, &f.other))

	f.user = domain.User{EmployeeID: "E001", Name: "홍길동", Email: "hong@example.com", Role: domain.RoleEmployee, DepartmentID: f.dept.ID, IsActive: true}
	require.NoError(t, f.store.Users().Create(ctx, &f.user))
	return f
}

func (f *fixture) createItem(t *testing.T, title string) domain.Item {
	t.Helper()
	item := domain.Item{Title: title, DepartmentID: f.dept.ID, CreatedBy: f.user.ID, Status: domain.StatusIdea}
	entry := domain.StatusHistory{ToStatus: domain.StatusIdea, ChangedBy: f.user.ID}
	require.NoError(t, f.store.Items().Create(context.Background(), &item, []string{f.other.ID}, &entry))
	return item
}

func TestListPaginatesAndSorts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for i, title := range []string{"a", "b", "c", "d", "e"} {
		f.clock = f.clock.Add(time.Duration(i+1) * time.Minute)
		f.createItem(t, title)
	}

	page, total, err := f.store.Items().List(ctx, repository.ItemFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "c", page[0].Title)
	assert.Equal(t, "b", page[1].Title)

	asc, _, err := f.store.Items().List(ctx, repository.ItemFilter{Limit: 10, Ascending: true})
	require.NoError(t, err)
	assert.Equal(t, "a", asc[0].Title)
	assert.Equal(t, "생산팀", asc[0].DepartmentName)
	assert.Equal(t, "홍길동", asc[0].CreatorName)

	empty, total, err := f.store.Items().List(ctx, repository.ItemFilter{Limit: 10, Offset: 50})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}

func TestUpdateStatusAppendsHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "history")

	f.clock = f.clock.Add(time.Hour)
	entry := domain.StatusHistory{ToStatus: domain.StatusReviewing, ChangedBy: f.user.ID}
	require.NoError(t, f.store.Items().UpdateStatus(ctx, &item, &entry))
	require.NotNil(t, entry.FromStatus)
	assert.Equal(t, domain.StatusIdea, *entry.FromStatus)

	history, err := f.store.StatusHistory().ListByItem(ctx, item.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.StatusReviewing, history[0].ToStatus)
	assert.Nil(t, history[1].FromStatus)
	assert.Equal(t, "홍길동", history[0].ChangerName)

	stored, err := f.store.Items().GetByID(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, history[0].ToStatus, stored.Status)
	assert.Equal(t, f.clock, stored.UpdatedAt)
}

func TestSoftDeleteHidesItemButKeepsTitleReserved(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	item := f.createItem(t, "gone")

	require.NoError(t, f.store.Items().SoftDelete(ctx, item.ID))

	_, err := f.store.Items().GetByID(ctx, item.ID)
	assert.ErrorIs(t, err, pgx.ErrNoRows)
	assert.ErrorIs(t, f.store.Items().SoftDelete(ctx, item.ID), pgx.ErrNoRows)

	count, err := f.store.Items().CountActive(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	exists, err := f.store.Items().ExistsByTitle(ctx, f.dept.ID, "gone")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestListStaleSkipsDoneAndFresh(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	old := f.createItem(t, "old")
	done := f.createItem(t, "done")
	entry := domain.StatusHistory{ToStatus: domain.StatusDone, ChangedBy: f.user.ID}
	require.NoError(t, f.store.Items().UpdateStatus(ctx, &done, &entry))

	f.clock = f.clock.Add(40 * 24 * time.Hour)
	f.createItem(t, "fresh")

	stale, err := f.store.Items().ListStale(ctx, f.clock.Add(-domain.StaleAfter), 5)
	require.NoError(t, err)
	require.Len(t, stale, 1)
	assert.Equal(t, old.ID, stale[0].ID)
}

func TestFindByNameOrFragment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	depts := f.store.Departments()

	got, err := depts.FindByNameOrFragment(ctx, "품질팀", "")
	require.NoError(t, err)
	assert.Equal(t, f.other.ID, got.ID)

	got, err = depts.FindByNameOrFragment(ctx, "생산 혁신", "생산")
	require.NoError(t, err)
	assert.Equal(t, f.dept.ID, got.ID)

	_, err = depts.FindByNameOrFragment(ctx, "없는부서", "없는부서")
	assert.ErrorIs(t, err, pgx.ErrNoRows)

	_, err = depts.FindByNameOrFragment(ctx, "없는부서", "%")
	assert.ErrorIs(t, err, pgx.ErrNoRows, "wildcards are matched literally")

	first, err := depts.First(ctx)
	require.NoError(t, err)
	assert.Equal(t, "PROD", first.Code)

	related, err := depts.ListByItem(ctx, f.createItem(t, "rel").ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, "QA", related[0].Code)
}

func TestReplaceAllAssignsIDs(t *testing.T) {
	s := New()
	ctx := context.Background()

	require.NoError(t, s.AIToolUsers().ReplaceAll(ctx, []domain.AIToolUser{
		{ID: 4, Name: "kim"},
		{Name: "lee"},
	}))
	roster, err := s.AIToolUsers().List(ctx)
	require.NoError(t, err)
	require.Len(t, roster, 2)
	assert.Equal(t, 4, roster[0].ID)
	assert.Equal(t, 5, roster[1].ID)
}
