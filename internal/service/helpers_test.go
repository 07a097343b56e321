package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"

	"github.com/spec-kit/improvement-board/internal/domain"
	"github.com/spec-kit/improvement-board/internal/events"
	"github.com/spec-kit/improvement-board/internal/observability"
	"github.com/spec-kit/improvement-board/internal/repository/memory"
	"github.com/spec-kit/improvement-board/internal/seed"
)

type testEnv struct {
	store      *memory.Store
	seeded     *seed.Result
	now        time.Time
	dispatcher events.Dispatcher
	published  []events.Event
	metrics    *observability.Metrics
	items      *ItemService
	dashboard  *DashboardService
	directory  *DirectoryService
	imports    *ImportService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{now: time.Now().UTC().Truncate(time.Second)}
	clock := func() time.Time { return env.now }
	env.store = memory.New(memory.WithClock(clock))

	seeded, err := seed.Run(context.Background(), seed.Repositories{
		Departments: env.store.Departments(),
		Users:       env.store.Users(),
		Items:       env.store.Items(),
	}, bcrypt.MinCost, nil)
	require.NoError(t, err)
	env.seeded = seeded

	logger := zaptest.NewLogger(t)
	env.metrics = observability.NewMetrics()
	env.dispatcher = events.NewInMemoryDispatcher(logger)
	for _, typ := range []events.EventType{events.EventItemCreated, events.EventItemUpdated, events.EventItemStatusChanged, events.EventItemDeleted, events.EventItemsImported} {
		env.dispatcher.Subscribe(typ, func(_ context.Context, e events.Event) error {
			env.published = append(env.published, e)
			return nil
		})
	}

	env.items = NewItemService(ItemDependencies{
		Items:       env.store.Items(),
		History:     env.store.StatusHistory(),
		Departments: env.store.Departments(),
		Users:       env.store.Users(),
		Attachments: env.store.Attachments(),
		Dispatcher:  env.dispatcher,
		Metrics:     env.metrics,
		Logger:      logger,
		Clock:       clock,
	})
	env.dashboard = NewDashboardService(env.store.Items(), env.store.Departments(), clock)
	env.directory = NewDirectoryService(env.store.Departments(), env.store.Users())
	env.imports = NewImportService(ImportDependencies{
		Items:       env.store.Items(),
		Departments: env.store.Departments(),
		Dispatcher:  env.dispatcher,
		Metrics:     env.metrics,
		Logger:      logger,
	})
	return env
}

func (e *testEnv) actor(email string) domain.Actor {
	u := e.seeded.Users[email]
	return u.Actor()
}

func (e *testEnv) dept(code string) domain.Department {
	return e.seeded.Departments[code]
}

func (e *testEnv) create(t *testing.T, email, title string) *domain.ItemListing {
	t.Helper()
	item, err := e.items.Create(context.Background(), CreateItemInput{Title: title}, e.actor(email))
	require.NoError(t, err)
	return item
}

func strPtr(s string) *string { return &s }
