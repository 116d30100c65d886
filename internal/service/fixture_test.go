package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/attachment"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

// stepClock advances one second per reading so orderings are deterministic.
type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// recorder captures every published lifecycle event.
type recorder struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recorder) handle(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recorder) types() []events.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type harness struct {
	repos      repository.Set
	tickets    *TicketService
	queries    *TicketQueryService
	categories *CategoryService
	accounts   *AccountService
	auth       *AuthService
	recorder   *recorder

	customer  *domain.Customer
	operator  *domain.StaffMember
	operator2 *domain.StaffMember
	hardware  domain.Category
}

func newHarness(t *testing.T, queue cache.QueueCache) *harness {
	t.Helper()
	ctx := context.Background()

	db, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "svc.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	clock := &stepClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
	repos := repository.NewSQLiteSet(db.DB)
	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	rec := &recorder{}
	for _, eventType := range events.LifecycleEvents {
		dispatcher.Subscribe(eventType, rec.handle)
	}

	hasher := auth.NewPasswordHasher(4)
	categories := NewCategoryService(repos.Categories, clock.Now)
	queries := NewTicketQueryService(TicketQueryDependencies{
		TicketRepo:   repos.Tickets,
		CategoryRepo: repos.Categories,
		QueueCache:   queue,
	})
	NewTicketActivityService(dispatcher, nil, nil, queries).RegisterHandlers()

	h := &harness{
		repos: repos,
		tickets: NewTicketService(TicketDependencies{
			TicketRepo: repos.Tickets,
			Categories: categories,
			Validator:  attachment.NewValidator(1024),
			Dispatcher: dispatcher,
			Clock:      clock.Now,
		}),
		queries:    queries,
		categories: categories,
		accounts:   NewAccountService(repos.Customers, repos.Staff, hasher),
		auth: NewAuthService(
			auth.NewResolver(auth.CustomerSource{Customers: repos.Customers}, auth.StaffSource{Staff: repos.Staff}),
			auth.NewTokenManager("test-secret", 5, "helpdesk-test"),
			hasher,
		),
		recorder: rec,
	}

	h.customer, err = h.accounts.CreateCustomer(ctx, "Ada", "Lovelace", "ada@example.com", "correct-horse")
	require.NoError(t, err)
	h.operator, err = h.accounts.CreateStaffMember(ctx, "Olive", "olive@example.com", "battery-staple", domain.StaffRoleOperator)
	require.NoError(t, err)
	h.operator2, err = h.accounts.CreateStaffMember(ctx, "Oscar", "oscar@example.com", "battery-staple", domain.StaffRoleOperator)
	require.NoError(t, err)
	h.hardware, err = h.categories.Add(ctx, "Hardware")
	require.NoError(t, err)
	return h
}

func (h *harness) openTicket(t *testing.T, title string) domain.Ticket {
	t.Helper()
	ticket, err := h.tickets.Create(context.Background(), h.customer.ID, TicketCreateInput{
		Title:      title,
		Body:       "Details follow.",
		CategoryID: h.hardware.ID,
	})
	require.NoError(t, err)
	return ticket
}
