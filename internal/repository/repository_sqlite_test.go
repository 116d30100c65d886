package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/persistence"
)

type fixture struct {
	set      Set
	customer domain.Customer
	operator domain.StaffMember
	category domain.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := persistence.NewSQLite(ctx, config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "repo.db")}, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(db.Close)

	now := time.Now().UTC()
	f := &fixture{
		set: NewSQLiteSet(db.DB),
		customer: domain.Customer{
			ID: uuid.NewString(), FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com",
			PasswordHash: "x", Enabled: true, CreatedAt: now, UpdatedAt: now,
		},
		operator: domain.StaffMember{
			ID: uuid.NewString(), Name: "Otto Operator", Email: "otto@example.com",
			PasswordHash: "x", Role: domain.StaffRoleOperator, Enabled: true, CreatedAt: now, UpdatedAt: now,
		},
		category: domain.Category{ID: uuid.NewString(), Name: "Hardware", Enabled: true, CreatedAt: now, UpdatedAt: now},
	}
	require.NoError(t, f.set.Customers.Create(ctx, &f.customer))
	require.NoError(t, f.set.Staff.Create(ctx, &f.operator))
	require.NoError(t, f.set.Categories.Create(ctx, &f.category))
	return f
}

func (f *fixture) newTicket(t *testing.T, createdAt time.Time) domain.Ticket {
	t.Helper()
	ticket := domain.Ticket{
		ID:          uuid.NewString(),
		ExternalKey: "TCK-" + uuid.NewString()[:8],
		CustomerID:  f.customer.ID,
		CategoryID:  f.category.ID,
		Title:       "Printer not working",
		Body:        "It jams on every page.",
		Status:      domain.TicketStatusOpen,
		CreatedAt:   createdAt,
	}
	require.NoError(t, f.set.Tickets.Create(context.Background(), &ticket))
	return ticket
}

func TestTicketRoundTripWithAttachment(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ticket := domain.Ticket{
		ID:          uuid.NewString(),
		ExternalKey: "TCK-0000ABCD",
		CustomerID:  f.customer.ID,
		CategoryID:  f.category.ID,
		Title:       "Screen flickers",
		Body:        "Since this morning.",
		Attachment:  &domain.Attachment{FileName: "photo.jpg", Content: []byte("jpegdata")},
		Status:      domain.TicketStatusOpen,
		CreatedAt:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
	}
	require.NoError(t, f.set.Tickets.Create(ctx, &ticket))

	got, err := f.set.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.Title, got.Title)
	assert.True(t, ticket.CreatedAt.Equal(got.CreatedAt))
	require.NotNil(t, got.Attachment)
	assert.Equal(t, "photo.jpg", got.Attachment.FileName)
	assert.Equal(t, int64(8), got.Attachment.SizeBytes)
	assert.Nil(t, got.Attachment.Content)

	att, err := f.set.Tickets.GetAttachment(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("jpegdata"), att.Content)
}

func TestGetAttachmentWithoutFile(t *testing.T) {
	f := newFixture(t)
	ticket := f.newTicket(t, time.Now().UTC())

	_, err := f.set.Tickets.GetAttachment(context.Background(), ticket.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetMissingTicket(t *testing.T) {
	f := newFixture(t)

	_, err := f.set.Tickets.GetByID(context.Background(), uuid.NewString())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestTransitionIsConditionalOnStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.newTicket(t, time.Now().UTC())

	assigned := time.Now().UTC()
	claimed := ticket.Clone()
	claimed.Status = domain.TicketStatusInProgress
	claimed.OperatorID = &f.operator.ID
	claimed.AssignedAt = &assigned
	require.NoError(t, f.set.Tickets.Transition(ctx, &claimed, TransitionGuard{Status: domain.TicketStatusOpen}))

	// A second writer still expecting OPEN loses.
	err := f.set.Tickets.Transition(ctx, &claimed, TransitionGuard{Status: domain.TicketStatusOpen})
	assert.ErrorIs(t, err, ErrStaleState)

	// Guarded on a different operator.
	stranger := uuid.NewString()
	resolvedAt := time.Now().UTC()
	resolved := claimed.Clone()
	resolved.Status = domain.TicketStatusResolved
	resolved.ResolvedAt = &resolvedAt
	err = f.set.Tickets.Transition(ctx, &resolved, TransitionGuard{Status: domain.TicketStatusInProgress, OperatorID: &stranger})
	assert.ErrorIs(t, err, ErrStaleState)

	got, err := f.set.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, got.Status)
	assert.True(t, got.AssignedTo(f.operator.ID))
	require.NotNil(t, got.AssignedAt)
}

func TestListWithFilterOrdersByCreation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	base := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	first := f.newTicket(t, base)
	second := f.newTicket(t, base.Add(time.Minute))
	third := f.newTicket(t, base.Add(2*time.Minute))

	cancelledAt := base.Add(3 * time.Minute)
	cancelled := second.Clone()
	cancelled.Status = domain.TicketStatusCancelled
	cancelled.CancelledAt = &cancelledAt
	require.NoError(t, f.set.Tickets.Transition(ctx, &cancelled, TransitionGuard{Status: domain.TicketStatusOpen}))

	desc, err := f.set.Tickets.ListWithFilter(ctx, TicketFilter{CustomerID: &f.customer.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ticketIDs(desc))

	open, err := f.set.Tickets.ListWithFilter(ctx, TicketFilter{
		Statuses: []domain.TicketStatus{domain.TicketStatusOpen},
		Order:    SortAscending,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{first.ID, third.ID}, ticketIDs(open))

	page, err := f.set.Tickets.ListWithFilter(ctx, TicketFilter{Order: SortAscending, Limit: 1, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ticketIDs(page))
}

func TestCategoryNameIsUnique(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	dup := domain.Category{ID: uuid.NewString(), Name: f.category.Name, Enabled: true, CreatedAt: now, UpdatedAt: now}
	err := f.set.Categories.Create(ctx, &dup)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestCategoryUpdateAndFilter(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	now := time.Now().UTC()

	network := domain.Category{ID: uuid.NewString(), Name: "Network", Enabled: true, CreatedAt: now, UpdatedAt: now}
	require.NoError(t, f.set.Categories.Create(ctx, &network))

	network.Enabled = false
	network.UpdatedAt = now.Add(time.Second)
	require.NoError(t, f.set.Categories.Update(ctx, &network))

	enabled := true
	list, err := f.set.Categories.List(ctx, CategoryFilter{Enabled: &enabled})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hardware", list[0].Name)

	byName, err := f.set.Categories.GetByName(ctx, "Network")
	require.NoError(t, err)
	assert.False(t, byName.Enabled)

	missing := domain.Category{ID: uuid.NewString(), Name: "Ghost", UpdatedAt: now}
	assert.ErrorIs(t, f.set.Categories.Update(ctx, &missing), ErrNotFound)
}

func TestAccountLookupsByEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	customer, err := f.set.Customers.GetByEmail(ctx, "ADA@example.com")
	require.NoError(t, err)
	assert.Equal(t, f.customer.ID, customer.ID)
	assert.Equal(t, "Ada Lovelace", customer.FullName())

	staff, err := f.set.Staff.GetByEmail(ctx, "otto@example.com")
	require.NoError(t, err)
	assert.Equal(t, domain.StaffRoleOperator, staff.Role)

	_, err = f.set.Staff.GetByEmail(ctx, "ada@example.com")
	assert.ErrorIs(t, err, ErrNotFound)

	role := domain.StaffRoleOperator
	operators, err := f.set.Staff.List(ctx, StaffFilter{Role: &role})
	require.NoError(t, err)
	assert.Len(t, operators, 1)
}

func ticketIDs(tickets []domain.Ticket) []string {
	ids := make([]string, 0, len(tickets))
	for _, ticket := range tickets {
		ids = append(ids, ticket.ID)
	}
	return ids
}

func TestTransitionIsConditionalOnAssignmentTime(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.newTicket(t, time.Now().UTC())

	assigned := time.Date(2024, 3, 1, 9, 0, 0, 123000, time.UTC)
	claimed := ticket.Clone()
	claimed.Status = domain.TicketStatusInProgress
	claimed.OperatorID = &f.operator.ID
	claimed.AssignedAt = &assigned
	require.NoError(t, f.set.Tickets.Transition(ctx, &claimed, TransitionGuard{Status: domain.TicketStatusOpen}))

	resolvedAt := assigned.Add(time.Hour)
	resolved := claimed.Clone()
	resolved.Status = domain.TicketStatusResolved
	resolved.ResolvedAt = &resolvedAt

	earlier := assigned.Add(-time.Minute)
	err := f.set.Tickets.Transition(ctx, &resolved, TransitionGuard{
		Status: domain.TicketStatusInProgress, OperatorID: &f.operator.ID, AssignedAt: &earlier,
	})
	assert.ErrorIs(t, err, ErrStaleState)

	require.NoError(t, f.set.Tickets.Transition(ctx, &resolved, TransitionGuard{
		Status: domain.TicketStatusInProgress, OperatorID: &f.operator.ID, AssignedAt: &assigned,
	}))
}

func TestTransitionToUnknownOperator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ticket := f.newTicket(t, time.Now().UTC())

	ghost := uuid.NewString()
	assigned := time.Now().UTC()
	claimed := ticket.Clone()
	claimed.Status = domain.TicketStatusInProgress
	claimed.OperatorID = &ghost
	claimed.AssignedAt = &assigned

	err := f.set.Tickets.Transition(ctx, &claimed, TransitionGuard{Status: domain.TicketStatusOpen})
	assert.ErrorIs(t, err, ErrMissingReference)
}
