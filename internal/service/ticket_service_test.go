package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

func countTickets(t *testing.T, h *harness) int {
	t.Helper()
	tickets, err := h.repos.Tickets.ListWithFilter(context.Background(), repository.TicketFilter{})
	require.NoError(t, err)
	return len(tickets)
}

func TestCreateOpensTicket(t *testing.T) {
	h := newHarness(t, nil)

	ticket, err := h.tickets.Create(context.Background(), h.customer.ID, TicketCreateInput{
		Title:      "  Printer not working  ",
		Body:       "It prints blank pages.",
		CategoryID: h.hardware.ID,
		Attachment: &AttachmentInput{FileName: "log.txt", Content: []byte("paper jam")},
	})
	require.NoError(t, err)

	assert.Equal(t, "Printer not working", ticket.Title)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.Regexp(t, `^TCK-[0-9A-F]{8}$`, ticket.ExternalKey)
	assert.False(t, ticket.CreatedAt.IsZero())
	assert.Nil(t, ticket.OperatorID)
	assert.Nil(t, ticket.AssignedAt)
	assert.Nil(t, ticket.CancelledAt)
	assert.Nil(t, ticket.ResolvedAt)
	require.NotNil(t, ticket.Attachment)
	assert.Equal(t, int64(9), ticket.Attachment.SizeBytes)
	assert.Nil(t, ticket.Attachment.Content)

	att, err := h.queries.GetAttachment(context.Background(), ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("paper jam"), att.Content)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, h.recorder.types())
}

func TestCreateEmptyAttachmentIsIgnored(t *testing.T) {
	h := newHarness(t, nil)

	ticket, err := h.tickets.Create(context.Background(), h.customer.ID, TicketCreateInput{
		Title:      "Screen flickers",
		Body:       "Since Monday.",
		CategoryID: h.hardware.ID,
		Attachment: &AttachmentInput{FileName: "empty.exe"},
	})
	require.NoError(t, err)
	assert.Nil(t, ticket.Attachment)
}

func TestCreateRejectsInvalidInput(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	disabled, err := h.categories.Add(ctx, "Billing")
	require.NoError(t, err)
	_, err = h.categories.Disable(ctx, disabled.ID)
	require.NoError(t, err)

	valid := TicketCreateInput{Title: "Printer not working", Body: "Blank pages.", CategoryID: h.hardware.ID}

	tests := []struct {
		name   string
		mutate func(*TicketCreateInput)
		want   error
	}{
		{"disabled category", func(in *TicketCreateInput) { in.CategoryID = disabled.ID }, apperrors.ErrInvalidCategory},
		{"missing category", func(in *TicketCreateInput) { in.CategoryID = "does-not-exist" }, apperrors.ErrInvalidCategory},
		{"short title", func(in *TicketCreateInput) { in.Title = "Help" }, apperrors.ErrInvalidTitle},
		{"title with markup", func(in *TicketCreateInput) { in.Title = "<b>broken</b>" }, apperrors.ErrInvalidTitle},
		{"long title", func(in *TicketCreateInput) { in.Title = strings.Repeat("a", 101) }, apperrors.ErrInvalidTitle},
		{"blank body", func(in *TicketCreateInput) { in.Body = "   " }, apperrors.ErrInvalidBody},
		{"long body", func(in *TicketCreateInput) { in.Body = strings.Repeat("é", 2001) }, apperrors.ErrInvalidBody},
		{"bad extension", func(in *TicketCreateInput) {
			in.Attachment = &AttachmentInput{FileName: "run.exe", Content: []byte("MZ")}
		}, apperrors.ErrInvalidAttachment},
		{"oversized attachment", func(in *TicketCreateInput) {
			in.Attachment = &AttachmentInput{FileName: "dump.zip", Content: make([]byte, 1025)}
		}, apperrors.ErrInvalidAttachment},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := valid
			tt.mutate(&input)

			_, err := h.tickets.Create(ctx, h.customer.ID, input)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.Zero(t, countTickets(t, h))
	assert.Empty(t, h.recorder.types())
}

func TestCreateAcceptsBoundaries(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.tickets.Create(context.Background(), h.customer.ID, TicketCreateInput{
		Title:      strings.Repeat("a", 100),
		Body:       strings.Repeat("é", 2000),
		CategoryID: h.hardware.ID,
		Attachment: &AttachmentInput{FileName: "DUMP.ZIP", Content: make([]byte, 1024)},
	})
	require.NoError(t, err)
}

func TestOversizedAttachmentReportsReason(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.tickets.Create(context.Background(), h.customer.ID, TicketCreateInput{
		Title:      "Printer not working",
		Body:       "Blank pages.",
		CategoryID: h.hardware.ID,
		Attachment: &AttachmentInput{FileName: "dump.zip", Content: make([]byte, 2048)},
	})

	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "size_exceeded", domainErr.Details["reason"])
}

func TestCancel(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	cancelled, err := h.tickets.Cancel(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelledAt)
	assert.Equal(t, ticket.CreatedAt, cancelled.CreatedAt)

	_, err = h.tickets.Cancel(ctx, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = h.tickets.Cancel(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestCancelOwnedHidesOtherCustomersTickets(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	_, err := h.tickets.CancelOwned(ctx, ticket.ID, "someone-else")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	cancelled, err := h.tickets.CancelOwned(ctx, ticket.ID, h.customer.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusCancelled, cancelled.Status)
}

func TestCannotCancelClaimedTicket(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	_, err := h.tickets.Claim(ctx, ticket.ID, h.operator)
	require.NoError(t, err)

	_, err = h.tickets.Cancel(ctx, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestClaimRequiresOperator(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	_, err := h.tickets.Claim(ctx, ticket.ID, nil)
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperator)

	_, err = h.tickets.Claim(ctx, ticket.ID, &domain.StaffMember{ID: "  "})
	assert.ErrorIs(t, err, apperrors.ErrInvalidOperator)

	_, err = h.tickets.Claim(ctx, "missing", h.operator)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestConcurrentClaimsHaveOneWinner(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	const contenders = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []string
		losers  int
	)
	for i := 0; i < contenders; i++ {
		operator := h.operator
		if i%2 == 1 {
			operator = h.operator2
		}
		wg.Add(1)
		go func(op *domain.StaffMember) {
			defer wg.Done()
			claimed, err := h.tickets.Claim(ctx, ticket.ID, op)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				assert.ErrorIs(t, err, apperrors.ErrInvalidState)
				losers++
				return
			}
			winners = append(winners, *claimed.OperatorID)
		}(operator)
	}
	wg.Wait()

	require.Len(t, winners, 1)
	assert.Equal(t, contenders-1, losers)

	stored, err := h.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
	assert.True(t, stored.AssignedTo(winners[0]))
}

func TestClaimReleaseClaim(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	claimed, err := h.tickets.Claim(ctx, ticket.ID, h.operator)
	require.NoError(t, err)
	assert.True(t, claimed.AssignedTo(h.operator.ID))
	require.NotNil(t, claimed.AssignedAt)

	released, err := h.tickets.Release(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, released.Status)
	assert.Nil(t, released.OperatorID)
	assert.Nil(t, released.AssignedAt)

	reclaimed, err := h.tickets.Claim(ctx, ticket.ID, h.operator2)
	require.NoError(t, err)
	assert.True(t, reclaimed.AssignedTo(h.operator2.ID))
	assert.True(t, reclaimed.AssignedAt.After(*claimed.AssignedAt))

	_, err = h.tickets.Release(ctx, h.openTicket(t, "Another open ticket").ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)
}

func TestResolveIsTerminal(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	_, err := h.tickets.Resolve(ctx, ticket.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	_, err = h.tickets.Claim(ctx, ticket.ID, h.operator)
	require.NoError(t, err)

	resolved, err := h.tickets.Resolve(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
	assert.True(t, resolved.AssignedTo(h.operator.ID))
	require.NotNil(t, resolved.ResolvedAt)

	for name, op := range map[string]func() error{
		"cancel":  func() error { _, err := h.tickets.Cancel(ctx, ticket.ID); return err },
		"claim":   func() error { _, err := h.tickets.Claim(ctx, ticket.ID, h.operator2); return err },
		"resolve": func() error { _, err := h.tickets.Resolve(ctx, ticket.ID); return err },
		"release": func() error { _, err := h.tickets.Release(ctx, ticket.ID); return err },
	} {
		assert.ErrorIs(t, op(), apperrors.ErrInvalidState, name)
	}
}

func TestAssignedOperatorGuards(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	_, err := h.tickets.Claim(ctx, ticket.ID, h.operator)
	require.NoError(t, err)

	_, err = h.tickets.ResolveAssigned(ctx, ticket.ID, h.operator2.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
	_, err = h.tickets.ReleaseAssigned(ctx, ticket.ID, h.operator2.ID)
	assert.ErrorIs(t, err, apperrors.ErrForbidden)

	resolved, err := h.tickets.ResolveAssigned(ctx, ticket.ID, h.operator.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, resolved.Status)
}

func TestSnapshotsAreDetached(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	claimed, err := h.tickets.Claim(ctx, ticket.ID, h.operator)
	require.NoError(t, err)
	*claimed.OperatorID = "tampered"

	stored, err := h.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.True(t, stored.AssignedTo(h.operator.ID))
}

func TestPrinterScenario(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()

	ticket, err := h.tickets.Create(ctx, h.customer.ID, TicketCreateInput{
		Title:      "Printer not working",
		Body:       "The office printer on floor 2 prints blank pages.",
		CategoryID: h.hardware.ID,
	})
	require.NoError(t, err)

	queue, err := h.queries.ListQueue(ctx)
	require.NoError(t, err)
	require.Len(t, queue, 1)
	assert.Equal(t, "Hardware", queue[0].CategoryName)

	_, err = h.tickets.Claim(ctx, ticket.ID, h.operator)
	require.NoError(t, err)

	queue, err = h.queries.ListQueue(ctx)
	require.NoError(t, err)
	assert.Empty(t, queue)

	_, err = h.tickets.Claim(ctx, ticket.ID, h.operator2)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	resolved, err := h.tickets.ResolveAssigned(ctx, ticket.ID, h.operator.ID)
	require.NoError(t, err)
	assert.True(t, resolved.ResolvedAt.After(*resolved.AssignedAt))

	mine, err := h.queries.ListCustomerTickets(ctx, h.customer.ID, TicketListOptions{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, domain.TicketStatusResolved, mine[0].Ticket.Status)

	assert.Equal(t, []events.EventType{
		events.EventTicketCreated,
		events.EventTicketClaimed,
		events.EventTicketResolved,
	}, h.recorder.types())
}

// interleavingTickets runs hook once, right after the first GetByID returns.
type interleavingTickets struct {
	repository.TicketRepository
	once sync.Once
	hook func()
}

func (r *interleavingTickets) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := r.TicketRepository.GetByID(ctx, id)
	r.once.Do(r.hook)
	return ticket, err
}

func TestTransitionLosesToReleaseAndReclaim(t *testing.T) {
	for name, finish := range map[string]func(*TicketService, string) (domain.Ticket, error){
		"resolve": func(s *TicketService, id string) (domain.Ticket, error) { return s.Resolve(context.Background(), id) },
		"release": func(s *TicketService, id string) (domain.Ticket, error) { return s.Release(context.Background(), id) },
	} {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t, nil)
			ctx := context.Background()
			ticket := h.openTicket(t, "Printer not working")

			_, err := h.tickets.Claim(ctx, ticket.ID, h.operator)
			require.NoError(t, err)

			racing := NewTicketService(TicketDependencies{
				TicketRepo: &interleavingTickets{
					TicketRepository: h.repos.Tickets,
					hook: func() {
						_, err := h.tickets.Release(ctx, ticket.ID)
						require.NoError(t, err)
						_, err = h.tickets.Claim(ctx, ticket.ID, h.operator2)
						require.NoError(t, err)
					},
				},
				Categories: h.categories,
			})

			_, err = finish(racing, ticket.ID)
			assert.ErrorIs(t, err, apperrors.ErrInvalidState)

			stored, err := h.repos.Tickets.GetByID(ctx, ticket.ID)
			require.NoError(t, err)
			assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
			assert.True(t, stored.AssignedTo(h.operator2.ID))
		})
	}
}

func TestTransitionLosesToSameOperatorReclaim(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	_, err := h.tickets.Claim(ctx, ticket.ID, h.operator)
	require.NoError(t, err)

	var reclaimed domain.Ticket
	racing := NewTicketService(TicketDependencies{
		TicketRepo: &interleavingTickets{
			TicketRepository: h.repos.Tickets,
			hook: func() {
				_, err := h.tickets.Release(ctx, ticket.ID)
				require.NoError(t, err)
				reclaimed, err = h.tickets.Claim(ctx, ticket.ID, h.operator)
				require.NoError(t, err)
			},
		},
		Categories: h.categories,
	})

	_, err = racing.ResolveAssigned(ctx, ticket.ID, h.operator.ID)
	assert.ErrorIs(t, err, apperrors.ErrInvalidState)

	stored, err := h.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, stored.Status)
	assert.Equal(t, *reclaimed.AssignedAt, *stored.AssignedAt)
}

func TestClaimByUnknownOperator(t *testing.T) {
	h := newHarness(t, nil)
	ctx := context.Background()
	ticket := h.openTicket(t, "Printer not working")

	_, err := h.tickets.Claim(ctx, ticket.ID, &domain.StaffMember{ID: "no-such-operator"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	stored, err := h.repos.Tickets.GetByID(ctx, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusOpen, stored.Status)
}
