package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// Claim hands an OPEN ticket to the operator. When operators race for the same
// ticket exactly one succeeds; the others get INVALID_STATE.
func (s *TicketService) Claim(ctx context.Context, ticketID string, operator *domain.StaffMember) (domain.Ticket, error) {
	var (
		operatorID string
		actor      events.Actor
	)
	if operator != nil {
		operatorID = strings.TrimSpace(operator.ID)
		actor = staffActor(operatorID)
	}
	return s.transition(ctx, ticketID, transitionPlan{
		verb:  "claim",
		event: events.EventTicketClaimed,
		from:  domain.TicketStatusOpen,
		actor: actor,
		check: func(*domain.Ticket) error {
			if operatorID == "" {
				return apperrors.NewInvalidOperator("an operator is required to claim a ticket")
			}
			return nil
		},
		apply: func(t *domain.Ticket, now time.Time) {
			t.Status = domain.TicketStatusInProgress
			t.OperatorID = &operatorID
			t.AssignedAt = &now
		},
	})
}

// Resolve closes an IN_PROGRESS ticket. The operator stays attached.
func (s *TicketService) Resolve(ctx context.Context, ticketID string) (domain.Ticket, error) {
	return s.transition(ctx, ticketID, resolvePlan(nil))
}

// ResolveAssigned resolves only if operatorID is the ticket's current operator.
func (s *TicketService) ResolveAssigned(ctx context.Context, ticketID, operatorID string) (domain.Ticket, error) {
	return s.transition(ctx, ticketID, resolvePlan(&operatorID))
}

// Release returns an IN_PROGRESS ticket to the queue, detaching its operator
// and clearing the assignment time.
func (s *TicketService) Release(ctx context.Context, ticketID string) (domain.Ticket, error) {
	return s.transition(ctx, ticketID, releasePlan(nil))
}

// ReleaseAssigned releases only if operatorID is the ticket's current operator.
func (s *TicketService) ReleaseAssigned(ctx context.Context, ticketID, operatorID string) (domain.Ticket, error) {
	return s.transition(ctx, ticketID, releasePlan(&operatorID))
}

func resolvePlan(operatorID *string) transitionPlan {
	return transitionPlan{
		verb:       "resolve",
		event:      events.EventTicketResolved,
		from:       domain.TicketStatusInProgress,
		actor:      optionalStaffActor(operatorID),
		operatorID: operatorID,
		apply: func(t *domain.Ticket, now time.Time) {
			t.Status = domain.TicketStatusResolved
			t.ResolvedAt = &now
		},
	}
}

func releasePlan(operatorID *string) transitionPlan {
	return transitionPlan{
		verb:       "release",
		event:      events.EventTicketReleased,
		from:       domain.TicketStatusInProgress,
		actor:      optionalStaffActor(operatorID),
		operatorID: operatorID,
		apply: func(t *domain.Ticket, _ time.Time) {
			t.Status = domain.TicketStatusOpen
			t.OperatorID = nil
			t.AssignedAt = nil
		},
	}
}

func optionalStaffActor(staffID *string) events.Actor {
	if staffID == nil {
		return events.Actor{Type: domain.SubjectTypeStaff}
	}
	return staffActor(*staffID)
}
