package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/attachment"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

const maxBodyRunes = 2000

var titlePattern = regexp.MustCompile(`^[a-zA-Z0-9À-ÿ '‘".,!?-]{5,100}$`)

// CategoryGate answers whether new tickets may be filed under a category.
type CategoryGate interface {
	IsCreatable(ctx context.Context, categoryID string) (bool, error)
}

// TicketService is the ticket lifecycle engine. Every operation returns a
// snapshot the caller owns; the next call is made with the ticket id.
type TicketService struct {
	tickets    repository.TicketRepository
	categories CategoryGate
	validator  attachment.Validator
	dispatcher events.Dispatcher
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Categories CategoryGate
	Validator  attachment.Validator
	Dispatcher events.Dispatcher
	Clock      func() time.Time
}

// AttachmentInput is an uploaded file. Empty content counts as no attachment.
type AttachmentInput struct {
	FileName string
	Content  []byte
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title      string
	Body       string
	CategoryID string
	Attachment *AttachmentInput
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		categories: deps.Categories,
		validator:  deps.Validator,
		dispatcher: deps.Dispatcher,
		now:        clock,
	}
}

// Create files a new OPEN ticket for the customer. Nothing is stored when a check fails.
func (s *TicketService) Create(ctx context.Context, customerID string, input TicketCreateInput) (domain.Ticket, error) {
	creatable, err := s.categories.IsCreatable(ctx, input.CategoryID)
	if err != nil {
		return domain.Ticket{}, apperrors.MapError(err)
	}
	if !creatable {
		return domain.Ticket{}, apperrors.NewInvalidCategory("category is missing or disabled",
			map[string]any{"category_id": input.CategoryID})
	}

	title := strings.TrimSpace(input.Title)
	if !titlePattern.MatchString(title) {
		return domain.Ticket{}, apperrors.NewInvalidTitle("title must be 5-100 letters, digits, spaces or basic punctuation")
	}
	body := strings.TrimSpace(input.Body)
	if body == "" || utf8.RuneCountInString(body) > maxBodyRunes {
		return domain.Ticket{}, apperrors.NewInvalidBody("body must be non-empty and at most 2000 characters")
	}

	var att *domain.Attachment
	if input.Attachment != nil && len(input.Attachment.Content) > 0 {
		size := int64(len(input.Attachment.Content))
		if err := s.validator.Validate(input.Attachment.FileName, size); err != nil {
			return domain.Ticket{}, attachmentError(err)
		}
		att = &domain.Attachment{
			FileName:  strings.TrimSpace(input.Attachment.FileName),
			SizeBytes: size,
			Content:   input.Attachment.Content,
		}
	}

	ticket := domain.Ticket{
		ID:          uuid.NewString(),
		ExternalKey: generateTicketKey(),
		CustomerID:  customerID,
		CategoryID:  input.CategoryID,
		Title:       title,
		Body:        body,
		Attachment:  att,
		Status:      domain.TicketStatusOpen,
		CreatedAt:   s.timestamp(),
	}
	if err := s.tickets.Create(ctx, &ticket); err != nil {
		return domain.Ticket{}, apperrors.NewInternalError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    customerActor(customerID),
		Payload: events.TicketCreatedPayload{
			ExternalKey:   ticket.ExternalKey,
			CategoryID:    ticket.CategoryID,
			Title:         ticket.Title,
			HasAttachment: att != nil,
		},
	})

	snapshot := ticket.Clone()
	if snapshot.Attachment != nil {
		snapshot.Attachment.Content = nil
	}
	return snapshot, nil
}

// Cancel moves an OPEN ticket to CANCELLED.
func (s *TicketService) Cancel(ctx context.Context, ticketID string) (domain.Ticket, error) {
	return s.cancel(ctx, ticketID, nil)
}

// CancelOwned cancels on behalf of a customer, who must own the ticket.
func (s *TicketService) CancelOwned(ctx context.Context, ticketID, customerID string) (domain.Ticket, error) {
	return s.cancel(ctx, ticketID, &customerID)
}

func (s *TicketService) cancel(ctx context.Context, ticketID string, customerID *string) (domain.Ticket, error) {
	var actor events.Actor
	if customerID != nil {
		actor = customerActor(*customerID)
	}
	return s.transition(ctx, ticketID, transitionPlan{
		verb:  "cancel",
		event: events.EventTicketCancelled,
		from:  domain.TicketStatusOpen,
		actor: actor,
		authorize: func(t *domain.Ticket) error {
			if customerID != nil && t.CustomerID != *customerID {
				return apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
			}
			return nil
		},
		apply: func(t *domain.Ticket, now time.Time) {
			t.Status = domain.TicketStatusCancelled
			t.CancelledAt = &now
		},
	})
}

// transitionPlan describes one guarded status change.
type transitionPlan struct {
	verb  string
	event events.EventType
	from  domain.TicketStatus
	actor events.Actor
	// authorize runs before the state check.
	authorize func(*domain.Ticket) error
	// operatorID, when set, must be the ticket's current operator.
	operatorID *string
	check      func(*domain.Ticket) error
	apply      func(*domain.Ticket, time.Time)
}

// transition loads the ticket to tell a missing ticket from a wrong state,
// then writes conditionally so a concurrent change makes this call lose.
func (s *TicketService) transition(ctx context.Context, ticketID string, plan transitionPlan) (domain.Ticket, error) {
	current, err := s.loadTicket(ctx, ticketID)
	if err != nil {
		return domain.Ticket{}, err
	}
	if plan.authorize != nil {
		if err := plan.authorize(current); err != nil {
			return domain.Ticket{}, err
		}
	}
	if current.Status != plan.from {
		return domain.Ticket{}, invalidState(plan.verb, current.Status, plan.from)
	}
	if plan.operatorID != nil && !current.AssignedTo(*plan.operatorID) {
		return domain.Ticket{}, apperrors.NewForbidden("ticket is assigned to another operator")
	}
	if plan.check != nil {
		if err := plan.check(current); err != nil {
			return domain.Ticket{}, err
		}
	}

	next := current.Clone()
	plan.apply(&next, s.timestamp())

	// The loaded assignment must still hold, so a release and re-claim
	// between the read and the write makes this call lose.
	guard := repository.TransitionGuard{
		Status:     plan.from,
		OperatorID: current.OperatorID,
		AssignedAt: current.AssignedAt,
	}
	if err := s.tickets.Transition(ctx, &next, guard); err != nil {
		switch {
		case errors.Is(err, repository.ErrStaleState):
			return domain.Ticket{}, apperrors.NewInvalidState(
				"ticket changed concurrently; refresh and retry",
				map[string]any{"ticket_id": ticketID, "operation": plan.verb},
			)
		case errors.Is(err, repository.ErrMissingReference), errors.Is(err, repository.ErrNotFound):
			if next.OperatorID != nil {
				return domain.Ticket{}, apperrors.NewNotFound("operator", map[string]any{"operator_id": *next.OperatorID})
			}
		}
		return domain.Ticket{}, apperrors.NewInternalError(err)
	}

	operatorID := next.OperatorID
	if operatorID == nil {
		operatorID = current.OperatorID
	}
	s.publishEvent(ctx, events.Event{
		Type:     plan.event,
		TicketID: next.ID,
		Actor:    plan.actor,
		Payload: events.TicketTransitionPayload{
			From:       plan.from,
			To:         next.Status,
			OperatorID: operatorID,
		},
	})
	return next.Clone(), nil
}

func (s *TicketService) loadTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.NewInternalError(err)
	}
	return ticket, nil
}

// timestamp is truncated to what both stores can round-trip.
func (s *TicketService) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func invalidState(verb string, current, required domain.TicketStatus) error {
	return apperrors.NewInvalidState(
		"cannot "+verb+" a ticket in status "+string(current),
		map[string]any{"status": current, "required_status": required},
	)
}

func attachmentError(err error) error {
	var attErr *attachment.Error
	if errors.As(err, &attErr) {
		return apperrors.NewInvalidAttachment(attErr.Error(), map[string]any{
			"reason":    string(attErr.Reason),
			"file_name": attErr.FileName,
			"max_bytes": attErr.MaxBytes,
		})
	}
	return apperrors.NewInvalidAttachment(err.Error(), nil)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func customerActor(customerID string) events.Actor {
	return events.Actor{
		Type:       domain.SubjectTypeCustomer,
		CustomerID: &customerID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}
