package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/cache"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketView is a read-only projection of a ticket with its category name resolved.
type TicketView struct {
	Ticket       domain.Ticket
	CategoryName string
}

// TicketListOptions narrows customer and operator listings.
type TicketListOptions struct {
	Status *domain.TicketStatus
	Order  repository.SortOrder
}

// ParseTicketStatus maps a query value to a status. Blank means no filter.
func ParseTicketStatus(raw string) (*domain.TicketStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	status := domain.TicketStatus(strings.ToUpper(raw))
	if !status.Valid() {
		return nil, apperrors.NewValidationError("unknown ticket status", map[string]any{"status": raw})
	}
	return &status, nil
}

// TicketQueryService serves the read side: customer lists, the operator queue
// and an operator's assigned tickets.
type TicketQueryService struct {
	tickets    repository.TicketRepository
	categories repository.CategoryRepository
	queue      cache.QueueCache
	logger     *zap.Logger
}

// TicketQueryDependencies bundles collaborators for the query service.
type TicketQueryDependencies struct {
	TicketRepo   repository.TicketRepository
	CategoryRepo repository.CategoryRepository
	QueueCache   cache.QueueCache
	Logger       *zap.Logger
}

// NewTicketQueryService builds the service.
func NewTicketQueryService(deps TicketQueryDependencies) *TicketQueryService {
	queue := deps.QueueCache
	if queue == nil {
		queue = cache.NoopQueueCache{}
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketQueryService{
		tickets:    deps.TicketRepo,
		categories: deps.CategoryRepo,
		queue:      queue,
		logger:     logger,
	}
}

// ListCustomerTickets returns the customer's tickets by creation time, newest first by default.
func (s *TicketQueryService) ListCustomerTickets(ctx context.Context, customerID string, opts TicketListOptions) ([]TicketView, error) {
	filter := repository.TicketFilter{CustomerID: &customerID, Order: opts.Order}
	if filter.Order == "" {
		filter.Order = repository.SortDescending
	}
	if opts.Status != nil {
		filter.Statuses = []domain.TicketStatus{*opts.Status}
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return s.project(ctx, tickets)
}

// ListQueue returns OPEN tickets, oldest first.
func (s *TicketQueryService) ListQueue(ctx context.Context) ([]TicketView, error) {
	tickets, hit, err := s.queue.Get(ctx)
	if err != nil {
		s.logger.Warn("queue cache read failed", zap.Error(err))
	}
	if !hit {
		// read before the query so an invalidation during it discards this refill
		generation, genErr := s.queue.Generation(ctx)
		if genErr != nil {
			s.logger.Warn("queue cache generation read failed", zap.Error(genErr))
		}
		tickets, err = s.tickets.ListWithFilter(ctx, repository.TicketFilter{
			Statuses: []domain.TicketStatus{domain.TicketStatusOpen},
			Order:    repository.SortAscending,
		})
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		if genErr == nil {
			if err := s.queue.Set(ctx, generation, tickets); err != nil {
				s.logger.Warn("queue cache write failed", zap.Error(err))
			}
		}
	}
	return s.project(ctx, tickets)
}

// ListAssigned returns tickets attached to the operator, most recently assigned first.
func (s *TicketQueryService) ListAssigned(ctx context.Context, operatorID string, opts TicketListOptions) ([]TicketView, error) {
	filter := repository.TicketFilter{OperatorID: &operatorID, Order: repository.SortDescending}
	if opts.Status != nil {
		filter.Statuses = []domain.TicketStatus{*opts.Status}
	}
	tickets, err := s.tickets.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	sort.SliceStable(tickets, func(i, j int) bool {
		a, b := tickets[i].AssignedAt, tickets[j].AssignedAt
		if a == nil || b == nil {
			return a != nil
		}
		return a.After(*b)
	})
	return s.project(ctx, tickets)
}

// GetTicket returns one ticket projection.
func (s *TicketQueryService) GetTicket(ctx context.Context, ticketID string) (TicketView, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return TicketView{}, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return TicketView{}, apperrors.NewInternalError(err)
	}
	views, err := s.project(ctx, []domain.Ticket{*ticket})
	if err != nil {
		return TicketView{}, err
	}
	return views[0], nil
}

// GetAttachment returns the stored file of a ticket.
func (s *TicketQueryService) GetAttachment(ctx context.Context, ticketID string) (domain.Attachment, error) {
	att, err := s.tickets.GetAttachment(ctx, ticketID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return domain.Attachment{}, apperrors.NewNotFound("attachment", map[string]any{"ticket_id": ticketID})
		}
		return domain.Attachment{}, apperrors.NewInternalError(err)
	}
	return *att, nil
}

// InvalidateQueue drops the cached queue snapshot.
func (s *TicketQueryService) InvalidateQueue(ctx context.Context) error {
	return s.queue.Invalidate(ctx)
}

func (s *TicketQueryService) project(ctx context.Context, tickets []domain.Ticket) ([]TicketView, error) {
	views := make([]TicketView, 0, len(tickets))
	if len(tickets) == 0 {
		return views, nil
	}
	categories, err := s.categories.List(ctx, repository.CategoryFilter{})
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	names := make(map[string]string, len(categories))
	for _, category := range categories {
		names[category.ID] = category.Name
	}
	for _, ticket := range tickets {
		views = append(views, TicketView{Ticket: ticket.Clone(), CategoryName: names[ticket.CategoryID]})
	}
	return views, nil
}
