package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// QueueInvalidator drops cached queue snapshots.
type QueueInvalidator interface {
	InvalidateQueue(ctx context.Context) error
}

// TicketActivityService reacts to lifecycle events: it logs them, counts them
// and keeps the cached operator queue consistent.
type TicketActivityService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	queue      QueueInvalidator
}

// NewTicketActivityService creates the service.
func NewTicketActivityService(dispatcher events.Dispatcher, logger *zap.Logger, metrics *observability.Metrics, queue QueueInvalidator) *TicketActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketActivityService{
		dispatcher: dispatcher,
		logger:     logger,
		metrics:    metrics,
		queue:      queue,
	}
}

// RegisterHandlers subscribes to every lifecycle event.
func (a *TicketActivityService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	for _, eventType := range events.LifecycleEvents {
		a.dispatcher.Subscribe(eventType, a.handle)
	}
}

func (a *TicketActivityService) handle(ctx context.Context, event events.Event) error {
	a.logger.Info("ticket activity",
		zap.String("event_type", string(event.Type)),
		zap.String("event_id", event.ID),
		zap.String("ticket_id", event.TicketID),
		zap.String("actor_type", string(event.Actor.Type)),
		zap.Any("payload", event.Payload))
	a.metrics.RecordTransition(string(event.Type))

	if a.queue == nil || !changesQueue(event.Type) {
		return nil
	}
	return a.queue.InvalidateQueue(ctx)
}

// changesQueue reports whether the event adds or removes an OPEN ticket.
func changesQueue(eventType events.EventType) bool {
	switch eventType {
	case events.EventTicketCreated, events.EventTicketCancelled,
		events.EventTicketClaimed, events.EventTicketReleased:
		return true
	}
	return false
}
