package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated   EventType = "ticket_created"
	EventTicketCancelled EventType = "ticket_cancelled"
	EventTicketClaimed   EventType = "ticket_claimed"
	EventTicketResolved  EventType = "ticket_resolved"
	EventTicketReleased  EventType = "ticket_released"
)

// LifecycleEvents lists every event the ticket engine emits.
var LifecycleEvents = []EventType{
	EventTicketCreated,
	EventTicketCancelled,
	EventTicketClaimed,
	EventTicketResolved,
	EventTicketReleased,
}

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type       domain.SubjectType `json:"type"`
	CustomerID *string            `json:"customer_id,omitempty"`
	StaffID    *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	TicketID  string    `json:"ticket_id"`
	Actor     Actor     `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	ExternalKey   string `json:"external_key"`
	CategoryID    string `json:"category_id"`
	Title         string `json:"title"`
	HasAttachment bool   `json:"has_attachment"`
}

// TicketTransitionPayload describes a status change.
type TicketTransitionPayload struct {
	From       domain.TicketStatus `json:"from"`
	To         domain.TicketStatus `json:"to"`
	OperatorID *string             `json:"operator_id,omitempty"`
}
