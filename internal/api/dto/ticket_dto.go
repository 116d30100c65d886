package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest carries the non-file fields of POST /tickets. The
// attachment travels as the multipart part "attachment".
type CreateTicketRequest struct {
	Title      string `json:"title" form:"title"`
	Body       string `json:"body" form:"body"`
	CategoryID string `json:"category_id" form:"category_id"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
}

// TicketResponse is the public shape of a ticket.
type TicketResponse struct {
	ID           string              `json:"id"`
	ExternalKey  string              `json:"external_key"`
	Title        string              `json:"title"`
	Body         string              `json:"body"`
	Status       domain.TicketStatus `json:"status"`
	CategoryID   string              `json:"category_id"`
	CategoryName string              `json:"category_name,omitempty"`
	CustomerID   string              `json:"customer_id"`
	OperatorID   *string             `json:"operator_id"`
	Attachment   *AttachmentResponse `json:"attachment"`
	CreatedAt    time.Time           `json:"created_at"`
	AssignedAt   *time.Time          `json:"assigned_at"`
	CancelledAt  *time.Time          `json:"cancelled_at"`
	ResolvedAt   *time.Time          `json:"resolved_at"`
}
