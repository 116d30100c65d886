package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusCancelled  TicketStatus = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved, TicketStatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusResolved || s == TicketStatusCancelled
}

// Attachment is the optional file a customer uploads with a ticket.
// Content is only populated when the attachment is explicitly fetched.
type Attachment struct {
	FileName  string
	SizeBytes int64
	Content   []byte
}

// Ticket is the aggregate for support requests.
type Ticket struct {
	ID          string
	ExternalKey string
	CustomerID  string
	CategoryID  string
	OperatorID  *string
	Title       string
	Body        string
	Attachment  *Attachment
	Status      TicketStatus
	CreatedAt   time.Time
	AssignedAt  *time.Time
	CancelledAt *time.Time
	ResolvedAt  *time.Time
}

// Clone returns a deep copy so callers never share mutable state with the store.
func (t Ticket) Clone() Ticket {
	out := t
	out.OperatorID = cloneString(t.OperatorID)
	out.AssignedAt = cloneTime(t.AssignedAt)
	out.CancelledAt = cloneTime(t.CancelledAt)
	out.ResolvedAt = cloneTime(t.ResolvedAt)
	if t.Attachment != nil {
		att := *t.Attachment
		if t.Attachment.Content != nil {
			att.Content = append([]byte(nil), t.Attachment.Content...)
		}
		out.Attachment = &att
	}
	return out
}

// AssignedTo reports whether the ticket is attached to the given operator.
func (t Ticket) AssignedTo(operatorID string) bool {
	return t.OperatorID != nil && *t.OperatorID == operatorID
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneTime(v *time.Time) *time.Time {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
