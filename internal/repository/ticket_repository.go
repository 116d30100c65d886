package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// SortOrder controls creation-time ordering of ticket lists.
type SortOrder string

const (
	SortAscending  SortOrder = "asc"
	SortDescending SortOrder = "desc"
)

// ParseSortOrder maps free-form input to a SortOrder, defaulting to descending.
func ParseSortOrder(raw string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(raw), string(SortAscending)) {
		return SortAscending
	}
	return SortDescending
}

// TicketFilter captures list parameters. Zero values mean "no constraint".
type TicketFilter struct {
	CustomerID *string
	OperatorID *string
	CategoryID *string
	Statuses   []domain.TicketStatus
	Order      SortOrder
	Limit      int
	Offset     int
}

// TransitionGuard is the stored state a transition is conditional on.
// Nil OperatorID and AssignedAt leave the assignment unconstrained.
type TransitionGuard struct {
	Status     domain.TicketStatus
	OperatorID *string
	AssignedAt *time.Time
}

// TicketRepository encapsulates ticket persistence. It owns no business rules.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetAttachment(ctx context.Context, id string) (*domain.Attachment, error)
	// Transition writes the lifecycle fields of ticket only if the stored row
	// still satisfies guard. It returns ErrStaleState when no row matched.
	Transition(ctx context.Context, ticket *domain.Ticket, guard TransitionGuard) error
	ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
}

const ticketColumns = `id, external_key, customer_id, category_id, operator_id, title, body,
        attachment_name, attachment_size, status, created_at, assigned_at, cancelled_at, resolved_at`

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates the Postgres repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (id, external_key, customer_id, category_id, operator_id, title, body,
            attachment_name, attachment_size, attachment_data, status, created_at, assigned_at, cancelled_at, resolved_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15)`
	name, size, data := attachmentColumns(ticket.Attachment)
	_, err := r.pool.Exec(ctx, query,
		ticket.ID,
		ticket.ExternalKey,
		ticket.CustomerID,
		ticket.CategoryID,
		ticket.OperatorID,
		ticket.Title,
		ticket.Body,
		name,
		size,
		data,
		ticket.Status,
		ticket.CreatedAt,
		ticket.AssignedAt,
		ticket.CancelledAt,
		ticket.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", mapPostgresError(err))
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id=$1`
	ticket, err := scanPostgresTicket(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, mapPostgresError(err)
	}
	return ticket, nil
}

func (r *ticketRepository) GetAttachment(ctx context.Context, id string) (*domain.Attachment, error) {
	const query = `SELECT attachment_name, attachment_size, attachment_data FROM tickets WHERE id=$1`
	var (
		name *string
		size *int64
		data []byte
	)
	if err := r.pool.QueryRow(ctx, query, id).Scan(&name, &size, &data); err != nil {
		return nil, mapPostgresError(err)
	}
	if name == nil {
		return nil, ErrNotFound
	}
	att := &domain.Attachment{FileName: *name, Content: data}
	if size != nil {
		att.SizeBytes = *size
	}
	return att, nil
}

func (r *ticketRepository) Transition(ctx context.Context, ticket *domain.Ticket, guard TransitionGuard) error {
	query := `
        UPDATE tickets SET status=$1, operator_id=$2, assigned_at=$3, cancelled_at=$4, resolved_at=$5
        WHERE id=$6 AND status=$7`
	args := []any{
		ticket.Status,
		ticket.OperatorID,
		ticket.AssignedAt,
		ticket.CancelledAt,
		ticket.ResolvedAt,
		ticket.ID,
		guard.Status,
	}
	if guard.OperatorID != nil {
		args = append(args, *guard.OperatorID)
		query += fmt.Sprintf(" AND operator_id=$%d", len(args))
	}
	if guard.AssignedAt != nil {
		args = append(args, *guard.AssignedAt)
		query += fmt.Sprintf(" AND assigned_at=$%d", len(args))
	}
	cmd, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition ticket: %w", mapPostgresError(err))
	}
	if cmd.RowsAffected() == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *ticketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		clauses = append(clauses, fmt.Sprintf("customer_id=$%d", len(args)))
	}
	if filter.OperatorID != nil {
		args = append(args, *filter.OperatorID)
		clauses = append(clauses, fmt.Sprintf("operator_id=$%d", len(args)))
	}
	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		clauses = append(clauses, fmt.Sprintf("category_id=$%d", len(args)))
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			args = append(args, status)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		clauses = append(clauses, fmt.Sprintf("status IN (%s)", strings.Join(placeholders, ",")))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s %s`,
		ticketColumns, strings.Join(clauses, " AND "), orderAndPage(filter))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanPostgresTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanPostgresTicket(row pgx.Row) (*domain.Ticket, error) {
	var (
		ticket         domain.Ticket
		attachmentName *string
		attachmentSize *int64
		createdAt      time.Time
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.CustomerID,
		&ticket.CategoryID,
		&ticket.OperatorID,
		&ticket.Title,
		&ticket.Body,
		&attachmentName,
		&attachmentSize,
		&ticket.Status,
		&createdAt,
		&ticket.AssignedAt,
		&ticket.CancelledAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	ticket.CreatedAt = createdAt
	ticket.Attachment = attachmentMeta(attachmentName, attachmentSize)
	return &ticket, nil
}

// orderAndPage renders the ORDER BY / LIMIT tail shared by both drivers.
func orderAndPage(filter TicketFilter) string {
	direction := "DESC"
	if filter.Order == SortAscending {
		direction = "ASC"
	}
	tail := fmt.Sprintf("ORDER BY created_at %s, id %s", direction, direction)
	if filter.Limit > 0 {
		offset := filter.Offset
		if offset < 0 {
			offset = 0
		}
		tail += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, offset)
	}
	return tail
}

func attachmentColumns(att *domain.Attachment) (*string, *int64, []byte) {
	if att == nil {
		return nil, nil, nil
	}
	name := att.FileName
	size := att.SizeBytes
	if size == 0 {
		size = int64(len(att.Content))
	}
	return &name, &size, att.Content
}

func attachmentMeta(name *string, size *int64) *domain.Attachment {
	if name == nil {
		return nil
	}
	att := &domain.Attachment{FileName: *name}
	if size != nil {
		att.SizeBytes = *size
	}
	return att
}
