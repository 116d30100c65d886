package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type sqliteTicketRepository struct {
	db *sql.DB
}

// NewSQLiteTicketRepository instantiates the SQLite repository.
func NewSQLiteTicketRepository(db *sql.DB) TicketRepository {
	return &sqliteTicketRepository{db: db}
}

func (r *sqliteTicketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
		INSERT INTO tickets (id, external_key, customer_id, category_id, operator_id, title, body,
			attachment_name, attachment_size, attachment_data, status, created_at, assigned_at, cancelled_at, resolved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	name, size, data := attachmentColumns(ticket.Attachment)
	_, err := r.db.ExecContext(ctx, query,
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
		string(ticket.Status),
		formatSQLiteTime(ticket.CreatedAt),
		formatSQLiteTimePtr(ticket.AssignedAt),
		formatSQLiteTimePtr(ticket.CancelledAt),
		formatSQLiteTimePtr(ticket.ResolvedAt),
	)
	if err != nil {
		return fmt.Errorf("create ticket: %w", mapSQLiteError(err))
	}
	return nil
}

func (r *sqliteTicketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	ticket, err := scanSQLiteTicket(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return ticket, nil
}

func (r *sqliteTicketRepository) GetAttachment(ctx context.Context, id string) (*domain.Attachment, error) {
	const query = `SELECT attachment_name, attachment_size, attachment_data FROM tickets WHERE id = ?`
	var (
		name sql.NullString
		size sql.NullInt64
		data []byte
	)
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&name, &size, &data); err != nil {
		return nil, mapSQLiteError(err)
	}
	if !name.Valid {
		return nil, ErrNotFound
	}
	return &domain.Attachment{FileName: name.String, SizeBytes: size.Int64, Content: data}, nil
}

func (r *sqliteTicketRepository) Transition(ctx context.Context, ticket *domain.Ticket, guard TransitionGuard) error {
	query := `
		UPDATE tickets SET status = ?, operator_id = ?, assigned_at = ?, cancelled_at = ?, resolved_at = ?
		WHERE id = ? AND status = ?`
	args := []any{
		string(ticket.Status),
		ticket.OperatorID,
		formatSQLiteTimePtr(ticket.AssignedAt),
		formatSQLiteTimePtr(ticket.CancelledAt),
		formatSQLiteTimePtr(ticket.ResolvedAt),
		ticket.ID,
		string(guard.Status),
	}
	if guard.OperatorID != nil {
		query += " AND operator_id = ?"
		args = append(args, *guard.OperatorID)
	}
	if guard.AssignedAt != nil {
		query += " AND assigned_at = ?"
		args = append(args, formatSQLiteTime(*guard.AssignedAt))
	}
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("transition ticket: %w", mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition ticket: %w", err)
	}
	if n == 0 {
		return ErrStaleState
	}
	return nil
}

func (r *sqliteTicketRepository) ListWithFilter(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	query := "SELECT " + ticketColumns + " FROM tickets WHERE 1=1"
	var args []any

	if filter.CustomerID != nil {
		query += " AND customer_id = ?"
		args = append(args, *filter.CustomerID)
	}
	if filter.OperatorID != nil {
		query += " AND operator_id = ?"
		args = append(args, *filter.OperatorID)
	}
	if filter.CategoryID != nil {
		query += " AND category_id = ?"
		args = append(args, *filter.CategoryID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, string(status))
		}
		query += " AND status IN (" + strings.Join(placeholders, ",") + ")"
	}
	query += " " + orderAndPage(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanSQLiteTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("list tickets: %w", err)
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func scanSQLiteTicket(row rowScanner) (*domain.Ticket, error) {
	var (
		ticket                              domain.Ticket
		operatorID, attachmentName          sql.NullString
		attachmentSize                      sql.NullInt64
		status, createdAt                   string
		assignedAt, cancelledAt, resolvedAt sql.NullString
	)
	if err := row.Scan(
		&ticket.ID,
		&ticket.ExternalKey,
		&ticket.CustomerID,
		&ticket.CategoryID,
		&operatorID,
		&ticket.Title,
		&ticket.Body,
		&attachmentName,
		&attachmentSize,
		&status,
		&createdAt,
		&assignedAt,
		&cancelledAt,
		&resolvedAt,
	); err != nil {
		return nil, err
	}

	var err error
	ticket.Status = domain.TicketStatus(status)
	ticket.OperatorID = nullStringPtr(operatorID)
	ticket.Attachment = attachmentMeta(nullStringPtr(attachmentName), nullInt64Ptr(attachmentSize))
	if ticket.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if ticket.AssignedAt, err = parseSQLiteTimePtr(assignedAt); err != nil {
		return nil, err
	}
	if ticket.CancelledAt, err = parseSQLiteTimePtr(cancelledAt); err != nil {
		return nil, err
	}
	if ticket.ResolvedAt, err = parseSQLiteTimePtr(resolvedAt); err != nil {
		return nil, err
	}
	return &ticket, nil
}
