package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StaffRepository handles persistence for operators and managers.
type StaffRepository interface {
	Create(ctx context.Context, staff *domain.StaffMember) error
	GetByID(ctx context.Context, id string) (*domain.StaffMember, error)
	GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error)
	List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error)
}

// StaffFilter defines query params for staff listing.
type StaffFilter struct {
	Role    *domain.StaffRole
	Enabled *bool
}

const staffColumns = `id, name, email, password_hash, role, enabled, created_at, updated_at`

type staffRepository struct {
	pool *pgxpool.Pool
}

// NewStaffRepository instantiates the Postgres repository.
func NewStaffRepository(pool *pgxpool.Pool) StaffRepository {
	return &staffRepository{pool: pool}
}

func (r *staffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
        INSERT INTO staff_members (id, name, email, password_hash, role, enabled, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		staff.Role,
		staff.Enabled,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create staff member: %w", mapPostgresError(err))
	}
	return nil
}

func (r *staffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	return r.getOne(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE id=$1`, id)
}

func (r *staffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	return r.getOne(ctx, `SELECT `+staffColumns+` FROM staff_members WHERE lower(email)=lower($1)`, email)
}

func (r *staffRepository) getOne(ctx context.Context, query string, arg any) (*domain.StaffMember, error) {
	var staff domain.StaffMember
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&staff.Role,
		&staff.Enabled,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	); err != nil {
		return nil, mapPostgresError(err)
	}
	return &staff, nil
}

func (r *staffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members`
	args := []any{}
	clauses := []string{}

	if filter.Role != nil {
		args = append(args, *filter.Role)
		clauses = append(clauses, fmt.Sprintf("role=$%d", len(args)))
	}
	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		clauses = append(clauses, fmt.Sprintf("enabled=$%d", len(args)))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		var staff domain.StaffMember
		if err := rows.Scan(
			&staff.ID,
			&staff.Name,
			&staff.Email,
			&staff.PasswordHash,
			&staff.Role,
			&staff.Enabled,
			&staff.CreatedAt,
			&staff.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("list staff: %w", err)
		}
		result = append(result, staff)
	}
	return result, rows.Err()
}

type sqliteStaffRepository struct {
	db *sql.DB
}

// NewSQLiteStaffRepository instantiates the SQLite repository.
func NewSQLiteStaffRepository(db *sql.DB) StaffRepository {
	return &sqliteStaffRepository{db: db}
}

func (r *sqliteStaffRepository) Create(ctx context.Context, staff *domain.StaffMember) error {
	const query = `
		INSERT INTO staff_members (id, name, email, password_hash, role, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.Name,
		staff.Email,
		staff.PasswordHash,
		string(staff.Role),
		staff.Enabled,
		formatSQLiteTime(staff.CreatedAt),
		formatSQLiteTime(staff.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create staff member: %w", mapSQLiteError(err))
	}
	return nil
}

func (r *sqliteStaffRepository) GetByID(ctx context.Context, id string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE id = ?`
	staff, err := scanSQLiteStaff(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return staff, nil
}

func (r *sqliteStaffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members WHERE lower(email) = lower(?)`
	staff, err := scanSQLiteStaff(r.db.QueryRowContext(ctx, query, email))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return staff, nil
}

func (r *sqliteStaffRepository) List(ctx context.Context, filter StaffFilter) ([]domain.StaffMember, error) {
	query := `SELECT ` + staffColumns + ` FROM staff_members`
	var (
		args    []any
		clauses []string
	)
	if filter.Role != nil {
		clauses = append(clauses, "role = ?")
		args = append(args, string(*filter.Role))
	}
	if filter.Enabled != nil {
		clauses = append(clauses, "enabled = ?")
		args = append(args, *filter.Enabled)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}
	defer rows.Close()

	var result []domain.StaffMember
	for rows.Next() {
		staff, err := scanSQLiteStaff(rows)
		if err != nil {
			return nil, fmt.Errorf("list staff: %w", err)
		}
		result = append(result, *staff)
	}
	return result, rows.Err()
}

func scanSQLiteStaff(row rowScanner) (*domain.StaffMember, error) {
	var (
		staff                      domain.StaffMember
		role, createdAt, updatedAt string
		err                        error
	)
	if err = row.Scan(
		&staff.ID,
		&staff.Name,
		&staff.Email,
		&staff.PasswordHash,
		&role,
		&staff.Enabled,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, err
	}
	staff.Role = domain.StaffRole(role)
	if staff.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if staff.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	return &staff, nil
}
