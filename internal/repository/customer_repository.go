package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CustomerRepository handles persistence for customers.
type CustomerRepository interface {
	Create(ctx context.Context, customer *domain.Customer) error
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

const customerColumns = `id, first_name, last_name, email, password_hash, enabled, created_at, updated_at`

type customerRepository struct {
	pool *pgxpool.Pool
}

// NewCustomerRepository instantiates the Postgres repository.
func NewCustomerRepository(pool *pgxpool.Pool) CustomerRepository {
	return &customerRepository{pool: pool}
}

func (r *customerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
        INSERT INTO customers (id, first_name, last_name, email, password_hash, enabled, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`
	_, err := r.pool.Exec(ctx, query,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.PasswordHash,
		customer.Enabled,
		customer.CreatedAt,
		customer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", mapPostgresError(err))
	}
	return nil
}

func (r *customerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id=$1`, id)
}

func (r *customerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email)=lower($1)`, email)
}

func (r *customerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var customer domain.Customer
	if err := r.pool.QueryRow(ctx, query, arg).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Enabled,
		&customer.CreatedAt,
		&customer.UpdatedAt,
	); err != nil {
		return nil, mapPostgresError(err)
	}
	return &customer, nil
}

type sqliteCustomerRepository struct {
	db *sql.DB
}

// NewSQLiteCustomerRepository instantiates the SQLite repository.
func NewSQLiteCustomerRepository(db *sql.DB) CustomerRepository {
	return &sqliteCustomerRepository{db: db}
}

func (r *sqliteCustomerRepository) Create(ctx context.Context, customer *domain.Customer) error {
	const query = `
		INSERT INTO customers (id, first_name, last_name, email, password_hash, enabled, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		customer.ID,
		customer.FirstName,
		customer.LastName,
		customer.Email,
		customer.PasswordHash,
		customer.Enabled,
		formatSQLiteTime(customer.CreatedAt),
		formatSQLiteTime(customer.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", mapSQLiteError(err))
	}
	return nil
}

func (r *sqliteCustomerRepository) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
}

func (r *sqliteCustomerRepository) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getOne(ctx, `SELECT `+customerColumns+` FROM customers WHERE lower(email) = lower(?)`, email)
}

func (r *sqliteCustomerRepository) getOne(ctx context.Context, query string, arg any) (*domain.Customer, error) {
	var (
		customer             domain.Customer
		createdAt, updatedAt string
		err                  error
	)
	if err = r.db.QueryRowContext(ctx, query, arg).Scan(
		&customer.ID,
		&customer.FirstName,
		&customer.LastName,
		&customer.Email,
		&customer.PasswordHash,
		&customer.Enabled,
		&createdAt,
		&updatedAt,
	); err != nil {
		return nil, mapSQLiteError(err)
	}
	if customer.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if customer.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	return &customer, nil
}
