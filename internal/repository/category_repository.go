package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CategoryFilter narrows category listings.
type CategoryFilter struct {
	Enabled *bool
}

// CategoryRepository persists ticket categories.
type CategoryRepository interface {
	Create(ctx context.Context, category *domain.Category) error
	Update(ctx context.Context, category *domain.Category) error
	GetByID(ctx context.Context, id string) (*domain.Category, error)
	GetByName(ctx context.Context, name string) (*domain.Category, error)
	List(ctx context.Context, filter CategoryFilter) ([]domain.Category, error)
}

const categoryColumns = `id, name, enabled, created_at, updated_at`

type categoryRepository struct {
	pool *pgxpool.Pool
}

// NewCategoryRepository instantiates the Postgres repository.
func NewCategoryRepository(pool *pgxpool.Pool) CategoryRepository {
	return &categoryRepository{pool: pool}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `
        INSERT INTO categories (id, name, enabled, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5)`
	_, err := r.pool.Exec(ctx, query,
		category.ID,
		category.Name,
		category.Enabled,
		category.CreatedAt,
		category.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create category: %w", mapPostgresError(err))
	}
	return nil
}

func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	const query = `UPDATE categories SET name=$1, enabled=$2, updated_at=$3 WHERE id=$4`
	cmd, err := r.pool.Exec(ctx, query, category.Name, category.Enabled, category.UpdatedAt, category.ID)
	if err != nil {
		return fmt.Errorf("update category: %w", mapPostgresError(err))
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id=$1`
	return scanCategoryRow(r.pool.QueryRow(ctx, query, id), mapPostgresError)
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name=$1`
	return scanCategoryRow(r.pool.QueryRow(ctx, query, name), mapPostgresError)
}

func (r *categoryRepository) List(ctx context.Context, filter CategoryFilter) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	args := []any{}
	if filter.Enabled != nil {
		args = append(args, *filter.Enabled)
		query += " WHERE enabled=$1"
	}
	query += " ORDER BY name ASC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		var category domain.Category
		if err := rows.Scan(&category.ID, &category.Name, &category.Enabled, &category.CreatedAt, &category.UpdatedAt); err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		result = append(result, category)
	}
	return result, rows.Err()
}

func scanCategoryRow(row pgx.Row, mapErr func(error) error) (*domain.Category, error) {
	var category domain.Category
	if err := row.Scan(&category.ID, &category.Name, &category.Enabled, &category.CreatedAt, &category.UpdatedAt); err != nil {
		return nil, mapErr(err)
	}
	return &category, nil
}

type sqliteCategoryRepository struct {
	db *sql.DB
}

// NewSQLiteCategoryRepository instantiates the SQLite repository.
func NewSQLiteCategoryRepository(db *sql.DB) CategoryRepository {
	return &sqliteCategoryRepository{db: db}
}

func (r *sqliteCategoryRepository) Create(ctx context.Context, category *domain.Category) error {
	const query = `INSERT INTO categories (id, name, enabled, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		category.ID,
		category.Name,
		category.Enabled,
		formatSQLiteTime(category.CreatedAt),
		formatSQLiteTime(category.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("create category: %w", mapSQLiteError(err))
	}
	return nil
}

func (r *sqliteCategoryRepository) Update(ctx context.Context, category *domain.Category) error {
	const query = `UPDATE categories SET name = ?, enabled = ?, updated_at = ? WHERE id = ?`
	result, err := r.db.ExecContext(ctx, query,
		category.Name,
		category.Enabled,
		formatSQLiteTime(category.UpdatedAt),
		category.ID,
	)
	if err != nil {
		return fmt.Errorf("update category: %w", mapSQLiteError(err))
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *sqliteCategoryRepository) GetByID(ctx context.Context, id string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE id = ?`
	category, err := scanSQLiteCategory(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return category, nil
}

func (r *sqliteCategoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories WHERE name = ?`
	category, err := scanSQLiteCategory(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return category, nil
}

func (r *sqliteCategoryRepository) List(ctx context.Context, filter CategoryFilter) ([]domain.Category, error) {
	query := `SELECT ` + categoryColumns + ` FROM categories`
	var args []any
	if filter.Enabled != nil {
		query += " WHERE enabled = ?"
		args = append(args, *filter.Enabled)
	}
	query += " ORDER BY name ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var result []domain.Category
	for rows.Next() {
		category, err := scanSQLiteCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("list categories: %w", err)
		}
		result = append(result, *category)
	}
	return result, rows.Err()
}

func scanSQLiteCategory(row rowScanner) (*domain.Category, error) {
	var (
		category             domain.Category
		createdAt, updatedAt string
		err                  error
	)
	if err = row.Scan(&category.ID, &category.Name, &category.Enabled, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if category.CreatedAt, err = parseSQLiteTime(createdAt); err != nil {
		return nil, err
	}
	if category.UpdatedAt, err = parseSQLiteTime(updatedAt); err != nil {
		return nil, err
	}
	return &category, nil
}
