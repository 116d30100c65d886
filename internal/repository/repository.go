package repository

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Set bundles the repositories backed by one store.
type Set struct {
	Tickets    TicketRepository
	Categories CategoryRepository
	Customers  CustomerRepository
	Staff      StaffRepository
}

// NewPostgresSet wires every repository to the pool.
func NewPostgresSet(pool *pgxpool.Pool) Set {
	return Set{
		Tickets:    NewTicketRepository(pool),
		Categories: NewCategoryRepository(pool),
		Customers:  NewCustomerRepository(pool),
		Staff:      NewStaffRepository(pool),
	}
}

// NewSQLiteSet wires every repository to the embedded database.
func NewSQLiteSet(db *sql.DB) Set {
	return Set{
		Tickets:    NewSQLiteTicketRepository(db),
		Categories: NewSQLiteCategoryRepository(db),
		Customers:  NewSQLiteCustomerRepository(db),
		Staff:      NewSQLiteStaffRepository(db),
	}
}
