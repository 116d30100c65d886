package domain

import "time"

// Customer is the domain model for end-users who submit tickets.
type Customer struct {
	ID           string
	FirstName    string
	LastName     string
	Email        string
	PasswordHash string
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// FullName joins first and last name.
func (c Customer) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}
