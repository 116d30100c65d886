package domain

import "time"

// Category classifies tickets. Only enabled categories accept new tickets.
type Category struct {
	ID        string
	Name      string
	Enabled   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
