package domain

import "time"

// StaffRole enumerates internal roles.
type StaffRole string

const (
	StaffRoleOperator StaffRole = "OPERATOR"
	StaffRoleManager  StaffRole = "MANAGER"
)

// StaffMember models an operator or a manager.
type StaffMember struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         StaffRole
	Enabled      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
