package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// StaffCreateRequest payload for manager-created operator accounts.
type StaffCreateRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StaffResponse representation.
type StaffResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Email     string           `json:"email"`
	Role      domain.StaffRole `json:"role"`
	Enabled   bool             `json:"enabled"`
	CreatedAt time.Time        `json:"created_at"`
}
