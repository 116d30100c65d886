package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// LoginRequest payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResponse returns the access token and who it was issued to.
type LoginResponse struct {
	AccessToken string             `json:"access_token"`
	TokenType   string             `json:"token_type"`
	ExpiresAt   time.Time          `json:"expires_at"`
	SubjectID   string             `json:"subject_id"`
	SubjectType domain.SubjectType `json:"subject_type"`
	Role        *domain.StaffRole  `json:"role,omitempty"`
	DisplayName string             `json:"display_name"`
}

// RegisterRequest payload for customer self-registration.
type RegisterRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// CustomerResponse is the public shape of a customer account.
type CustomerResponse struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// RegisterResponse returns the new account and a token for it.
type RegisterResponse struct {
	Customer CustomerResponse `json:"customer"`
	Auth     LoginResponse    `json:"auth"`
}
