package dto

import "time"

// CategoryRequest payload for create and rename.
type CategoryRequest struct {
	Name string `json:"name"`
}

// CategoryResponse representation.
type CategoryResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Enabled   bool      `json:"enabled"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
