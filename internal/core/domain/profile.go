package domain

import (
	"time"

	"github.com/google/uuid"
)

type Profile struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name" validate:"required,max=120"`
	Email        string    `json:"email" validate:"required,email"`
	Role         UserRole  `json:"role" validate:"required,oneof=admin mechanic foh"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type NewProfile struct {
	FullName string   `json:"full_name" validate:"required,max=120"`
	Email    string   `json:"email" validate:"required,email"`
	Role     UserRole `json:"role" validate:"required,oneof=admin mechanic foh"`
	Password string   `json:"password" validate:"required,min=8,max=72"`
}
