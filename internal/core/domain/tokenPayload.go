package domain

import (
	"github.com/google/uuid"
)

type UserRole string

const (
	Admin    UserRole = "admin"
	Mechanic UserRole = "mechanic"
	Foh      UserRole = "foh"
)

func (r UserRole) Valid() bool {
	return r == Admin || r == Mechanic || r == Foh
}

type TokenPayload struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Role   UserRole
}

func (p *TokenPayload) IsAdmin() bool {
	return p != nil && p.Role == Admin
}
