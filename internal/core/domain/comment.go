package domain

import (
	"time"

	"github.com/google/uuid"
)

type Comment struct {
	ID        uuid.UUID `json:"id"`
	BikeID    uuid.UUID `json:"bike_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Body      string    `json:"body" validate:"required,max=2000"`
	CreatedAt time.Time `json:"created_at"`
}

// CallStatus is a catalog entry describing the outcome of a customer call.
type CallStatus struct {
	ID    uuid.UUID `json:"id"`
	Label string    `json:"label"`
}

type CallRecord struct {
	ID           uuid.UUID `json:"id"`
	BikeID       uuid.UUID `json:"bike_id"`
	CallStatusID uuid.UUID `json:"call_status_id"`
	Notes        string    `json:"notes,omitempty" validate:"max=1000"`
	CalledBy     uuid.UUID `json:"called_by"`
	CalledAt     time.Time `json:"called_at"`
}
