package domain

import (
	"time"

	"github.com/google/uuid"
)

type AvailabilityStatus string

const (
	AvailabilityPending  AvailabilityStatus = "pending"
	AvailabilityApproved AvailabilityStatus = "approved"
	AvailabilityRejected AvailabilityStatus = "rejected"
)

// MechanicAvailability is a requested working interval. StartTime and EndTime are "HH:MM".
type MechanicAvailability struct {
	ID         uuid.UUID          `json:"id"`
	MechanicID uuid.UUID          `json:"mechanic_id"`
	Date       time.Time          `json:"date"`
	StartTime  string             `json:"start_time" validate:"required,datetime=15:04"`
	EndTime    string             `json:"end_time" validate:"required,datetime=15:04"`
	Status     AvailabilityStatus `json:"status"`
	ReviewedBy *uuid.UUID         `json:"reviewed_by,omitempty"`
	ReviewedAt *time.Time         `json:"reviewed_at,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

// Hours returns the length of the interval in hours.
func (a *MechanicAvailability) Hours() float64 {
	start, err1 := time.Parse("15:04", a.StartTime)
	end, err2 := time.Parse("15:04", a.EndTime)
	if err1 != nil || err2 != nil || !end.After(start) {
		return 0
	}
	return end.Sub(start).Hours()
}
