package domain

import (
	"time"

	"github.com/google/uuid"
)

// DiagnoseRepairTypeName names the catalog entry booked once per bike when it is diagnosed.
const DiagnoseRepairTypeName = "Diagnose"

// DiagnosisBonusPoints is the point value of the Diagnose repair type.
const DiagnosisBonusPoints = 0.5

type WorkRegistration struct {
	ID             uuid.UUID  `json:"id"`
	BikeID         uuid.UUID  `json:"bike_id"`
	RepairTypeID   uuid.UUID  `json:"repair_type_id"`
	MechanicID     *uuid.UUID `json:"mechanic_id,omitempty"`
	Completed      bool       `json:"completed"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	LastModifiedBy *uuid.UUID `json:"last_modified_by,omitempty"`
	LastModifiedAt *time.Time `json:"last_modified_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

// Complete stamps the registration as performed by mechanicID at ts.
func (r *WorkRegistration) Complete(mechanicID uuid.UUID, ts time.Time) {
	r.Completed = true
	r.CompletedAt = &ts
	r.MechanicID = &mechanicID
	r.LastModifiedBy = &mechanicID
	r.LastModifiedAt = &ts
}

// PendingRepair is a not yet performed registration joined with its catalog entry.
type PendingRepair struct {
	RegistrationID uuid.UUID `json:"registration_id"`
	RepairTypeID   uuid.UUID `json:"repair_type_id"`
	RepairTypeName string    `json:"repair_type_name"`
	Points         float64   `json:"points"`
	CreatedAt      time.Time `json:"created_at"`
}
