package domain

import (
	"time"

	"github.com/google/uuid"
)

// swagger:model domain.Bike
type Bike struct {
	ID                uuid.UUID      `json:"id"`
	FrameNumber       string         `json:"frame_number" validate:"required,max=64"`
	Model             BikeModel      `json:"model" validate:"required"`
	WorkflowStatus    WorkflowStatus `json:"workflow_status"`
	TableNumber       *string        `json:"table_number,omitempty"`
	CurrentMechanicID *uuid.UUID     `json:"current_mechanic_id,omitempty"`
	IsSalesBike       bool           `json:"is_sales_bike"`
	DiagnosedBy       *uuid.UUID     `json:"diagnosed_by,omitempty"`
	DiagnosedAt       *time.Time     `json:"diagnosed_at,omitempty"`
	CustomerPhone     string         `json:"customer_phone,omitempty" validate:"max=32"`
	CallStatusID      *uuid.UUID     `json:"call_status_id,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// IsDiagnosed reports whether the diagnosis stamp has been set.
func (b *Bike) IsDiagnosed() bool {
	return b.DiagnosedBy != nil
}

type BikeModel string

const (
	ModelS1 BikeModel = "S1"
	ModelS2 BikeModel = "S2"
	ModelX2 BikeModel = "X2"
	ModelS3 BikeModel = "S3"
	ModelX3 BikeModel = "X3"
	ModelS4 BikeModel = "S4"
	ModelX4 BikeModel = "X4"
	ModelS5 BikeModel = "S5"
	ModelX5 BikeModel = "X5"
	ModelA5 BikeModel = "A5"
)

var bikeModels = []BikeModel{ModelS1, ModelS2, ModelX2, ModelS3, ModelX3, ModelS4, ModelX4, ModelS5, ModelX5, ModelA5}

func BikeModels() []BikeModel {
	out := make([]BikeModel, len(bikeModels))
	copy(out, bikeModels)
	return out
}

func (m BikeModel) Valid() bool {
	for _, known := range bikeModels {
		if m == known {
			return true
		}
	}
	return false
}

// TableGroup is the bikes-by-table read model used by the front-of-house board.
type TableGroup struct {
	TableNumber string  `json:"table_number"`
	Bikes       []*Bike `json:"bikes"`
}

// BikeIntake is the payload of a first registration at the counter or the diagnosis bench.
type BikeIntake struct {
	FrameNumber       string      `json:"frame_number" validate:"required,max=64"`
	Model             BikeModel   `json:"model" validate:"required"`
	IsSalesBike       bool        `json:"is_sales_bike"`
	DiagnosisComplete bool        `json:"diagnosis_complete"`
	RepairTypeIDs     []uuid.UUID `json:"repair_type_ids"`
	TableNumber       *string     `json:"table_number,omitempty" validate:"omitempty,max=16"`
	CustomerPhone     string      `json:"customer_phone,omitempty" validate:"max=32"`
}

// BikeDetail is a bike together with the events that may currently fire on it.
type BikeDetail struct {
	Bike            *Bike           `json:"bike"`
	AvailableEvents []WorkflowEvent `json:"available_events"`
	PendingRepairs  []PendingRepair `json:"pending_repairs"`
}
