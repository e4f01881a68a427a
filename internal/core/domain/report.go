package domain

import "github.com/google/uuid"

type MechanicPoints struct {
	MechanicID    uuid.UUID `json:"mechanic_id"`
	Registrations int       `json:"registrations"`
	Points        float64   `json:"points"`
}

// WarrantyReportLine is a warranty case joined with the names a report shows.
type WarrantyReportLine struct {
	WarrantyCase
	FrameNumber    string `json:"frame_number"`
	RepairTypeName string `json:"repair_type_name"`
}
