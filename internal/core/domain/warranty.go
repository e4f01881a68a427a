package domain

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// WarrantyWindow is the period after a completed repair in which a repeat of the same
// repair on the same bike counts as a warranty case.
const WarrantyWindow = 180 * 24 * time.Hour

type WarrantyCase struct {
	RegistrationID         uuid.UUID `json:"registration_id"`
	PreviousRegistrationID uuid.UUID `json:"previous_registration_id"`
	BikeID                 uuid.UUID `json:"bike_id"`
	RepairTypeID           uuid.UUID `json:"repair_type_id"`
	CompletedAt            time.Time `json:"completed_at"`
	PreviousCompletedAt    time.Time `json:"previous_completed_at"`
	DaysSincePrevious      int       `json:"days_since_previous"`
}

type warrantyKey struct {
	bike       uuid.UUID
	repairType uuid.UUID
}

// DetectWarrantyCases returns every completed registration that repeats the most recent
// earlier completion of the same repair type on the same bike within WarrantyWindow.
// Pending registrations are ignored. The result is ordered by completion time.
func DetectWarrantyCases(regs []*WorkRegistration) []WarrantyCase {
	groups := make(map[warrantyKey][]*WorkRegistration)
	for _, r := range regs {
		if r == nil || !r.Completed || r.CompletedAt == nil {
			continue
		}
		k := warrantyKey{bike: r.BikeID, repairType: r.RepairTypeID}
		groups[k] = append(groups[k], r)
	}

	var cases []WarrantyCase
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].CompletedAt.Before(*group[j].CompletedAt)
		})
		for i := 1; i < len(group); i++ {
			prev, cur := group[i-1], group[i]
			delta := cur.CompletedAt.Sub(*prev.CompletedAt)
			if delta > WarrantyWindow {
				continue
			}
			cases = append(cases, WarrantyCase{
				RegistrationID:         cur.ID,
				PreviousRegistrationID: prev.ID,
				BikeID:                 cur.BikeID,
				RepairTypeID:           cur.RepairTypeID,
				CompletedAt:            *cur.CompletedAt,
				PreviousCompletedAt:    *prev.CompletedAt,
				DaysSincePrevious:      int(delta / (24 * time.Hour)),
			})
		}
	}

	sort.SliceStable(cases, func(i, j int) bool {
		return cases[i].CompletedAt.Before(cases[j].CompletedAt)
	})
	return cases
}
