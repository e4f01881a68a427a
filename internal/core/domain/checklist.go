package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChecklistItem is one line of the completion checklist a bike must pass before it is finished.
type ChecklistItem struct {
	ID        uuid.UUID `json:"id"`
	Label     string    `json:"label" validate:"required,max=200"`
	Position  int       `json:"position"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type ChecklistCompletion struct {
	BikeID          uuid.UUID `json:"bike_id"`
	ChecklistItemID uuid.UUID `json:"checklist_item_id"`
	CompletedBy     uuid.UUID `json:"completed_by"`
	CompletedAt     time.Time `json:"completed_at"`
}

type ChecklistLine struct {
	Item        ChecklistItem `json:"item"`
	Completed   bool          `json:"completed"`
	CompletedBy *uuid.UUID    `json:"completed_by,omitempty"`
}

// MissingChecklistItems returns the active items without a completion record.
func MissingChecklistItems(items []*ChecklistItem, completions []*ChecklistCompletion) []*ChecklistItem {
	done := make(map[uuid.UUID]struct{}, len(completions))
	for _, c := range completions {
		done[c.ChecklistItemID] = struct{}{}
	}
	var missing []*ChecklistItem
	for _, it := range items {
		if !it.Active {
			continue
		}
		if _, ok := done[it.ID]; !ok {
			missing = append(missing, it)
		}
	}
	return missing
}
