package domain

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type ChangeType string

const (
	ChangeInsert ChangeType = "INSERT"
	ChangeUpdate ChangeType = "UPDATE"
	ChangeDelete ChangeType = "DELETE"
	ChangeAny    ChangeType = "*"
)

// Tables published on the change feed.
const (
	TableBikes             = "bikes"
	TableWorkRegistrations = "work_registrations"
	TableFohTasks          = "foh_tasks"
	TableComments          = "comments"
	TableCallHistory       = "call_history"
	TableInventoryItems    = "inventory_items"
	TableChecklist         = "checklist_completions"
	TableSettings          = "settings"
	TableAll               = "*"
)

type ChangeEvent struct {
	Table string     `json:"table"`
	Type  ChangeType `json:"type"`
	RowID uuid.UUID  `json:"row_id"`
}

// ParseChangeType accepts INSERT, UPDATE, DELETE or "*" in any case.
func ParseChangeType(s string) (ChangeType, error) {
	switch t := ChangeType(strings.ToUpper(strings.TrimSpace(s))); t {
	case ChangeInsert, ChangeUpdate, ChangeDelete, ChangeAny:
		return t, nil
	}
	return "", fmt.Errorf("%w: unknown event type %q", ErrValidation, s)
}

// MatchesType reports whether an event of type t passes the filter.
// An empty filter or one holding "*" passes everything.
func MatchesType(filter []ChangeType, t ChangeType) bool {
	if len(filter) == 0 {
		return true
	}
	for _, f := range filter {
		if f == ChangeAny || f == t {
			return true
		}
	}
	return false
}
