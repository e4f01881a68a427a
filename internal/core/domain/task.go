package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TaskStatus string

const (
	TaskNotStarted TaskStatus = "nog_niet_gestart"
	TaskInProgress TaskStatus = "in_behandeling"
	TaskDone       TaskStatus = "afgerond"
)

func (s TaskStatus) Valid() bool {
	switch s {
	case TaskNotStarted, TaskInProgress, TaskDone:
		return true
	}
	return false
}

var taskTransitions = map[TaskStatus][]TaskStatus{
	TaskNotStarted: {TaskInProgress},
	TaskInProgress: {TaskDone},
}

// CanTransitionTask reports whether a task may move from one status to another.
func CanTransitionTask(from, to TaskStatus) error {
	if !to.Valid() {
		return fmt.Errorf("%w: unknown task status %q", ErrValidation, to)
	}
	for _, next := range taskTransitions[from] {
		if next == to {
			return nil
		}
	}
	return fmt.Errorf("%w: task %s to %s", ErrInvalidTransition, from, to)
}

// FohTask is a front-of-house to-do item.
type FohTask struct {
	ID              uuid.UUID  `json:"id"`
	TaskNumber      int64      `json:"task_number"`
	Title           string     `json:"title" validate:"required,max=200"`
	Description     string     `json:"description,omitempty" validate:"max=2000"`
	Status          TaskStatus `json:"status"`
	AssignedTo      *uuid.UUID `json:"assigned_to,omitempty"`
	CreatedBy       uuid.UUID  `json:"created_by"`
	BikeID          *uuid.UUID `json:"bike_id,omitempty"`
	RejectedAt      *time.Time `json:"rejected_at,omitempty"`
	RejectionReason *string    `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func (t *FohTask) IsRejected() bool {
	return t.RejectedAt != nil
}

// IsActiveFor reports whether the task belongs on userID's active list.
func (t *FohTask) IsActiveFor(userID uuid.UUID) bool {
	return t.AssignedTo != nil && *t.AssignedTo == userID && !t.IsRejected() && t.Status != TaskDone
}
