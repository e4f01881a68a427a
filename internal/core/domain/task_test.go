package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestCanTransitionTask(t *testing.T) {
	if err := CanTransitionTask(TaskNotStarted, TaskInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CanTransitionTask(TaskInProgress, TaskDone); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := CanTransitionTask(TaskDone, TaskInProgress); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if err := CanTransitionTask(TaskNotStarted, "paused"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestTaskIsActiveFor(t *testing.T) {
	user := uuid.New()
	task := &FohTask{Status: TaskNotStarted, AssignedTo: &user}
	if !task.IsActiveFor(user) {
		t.Fatalf("expected task to be active")
	}
	if task.IsActiveFor(uuid.New()) {
		t.Fatalf("task is not assigned to a stranger")
	}
	now := time.Now()
	task.RejectedAt = &now
	if task.IsActiveFor(user) {
		t.Fatalf("rejected task must leave the active list")
	}
}
