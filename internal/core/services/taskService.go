package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

type TaskService struct {
	store    ports.Store
	logger   ports.LoggerPort
	validate *validator.Validate
	notifier
}

func NewTaskService(
	store ports.Store,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	feed ports.ChangeFeed,
) *TaskService {
	return &TaskService{
		store:    store,
		logger:   logger,
		validate: validate,
		notifier: notifier{logger: logger, cache: cache, feed: feed},
	}
}

func (s *TaskService) CreateTask(ctx context.Context, creatorID uuid.UUID, task *domain.FohTask) (*domain.FohTask, error) {
	task.Title = strings.TrimSpace(task.Title)
	if err := s.validate.Struct(task); err != nil {
		s.logger.Error("Task validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, validationError(err)
	}

	task.ID = uuid.New()
	task.CreatedBy = creatorID
	task.Status = domain.TaskNotStarted
	task.RejectedAt = nil
	task.RejectionReason = nil

	if err := s.checkAssignee(ctx, task.AssignedTo); err != nil {
		return nil, err
	}
	if task.BikeID != nil {
		bike, err := s.store.Bikes().GetBikeByID(ctx, *task.BikeID)
		if err != nil {
			return nil, err
		}
		if bike.WorkflowStatus == domain.StatusAfgerond {
			return nil, fmt.Errorf("%w: bike %s is finished", domain.ErrValidation, bike.FrameNumber)
		}
	}

	created, err := s.store.Tasks().CreateTask(ctx, task)
	if err != nil {
		s.logger.Error("Failed to create task", map[string]interface{}{
			"error":      err.Error(),
			"created_by": creatorID,
		})
		return nil, err
	}

	s.publish(ctx, domain.TableFohTasks, domain.ChangeInsert, created.ID)

	s.logger.Info("Task created", map[string]interface{}{
		"task_id":     created.ID,
		"task_number": created.TaskNumber,
	})
	return created, nil
}

func (s *TaskService) checkAssignee(ctx context.Context, assignee *uuid.UUID) error {
	if assignee == nil {
		return nil
	}
	p, err := s.store.Profiles().GetProfileByID(ctx, *assignee)
	if err != nil {
		return err
	}
	if !p.Active {
		return fmt.Errorf("assignee %s: %w", p.ID, domain.ErrInactiveProfile)
	}
	return nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID uuid.UUID) (*domain.FohTask, error) {
	return s.store.Tasks().GetTaskByID(ctx, taskID)
}

// AssignTask hands the task to assignee, or unassigns it when nil. A rejected task that is
// reassigned starts over without its rejection.
func (s *TaskService) AssignTask(ctx context.Context, taskID uuid.UUID, assignee *uuid.UUID) (*domain.FohTask, error) {
	if err := s.checkAssignee(ctx, assignee); err != nil {
		return nil, err
	}
	return s.mutate(ctx, taskID, "Task assigned", func(task *domain.FohTask) error {
		if task.Status == domain.TaskDone {
			return fmt.Errorf("task %d: %w", task.TaskNumber, domain.ErrTaskCompleted)
		}
		task.AssignedTo = assignee
		task.RejectedAt = nil
		task.RejectionReason = nil
		return nil
	})
}

// TransitionTask moves the task forward. Only the assignee or an admin may do so.
func (s *TaskService) TransitionTask(ctx context.Context, actor *domain.TokenPayload, taskID uuid.UUID, to domain.TaskStatus) (*domain.FohTask, error) {
	return s.mutate(ctx, taskID, "Task transitioned", func(task *domain.FohTask) error {
		if task.IsRejected() {
			return fmt.Errorf("task %d: %w", task.TaskNumber, domain.ErrTaskRejected)
		}
		if !actor.IsAdmin() && (task.AssignedTo == nil || *task.AssignedTo != actor.UserID) {
			return fmt.Errorf("only the assignee may change task %d: %w", task.TaskNumber, domain.ErrForbidden)
		}
		if err := domain.CanTransitionTask(task.Status, to); err != nil {
			return err
		}
		task.Status = to
		return nil
	})
}

// RejectTask parks the task with a reason. Status is left as is.
func (s *TaskService) RejectTask(ctx context.Context, actor *domain.TokenPayload, taskID uuid.UUID, reason string) (*domain.FohTask, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason is required", domain.ErrValidation)
	}
	return s.mutate(ctx, taskID, "Task rejected", func(task *domain.FohTask) error {
		if task.Status == domain.TaskDone {
			return fmt.Errorf("task %d: %w", task.TaskNumber, domain.ErrTaskCompleted)
		}
		if !actor.IsAdmin() && (task.AssignedTo == nil || *task.AssignedTo != actor.UserID) {
			return fmt.Errorf("only the assignee may reject task %d: %w", task.TaskNumber, domain.ErrForbidden)
		}
		ts := time.Now().UTC()
		task.RejectedAt = &ts
		task.RejectionReason = &reason
		return nil
	})
}

func (s *TaskService) mutate(ctx context.Context, taskID uuid.UUID, msg string, fn func(*domain.FohTask) error) (*domain.FohTask, error) {
	var updated *domain.FohTask
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		task, err := tx.Tasks().GetTaskByID(ctx, taskID)
		if err != nil {
			return err
		}
		if err := fn(task); err != nil {
			return err
		}
		updated, err = tx.Tasks().UpdateTask(ctx, task)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to update task", map[string]interface{}{
			"error":   err.Error(),
			"task_id": taskID,
		})
		return nil, err
	}

	s.publish(ctx, domain.TableFohTasks, domain.ChangeUpdate, taskID)

	s.logger.Info(msg, map[string]interface{}{
		"task_id": taskID,
		"status":  updated.Status,
	})
	return updated, nil
}

// DeleteTask removes a task. Only its creator may.
func (s *TaskService) DeleteTask(ctx context.Context, actorID, taskID uuid.UUID) error {
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		task, err := tx.Tasks().GetTaskByID(ctx, taskID)
		if err != nil {
			return err
		}
		if task.CreatedBy != actorID {
			return fmt.Errorf("only the creator may delete task %d: %w", task.TaskNumber, domain.ErrForbidden)
		}
		return tx.Tasks().DeleteTask(ctx, taskID)
	})
	if err != nil {
		s.logger.Error("Failed to delete task", map[string]interface{}{
			"error":   err.Error(),
			"task_id": taskID,
		})
		return err
	}

	s.publish(ctx, domain.TableFohTasks, domain.ChangeDelete, taskID)

	s.logger.Info("Task deleted", map[string]interface{}{
		"task_id": taskID,
	})
	return nil
}

// ListActive returns the tasks on userID's to-do list: assigned, not rejected, not done.
func (s *TaskService) ListActive(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error) {
	tasks, err := s.store.Tasks().ListTasksAssignedTo(ctx, userID)
	if err != nil {
		s.logger.Error("Failed to list tasks", map[string]interface{}{
			"error":   err.Error(),
			"user_id": userID,
		})
		return nil, err
	}
	active := make([]*domain.FohTask, 0, len(tasks))
	for _, t := range tasks {
		if t.IsActiveFor(userID) {
			active = append(active, t)
		}
	}
	return active, nil
}

// ListCreatedBy returns every task userID created, rejected ones included.
func (s *TaskService) ListCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error) {
	return s.store.Tasks().ListTasksCreatedBy(ctx, userID)
}
