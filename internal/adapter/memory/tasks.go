package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type taskRepo struct{ s *Store }

func sortTasks(tasks []*domain.FohTask) {
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].TaskNumber < tasks[j].TaskNumber })
}

func (r taskRepo) CreateTask(ctx context.Context, task *domain.FohTask) (*domain.FohTask, error) {
	var out domain.FohTask
	err := r.s.run(func(t *tables) error {
		row := *task
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		t.taskSeq++
		row.TaskNumber = t.taskSeq
		row.CreatedAt = now()
		row.UpdatedAt = row.CreatedAt
		t.tasks[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r taskRepo) GetTaskByID(ctx context.Context, id uuid.UUID) (*domain.FohTask, error) {
	var out domain.FohTask
	err := r.s.run(func(t *tables) error {
		task, ok := t.tasks[id]
		if !ok {
			return fmt.Errorf("task: %w", domain.ErrNotFound)
		}
		out = task
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r taskRepo) listWhere(keep func(domain.FohTask) bool) ([]*domain.FohTask, error) {
	var out []*domain.FohTask
	err := r.s.run(func(t *tables) error {
		for _, task := range t.tasks {
			if keep(task) {
				row := task
				out = append(out, &row)
			}
		}
		return nil
	})
	sortTasks(out)
	return out, err
}

func (r taskRepo) ListTasksAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error) {
	return r.listWhere(func(task domain.FohTask) bool {
		return task.AssignedTo != nil && *task.AssignedTo == userID
	})
}

func (r taskRepo) ListTasksCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error) {
	return r.listWhere(func(task domain.FohTask) bool {
		return task.CreatedBy == userID
	})
}

func (r taskRepo) UpdateTask(ctx context.Context, task *domain.FohTask) (*domain.FohTask, error) {
	var out domain.FohTask
	err := r.s.run(func(t *tables) error {
		existing, ok := t.tasks[task.ID]
		if !ok {
			return fmt.Errorf("task: %w", domain.ErrNotFound)
		}
		row := *task
		row.TaskNumber = existing.TaskNumber
		row.CreatedBy = existing.CreatedBy
		row.CreatedAt = existing.CreatedAt
		row.UpdatedAt = now()
		t.tasks[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r taskRepo) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		if _, ok := t.tasks[id]; !ok {
			return fmt.Errorf("task: %w", domain.ErrNotFound)
		}
		delete(t.tasks, id)
		return nil
	})
}
