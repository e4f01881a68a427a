package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

const taskColumns = `id, task_number, title, description, status, assigned_to, created_by, bike_id,
	rejected_at, rejection_reason, created_at, updated_at`

type TaskRepository struct {
	db dbtx
}

func NewTaskRepository(db dbtx) *TaskRepository {
	return &TaskRepository{db: db}
}

func scanTask(row rowScanner) (*domain.FohTask, error) {
	task := &domain.FohTask{}
	err := row.Scan(
		&task.ID,
		&task.TaskNumber,
		&task.Title,
		&task.Description,
		&task.Status,
		&task.AssignedTo,
		&task.CreatedBy,
		&task.BikeID,
		&task.RejectedAt,
		&task.RejectionReason,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *TaskRepository) CreateTask(ctx context.Context, task *domain.FohTask) (*domain.FohTask, error) {
	if task.ID == uuid.Nil {
		task.ID = uuid.New()
	}
	query := `INSERT INTO foh_tasks (id, title, description, status, assigned_to, created_by, bike_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + taskColumns

	created, err := scanTask(r.db.QueryRowContext(ctx, query,
		task.ID,
		task.Title,
		task.Description,
		task.Status,
		task.AssignedTo,
		task.CreatedBy,
		task.BikeID,
	))
	if err != nil {
		return nil, mapError(err, "task")
	}
	return created, nil
}

func (r *TaskRepository) GetTaskByID(ctx context.Context, id uuid.UUID) (*domain.FohTask, error) {
	task, err := scanTask(r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM foh_tasks WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "task")
	}
	return task, nil
}

func (r *TaskRepository) listTasks(ctx context.Context, query string, args ...interface{}) ([]*domain.FohTask, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "tasks")
	}
	defer rows.Close()

	var tasks []*domain.FohTask
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (r *TaskRepository) ListTasksAssignedTo(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM foh_tasks WHERE assigned_to = $1 ORDER BY task_number`, userID)
}

func (r *TaskRepository) ListTasksCreatedBy(ctx context.Context, userID uuid.UUID) ([]*domain.FohTask, error) {
	return r.listTasks(ctx, `SELECT `+taskColumns+` FROM foh_tasks WHERE created_by = $1 ORDER BY task_number`, userID)
}

func (r *TaskRepository) UpdateTask(ctx context.Context, task *domain.FohTask) (*domain.FohTask, error) {
	query := `UPDATE foh_tasks
		SET
			title = $1,
			description = $2,
			status = $3,
			assigned_to = $4,
			bike_id = $5,
			rejected_at = $6,
			rejection_reason = $7,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $8
		RETURNING ` + taskColumns

	updated, err := scanTask(r.db.QueryRowContext(ctx, query,
		task.Title,
		task.Description,
		task.Status,
		task.AssignedTo,
		task.BikeID,
		task.RejectedAt,
		task.RejectionReason,
		task.ID,
	))
	if err != nil {
		return nil, mapError(err, "task")
	}
	return updated, nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM foh_tasks WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "task")
	}
	return expectOneRow(res, "task")
}
