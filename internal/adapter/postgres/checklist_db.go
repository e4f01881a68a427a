package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type ChecklistRepository struct {
	db dbtx
}

func NewChecklistRepository(db dbtx) *ChecklistRepository {
	return &ChecklistRepository{db: db}
}

func (r *ChecklistRepository) CreateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	query := `INSERT INTO checklist_items (id, label, position, active)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query, item.ID, item.Label, item.Position, item.Active).Scan(&item.CreatedAt)
	if err != nil {
		return nil, mapError(err, "checklist item")
	}
	return item, nil
}

func (r *ChecklistRepository) UpdateChecklistItem(ctx context.Context, item *domain.ChecklistItem) (*domain.ChecklistItem, error) {
	query := `UPDATE checklist_items
		SET label = $1, position = $2, active = $3
		WHERE id = $4
		RETURNING id, label, position, active, created_at`

	updated := &domain.ChecklistItem{}
	err := r.db.QueryRowContext(ctx, query, item.Label, item.Position, item.Active, item.ID).Scan(
		&updated.ID,
		&updated.Label,
		&updated.Position,
		&updated.Active,
		&updated.CreatedAt,
	)
	if err != nil {
		return nil, mapError(err, "checklist item")
	}
	return updated, nil
}

func (r *ChecklistRepository) ListChecklistItems(ctx context.Context, activeOnly bool) ([]*domain.ChecklistItem, error) {
	query := `SELECT id, label, position, active, created_at FROM checklist_items
		WHERE active OR NOT $1
		ORDER BY position, label`

	rows, err := r.db.QueryContext(ctx, query, activeOnly)
	if err != nil {
		return nil, mapError(err, "checklist items")
	}
	defer rows.Close()

	var items []*domain.ChecklistItem
	for rows.Next() {
		item := &domain.ChecklistItem{}
		if err := rows.Scan(&item.ID, &item.Label, &item.Position, &item.Active, &item.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *ChecklistRepository) ListCompletions(ctx context.Context, bikeID uuid.UUID) ([]*domain.ChecklistCompletion, error) {
	query := `SELECT bike_id, checklist_item_id, completed_by, completed_at
		FROM checklist_completions WHERE bike_id = $1 ORDER BY completed_at`

	rows, err := r.db.QueryContext(ctx, query, bikeID)
	if err != nil {
		return nil, mapError(err, "checklist completions")
	}
	defer rows.Close()

	var completions []*domain.ChecklistCompletion
	for rows.Next() {
		c := &domain.ChecklistCompletion{}
		if err := rows.Scan(&c.BikeID, &c.ChecklistItemID, &c.CompletedBy, &c.CompletedAt); err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return completions, nil
}

func (r *ChecklistRepository) UpsertCompletion(ctx context.Context, c *domain.ChecklistCompletion) error {
	query := `INSERT INTO checklist_completions (bike_id, checklist_item_id, completed_by, completed_at)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (bike_id, checklist_item_id)
	DO UPDATE SET completed_by = EXCLUDED.completed_by, completed_at = EXCLUDED.completed_at`

	_, err := r.db.ExecContext(ctx, query, c.BikeID, c.ChecklistItemID, c.CompletedBy, c.CompletedAt)
	return mapError(err, "checklist completion")
}

func (r *ChecklistRepository) DeleteCompletion(ctx context.Context, bikeID, itemID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM checklist_completions WHERE bike_id = $1 AND checklist_item_id = $2`, bikeID, itemID)
	return mapError(err, "checklist completion")
}

func (r *ChecklistRepository) DeleteCompletionsByBike(ctx context.Context, bikeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM checklist_completions WHERE bike_id = $1`, bikeID)
	return mapError(err, "checklist completions")
}
