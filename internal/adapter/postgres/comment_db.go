package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type CommentRepository struct {
	db dbtx
}

func NewCommentRepository(db dbtx) *CommentRepository {
	return &CommentRepository{db: db}
}

func (r *CommentRepository) CreateComment(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	query := `INSERT INTO comments (id, bike_id, author_id, body)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, c.ID, c.BikeID, c.AuthorID, c.Body).Scan(&c.CreatedAt); err != nil {
		return nil, mapError(err, "comment")
	}
	return c, nil
}

func (r *CommentRepository) ListCommentsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, bike_id, author_id, body, created_at FROM comments WHERE bike_id = $1 ORDER BY created_at`, bikeID)
	if err != nil {
		return nil, mapError(err, "comments")
	}
	defer rows.Close()

	var comments []*domain.Comment
	for rows.Next() {
		c := &domain.Comment{}
		if err := rows.Scan(&c.ID, &c.BikeID, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return comments, nil
}

func (r *CommentRepository) DeleteCommentsByBike(ctx context.Context, bikeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE bike_id = $1`, bikeID)
	return mapError(err, "comments")
}

type CallRepository struct {
	db dbtx
}

func NewCallRepository(db dbtx) *CallRepository {
	return &CallRepository{db: db}
}

func (r *CallRepository) ListCallStatuses(ctx context.Context) ([]*domain.CallStatus, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, label FROM call_statuses ORDER BY label`)
	if err != nil {
		return nil, mapError(err, "call statuses")
	}
	defer rows.Close()

	var statuses []*domain.CallStatus
	for rows.Next() {
		s := &domain.CallStatus{}
		if err := rows.Scan(&s.ID, &s.Label); err != nil {
			return nil, err
		}
		statuses = append(statuses, s)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (r *CallRepository) GetCallStatusByID(ctx context.Context, id uuid.UUID) (*domain.CallStatus, error) {
	s := &domain.CallStatus{}
	if err := r.db.QueryRowContext(ctx, `SELECT id, label FROM call_statuses WHERE id = $1`, id).Scan(&s.ID, &s.Label); err != nil {
		return nil, mapError(err, "call status")
	}
	return s, nil
}

func (r *CallRepository) CreateCallRecord(ctx context.Context, rec *domain.CallRecord) (*domain.CallRecord, error) {
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	query := `INSERT INTO call_history (id, bike_id, call_status_id, notes, called_by)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING called_at`

	err := r.db.QueryRowContext(ctx, query, rec.ID, rec.BikeID, rec.CallStatusID, rec.Notes, rec.CalledBy).Scan(&rec.CalledAt)
	if err != nil {
		return nil, mapError(err, "call record")
	}
	return rec, nil
}

func (r *CallRepository) ListCallsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.CallRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, bike_id, call_status_id, notes, called_by, called_at FROM call_history
		WHERE bike_id = $1 ORDER BY called_at`, bikeID)
	if err != nil {
		return nil, mapError(err, "call history")
	}
	defer rows.Close()

	var records []*domain.CallRecord
	for rows.Next() {
		rec := &domain.CallRecord{}
		if err := rows.Scan(&rec.ID, &rec.BikeID, &rec.CallStatusID, &rec.Notes, &rec.CalledBy, &rec.CalledAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *CallRepository) DeleteCallsByBike(ctx context.Context, bikeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM call_history WHERE bike_id = $1`, bikeID)
	return mapError(err, "call history")
}
