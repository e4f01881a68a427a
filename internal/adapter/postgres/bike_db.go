package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

const bikeColumns = `id, frame_number, model, workflow_status, table_number, current_mechanic_id,
	is_sales_bike, diagnosed_by, diagnosed_at, customer_phone, call_status_id, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

type BikeRepository struct {
	db dbtx
}

func NewBikeRepository(db dbtx) *BikeRepository {
	return &BikeRepository{db: db}
}

func scanBike(row rowScanner) (*domain.Bike, error) {
	bike := &domain.Bike{}
	err := row.Scan(
		&bike.ID,
		&bike.FrameNumber,
		&bike.Model,
		&bike.WorkflowStatus,
		&bike.TableNumber,
		&bike.CurrentMechanicID,
		&bike.IsSalesBike,
		&bike.DiagnosedBy,
		&bike.DiagnosedAt,
		&bike.CustomerPhone,
		&bike.CallStatusID,
		&bike.CreatedAt,
		&bike.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return bike, nil
}

func (r *BikeRepository) CreateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	if bike.ID == uuid.Nil {
		bike.ID = uuid.New()
	}
	query := `INSERT INTO bikes (id, frame_number, model, workflow_status, table_number, current_mechanic_id,
		is_sales_bike, diagnosed_by, diagnosed_at, customer_phone, call_status_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		bike.ID,
		bike.FrameNumber,
		bike.Model,
		bike.WorkflowStatus,
		bike.TableNumber,
		bike.CurrentMechanicID,
		bike.IsSalesBike,
		bike.DiagnosedBy,
		bike.DiagnosedAt,
		bike.CustomerPhone,
		bike.CallStatusID,
	).Scan(&bike.CreatedAt, &bike.UpdatedAt)
	if err != nil {
		return nil, mapError(err, "bike")
	}
	return bike, nil
}

func (r *BikeRepository) GetBikeByID(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE id = $1`
	bike, err := scanBike(r.db.QueryRowContext(ctx, query, bikeID))
	if err != nil {
		return nil, mapError(err, "bike")
	}
	return bike, nil
}

func (r *BikeRepository) GetBikeForUpdate(ctx context.Context, bikeID uuid.UUID) (*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE id = $1 FOR UPDATE`
	bike, err := scanBike(r.db.QueryRowContext(ctx, query, bikeID))
	if err != nil {
		return nil, mapError(err, "bike")
	}
	return bike, nil
}

func (r *BikeRepository) GetBikeByFrameNumber(ctx context.Context, frameNumber string) (*domain.Bike, error) {
	query := `SELECT ` + bikeColumns + ` FROM bikes WHERE frame_number = $1`
	bike, err := scanBike(r.db.QueryRowContext(ctx, query, frameNumber))
	if err != nil {
		return nil, mapError(err, "bike")
	}
	return bike, nil
}

func (r *BikeRepository) listBikes(ctx context.Context, query string, args ...interface{}) ([]*domain.Bike, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "bikes")
	}
	defer rows.Close()

	var bikes []*domain.Bike
	for rows.Next() {
		bike, err := scanBike(rows)
		if err != nil {
			return nil, err
		}
		bikes = append(bikes, bike)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return bikes, nil
}

func (r *BikeRepository) ListBikes(ctx context.Context, status *domain.WorkflowStatus) ([]*domain.Bike, error) {
	if status == nil {
		return r.listBikes(ctx, `SELECT `+bikeColumns+` FROM bikes ORDER BY created_at`)
	}
	return r.listBikes(ctx, `SELECT `+bikeColumns+` FROM bikes WHERE workflow_status = $1 ORDER BY created_at`, *status)
}

func (r *BikeRepository) ListBikesWithTable(ctx context.Context) ([]*domain.Bike, error) {
	return r.listBikes(ctx, `SELECT `+bikeColumns+` FROM bikes
		WHERE table_number IS NOT NULL AND table_number <> ''
		ORDER BY table_number, created_at`)
}

func (r *BikeRepository) UpdateBike(ctx context.Context, bike *domain.Bike) (*domain.Bike, error) {
	query := `UPDATE bikes
		SET
			frame_number = $1,
			model = $2,
			workflow_status = $3,
			table_number = $4,
			current_mechanic_id = $5,
			is_sales_bike = $6,
			diagnosed_by = $7,
			diagnosed_at = $8,
			customer_phone = $9,
			call_status_id = $10,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $11
		RETURNING ` + bikeColumns

	updated, err := scanBike(r.db.QueryRowContext(ctx, query,
		bike.FrameNumber,
		bike.Model,
		bike.WorkflowStatus,
		bike.TableNumber,
		bike.CurrentMechanicID,
		bike.IsSalesBike,
		bike.DiagnosedBy,
		bike.DiagnosedAt,
		bike.CustomerPhone,
		bike.CallStatusID,
		bike.ID,
	))
	if err != nil {
		return nil, mapError(err, "bike")
	}
	return updated, nil
}

func (r *BikeRepository) DeleteBike(ctx context.Context, bikeID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM bikes WHERE id = $1`, bikeID)
	if err != nil {
		return mapError(err, "bike")
	}
	if err := expectOneRow(res, "bike"); err != nil {
		return fmt.Errorf("delete bike %s: %w", bikeID, err)
	}
	return nil
}
