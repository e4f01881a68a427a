package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

const availabilityColumns = `id, mechanic_id, date, start_time, end_time, status, reviewed_by, reviewed_at, created_at`

type AvailabilityRepository struct {
	db dbtx
}

func NewAvailabilityRepository(db dbtx) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func scanAvailability(row rowScanner) (*domain.MechanicAvailability, error) {
	a := &domain.MechanicAvailability{}
	err := row.Scan(
		&a.ID,
		&a.MechanicID,
		&a.Date,
		&a.StartTime,
		&a.EndTime,
		&a.Status,
		&a.ReviewedBy,
		&a.ReviewedAt,
		&a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return a, nil
}

func (r *AvailabilityRepository) CreateAvailability(ctx context.Context, a *domain.MechanicAvailability) (*domain.MechanicAvailability, error) {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	query := `INSERT INTO mechanic_availability (id, mechanic_id, date, start_time, end_time, status)
	VALUES ($1, $2, $3, $4, $5, $6)
	RETURNING ` + availabilityColumns

	created, err := scanAvailability(r.db.QueryRowContext(ctx, query,
		a.ID,
		a.MechanicID,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.Status,
	))
	if err != nil {
		return nil, mapError(err, "availability")
	}
	return created, nil
}

func (r *AvailabilityRepository) GetAvailabilityByID(ctx context.Context, id uuid.UUID) (*domain.MechanicAvailability, error) {
	a, err := scanAvailability(r.db.QueryRowContext(ctx,
		`SELECT `+availabilityColumns+` FROM mechanic_availability WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "availability")
	}
	return a, nil
}

func (r *AvailabilityRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.MechanicAvailability, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "availability")
	}
	defer rows.Close()

	var list []*domain.MechanicAvailability
	for rows.Next() {
		a, err := scanAvailability(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, a)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *AvailabilityRepository) ListAvailabilityByMechanic(ctx context.Context, mechanicID uuid.UUID) ([]*domain.MechanicAvailability, error) {
	return r.list(ctx, `SELECT `+availabilityColumns+` FROM mechanic_availability
		WHERE mechanic_id = $1 ORDER BY date, start_time`, mechanicID)
}

func (r *AvailabilityRepository) ListAvailabilityByStatus(ctx context.Context, status domain.AvailabilityStatus) ([]*domain.MechanicAvailability, error) {
	return r.list(ctx, `SELECT `+availabilityColumns+` FROM mechanic_availability
		WHERE status = $1 ORDER BY date, start_time`, status)
}

func (r *AvailabilityRepository) UpdateAvailability(ctx context.Context, a *domain.MechanicAvailability) (*domain.MechanicAvailability, error) {
	query := `UPDATE mechanic_availability
		SET date = $1, start_time = $2, end_time = $3, status = $4, reviewed_by = $5, reviewed_at = $6
		WHERE id = $7
		RETURNING ` + availabilityColumns

	updated, err := scanAvailability(r.db.QueryRowContext(ctx, query,
		a.Date,
		a.StartTime,
		a.EndTime,
		a.Status,
		a.ReviewedBy,
		a.ReviewedAt,
		a.ID,
	))
	if err != nil {
		return nil, mapError(err, "availability")
	}
	return updated, nil
}
