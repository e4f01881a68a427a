package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

const registrationColumns = `id, bike_id, repair_type_id, mechanic_id, completed, completed_at,
	last_modified_by, last_modified_at, created_at`

type RegistrationRepository struct {
	db dbtx
}

func NewRegistrationRepository(db dbtx) *RegistrationRepository {
	return &RegistrationRepository{db: db}
}

func scanRegistration(row rowScanner) (*domain.WorkRegistration, error) {
	reg := &domain.WorkRegistration{}
	err := row.Scan(
		&reg.ID,
		&reg.BikeID,
		&reg.RepairTypeID,
		&reg.MechanicID,
		&reg.Completed,
		&reg.CompletedAt,
		&reg.LastModifiedBy,
		&reg.LastModifiedAt,
		&reg.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return reg, nil
}

func (r *RegistrationRepository) CreateRegistration(ctx context.Context, reg *domain.WorkRegistration) (*domain.WorkRegistration, error) {
	if reg.ID == uuid.Nil {
		reg.ID = uuid.New()
	}
	query := `INSERT INTO work_registrations (id, bike_id, repair_type_id, mechanic_id, completed, completed_at,
		last_modified_by, last_modified_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING created_at`

	err := r.db.QueryRowContext(ctx, query,
		reg.ID,
		reg.BikeID,
		reg.RepairTypeID,
		reg.MechanicID,
		reg.Completed,
		reg.CompletedAt,
		reg.LastModifiedBy,
		reg.LastModifiedAt,
	).Scan(&reg.CreatedAt)
	if err != nil {
		return nil, mapError(err, "work registration")
	}
	return reg, nil
}

func (r *RegistrationRepository) GetRegistrationByID(ctx context.Context, regID uuid.UUID) (*domain.WorkRegistration, error) {
	query := `SELECT ` + registrationColumns + ` FROM work_registrations WHERE id = $1`
	reg, err := scanRegistration(r.db.QueryRowContext(ctx, query, regID))
	if err != nil {
		return nil, mapError(err, "work registration")
	}
	return reg, nil
}

func (r *RegistrationRepository) list(ctx context.Context, query string, args ...interface{}) ([]*domain.WorkRegistration, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "work registrations")
	}
	defer rows.Close()

	var regs []*domain.WorkRegistration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, reg)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return regs, nil
}

func (r *RegistrationRepository) ListRegistrationsByBike(ctx context.Context, bikeID uuid.UUID) ([]*domain.WorkRegistration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM work_registrations
		WHERE bike_id = $1 ORDER BY created_at, id`, bikeID)
}

func (r *RegistrationRepository) ListCompletedRegistrations(ctx context.Context, bikeIDs []uuid.UUID) ([]*domain.WorkRegistration, error) {
	ids := make([]string, len(bikeIDs))
	for i, id := range bikeIDs {
		ids[i] = id.String()
	}
	return r.list(ctx, `SELECT `+registrationColumns+` FROM work_registrations
		WHERE completed AND bike_id = ANY($1::uuid[]) ORDER BY completed_at, id`, pq.Array(ids))
}

func (r *RegistrationRepository) ListCompletedBetween(ctx context.Context, from, to time.Time) ([]*domain.WorkRegistration, error) {
	return r.list(ctx, `SELECT `+registrationColumns+` FROM work_registrations
		WHERE completed AND completed_at >= $1 AND completed_at < $2 ORDER BY completed_at, id`, from, to)
}

func (r *RegistrationRepository) CompletePendingRegistration(ctx context.Context, reg *domain.WorkRegistration) (bool, error) {
	query := `UPDATE work_registrations
		SET completed = TRUE, completed_at = $1, mechanic_id = $2, last_modified_by = $3, last_modified_at = $4
		WHERE id = $5 AND NOT completed`

	res, err := r.db.ExecContext(ctx, query,
		reg.CompletedAt,
		reg.MechanicID,
		reg.LastModifiedBy,
		reg.LastModifiedAt,
		reg.ID,
	)
	if err != nil {
		return false, mapError(err, "work registration")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *RegistrationRepository) DeletePendingRegistration(ctx context.Context, regID uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM work_registrations WHERE id = $1 AND NOT completed`, regID)
	if err != nil {
		return false, mapError(err, "work registration")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *RegistrationRepository) DeleteRegistrationsByBike(ctx context.Context, bikeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM work_registrations WHERE bike_id = $1`, bikeID)
	return mapError(err, "work registrations")
}

func (r *RegistrationRepository) DeleteRegistrationsByRepairType(ctx context.Context, repairTypeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM work_registrations WHERE repair_type_id = $1`, repairTypeID)
	return mapError(err, "work registrations")
}
