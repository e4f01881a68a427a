package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

const repairTypeSelect = `SELECT rt.id, rt.name, rt.price, rt.points, rt.created_at,
		COALESCE(array_agg(m.model ORDER BY m.model) FILTER (WHERE m.model IS NOT NULL), '{}')
	FROM repair_types rt
	LEFT JOIN repair_type_models m ON m.repair_type_id = rt.id`

type RepairTypeRepository struct {
	db dbtx
}

func NewRepairTypeRepository(db dbtx) *RepairTypeRepository {
	return &RepairTypeRepository{db: db}
}

func scanRepairType(row rowScanner) (*domain.RepairType, error) {
	rt := &domain.RepairType{}
	var models []string
	if err := row.Scan(&rt.ID, &rt.Name, &rt.Price, &rt.Points, &rt.CreatedAt, pq.Array(&models)); err != nil {
		return nil, err
	}
	for _, m := range models {
		rt.Models = append(rt.Models, domain.BikeModel(m))
	}
	return rt, nil
}

func (r *RepairTypeRepository) CreateRepairType(ctx context.Context, rt *domain.RepairType) (*domain.RepairType, error) {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	query := `INSERT INTO repair_types (id, name, price, points)
	VALUES ($1, $2, $3, $4)
	RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, rt.ID, rt.Name, rt.Price, rt.Points).Scan(&rt.CreatedAt); err != nil {
		return nil, mapError(err, "repair type")
	}
	for _, m := range rt.Models {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO repair_type_models (repair_type_id, model) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			rt.ID, m)
		if err != nil {
			return nil, mapError(err, "repair type model")
		}
	}
	return rt, nil
}

func (r *RepairTypeRepository) GetRepairTypeByID(ctx context.Context, id uuid.UUID) (*domain.RepairType, error) {
	query := repairTypeSelect + ` WHERE rt.id = $1 GROUP BY rt.id`
	rt, err := scanRepairType(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "repair type")
	}
	return rt, nil
}

func (r *RepairTypeRepository) GetRepairTypeByName(ctx context.Context, name string) (*domain.RepairType, error) {
	query := repairTypeSelect + ` WHERE rt.name = $1 GROUP BY rt.id`
	rt, err := scanRepairType(r.db.QueryRowContext(ctx, query, name))
	if err != nil {
		return nil, mapError(err, "repair type")
	}
	return rt, nil
}

func (r *RepairTypeRepository) ListRepairTypes(ctx context.Context) ([]*domain.RepairType, error) {
	rows, err := r.db.QueryContext(ctx, repairTypeSelect+` GROUP BY rt.id ORDER BY rt.name`)
	if err != nil {
		return nil, mapError(err, "repair types")
	}
	defer rows.Close()

	var list []*domain.RepairType
	for rows.Next() {
		rt, err := scanRepairType(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, rt)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RepairTypeRepository) DeleteRepairTypeModels(ctx context.Context, repairTypeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM repair_type_models WHERE repair_type_id = $1`, repairTypeID)
	return mapError(err, "repair type models")
}

func (r *RepairTypeRepository) DeleteRepairType(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM repair_types WHERE id = $1`, id)
	if err != nil {
		return mapError(err, "repair type")
	}
	return expectOneRow(res, "repair type")
}
