package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

const inventoryColumns = `id, repair_type_id, quantity, min_stock_level, purchase_price, unlimited_stock, group_id, updated_at`

type InventoryRepository struct {
	db dbtx
}

func NewInventoryRepository(db dbtx) *InventoryRepository {
	return &InventoryRepository{db: db}
}

func scanInventoryItem(row rowScanner) (*domain.InventoryItem, error) {
	item := &domain.InventoryItem{}
	err := row.Scan(
		&item.ID,
		&item.RepairTypeID,
		&item.Quantity,
		&item.MinStockLevel,
		&item.PurchasePrice,
		&item.UnlimitedStock,
		&item.GroupID,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *InventoryRepository) CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	query := `INSERT INTO inventory_items (id, repair_type_id, quantity, min_stock_level, purchase_price, unlimited_stock, group_id)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	RETURNING ` + inventoryColumns

	created, err := scanInventoryItem(r.db.QueryRowContext(ctx, query,
		item.ID,
		item.RepairTypeID,
		domain.ClampQuantity(item.Quantity),
		item.MinStockLevel,
		item.PurchasePrice,
		item.UnlimitedStock,
		item.GroupID,
	))
	if err != nil {
		return nil, mapError(err, "inventory item")
	}
	return created, nil
}

func (r *InventoryRepository) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE id = $1`
	item, err := scanInventoryItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err, "inventory item")
	}
	return item, nil
}

func (r *InventoryRepository) GetItemByRepairType(ctx context.Context, repairTypeID uuid.UUID) (*domain.InventoryItem, error) {
	query := `SELECT ` + inventoryColumns + ` FROM inventory_items WHERE repair_type_id = $1`
	item, err := scanInventoryItem(r.db.QueryRowContext(ctx, query, repairTypeID))
	if err != nil {
		return nil, mapError(err, "inventory item")
	}
	return item, nil
}

func (r *InventoryRepository) listItems(ctx context.Context, query string, args ...interface{}) ([]*domain.InventoryItem, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "inventory items")
	}
	defer rows.Close()

	var items []*domain.InventoryItem
	for rows.Next() {
		item, err := scanInventoryItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *InventoryRepository) ListItems(ctx context.Context) ([]*domain.InventoryItem, error) {
	return r.listItems(ctx, `SELECT `+inventoryColumns+` FROM inventory_items ORDER BY id`)
}

func (r *InventoryRepository) ListItemsByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.InventoryItem, error) {
	return r.listItems(ctx, `SELECT `+inventoryColumns+` FROM inventory_items WHERE group_id = $1 ORDER BY id`, groupID)
}

func (r *InventoryRepository) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*domain.InventoryItem, error) {
	query := `UPDATE inventory_items
		SET quantity = GREATEST(quantity + $1, 0), updated_at = CURRENT_TIMESTAMP
		WHERE id = $2
		RETURNING ` + inventoryColumns

	item, err := scanInventoryItem(r.db.QueryRowContext(ctx, query, delta, id))
	if err != nil {
		return nil, mapError(err, "inventory item")
	}
	return item, nil
}

func (r *InventoryRepository) UpdateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	query := `UPDATE inventory_items
		SET
			quantity = $1,
			min_stock_level = $2,
			purchase_price = $3,
			unlimited_stock = $4,
			group_id = $5,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $6
		RETURNING ` + inventoryColumns

	updated, err := scanInventoryItem(r.db.QueryRowContext(ctx, query,
		domain.ClampQuantity(item.Quantity),
		item.MinStockLevel,
		item.PurchasePrice,
		item.UnlimitedStock,
		item.GroupID,
		item.ID,
	))
	if err != nil {
		return nil, mapError(err, "inventory item")
	}
	return updated, nil
}

func (r *InventoryRepository) DeleteItemByRepairType(ctx context.Context, repairTypeID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM inventory_items WHERE repair_type_id = $1`, repairTypeID)
	return mapError(err, "inventory item")
}

func (r *InventoryRepository) CreateGroup(ctx context.Context, group *domain.InventoryGroup) (*domain.InventoryGroup, error) {
	if group.ID == uuid.Nil {
		group.ID = uuid.New()
	}
	query := `INSERT INTO inventory_groups (id, name, min_stock_level)
	VALUES ($1, $2, $3)
	RETURNING created_at`

	if err := r.db.QueryRowContext(ctx, query, group.ID, group.Name, group.MinStockLevel).Scan(&group.CreatedAt); err != nil {
		return nil, mapError(err, "inventory group")
	}
	return group, nil
}

func (r *InventoryRepository) GetGroupByID(ctx context.Context, id uuid.UUID) (*domain.InventoryGroup, error) {
	group := &domain.InventoryGroup{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, min_stock_level, created_at FROM inventory_groups WHERE id = $1`, id,
	).Scan(&group.ID, &group.Name, &group.MinStockLevel, &group.CreatedAt)
	if err != nil {
		return nil, mapError(err, "inventory group")
	}
	return group, nil
}

func (r *InventoryRepository) ListGroups(ctx context.Context) ([]*domain.InventoryGroup, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, min_stock_level, created_at FROM inventory_groups ORDER BY name`)
	if err != nil {
		return nil, mapError(err, "inventory groups")
	}
	defer rows.Close()

	var groups []*domain.InventoryGroup
	for rows.Next() {
		g := &domain.InventoryGroup{}
		if err := rows.Scan(&g.ID, &g.Name, &g.MinStockLevel, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return groups, nil
}
