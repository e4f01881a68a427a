package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
)

type repairTypeRepo struct{ s *Store }

func (r repairTypeRepo) CreateRepairType(ctx context.Context, rt *domain.RepairType) (*domain.RepairType, error) {
	var out domain.RepairType
	err := r.s.run(func(t *tables) error {
		for _, existing := range t.repairTypes {
			if existing.Name == rt.Name {
				return fmt.Errorf("repair type %q: %w", rt.Name, domain.ErrConflict)
			}
		}
		row := *rt
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.Models = append([]domain.BikeModel(nil), rt.Models...)
		row.CreatedAt = now()
		t.repairTypes[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r repairTypeRepo) GetRepairTypeByID(ctx context.Context, id uuid.UUID) (*domain.RepairType, error) {
	var out domain.RepairType
	err := r.s.run(func(t *tables) error {
		rt, ok := t.repairTypes[id]
		if !ok {
			return fmt.Errorf("repair type: %w", domain.ErrNotFound)
		}
		out = rt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r repairTypeRepo) GetRepairTypeByName(ctx context.Context, name string) (*domain.RepairType, error) {
	var out *domain.RepairType
	err := r.s.run(func(t *tables) error {
		for _, rt := range t.repairTypes {
			if rt.Name == name {
				row := rt
				out = &row
				return nil
			}
		}
		return fmt.Errorf("repair type %q: %w", name, domain.ErrNotFound)
	})
	return out, err
}

func (r repairTypeRepo) ListRepairTypes(ctx context.Context) ([]*domain.RepairType, error) {
	var out []*domain.RepairType
	err := r.s.run(func(t *tables) error {
		for _, rt := range t.repairTypes {
			row := rt
			out = append(out, &row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}

func (r repairTypeRepo) DeleteRepairTypeModels(ctx context.Context, repairTypeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		rt, ok := t.repairTypes[repairTypeID]
		if !ok {
			return nil
		}
		rt.Models = nil
		t.repairTypes[repairTypeID] = rt
		return nil
	})
}

func (r repairTypeRepo) DeleteRepairType(ctx context.Context, id uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		if _, ok := t.repairTypes[id]; !ok {
			return fmt.Errorf("repair type: %w", domain.ErrNotFound)
		}
		for _, reg := range t.registrations {
			if reg.RepairTypeID == id {
				return fmt.Errorf("repair type still referenced by work registrations: %w", domain.ErrConflict)
			}
		}
		for _, item := range t.items {
			if item.RepairTypeID == id {
				return fmt.Errorf("repair type still referenced by inventory: %w", domain.ErrConflict)
			}
		}
		delete(t.repairTypes, id)
		return nil
	})
}

type inventoryRepo struct{ s *Store }

func (r inventoryRepo) CreateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := r.s.run(func(t *tables) error {
		if _, ok := t.repairTypes[item.RepairTypeID]; !ok {
			return fmt.Errorf("repair type: %w", domain.ErrNotFound)
		}
		for _, existing := range t.items {
			if existing.RepairTypeID == item.RepairTypeID {
				return fmt.Errorf("inventory item for repair type: %w", domain.ErrConflict)
			}
		}
		row := *item
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.Quantity = domain.ClampQuantity(row.Quantity)
		row.UpdatedAt = now()
		t.items[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r inventoryRepo) GetItemByID(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := r.s.run(func(t *tables) error {
		item, ok := t.items[id]
		if !ok {
			return fmt.Errorf("inventory item: %w", domain.ErrNotFound)
		}
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r inventoryRepo) GetItemByRepairType(ctx context.Context, repairTypeID uuid.UUID) (*domain.InventoryItem, error) {
	var out *domain.InventoryItem
	err := r.s.run(func(t *tables) error {
		for _, item := range t.items {
			if item.RepairTypeID == repairTypeID {
				row := item
				out = &row
				return nil
			}
		}
		return fmt.Errorf("inventory item: %w", domain.ErrNotFound)
	})
	return out, err
}

func (r inventoryRepo) listWhere(keep func(domain.InventoryItem) bool) ([]*domain.InventoryItem, error) {
	var out []*domain.InventoryItem
	err := r.s.run(func(t *tables) error {
		for _, item := range t.items {
			if keep(item) {
				row := item
				out = append(out, &row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID.String() < out[j].ID.String() })
	return out, err
}

func (r inventoryRepo) ListItems(ctx context.Context) ([]*domain.InventoryItem, error) {
	return r.listWhere(func(domain.InventoryItem) bool { return true })
}

func (r inventoryRepo) ListItemsByGroup(ctx context.Context, groupID uuid.UUID) ([]*domain.InventoryItem, error) {
	return r.listWhere(func(item domain.InventoryItem) bool {
		return item.GroupID != nil && *item.GroupID == groupID
	})
}

func (r inventoryRepo) AdjustQuantity(ctx context.Context, id uuid.UUID, delta int) (*domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := r.s.run(func(t *tables) error {
		item, ok := t.items[id]
		if !ok {
			return fmt.Errorf("inventory item: %w", domain.ErrNotFound)
		}
		item.Quantity = domain.ClampQuantity(item.Quantity + delta)
		item.UpdatedAt = now()
		t.items[id] = item
		out = item
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r inventoryRepo) UpdateItem(ctx context.Context, item *domain.InventoryItem) (*domain.InventoryItem, error) {
	var out domain.InventoryItem
	err := r.s.run(func(t *tables) error {
		if _, ok := t.items[item.ID]; !ok {
			return fmt.Errorf("inventory item: %w", domain.ErrNotFound)
		}
		if item.GroupID != nil {
			if _, ok := t.groups[*item.GroupID]; !ok {
				return fmt.Errorf("inventory group: %w", domain.ErrNotFound)
			}
		}
		row := *item
		row.Quantity = domain.ClampQuantity(row.Quantity)
		row.UpdatedAt = now()
		t.items[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r inventoryRepo) DeleteItemByRepairType(ctx context.Context, repairTypeID uuid.UUID) error {
	return r.s.run(func(t *tables) error {
		for id, item := range t.items {
			if item.RepairTypeID == repairTypeID {
				delete(t.items, id)
			}
		}
		return nil
	})
}

func (r inventoryRepo) CreateGroup(ctx context.Context, group *domain.InventoryGroup) (*domain.InventoryGroup, error) {
	var out domain.InventoryGroup
	err := r.s.run(func(t *tables) error {
		row := *group
		if row.ID == uuid.Nil {
			row.ID = uuid.New()
		}
		row.CreatedAt = now()
		t.groups[row.ID] = row
		out = row
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r inventoryRepo) GetGroupByID(ctx context.Context, id uuid.UUID) (*domain.InventoryGroup, error) {
	var out domain.InventoryGroup
	err := r.s.run(func(t *tables) error {
		g, ok := t.groups[id]
		if !ok {
			return fmt.Errorf("inventory group: %w", domain.ErrNotFound)
		}
		out = g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r inventoryRepo) ListGroups(ctx context.Context) ([]*domain.InventoryGroup, error) {
	var out []*domain.InventoryGroup
	err := r.s.run(func(t *tables) error {
		for _, g := range t.groups {
			row := g
			out = append(out, &row)
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, err
}
