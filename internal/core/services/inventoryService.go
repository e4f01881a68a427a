package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sm8ta/webike_workshop_service/internal/core/domain"
	"github.com/sm8ta/webike_workshop_service/internal/core/ports"
)

// consumeStock takes one unit of the item linked to repairTypeID. Repair types without an
// inventory row and unlimited items are left alone; both return a nil item.
func consumeStock(ctx context.Context, tx ports.Store, repairTypeID uuid.UUID) (*domain.InventoryItem, error) {
	item, err := tx.Inventory().GetItemByRepairType(ctx, repairTypeID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if item.UnlimitedStock {
		return nil, nil
	}
	return tx.Inventory().AdjustQuantity(ctx, item.ID, -1)
}

type InventoryService struct {
	store    ports.Store
	logger   ports.LoggerPort
	validate *validator.Validate
	cache    ports.CachePort
	notifier
	debouncer *Debouncer
}

func NewInventoryService(
	store ports.Store,
	logger ports.LoggerPort,
	validate *validator.Validate,
	cache ports.CachePort,
	feed ports.ChangeFeed,
	debounce time.Duration,
) *InventoryService {
	return &InventoryService{
		store:     store,
		logger:    logger,
		validate:  validate,
		cache:     cache,
		notifier:  notifier{logger: logger, cache: cache, feed: feed},
		debouncer: NewDebouncer(debounce),
	}
}

func (s *InventoryService) itemChanged(ctx context.Context, itemID uuid.UUID) {
	s.invalidate(stockOverviewKey)
	s.publish(ctx, domain.TableInventoryItems, domain.ChangeUpdate, itemID)
}

// CreateProduct adds a repair type to the catalog together with its stock row.
func (s *InventoryService) CreateProduct(ctx context.Context, p *domain.Product) (*domain.RepairType, *domain.InventoryItem, error) {
	if err := s.validate.Struct(p); err != nil {
		s.logger.Error("Product validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, nil, validationError(err)
	}
	for _, m := range p.Models {
		if !m.Valid() {
			return nil, nil, fmt.Errorf("%w: unknown bike model %q", domain.ErrValidation, m)
		}
	}
	if p.Price.IsNegative() || p.PurchasePrice.IsNegative() {
		return nil, nil, fmt.Errorf("%w: prices must not be negative", domain.ErrValidation)
	}

	var (
		rt   *domain.RepairType
		item *domain.InventoryItem
	)
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		var err error
		rt, err = tx.RepairTypes().CreateRepairType(ctx, &domain.RepairType{
			Name:   strings.TrimSpace(p.Name),
			Price:  p.Price,
			Points: p.Points,
			Models: p.Models,
		})
		if err != nil {
			return err
		}
		if p.GroupID != nil {
			if _, err := tx.Inventory().GetGroupByID(ctx, *p.GroupID); err != nil {
				return err
			}
		}
		item, err = tx.Inventory().CreateItem(ctx, &domain.InventoryItem{
			RepairTypeID:   rt.ID,
			Quantity:       domain.ClampQuantity(p.Quantity),
			MinStockLevel:  p.MinStockLevel,
			PurchasePrice:  p.PurchasePrice,
			UnlimitedStock: p.UnlimitedStock,
			GroupID:        p.GroupID,
		})
		return err
	})
	if err != nil {
		s.logger.Error("Failed to create product", map[string]interface{}{
			"error": err.Error(),
			"name":  p.Name,
		})
		return nil, nil, err
	}

	s.invalidate(stockOverviewKey)
	s.publish(ctx, domain.TableInventoryItems, domain.ChangeInsert, item.ID)

	s.logger.Info("Product created", map[string]interface{}{
		"repair_type_id": rt.ID,
		"item_id":        item.ID,
		"name":           rt.Name,
	})
	return rt, item, nil
}

// DeleteProduct removes a repair type with everything hanging off it: the stock row, its
// registrations and the model mappings, in one transaction.
func (s *InventoryService) DeleteProduct(ctx context.Context, repairTypeID uuid.UUID) error {
	var itemID uuid.UUID
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		rt, err := tx.RepairTypes().GetRepairTypeByID(ctx, repairTypeID)
		if err != nil {
			return err
		}
		if rt.Name == domain.DiagnoseRepairTypeName {
			return fmt.Errorf("%w: the %s repair type cannot be deleted", domain.ErrForbidden, rt.Name)
		}
		if item, err := tx.Inventory().GetItemByRepairType(ctx, repairTypeID); err == nil {
			itemID = item.ID
		} else if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if err := tx.Inventory().DeleteItemByRepairType(ctx, repairTypeID); err != nil {
			return err
		}
		if err := tx.Registrations().DeleteRegistrationsByRepairType(ctx, repairTypeID); err != nil {
			return err
		}
		if err := tx.RepairTypes().DeleteRepairTypeModels(ctx, repairTypeID); err != nil {
			return err
		}
		return tx.RepairTypes().DeleteRepairType(ctx, repairTypeID)
	})
	if err != nil {
		s.logger.Error("Failed to delete product", map[string]interface{}{
			"error":          err.Error(),
			"repair_type_id": repairTypeID,
		})
		return err
	}

	s.invalidate(stockOverviewKey)
	if itemID != uuid.Nil {
		s.publish(ctx, domain.TableInventoryItems, domain.ChangeDelete, itemID)
	}

	s.logger.Info("Product deleted", map[string]interface{}{
		"repair_type_id": repairTypeID,
	})
	return nil
}

// ListRepairTypes returns the catalog, restricted to model when given.
func (s *InventoryService) ListRepairTypes(ctx context.Context, model *domain.BikeModel) ([]*domain.RepairType, error) {
	all, err := s.store.RepairTypes().ListRepairTypes(ctx)
	if err != nil {
		s.logger.Error("Failed to list repair types", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	if model == nil {
		return all, nil
	}
	out := make([]*domain.RepairType, 0, len(all))
	for _, rt := range all {
		if rt.AppliesTo(*model) {
			out = append(out, rt)
		}
	}
	return out, nil
}

// AdjustQuantity applies a relative change, stored clamped at zero.
func (s *InventoryService) AdjustQuantity(ctx context.Context, itemID uuid.UUID, delta int) (*domain.InventoryItem, error) {
	item, err := s.store.Inventory().AdjustQuantity(ctx, itemID, delta)
	if err != nil {
		s.logger.Error("Failed to adjust quantity", map[string]interface{}{
			"error":   err.Error(),
			"item_id": itemID,
			"delta":   delta,
		})
		return nil, err
	}
	s.itemChanged(ctx, itemID)
	return item, nil
}

// SetQuantity stores an absolute quantity, clamped at zero.
func (s *InventoryService) SetQuantity(ctx context.Context, itemID uuid.UUID, quantity int) (*domain.InventoryItem, error) {
	return s.update(ctx, itemID, func(item *domain.InventoryItem) error {
		item.Quantity = domain.ClampQuantity(quantity)
		return nil
	})
}

func (s *InventoryService) SetMinStockLevel(ctx context.Context, itemID uuid.UUID, level int) (*domain.InventoryItem, error) {
	return s.update(ctx, itemID, func(item *domain.InventoryItem) error {
		if level < 0 {
			return fmt.Errorf("%w: min stock level must not be negative", domain.ErrValidation)
		}
		item.MinStockLevel = level
		return nil
	})
}

func (s *InventoryService) SetPurchasePrice(ctx context.Context, itemID uuid.UUID, price decimal.Decimal) (*domain.InventoryItem, error) {
	return s.update(ctx, itemID, func(item *domain.InventoryItem) error {
		if price.IsNegative() {
			return fmt.Errorf("%w: purchase price must not be negative", domain.ErrValidation)
		}
		item.PurchasePrice = price
		return nil
	})
}

func (s *InventoryService) SetUnlimited(ctx context.Context, itemID uuid.UUID, unlimited bool) (*domain.InventoryItem, error) {
	return s.update(ctx, itemID, func(item *domain.InventoryItem) error {
		item.UnlimitedStock = unlimited
		return nil
	})
}

// AssignGroup puts the item into groupID, or takes it out of its group when nil.
func (s *InventoryService) AssignGroup(ctx context.Context, itemID uuid.UUID, groupID *uuid.UUID) (*domain.InventoryItem, error) {
	return s.update(ctx, itemID, func(item *domain.InventoryItem) error {
		item.GroupID = groupID
		return nil
	})
}

func (s *InventoryService) update(ctx context.Context, itemID uuid.UUID, mutate func(*domain.InventoryItem) error) (*domain.InventoryItem, error) {
	var updated *domain.InventoryItem
	err := s.store.WithinTx(ctx, func(tx ports.Store) error {
		item, err := tx.Inventory().GetItemByID(ctx, itemID)
		if err != nil {
			return err
		}
		if err := mutate(item); err != nil {
			return err
		}
		updated, err = tx.Inventory().UpdateItem(ctx, item)
		return err
	})
	if err != nil {
		s.logger.Error("Failed to update inventory item", map[string]interface{}{
			"error":   err.Error(),
			"item_id": itemID,
		})
		return nil, err
	}
	s.itemChanged(ctx, itemID)
	return updated, nil
}

// ScheduleEdit parses a text-field edit now and writes it after the debounce delay.
// A newer edit of the same field of the same item replaces this one.
func (s *InventoryService) ScheduleEdit(itemID uuid.UUID, field domain.InventoryField, value string) error {
	apply, err := s.parseEdit(field, strings.TrimSpace(value))
	if err != nil {
		return err
	}
	key := itemID.String() + ":" + string(field)
	s.debouncer.Schedule(key, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := apply(ctx, itemID); err != nil {
			s.logger.Error("Debounced inventory edit failed", map[string]interface{}{
				"error":   err.Error(),
				"item_id": itemID,
				"field":   field,
			})
		}
	})
	s.logger.Debug("Inventory edit scheduled", map[string]interface{}{
		"item_id": itemID,
		"field":   field,
	})
	return nil
}

func (s *InventoryService) parseEdit(field domain.InventoryField, value string) (func(context.Context, uuid.UUID) (*domain.InventoryItem, error), error) {
	switch field {
	case domain.FieldQuantity:
		q, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%w: quantity %q is not a number", domain.ErrValidation, value)
		}
		return func(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
			return s.SetQuantity(ctx, id, q)
		}, nil
	case domain.FieldMinStockLevel:
		level, err := strconv.Atoi(value)
		if err != nil || level < 0 {
			return nil, fmt.Errorf("%w: min stock level %q", domain.ErrValidation, value)
		}
		return func(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
			return s.SetMinStockLevel(ctx, id, level)
		}, nil
	case domain.FieldPurchasePrice:
		price, err := decimal.NewFromString(strings.Replace(value, ",", ".", 1))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("%w: purchase price %q", domain.ErrValidation, value)
		}
		return func(ctx context.Context, id uuid.UUID) (*domain.InventoryItem, error) {
			return s.SetPurchasePrice(ctx, id, price)
		}, nil
	}
	return nil, fmt.Errorf("%w: unknown field %q", domain.ErrValidation, field)
}

// FlushEdits writes every pending debounced edit immediately.
func (s *InventoryService) FlushEdits() int {
	return s.debouncer.Flush()
}

func (s *InventoryService) CreateGroup(ctx context.Context, group *domain.InventoryGroup) (*domain.InventoryGroup, error) {
	if err := s.validate.Struct(group); err != nil {
		s.logger.Error("Inventory group validation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, validationError(err)
	}
	created, err := s.store.Inventory().CreateGroup(ctx, group)
	if err != nil {
		s.logger.Error("Failed to create inventory group", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	s.logger.Info("Inventory group created", map[string]interface{}{
		"group_id": created.ID,
		"name":     created.Name,
	})
	return created, nil
}

func (s *InventoryService) ListGroups(ctx context.Context) ([]*domain.InventoryGroup, error) {
	return s.store.Inventory().ListGroups(ctx)
}

// StockOverview is the stock-status-by-item read model.
func (s *InventoryService) StockOverview(ctx context.Context) ([]domain.StockLine, error) {
	if cached, err := s.cache.Get(stockOverviewKey); err == nil {
		var lines []domain.StockLine
		if err := json.Unmarshal(cached, &lines); err == nil {
			return lines, nil
		}
	}

	items, err := s.store.Inventory().ListItems(ctx)
	if err != nil {
		s.logger.Error("Failed to list inventory", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, err
	}
	groups, err := s.store.Inventory().ListGroups(ctx)
	if err != nil {
		return nil, err
	}
	repairTypes, err := s.store.RepairTypes().ListRepairTypes(ctx)
	if err != nil {
		return nil, err
	}

	groupByID := make(map[uuid.UUID]*domain.InventoryGroup, len(groups))
	for _, g := range groups {
		groupByID[g.ID] = g
	}
	members := map[uuid.UUID][]*domain.InventoryItem{}
	for _, it := range items {
		if it.GroupID != nil {
			members[*it.GroupID] = append(members[*it.GroupID], it)
		}
	}
	names := make(map[uuid.UUID]string, len(repairTypes))
	for _, rt := range repairTypes {
		names[rt.ID] = rt.Name
	}

	lines := make([]domain.StockLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, stockLine(it, groupByID, members, names))
	}

	if data, err := json.Marshal(lines); err == nil {
		if err := s.cache.Set(stockOverviewKey, data, time.Minute); err != nil {
			s.logger.Warn("Failed to cache stock overview", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	return lines, nil
}

// ItemStatus evaluates a single item, through its group when it has one.
func (s *InventoryService) ItemStatus(ctx context.Context, itemID uuid.UUID) (domain.StockLine, error) {
	item, err := s.store.Inventory().GetItemByID(ctx, itemID)
	if err != nil {
		return domain.StockLine{}, err
	}
	groupByID := map[uuid.UUID]*domain.InventoryGroup{}
	members := map[uuid.UUID][]*domain.InventoryItem{}
	if item.GroupID != nil {
		g, err := s.store.Inventory().GetGroupByID(ctx, *item.GroupID)
		if err != nil {
			return domain.StockLine{}, err
		}
		groupByID[g.ID] = g
		members[g.ID], err = s.store.Inventory().ListItemsByGroup(ctx, g.ID)
		if err != nil {
			return domain.StockLine{}, err
		}
	}
	names := map[uuid.UUID]string{}
	if rt, err := s.store.RepairTypes().GetRepairTypeByID(ctx, item.RepairTypeID); err == nil {
		names[rt.ID] = rt.Name
	}
	return stockLine(item, groupByID, members, names), nil
}

func stockLine(it *domain.InventoryItem, groups map[uuid.UUID]*domain.InventoryGroup, members map[uuid.UUID][]*domain.InventoryItem, names map[uuid.UUID]string) domain.StockLine {
	line := domain.StockLine{
		Item:           *it,
		RepairTypeName: names[it.RepairTypeID],
		Effective:      it.Quantity,
	}
	var (
		group        *domain.InventoryGroup
		groupMembers []*domain.InventoryItem
	)
	if it.GroupID != nil {
		group = groups[*it.GroupID]
	}
	if group != nil {
		groupMembers = members[group.ID]
		line.GroupName = group.Name
		if !it.UnlimitedStock {
			line.Effective = domain.GroupQuantity(groupMembers)
		}
	}
	line.Status = domain.EvaluateStock(it, group, groupMembers)
	return line
}
