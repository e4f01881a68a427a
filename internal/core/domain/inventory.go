package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StockOK        StockStatus = "ok"
	StockLow       StockStatus = "low"
	StockOut       StockStatus = "out"
	StockUnlimited StockStatus = "unlimited"
)

type InventoryItem struct {
	ID             uuid.UUID       `json:"id"`
	RepairTypeID   uuid.UUID       `json:"repair_type_id"`
	Quantity       int             `json:"quantity"`
	MinStockLevel  int             `json:"min_stock_level" validate:"min=0"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	UnlimitedStock bool            `json:"unlimited_stock"`
	GroupID        *uuid.UUID      `json:"group_id,omitempty"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type InventoryGroup struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name" validate:"required,max=120"`
	MinStockLevel int       `json:"min_stock_level" validate:"min=0"`
	CreatedAt     time.Time `json:"created_at"`
}

// ClampQuantity enforces the stock floor of zero.
func ClampQuantity(q int) int {
	if q < 0 {
		return 0
	}
	return q
}

// StatusForQuantity derives a stock status from a quantity and a threshold.
func StatusForQuantity(quantity, minStockLevel int) StockStatus {
	switch {
	case quantity <= 0:
		return StockOut
	case quantity <= minStockLevel:
		return StockLow
	default:
		return StockOK
	}
}

// GroupQuantity sums the quantities of the limited items of a group.
func GroupQuantity(members []*InventoryItem) int {
	total := 0
	for _, m := range members {
		if m.UnlimitedStock {
			continue
		}
		total += m.Quantity
	}
	return total
}

// EvaluateStock returns the reported status of item. A grouped item reports the status of
// its group: the sum of all limited members against the group's own threshold. A group
// whose members are all unlimited reports StockUnlimited.
func EvaluateStock(item *InventoryItem, group *InventoryGroup, members []*InventoryItem) StockStatus {
	if item.UnlimitedStock {
		return StockUnlimited
	}
	if item.GroupID == nil || group == nil {
		return StatusForQuantity(item.Quantity, item.MinStockLevel)
	}
	limited := 0
	for _, m := range members {
		if !m.UnlimitedStock {
			limited++
		}
	}
	if limited == 0 {
		return StockUnlimited
	}
	return StatusForQuantity(GroupQuantity(members), group.MinStockLevel)
}

// StockLine is the stock-status-by-item read model.
type StockLine struct {
	Item           InventoryItem `json:"item"`
	RepairTypeName string        `json:"repair_type_name"`
	GroupName      string        `json:"group_name,omitempty"`
	Effective      int           `json:"effective_quantity"`
	Status         StockStatus   `json:"status"`
}

// InventoryField names a debounced editable field.
type InventoryField string

const (
	FieldQuantity      InventoryField = "quantity"
	FieldMinStockLevel InventoryField = "min_stock_level"
	FieldPurchasePrice InventoryField = "purchase_price"
)
