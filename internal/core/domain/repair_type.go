package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RepairType is a catalog entry. Models lists the bike models it applies to; empty means all.
type RepairType struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name" validate:"required,max=120"`
	Price     decimal.Decimal `json:"price"`
	Points    float64         `json:"points" validate:"min=0"`
	Models    []BikeModel     `json:"models,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

func (rt *RepairType) AppliesTo(model BikeModel) bool {
	if len(rt.Models) == 0 {
		return true
	}
	for _, m := range rt.Models {
		if m == model {
			return true
		}
	}
	return false
}

// DisplayPrice is the price shown to the customer. Sales bikes are never charged.
func (rt *RepairType) DisplayPrice(isSalesBike bool) decimal.Decimal {
	if isSalesBike {
		return decimal.Zero
	}
	return rt.Price
}

// Product is a repair type created together with its inventory row.
type Product struct {
	Name           string          `json:"name" validate:"required,max=120"`
	Price          decimal.Decimal `json:"price"`
	Points         float64         `json:"points" validate:"min=0"`
	Models         []BikeModel     `json:"models,omitempty"`
	Quantity       int             `json:"quantity"`
	MinStockLevel  int             `json:"min_stock_level" validate:"min=0"`
	PurchasePrice  decimal.Decimal `json:"purchase_price"`
	UnlimitedStock bool            `json:"unlimited_stock"`
	GroupID        *uuid.UUID      `json:"group_id,omitempty"`
}
