package items

import (
	"time"

	"github.com/shopspring/decimal"
)

// Item is a stocked good. All of its stock quantities are stored in the
// base unit; packaging variants convert into it.
type Item struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	CategoryID *int64    `json:"category_id,omitempty"`
	BaseUnitID int64     `json:"base_unit_id"`
	Disabled   bool      `json:"disabled"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ItemDetail is a packaging/SKU variant of an item. The row for the item's
// base unit always carries ConversionFactor == 1.
type ItemDetail struct {
	ID               int64            `json:"id"`
	Code             string           `json:"code"`
	ItemID           int64            `json:"item_id"`
	UnitID           int64            `json:"unit_id"`
	ConversionFactor int64            `json:"conversion_factor"`
	Price            *decimal.Decimal `json:"price,omitempty"`
	Disabled         bool             `json:"disabled"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// ListFilters narrows item listings.
type ListFilters struct {
	Search          string
	CategoryID      *int64
	IncludeDisabled bool
	Page            int
	Limit           int
}
